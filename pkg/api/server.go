// Package api exposes the routing, navigation, and obstacle services
// over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"accessnav/pkg/dataset"
	"accessnav/pkg/nav"
	"accessnav/pkg/route"
)

// Server bundles the HTTP surface and its dependencies.
type Server struct {
	composer *route.Composer
	navman   *nav.Manager
	data     *dataset.Store
	analyzer dataset.Analyzer
	log      *slog.Logger
	engine   *gin.Engine
}

// NewServer builds the router with all endpoints registered. corsOrigin
// "" or "*" allows all origins.
func NewServer(composer *route.Composer, navman *nav.Manager, data *dataset.Store,
	analyzer dataset.Analyzer, corsOrigin string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		composer: composer,
		navman:   navman,
		data:     data,
		analyzer: analyzer,
		log:      log,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if corsOrigin == "" || corsOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{corsOrigin}
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"*"}
	engine.Use(cors.New(corsCfg))

	engine.GET("/api/health", s.handleHealth)
	engine.POST("/api/route", s.handleRoute)
	engine.GET("/api/accessible-facilities", s.handleFacilities)

	engine.POST("/api/obstacles/report", s.handleObstacleReport)
	engine.GET("/api/obstacles", s.handleObstacleList)
	engine.POST("/api/obstacles/resolve", s.handleObstacleResolve)

	engine.POST("/api/navigation/start", s.handleNavStart)
	engine.POST("/api/navigation/position", s.handleNavPosition)
	engine.POST("/api/navigation/stop", s.handleNavStop)
	engine.POST("/api/navigation/recalculate", s.handleNavRecalculate)

	s.engine = engine
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	}
}
