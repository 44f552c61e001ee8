package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"accessnav/pkg/dataset"
	"accessnav/pkg/geo"
	"accessnav/pkg/nav"
	"accessnav/pkg/route"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": "accessnav"})
}

// handleRoute computes the normal and accessible variants for a trip.
func (s *Server) handleRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if !validPair(req.Start) || !validPair(req.End) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "bad_coords",
			"hint":  "expect start/end as [lon, lat] within valid ranges",
		})
		return
	}

	params := route.DefaultParams()
	if req.Params != nil {
		if req.Params.MaxIncline != nil {
			params.MaxIncline = *req.Params.MaxIncline
		}
		if req.Params.MinWidth != nil {
			params.MinWidth = *req.Params.MinWidth
		}
	}

	plan := s.composer.Plan(c.Request.Context(),
		toPoint(req.Start), toPoint(req.End), params, req.Mode == "accessible")

	c.JSON(http.StatusOK, planResponse{
		Normal:                   resultFeatureCollection(plan.Normal, plan.Metadata.Timestamp),
		Accessible:               resultFeatureCollection(plan.Accessible, plan.Metadata.Timestamp),
		HasAccessibleAlternative: plan.HasAccessibleAlternative,
		Metadata:                 plan.Metadata,
	})
}

func (s *Server) handleFacilities(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Facilities())
}

func (s *Server) handleObstacleReport(c *gin.Context) {
	var req obstacleReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if !validPair(req.Location) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "bad_coords",
			"hint":  "expect location as [lon, lat] within valid ranges",
		})
		return
	}

	obstacle, message, err := s.data.ReportObstacle(c.Request.Context(), s.analyzer, toReport(req))
	if err != nil {
		s.log.Error("obstacle report failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report_failed"})
		return
	}

	c.JSON(http.StatusOK, obstacleReportResponse{
		Success:  true,
		Obstacle: obstacle,
		Message:  message,
	})
}

// handleObstacleList returns reports near a point when lon/lat query
// parameters are present, or every report otherwise.
func (s *Server) handleObstacleList(c *gin.Context) {
	lonStr, latStr := c.Query("lon"), c.Query("lat")
	if lonStr == "" && latStr == "" {
		c.JSON(http.StatusOK, gin.H{"obstacles": s.data.Obstacles()})
		return
	}

	lon, err1 := strconv.ParseFloat(lonStr, 64)
	lat, err2 := strconv.ParseFloat(latStr, 64)
	if err1 != nil || err2 != nil || !validPair([]float64{lon, lat}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_coords"})
		return
	}

	radius := 500.0
	if r := c.Query("radius"); r != "" {
		if parsed, err := strconv.ParseFloat(r, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"obstacles": s.data.ObstaclesInArea(toPoint([]float64{lon, lat}), radius),
	})
}

func (s *Server) handleObstacleResolve(c *gin.Context) {
	var req obstacleResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_params"})
		return
	}

	found, err := s.data.Resolve(req.ID, req.ResolvedBy)
	if err != nil {
		s.log.Error("obstacle resolve failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve_failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "obstacle_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleNavStart(c *gin.Context) {
	var req navStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if len(req.Start) == 0 || len(req.End) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_params",
			"message": "start and end coordinates are required",
		})
		return
	}
	if !validPair(req.Start) || !validPair(req.End) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_coords"})
		return
	}

	sess := s.navman.Start(c.Request.Context(), toPoint(req.Start), toPoint(req.End), req.RouteType)

	c.JSON(http.StatusOK, navStartResponse{
		NavigationID:      sess.ID,
		Steps:             sess.Steps,
		TotalSteps:        len(sess.Steps),
		TotalDistance:     nav.TotalDistance(sess.Steps),
		EstimatedDuration: nav.TotalDuration(sess.Steps),
	})
}

func (s *Server) handleNavPosition(c *gin.Context) {
	var req navPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if req.NavigationID == "" || len(req.CurrentPosition) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_params",
			"message": "navigation id and current position are required",
		})
		return
	}
	if !validPair(req.CurrentPosition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_coords"})
		return
	}
	if req.CurrentStep < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "current_step must not be negative",
		})
		return
	}

	update, err := s.navman.Store().RecordPosition(
		req.NavigationID, toPoint(req.CurrentPosition), req.CurrentStep)
	if errors.Is(err, nav.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "session_not_found",
			"message": "navigation session does not exist or has expired",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "position_check_failed"})
		return
	}

	c.JSON(http.StatusOK, update)
}

func (s *Server) handleNavStop(c *gin.Context) {
	var req navStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	s.navman.Store().Stop(req.NavigationID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "navigation stopped"})
}

func (s *Server) handleNavRecalculate(c *gin.Context) {
	var req navRecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if !validPair(req.CurrentPosition) || !validPair(req.End) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_coords"})
		return
	}

	plan, steps := s.navman.Recalculate(c.Request.Context(),
		toPoint(req.CurrentPosition), toPoint(req.End), req.RouteType)

	c.JSON(http.StatusOK, navRecalculateResponse{
		RouteGeometry: resultFeatureCollection(plan.Normal, time.Now()),
		Steps:         steps,
		TotalSteps:    len(steps),
		Recalculated:  true,
	})
}

func validPair(pair []float64) bool {
	return len(pair) == 2 && geo.Valid(toPoint(pair))
}

func toReport(req obstacleReportRequest) dataset.Report {
	return dataset.Report{
		Type:        req.Type,
		Location:    toPoint(req.Location),
		Description: req.Description,
		Severity:    req.Severity,
		Reporter:    req.Reporter,
	}
}
