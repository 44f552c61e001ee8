package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"accessnav/pkg/ai"
	"accessnav/pkg/api"
	"accessnav/pkg/config"
	"accessnav/pkg/dataset"
	"accessnav/pkg/nav"
	"accessnav/pkg/osrm"
	"accessnav/pkg/roadgraph"
	"accessnav/pkg/route"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to TOML config file")
	flag.Parse()

	// A local .env is optional.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "path", *configPath, "error", err)
		os.Exit(1)
	}

	data, err := dataset.Open(cfg.Data.Dir)
	if err != nil {
		log.Error("dataset open failed", "dir", cfg.Data.Dir, "error", err)
		os.Exit(1)
	}

	graph := loadGraph(cfg.Graph.Snapshot, log)
	log.Info("road network ready", "nodes", graph.NodeCount(), "edges", graph.EdgeCount())

	router := osrm.NewClient(cfg.OSRM.BaseURL, cfg.OSRMTimeout())
	analyzer := ai.NewClient(cfg.AI.BaseURL, cfg.AITimeout())

	composer := route.NewComposer(router, graph, data, log)

	sessions := nav.NewStore(cfg.MaxSessionAge(), cfg.SweepInterval())
	defer sessions.Close()
	navman := nav.NewManager(sessions, router, composer, log)

	server := api.NewServer(composer, navman, data, analyzer, cfg.Server.CORSOrigin, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// loadGraph reads the road network snapshot, falling back to the
// embedded Hualien network when no snapshot is configured or readable.
func loadGraph(path string, log *slog.Logger) *roadgraph.Graph {
	if path == "" {
		return roadgraph.Hualien()
	}
	g, err := roadgraph.LoadSnapshot(path)
	if err != nil {
		log.Warn("snapshot load failed, using embedded network", "path", path, "error", err)
		return roadgraph.Hualien()
	}
	return g
}
