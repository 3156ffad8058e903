package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nkoval/virtualcampus/backend/internal/asset"
	"github.com/nkoval/virtualcampus/backend/internal/config"
	"github.com/nkoval/virtualcampus/backend/internal/graph"
	"github.com/nkoval/virtualcampus/backend/internal/heading"
	"github.com/nkoval/virtualcampus/backend/internal/logging"
	"github.com/nkoval/virtualcampus/backend/internal/nav"
	"github.com/nkoval/virtualcampus/backend/internal/orientation"
	"github.com/nkoval/virtualcampus/backend/internal/pathfind"
	"github.com/nkoval/virtualcampus/backend/internal/server"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	graphClient, tourStore, err := buildStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to load campus graph", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	if err := tourStore.Validate(); err != nil {
		logger.Error("campus graph failed validation", "error", err)
		os.Exit(1)
	}
	logger.Info("campus graph loaded", "locations", tourStore.Len())

	headings := heading.NewResolver(tourStore.Overrides())
	orient := orientation.New(headings)
	finder := pathfind.New(tourStore)

	var loader nav.ImageLoader = asset.StaticLoader{}
	if cfg.Tour.AssetBaseURL != "" {
		loader = asset.NewHTTPLoader(cfg.Tour.AssetBaseURL, cfg.Tour.PreloadTimeout)
	}

	controller, err := nav.NewController(tourStore, headings, orient, finder, loader, logger, nav.Options{
		EntryID:       cfg.Tour.EntryLocationID,
		SecondsPerHop: cfg.Tour.SecondsPerHop,
		Prefetch:      cfg.Tour.PrefetchWorkers,
	})
	if err != nil {
		logger.Error("failed to create navigation controller", "error", err)
		os.Exit(1)
	}

	apiHandlers := server.NewAPIHandlers(logger, controller, tourStore, headings, cfg.Tour.HeadingTolerance)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildStore sources the campus graph from the graph database when
// GRAPH_URI is configured, otherwise from the YAML dataset file.
func buildStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, *store.Store, error) {
	if cfg.Graph.URI == "" {
		s, err := store.LoadFile(cfg.Tour.DatasetPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("loaded campus graph from dataset", "path", cfg.Tour.DatasetPath)
		return nil, s, nil
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	s, err := graph.LoadStore(ctx, client)
	if err != nil {
		_ = client.Close(ctx)
		return nil, nil, err
	}
	logger.Info("loaded campus graph from database", "uri", cfg.Graph.URI)
	return client, s, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
