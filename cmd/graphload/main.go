// graphload mirrors a YAML campus dataset into the graph database so the
// server can source the graph from Neo4j and analysts can query the
// topology directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkoval/virtualcampus/backend/internal/config"
	"github.com/nkoval/virtualcampus/backend/internal/graph"
	"github.com/nkoval/virtualcampus/backend/internal/logging"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "", "Path to the campus YAML dataset (defaults to TOUR_DATASET)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "graphload")

	path := *datasetPath
	if path == "" {
		path = cfg.Tour.DatasetPath
	}

	tourStore, err := store.LoadFile(path)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "path", path)
		os.Exit(1)
	}
	if err := tourStore.Validate(); err != nil {
		logger.Error("dataset failed validation", "error", err, "path", path)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Graph.URI == "" {
		logger.Error("GRAPH_URI is required to mirror the dataset")
		os.Exit(1)
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	start := time.Now()
	logger.Info("mirroring campus graph", "locations", tourStore.Len(), "uri", cfg.Graph.URI)
	if err := graph.SaveStore(ctx, client, tourStore); err != nil {
		logger.Error("mirroring failed", "error", err)
		os.Exit(1)
	}

	logger.Info("mirroring complete", "duration", time.Since(start).String(), "locations", tourStore.Len())
}
