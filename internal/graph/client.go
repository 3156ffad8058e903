// Package graph connects the campus tour to a Neo4j mirror of the
// navigation graph. The engine itself runs from the in-memory store; the
// graph database is an optional source/sink used for authoring, analysis,
// and serving the dataset without shipping YAML files.
package graph

import (
	"context"
	"errors"
)

// Client is the minimal contract for executing Cypher against the graph
// database. It exists so the dataset source can be tested without a
// running Neo4j instance.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified query response.
type Result struct {
	Records []Record
}

// Record groups the key-value pairs of one returned row.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
