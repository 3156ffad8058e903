package domain

import "time"

// PathResult is the outcome of a shortest-path query: the ordered node ids
// from origin to destination inclusive, plus the hop count.
type PathResult struct {
	SourceID string
	TargetID string
	Path     []string
	Distance int
}

// Route decorates a PathResult with presentation metadata for callers that
// narrate or animate a walk.
type Route struct {
	PathResult
	Description   string
	EstimatedTime time.Duration
}

// NavigationType classifies a transition between two locations; it selects
// which orientation-continuity strategy applies.
type NavigationType string

const (
	NavSameCorridor  NavigationType = "same-corridor"
	NavCorner        NavigationType = "same-building-corner"
	NavCrossBuilding NavigationType = "cross-building"
	NavTurn          NavigationType = "turn"
)
