// Package pathfind computes shortest hop sequences over the campus graph.
// Edges are unweighted, so breadth-first search yields optimal paths; the
// store's stable neighbor order makes results deterministic even when
// several shortest paths exist.
package pathfind

import (
	"fmt"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

// Finder runs shortest-path queries against a graph store.
type Finder struct {
	store *store.Store
}

// New constructs a Finder over the given store.
func New(s *store.Store) *Finder {
	return &Finder{store: s}
}

// FindPath returns the shortest hop sequence from startID to endID
// inclusive, or nil when either id is unknown or no route exists.
// "Already there" is a valid query: it yields a single-element path with
// distance zero.
func (f *Finder) FindPath(startID, endID string) *domain.PathResult {
	if f.store.Get(startID) == nil || f.store.Get(endID) == nil {
		return nil
	}
	if startID == endID {
		return &domain.PathResult{
			SourceID: startID,
			TargetID: endID,
			Path:     []string{startID},
			Distance: 0,
		}
	}

	parent := map[string]string{startID: ""}
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == endID {
			path := reconstruct(parent, endID)
			return &domain.PathResult{
				SourceID: startID,
				TargetID: endID,
				Path:     path,
				Distance: len(path) - 1,
			}
		}

		for _, next := range f.store.Neighbors(current) {
			if _, visited := parent[next]; visited {
				continue
			}
			parent[next] = current
			queue = append(queue, next)
		}
	}

	return nil
}

// Validate re-checks that every consecutive pair in the path is a true
// edge in the store. It supports tests and dataset fuzzing; the navigation
// hot path never calls it.
func (f *Finder) Validate(result *domain.PathResult) error {
	if result == nil {
		return fmt.Errorf("nil path result")
	}
	if len(result.Path) == 0 {
		return fmt.Errorf("empty path")
	}
	if result.Path[0] != result.SourceID || result.Path[len(result.Path)-1] != result.TargetID {
		return fmt.Errorf("path endpoints do not match source/target ids")
	}
	if result.Distance != len(result.Path)-1 {
		return fmt.Errorf("distance %d does not match path length %d", result.Distance, len(result.Path))
	}
	for i := 0; i+1 < len(result.Path); i++ {
		from, to := result.Path[i], result.Path[i+1]
		if !contains(f.store.Neighbors(from), to) {
			return fmt.Errorf("no edge from %q to %q", from, to)
		}
	}
	return nil
}

func reconstruct(parent map[string]string, endID string) []string {
	var reversed []string
	for at := endID; at != ""; at = parent[at] {
		reversed = append(reversed, at)
	}
	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(path)-1-i] = id
	}
	return path
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
