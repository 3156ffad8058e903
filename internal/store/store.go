// Package store holds the immutable in-memory campus graph: every
// panoramic location, its directional edges, and the angle-override table.
// It is populated once at startup and is safe for concurrent reads.
package store

import (
	"errors"
	"fmt"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
)

// Store indexes the full set of locations by id.
type Store struct {
	locations map[string]*domain.Location
	overrides []domain.AngleOverride
	entryID   string
}

// New builds a Store from loaded dataset entries. The slices are owned by
// the Store after the call.
func New(locations []domain.Location, overrides []domain.AngleOverride, entryID string) *Store {
	idx := make(map[string]*domain.Location, len(locations))
	for i := range locations {
		loc := locations[i]
		idx[loc.ID] = &loc
	}
	return &Store{
		locations: idx,
		overrides: overrides,
		entryID:   entryID,
	}
}

// Get returns the location for the id, or nil when unknown. Probing for
// absent ids is a normal outcome, not an error.
func (s *Store) Get(id string) *domain.Location {
	return s.locations[id]
}

// EntryID is the configured session entry node.
func (s *Store) EntryID() string {
	return s.entryID
}

// Overrides returns the dataset's angle-override entries.
func (s *Store) Overrides() []domain.AngleOverride {
	return append([]domain.AngleOverride(nil), s.overrides...)
}

// Len returns the number of locations in the graph.
func (s *Store) Len() int {
	return len(s.locations)
}

// All returns every location. Order is unspecified.
func (s *Store) All() []*domain.Location {
	out := make([]*domain.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	return out
}

// Neighbors flattens every edge family on the node into a deduplicated
// list of reachable ids, in a stable order: horizontal directions in
// enumeration order, then vertical/special edges (list values in
// declaration order), then floor connections in ascending floor order.
// Direction semantics are ignored; for path-finding any edge is
// traversable. Unknown ids yield nil.
func (s *Store) Neighbors(id string) []string {
	loc := s.locations[id]
	if loc == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(target string) {
		if target == "" {
			return
		}
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}

	for _, dir := range domain.HorizontalDirections {
		if edge, ok := loc.Edges[dir]; ok {
			add(edge.Primary())
		}
	}
	for _, dir := range domain.SpecialDirections {
		if edge, ok := loc.Edges[dir]; ok {
			for _, target := range edge.Targets() {
				add(target)
			}
		}
	}
	for _, floor := range loc.SortedFloors() {
		add(loc.FloorConnections[floor])
	}
	return out
}

// Validate walks every edge and floor connection and reports malformed
// entries: dangling target ids, list-valued horizontal edges, unknown
// direction names, and a missing or dangling entry node. All problems are
// reported at once so a broken dataset can be fixed in one pass.
func (s *Store) Validate() error {
	var problems []error

	if s.entryID == "" {
		problems = append(problems, errors.New("entry location is not set"))
	} else if s.locations[s.entryID] == nil {
		problems = append(problems, fmt.Errorf("entry location %q does not exist", s.entryID))
	}

	for id, loc := range s.locations {
		if loc.ImageURL == "" {
			problems = append(problems, fmt.Errorf("location %q has no image", id))
		}
		for dir, edge := range loc.Edges {
			if !dir.Valid() {
				problems = append(problems, fmt.Errorf("location %q: unknown direction %q", id, dir))
				continue
			}
			if edge.IsEmpty() {
				problems = append(problems, fmt.Errorf("location %q: direction %q has no target", id, dir))
				continue
			}
			if dir.IsHorizontal() && edge.IsMulti() {
				problems = append(problems, fmt.Errorf("location %q: horizontal direction %q lists multiple targets", id, dir))
			}
			for _, target := range edge.Targets() {
				if s.locations[target] == nil {
					problems = append(problems, fmt.Errorf("location %q: direction %q points to unknown id %q", id, dir, target))
				}
			}
		}
		for floor, target := range loc.FloorConnections {
			if s.locations[target] == nil {
				problems = append(problems, fmt.Errorf("location %q: floor %d points to unknown id %q", id, floor, target))
			}
		}
	}

	for _, o := range s.overrides {
		if s.locations[o.LocationID] == nil {
			problems = append(problems, fmt.Errorf("angle override references unknown location %q", o.LocationID))
		}
	}

	return errors.Join(problems...)
}
