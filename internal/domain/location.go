package domain

// Edge is a tagged connection value: a horizontal edge always holds exactly
// one target, while vertical/special edges may hold an ordered list
// (several doors or elevators reachable from one viewpoint).
type Edge struct {
	targets []string
}

// SingleEdge builds an edge to one target.
func SingleEdge(id string) Edge {
	return Edge{targets: []string{id}}
}

// MultiEdge builds an edge to an ordered list of targets.
func MultiEdge(ids ...string) Edge {
	return Edge{targets: append([]string(nil), ids...)}
}

// Primary returns the first listed target, or "" for an empty edge.
// Navigation resolves list-valued edges to their first target.
func (e Edge) Primary() string {
	if len(e.targets) == 0 {
		return ""
	}
	return e.targets[0]
}

// Targets returns all targets in declaration order.
func (e Edge) Targets() []string {
	return append([]string(nil), e.targets...)
}

// IsMulti reports whether the edge lists more than one target.
func (e Edge) IsMulti() bool {
	return len(e.targets) > 1
}

// IsEmpty reports whether the edge has no targets.
func (e Edge) IsEmpty() bool {
	return len(e.targets) == 0
}

// Location is a single panoramic viewpoint in the navigation graph.
//
// Building and Floor are attached at load time so navigation
// classification reads structured fields instead of re-parsing ids.
type Location struct {
	ID          string
	Name        string
	Building    string
	Floor       int
	ImageURL    string
	BaseHeading float64
	Edges       map[Direction]Edge

	// FloorConnections is populated for hub nodes (elevators): floor
	// number to the target location on that floor.
	FloorConnections map[int]string
}

// Edge returns the edge for the named direction, reporting presence.
func (l *Location) Edge(dir Direction) (Edge, bool) {
	e, ok := l.Edges[dir]
	return e, ok
}

// IsHub reports whether the node is a multi-floor elevator hub.
func (l *Location) IsHub() bool {
	return len(l.FloorConnections) > 0
}

// SortedFloors returns the hub's floor numbers in ascending order.
func (l *Location) SortedFloors() []int {
	floors := make([]int, 0, len(l.FloorConnections))
	for f := range l.FloorConnections {
		floors = append(floors, f)
	}
	for i := 1; i < len(floors); i++ {
		for j := i; j > 0 && floors[j] < floors[j-1]; j-- {
			floors[j], floors[j-1] = floors[j-1], floors[j]
		}
	}
	return floors
}

// AngleOverride pins an explicit angle to a (location, direction) pair
// whose visual geometry does not match the linear ring-offset model.
type AngleOverride struct {
	LocationID string
	Direction  Direction
	Angle      float64
}
