// Package heading converts between named directions on a location and
// absolute camera headings on the 0–360° circle.
package heading

import (
	"math"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
)

type overrideKey struct {
	locationID string
	direction  domain.Direction
}

// Resolver computes absolute angles for directional edges, honoring the
// manual override table for visually irregular nodes.
type Resolver struct {
	overrides map[overrideKey]float64
}

// NewResolver builds a Resolver from the dataset's override entries.
func NewResolver(overrides []domain.AngleOverride) *Resolver {
	m := make(map[overrideKey]float64, len(overrides))
	for _, o := range overrides {
		m[overrideKey{o.LocationID, o.Direction}] = Normalize(o.Angle)
	}
	return &Resolver{overrides: m}
}

// AngleOf returns the absolute heading at which the direction's control
// sits on the location. Overrides win over the computed ring offset;
// vertical/special directions without an override fall back to the
// location's base heading.
func (r *Resolver) AngleOf(loc *domain.Location, dir domain.Direction) float64 {
	if angle, ok := r.overrides[overrideKey{loc.ID, dir}]; ok {
		return angle
	}
	off, ok := dir.RingOffset()
	if !ok {
		return Normalize(loc.BaseHeading)
	}
	return Normalize(loc.BaseHeading + off)
}

// ClosestDirection returns the candidate whose angle is nearest to target
// by circular distance. Only candidates present as edges on the location
// are considered; ties break by position in the fixed enumeration order.
// Returns "" (and false) when no candidate is present on the node.
func (r *Resolver) ClosestDirection(loc *domain.Location, target float64, candidates []domain.Direction) (domain.Direction, bool) {
	best := domain.Direction("")
	bestDist := math.MaxFloat64
	for _, dir := range orderByEnumeration(candidates) {
		if _, ok := loc.Edges[dir]; !ok {
			continue
		}
		d := Delta(target, r.AngleOf(loc, dir))
		if d < bestDist {
			best = dir
			bestDist = d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// FindDirectionTo scans the location's edges for one targeting the given
// id: horizontal directions first, then vertical/special, then floor
// connections. List-valued edges match on any listed target.
func (r *Resolver) FindDirectionTo(loc *domain.Location, targetID string) (domain.Direction, bool) {
	for _, dir := range domain.HorizontalDirections {
		if edge, ok := loc.Edges[dir]; ok && edgeTargets(edge, targetID) {
			return dir, true
		}
	}
	for _, dir := range domain.SpecialDirections {
		if edge, ok := loc.Edges[dir]; ok && edgeTargets(edge, targetID) {
			return dir, true
		}
	}
	for _, floor := range loc.SortedFloors() {
		if loc.FloorConnections[floor] == targetID {
			return domain.DirFloorSelect, true
		}
	}
	return "", false
}

func edgeTargets(e domain.Edge, id string) bool {
	for _, t := range e.Targets() {
		if t == id {
			return true
		}
	}
	return false
}

// orderByEnumeration rearranges candidates into the fixed horizontal
// enumeration order so the tie-break is independent of caller order.
func orderByEnumeration(candidates []domain.Direction) []domain.Direction {
	in := make(map[domain.Direction]bool, len(candidates))
	for _, c := range candidates {
		in[c] = true
	}
	ordered := make([]domain.Direction, 0, len(candidates))
	for _, dir := range domain.HorizontalDirections {
		if in[dir] {
			ordered = append(ordered, dir)
		}
	}
	return ordered
}

// Normalize maps any angle into [0, 360).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Delta returns the circular distance between two angles, in [0, 180].
func Delta(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// RelativeTo returns the signed offset of angle from reference, normalized
// to (-180, 180].
func RelativeTo(angle, reference float64) float64 {
	d := Normalize(angle - reference)
	if d > 180 {
		d -= 360
	}
	return d
}
