// Package orientation decides what the camera should face after a
// transition between panoramic locations. Source and destination photos
// use unrelated local coordinate systems, so the new heading has to be
// reconstructed from how the two nodes connect rather than carried over
// verbatim.
//
// No single rule covers all real layouts: straight corridors want smooth
// relative-angle preservation, corner turns and branching intersections
// need the reverse-connection analysis to avoid facing a wall, and
// cross-building jumps have no consistent geometry at all. The resolver
// therefore tries strategies in a fixed order and commits to the first
// that succeeds.
package orientation

import (
	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/heading"
)

// corridorTolerance is how far (degrees) the source's exit angle and the
// destination's return angle may deviate from exact opposition while the
// transition still counts as walking one straight corridor.
const corridorTolerance = 15

// movementSense is the user's effective travel direction through a node.
type movementSense int

const (
	senseForward movementSense = iota
	senseBackward
)

// forwardCompatible and backwardCompatible are the destination directions
// a continuation may snap to for each movement sense. Pure turns appear in
// both: continuing through a corner often lands on a sideways edge.
var (
	forwardCompatible = []domain.Direction{
		domain.DirForward, domain.DirForwardLeft, domain.DirForwardRight,
		domain.DirLeft, domain.DirRight,
	}
	backwardCompatible = []domain.Direction{
		domain.DirBack, domain.DirBackLeft, domain.DirBackRight,
		domain.DirLeft, domain.DirRight,
	}
)

// Resolver computes post-transition camera headings.
type Resolver struct {
	headings *heading.Resolver
}

// New constructs a Resolver sharing the direction resolver's override
// table.
func New(h *heading.Resolver) *Resolver {
	return &Resolver{headings: h}
}

// Classify determines the navigation type for a transition, which selects
// the continuity strategy. Pure turns and vertical moves never attempt
// corridor preservation; different buildings have unrelated geometry; a
// same-building move is a corridor only when the connection is fully
// bidirectional and the two edge angles oppose each other within
// tolerance.
func (r *Resolver) Classify(src, dst *domain.Location, dir domain.Direction) domain.NavigationType {
	if !dir.IsForwardFamily() && !dir.IsBackFamily() {
		return domain.NavTurn
	}
	if src.Building != dst.Building {
		return domain.NavCrossBuilding
	}

	outEdge, ok := src.Edge(dir)
	if !ok || outEdge.Primary() != dst.ID {
		return domain.NavCorner
	}
	backEdge, ok := dst.Edge(dir.Opposite())
	if !ok || backEdge.Primary() != src.ID {
		return domain.NavCorner
	}

	// Angles are compared relative to each node's own base heading: two
	// photos of one straight corridor may be shot facing opposite ways,
	// so their absolute angles say nothing about straightness. Only an
	// angle override can skew a name-opposite pair off the corridor line.
	exitOffset := heading.Normalize(r.headings.AngleOf(src, dir) - src.BaseHeading)
	returnOffset := heading.Normalize(r.headings.AngleOf(dst, dir.Opposite()) - dst.BaseHeading)
	if heading.Delta(exitOffset, heading.Normalize(returnOffset+180)) > corridorTolerance {
		return domain.NavCorner
	}
	return domain.NavSameCorridor
}

// Resolve computes the camera heading to adopt on arrival at dst, given
// the user's current heading, the direction used to move, and the nodes
// on either side of the transition. The returned navigation type records
// which classification drove the decision.
func (r *Resolver) Resolve(current float64, src, dst *domain.Location, dir domain.Direction) (float64, domain.NavigationType) {
	navType := r.Classify(src, dst, dir)

	// Same-corridor with an exact primary-direction match glides: the
	// camera keeps its offset from the corridor axis instead of snapping
	// to a discrete edge angle.
	if navType == domain.NavSameCorridor && (dir == domain.DirForward || dir == domain.DirBack) {
		if result, ok := r.preserveRelative(current, src, dst); ok {
			return result, navType
		}
	}

	if result, ok := r.resolveReverseConnection(current, src, dst, dir); ok {
		return result, navType
	}
	if result, ok := r.resolveFamilyMatch(dst, dir); ok {
		return result, navType
	}
	if result, ok := r.preserveRelative(current, src, dst); ok {
		return result, navType
	}
	return r.terminalFallback(dst, dir), navType
}

// resolveReverseConnection finds the destination edge pointing back at the
// source; its angle plus 180° is where continued motion naturally faces.
// The continuation then snaps to the destination edge nearest that angle,
// restricted to directions compatible with the user's movement sense.
func (r *Resolver) resolveReverseConnection(current float64, src, dst *domain.Location, dir domain.Direction) (float64, bool) {
	reverse, found := r.headings.FindDirectionTo(dst, src.ID)
	if !found {
		return 0, false
	}
	continuation := heading.Normalize(r.headings.AngleOf(dst, reverse) + 180)

	candidates := forwardCompatible
	if r.effectiveSense(current, src, dir) == senseBackward {
		candidates = backwardCompatible
	}

	match, ok := r.headings.ClosestDirection(dst, continuation, candidates)
	if !ok {
		return 0, false
	}
	return r.headings.AngleOf(dst, match), true
}

// resolveFamilyMatch handles arrivals with no reverse connection (one-way
// edges, cross-building jumps): pick the destination's nearest edge in the
// same movement family, straight direction first, then diagonals.
func (r *Resolver) resolveFamilyMatch(dst *domain.Location, dir domain.Direction) (float64, bool) {
	var preferred []domain.Direction
	switch {
	case dir.IsForwardFamily():
		preferred = []domain.Direction{domain.DirForward, domain.DirForwardLeft, domain.DirForwardRight}
	case dir.IsBackFamily():
		preferred = []domain.Direction{domain.DirBack, domain.DirBackLeft, domain.DirBackRight}
	default:
		return 0, false
	}
	for _, candidate := range preferred {
		if _, ok := dst.Edge(candidate); ok {
			return r.headings.AngleOf(dst, candidate), true
		}
	}
	return 0, false
}

// preserveRelative carries the camera's offset from the source's corridor
// axis onto the destination's corridor axis. A node's axis is its forward
// edge angle, or the back edge flipped 180° when forward is absent; nodes
// with neither have no corridor axis and the strategy falls through.
func (r *Resolver) preserveRelative(current float64, src, dst *domain.Location) (float64, bool) {
	srcAxis, ok := r.corridorAxis(src)
	if !ok {
		return 0, false
	}
	dstAxis, ok := r.corridorAxis(dst)
	if !ok {
		return 0, false
	}
	offset := heading.RelativeTo(current, srcAxis)
	return heading.Normalize(dstAxis + offset), true
}

func (r *Resolver) corridorAxis(loc *domain.Location) (float64, bool) {
	if _, ok := loc.Edge(domain.DirForward); ok {
		return r.headings.AngleOf(loc, domain.DirForward), true
	}
	if _, ok := loc.Edge(domain.DirBack); ok {
		return heading.Normalize(r.headings.AngleOf(loc, domain.DirBack) + 180), true
	}
	return 0, false
}

// terminalFallback is the last resort when the destination's geometry
// offers nothing to anchor on: face the node's base orientation, flipped
// when the user was moving backward.
func (r *Resolver) terminalFallback(dst *domain.Location, dir domain.Direction) float64 {
	if dir.IsBackFamily() {
		return heading.Normalize(dst.BaseHeading + 180)
	}
	return heading.Normalize(dst.BaseHeading)
}

// effectiveSense determines whether the user is effectively moving forward
// or backward through the source node. Forward/back-family directions are
// immediate; pure turns and vertical moves infer the sense from which side
// of the node's forward axis the current heading falls on.
func (r *Resolver) effectiveSense(current float64, src *domain.Location, dir domain.Direction) movementSense {
	if dir.IsForwardFamily() {
		return senseForward
	}
	if dir.IsBackFamily() {
		return senseBackward
	}

	reference := r.forwardReference(src)
	if heading.Delta(current, reference) < 90 {
		return senseForward
	}
	return senseBackward
}

// forwardReference is the angle treated as "forward" on a node: its
// corridor axis when one exists, the bare base heading otherwise.
func (r *Resolver) forwardReference(loc *domain.Location) float64 {
	if axis, ok := r.corridorAxis(loc); ok {
		return axis
	}
	return heading.Normalize(loc.BaseHeading)
}
