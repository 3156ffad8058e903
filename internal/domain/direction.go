package domain

// Direction names a connection slot on a Location. The eight horizontal
// directions form a continuous 360° ring anchored at the node's base
// heading; the remaining directions are vertical or special hotspots with
// no implicit ring angle.
type Direction string

const (
	DirForward      Direction = "forward"
	DirForwardRight Direction = "forward-right"
	DirRight        Direction = "right"
	DirBackRight    Direction = "back-right"
	DirBack         Direction = "back"
	DirBackLeft     Direction = "back-left"
	DirLeft         Direction = "left"
	DirForwardLeft  Direction = "forward-left"

	DirUp          Direction = "up"
	DirDown        Direction = "down"
	DirElevator    Direction = "elevator"
	DirDoor        Direction = "door"
	DirFloorSelect Direction = "floor-select"
)

// HorizontalDirections is the fixed enumeration order of the ring
// directions. Tie-breaking and neighbor flattening rely on this order.
var HorizontalDirections = []Direction{
	DirForward,
	DirForwardRight,
	DirRight,
	DirBackRight,
	DirBack,
	DirBackLeft,
	DirLeft,
	DirForwardLeft,
}

// SpecialDirections enumerates the vertical/special hotspot directions in
// their stable flatten order.
var SpecialDirections = []Direction{
	DirUp,
	DirDown,
	DirElevator,
	DirDoor,
	DirFloorSelect,
}

// ringOffsets anchors each horizontal direction at a fixed offset from the
// node's base heading.
var ringOffsets = map[Direction]float64{
	DirForward:      0,
	DirForwardRight: 45,
	DirRight:        90,
	DirBackRight:    135,
	DirBack:         180,
	DirBackLeft:     225,
	DirLeft:         270,
	DirForwardLeft:  315,
}

var opposites = map[Direction]Direction{
	DirForward:      DirBack,
	DirForwardRight: DirBackLeft,
	DirRight:        DirLeft,
	DirBackRight:    DirForwardLeft,
	DirBack:         DirForward,
	DirBackLeft:     DirForwardRight,
	DirLeft:         DirRight,
	DirForwardLeft:  DirBackRight,
	DirUp:           DirDown,
	DirDown:         DirUp,
}

// RingOffset returns the direction's fixed offset from the base heading.
// The second return value is false for vertical/special directions.
func (d Direction) RingOffset() (float64, bool) {
	off, ok := ringOffsets[d]
	return off, ok
}

// IsHorizontal reports whether the direction is part of the 360° ring.
func (d Direction) IsHorizontal() bool {
	_, ok := ringOffsets[d]
	return ok
}

// Opposite returns the direction pointing the other way. Directions with
// no geometric opposite (elevator, door, floor-select) return themselves.
func (d Direction) Opposite() Direction {
	if opp, ok := opposites[d]; ok {
		return opp
	}
	return d
}

// IsForwardFamily reports whether the direction carries a forward movement
// sense (forward and its diagonals).
func (d Direction) IsForwardFamily() bool {
	return d == DirForward || d == DirForwardLeft || d == DirForwardRight
}

// IsBackFamily reports whether the direction carries a backward movement
// sense (back and its diagonals).
func (d Direction) IsBackFamily() bool {
	return d == DirBack || d == DirBackLeft || d == DirBackRight
}

// IsPureTurn reports whether the direction is a sideways turn with no
// inherent forward or backward sense.
func (d Direction) IsPureTurn() bool {
	return d == DirLeft || d == DirRight
}

// Valid reports whether d is one of the known direction names.
func (d Direction) Valid() bool {
	if d.IsHorizontal() {
		return true
	}
	for _, s := range SpecialDirections {
		if d == s {
			return true
		}
	}
	return false
}
