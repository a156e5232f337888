package core

import "fmt"

// Direction represents a cardinal direction.
// North is towards negative Y, matching row-major board storage.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists the cardinal directions in clockwise order
var Directions = [4]Direction{North, East, South, West}

// Opposite returns the direction pointing the other way
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	}
	panic(fmt.Sprintf("invalid direction %d", int(d)))
}

// Left90 returns the direction rotated a quarter turn anticlockwise
func (d Direction) Left90() Direction {
	switch d {
	case North:
		return West
	case East:
		return North
	case South:
		return East
	case West:
		return South
	}
	panic(fmt.Sprintf("invalid direction %d", int(d)))
}

// Vector returns the unit offset for the direction
func (d Direction) Vector() Coordinate {
	switch d {
	case North:
		return Coordinate{X: 0, Y: -1}
	case East:
		return Coordinate{X: 1, Y: 0}
	case South:
		return Coordinate{X: 0, Y: 1}
	case West:
		return Coordinate{X: -1, Y: 0}
	}
	panic(fmt.Sprintf("invalid direction %d", int(d)))
}

// IsHorizontal reports whether the direction moves along the X axis
func (d Direction) IsHorizontal() bool {
	return d == East || d == West
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// OrdinalDirection represents one of the four diagonal directions.
// When applied to a cell it also names one of the cell's corners.
type OrdinalDirection int

const (
	NorthEast OrdinalDirection = iota
	SouthEast
	SouthWest
	NorthWest
)

// FromCardinals combines two perpendicular cardinal directions.
// Returns false if the directions are parallel.
func FromCardinals(a, b Direction) (OrdinalDirection, bool) {
	if a.IsHorizontal() == b.IsHorizontal() {
		return 0, false
	}
	if a.IsHorizontal() {
		a, b = b, a
	}
	switch {
	case a == North && b == East:
		return NorthEast, true
	case a == North && b == West:
		return NorthWest, true
	case a == South && b == East:
		return SouthEast, true
	case a == South && b == West:
		return SouthWest, true
	}
	return 0, false
}

// Opposite returns the diagonal pointing the other way
func (o OrdinalDirection) Opposite() OrdinalDirection {
	switch o {
	case NorthEast:
		return SouthWest
	case SouthEast:
		return NorthWest
	case SouthWest:
		return NorthEast
	case NorthWest:
		return SouthEast
	}
	panic(fmt.Sprintf("invalid ordinal direction %d", int(o)))
}

// Vector returns the unit diagonal offset
func (o OrdinalDirection) Vector() Coordinate {
	switch o {
	case NorthEast:
		return Coordinate{X: 1, Y: -1}
	case SouthEast:
		return Coordinate{X: 1, Y: 1}
	case SouthWest:
		return Coordinate{X: -1, Y: 1}
	case NorthWest:
		return Coordinate{X: -1, Y: -1}
	}
	panic(fmt.Sprintf("invalid ordinal direction %d", int(o)))
}

func (o OrdinalDirection) String() string {
	switch o {
	case NorthEast:
		return "north-east"
	case SouthEast:
		return "south-east"
	case SouthWest:
		return "south-west"
	case NorthWest:
		return "north-west"
	default:
		return fmt.Sprintf("ordinal(%d)", int(o))
	}
}
