package shadowcast

import (
	"fmt"
	"math"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
)

const numOctants = 8

// octantDirections lists (depth, lateral) pairs in the order one meets the
// octants starting at -PI radians and sweeping anticlockwise.
var octantDirections = [numOctants][2]core.Direction{
	{core.West, core.South},
	{core.South, core.West},
	{core.South, core.East},
	{core.East, core.South},
	{core.East, core.North},
	{core.North, core.East},
	{core.North, core.West},
	{core.West, core.North},
}

// axis selects the X or Y component of a coordinate
type axis int

const (
	axisX axis = iota
	axisY
)

func axisOf(d core.Direction) axis {
	if d.IsHorizontal() {
		return axisX
	}
	return axisY
}

func (a axis) get(c core.Coordinate) int {
	if a == axisX {
		return c.X
	}
	return c.Y
}

func (a axis) getf(p point) float64 {
	if a == axisX {
		return p.x
	}
	return p.y
}

func (a axis) set(c *core.Coordinate, v int) {
	if a == axisX {
		c.X = v
	} else {
		c.Y = v
	}
}

// pick chooses between the x and y components of a pair
func (a axis) pick(x, y int) int {
	if a == axisX {
		return x
	}
	return y
}

// point is a continuous position on the board; cell (x,y) spans [x,x+1)×[y,y+1).
type point struct {
	x, y float64
}

func cellCentre(c core.Coordinate) point {
	return point{x: float64(c.X) + 0.5, y: float64(c.Y) + 0.5}
}

func cellCorner(c core.Coordinate, corner core.OrdinalDirection) point {
	switch corner {
	case core.NorthEast:
		return point{x: float64(c.X + 1), y: float64(c.Y)}
	case core.SouthEast:
		return point{x: float64(c.X + 1), y: float64(c.Y + 1)}
	case core.SouthWest:
		return point{x: float64(c.X), y: float64(c.Y + 1)}
	case core.NorthWest:
		return point{x: float64(c.X), y: float64(c.Y)}
	}
	panic(fmt.Sprintf("shadowcast: invalid corner %d", int(corner)))
}

// octant describes how the canonical row scan maps onto one 45° wedge.
type octant struct {
	// Whether depth runs along x or y
	depthAxis axis

	// Whether lateral runs along x or y
	lateralAxis axis

	// Added to the depth part of a coordinate as depth increases
	depthStep int

	// Added to the lateral part of a coordinate during a row scan
	lateralStep  int
	lateralStepF float64

	// When the current cell is more opaque than the previous one, the
	// wedge is split along the line through this corner of the current cell.
	opacityIncreaseCorner core.OrdinalDirection

	// When the current cell is less opaque than the previous one, the
	// wedge is split along the line through this corner of the current cell.
	opacityDecreaseCorner core.OrdinalDirection

	roundStart roundType
	roundEnd   roundType
}

func newOctant(depthDir, lateralDir core.Direction) octant {
	if depthDir.IsHorizontal() == lateralDir.IsHorizontal() {
		panic(fmt.Sprintf("shadowcast: octant directions %s and %s are parallel", depthDir, lateralDir))
	}

	depthAxis := axisOf(depthDir)
	lateralAxis := axisOf(lateralDir)
	depthStep := depthAxis.get(depthDir.Vector())
	lateralStep := lateralAxis.get(lateralDir.Vector())

	var start, end roundType
	switch lateralStep {
	case 1:
		start, end = roundFloor, roundExclusiveFloor
	case -1:
		start, end = roundExclusiveFloor, roundFloor
	default:
		panic(fmt.Sprintf("shadowcast: lateral step %d is not a unit step", lateralStep))
	}

	increase, ok := core.FromCardinals(depthDir, lateralDir.Opposite())
	if !ok {
		panic("shadowcast: failed to combine directions for opacity increase corner")
	}
	decrease, ok := core.FromCardinals(depthDir.Opposite(), lateralDir.Opposite())
	if !ok {
		panic("shadowcast: failed to combine directions for opacity decrease corner")
	}

	return octant{
		depthAxis:             depthAxis,
		lateralAxis:           lateralAxis,
		depthStep:             depthStep,
		lateralStep:           lateralStep,
		lateralStepF:          float64(lateralStep),
		opacityIncreaseCorner: increase,
		opacityDecreaseCorner: decrease,
		roundStart:            start,
		roundEnd:              end,
	}
}

// slope returns |Δlateral / Δdepth| between two points.
// Depth always advances by at least one row before a slope is taken, so a
// zero depth displacement means the caller is broken.
func (o *octant) slope(from, to point) float64 {
	depth := o.depthAxis.getf(to) - o.depthAxis.getf(from)
	if depth == 0 {
		panic(fmt.Sprintf("shadowcast: zero depth displacement between %v and %v", from, to))
	}
	lateral := o.lateralAxis.getf(to) - o.lateralAxis.getf(from)
	s := math.Abs(lateral / depth)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		panic(fmt.Sprintf("shadowcast: non-finite slope between %v and %v", from, to))
	}
	return s
}

// coordinate maps an absolute (depth, lateral) pair to a board coordinate
func (o *octant) coordinate(depthIdx, lateralIdx int) core.Coordinate {
	var c core.Coordinate
	o.depthAxis.set(&c, depthIdx)
	o.lateralAxis.set(&c, lateralIdx)
	return c
}

func buildOctants() [numOctants]octant {
	var octants [numOctants]octant
	for i, dirs := range octantDirections {
		octants[i] = newOctant(dirs[0], dirs[1])
	}
	return octants
}
