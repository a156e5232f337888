package shadowcast

import (
	"fmt"
	"math"
)

// roundType converts a lateral position derived from a slope into a cell index.
type roundType int

const (
	// roundFloor rounds down to the nearest integer.
	roundFloor roundType = iota
	// roundExclusiveFloor rounds down to the nearest integer, unless the
	// value is already an integer, in which case it subtracts 1.
	roundExclusiveFloor
)

func (r roundType) round(x float64) int {
	switch r {
	case roundFloor:
		return int(math.Floor(x))
	case roundExclusiveFloor:
		f := math.Floor(x)
		if f == x {
			return int(f) - 1
		}
		return int(f)
	}
	panic(fmt.Sprintf("shadowcast: invalid rounding rule %d", int(r)))
}

func (r roundType) String() string {
	switch r {
	case roundFloor:
		return "floor"
	case roundExclusiveFloor:
		return "exclusive_floor"
	default:
		return fmt.Sprintf("round(%d)", int(r))
	}
}
