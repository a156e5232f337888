package shadowcast

import (
	"fmt"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
)

// octantArgs bundles everything that stays fixed while one octant is scanned
type octantArgs[T Cell, C any] struct {
	octant          *octant
	limits          limits
	grid            Grid[T]
	eye             core.Coordinate
	distance        uint32
	distanceSquared uint64
	ctx             C
	sink            KnowledgeSink[T, C]
}

// scanRow visits every cell of one row, reports those within range to the
// sink, and pushes the wedges the row splits into for the next depth.
func scanRow[T Cell, C any](stack *frameStack, args *octantArgs[T, C], sc scan, f frame) (Metadata, error) {
	o := args.octant
	coord := o.coordinate(sc.depthIdx, 0)

	var metadata Metadata
	first := true
	previousOpaque := false
	previousVisibility := -1.0
	startSlope := f.startSlope()

	for idx := sc.startLateral; sc.contains(idx, o.lateralStep); idx += o.lateralStep {
		last := idx == sc.endLateral
		o.lateralAxis.set(&coord, idx)

		cell, ok := args.grid.Get(coord)
		if !ok {
			continue
		}

		visibility := max(f.visibility-cell.OpacityTotal(), 0)
		opaque := visibility == 0

		if uint64(coord.DistanceSquared(args.eye)) < args.distanceSquared {
			m, err := args.sink.UpdateCell(coord, cell, visibility, args.ctx)
			if err != nil {
				return metadata, err
			}
			metadata |= m
		}

		if !first && visibility != previousVisibility {
			corner := o.opacityIncreaseCorner
			if visibility > previousVisibility {
				corner = o.opacityDecreaseCorner
			}

			slope := o.slope(args.limits.eyeCentre, cellCorner(coord, corner))
			if slope < 0 || slope > 1 {
				panic(fmt.Sprintf("shadowcast: transition slope %g at %s outside octant", slope, coord))
			}

			if !previousOpaque {
				// The region just finished is not in shadow, so it gets
				// expanded at the next depth.
				stack.push(newFrame(f.depth+1, startSlope, slope, previousVisibility))
			}
			startSlope = slope
		}

		if last && !opaque {
			stack.push(newFrame(f.depth+1, startSlope, f.endSlope(), visibility))
		}

		previousOpaque = opaque
		previousVisibility = visibility
		first = false
	}

	return metadata, nil
}
