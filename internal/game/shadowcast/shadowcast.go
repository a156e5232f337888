// Package shadowcast computes field of view on a grid whose cells may be
// partially transparent.
//
// Observation runs recursive shadowcasting over eight octants around the
// eye. Each cell's opacity is subtracted from the visibility inherited along
// the line of sight, so thin cover dims what lies behind it instead of hiding
// it outright. Every cell found within range is reported to a caller-owned
// KnowledgeSink.
package shadowcast

import "github.com/mitchelldurbincs/fogcast/internal/game/core"

// Cell is the per-cell content a Grid yields. The engine only reads its
// opacity and passes the value through to the sink untouched.
type Cell interface {
	// OpacityTotal returns the combined opacity of the cell, in [0,1].
	OpacityTotal() float64
}

// Grid is the opacity source an observation reads from
type Grid[T Cell] interface {
	Width() int
	Height() int
	// Get returns the cell at c, or false if there is no data there.
	Get(c core.Coordinate) (T, bool)
}

// KnowledgeSink receives the cells an observer can see.
//
// UpdateCell may be called more than once for the same coordinate in one
// observation, since cells on an octant boundary are scanned by both
// octants. Repeated calls with the same arguments must yield the same result.
type KnowledgeSink[T Cell, C any] interface {
	SetTime(t uint64)
	UpdateCell(c core.Coordinate, cell T, visibility float64, ctx C) (Metadata, error)
}

// Env holds the octant table and the frame stack reused across observations.
// An Env must not be shared between goroutines; separate Envs are independent.
type Env struct {
	octants [numOctants]octant
	stack   frameStack
}

// NewEnv creates a reusable shadowcasting environment
func NewEnv() *Env {
	return &Env{
		octants: buildOctants(),
		stack:   make(frameStack, 0, 64),
	}
}

// Observe reports to sink every cell visible from eye within distance.
//
// The sink's clock is set to time first, then the eye's own cell is reported,
// then each octant is scanned in compass order. The merged metadata of all
// UpdateCell calls is returned. An error from the sink stops the observation
// and is returned as is.
func Observe[T Cell, C any](env *Env, eye core.Coordinate, grid Grid[T], distance uint32, ctx C, time uint64, sink KnowledgeSink[T, C]) (Metadata, error) {
	sink.SetTime(time)

	var metadata Metadata
	if cell, ok := grid.Get(eye); ok {
		m, err := sink.UpdateCell(eye, cell, 1, ctx)
		if err != nil {
			return metadata, err
		}
		metadata = m
	}

	for i := range env.octants {
		args := &octantArgs[T, C]{
			octant:          &env.octants[i],
			limits:          newLimits(eye, grid.Width(), grid.Height(), &env.octants[i]),
			grid:            grid,
			eye:             eye,
			distance:        distance,
			distanceSquared: uint64(distance) * uint64(distance),
			ctx:             ctx,
			sink:            sink,
		}
		m, err := observeOctant(&env.stack, args)
		metadata |= m
		if err != nil {
			return metadata, err
		}
	}

	return metadata, nil
}

func observeOctant[T Cell, C any](stack *frameStack, args *octantArgs[T, C]) (Metadata, error) {
	// A previous observation that failed part way may have left frames behind
	stack.reset()
	stack.push(newFrame(1, 0, 1, 1))

	var metadata Metadata
	for {
		f, ok := stack.pop()
		if !ok {
			return metadata, nil
		}
		sc, ok := newScan(&args.limits, &f, args.octant, args.distance)
		if !ok {
			continue
		}
		m, err := scanRow(stack, args, sc, f)
		metadata |= m
		if err != nil {
			stack.reset()
			return metadata, err
		}
	}
}
