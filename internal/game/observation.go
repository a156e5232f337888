package game

import (
	"time"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/events"
	"github.com/mitchelldurbincs/fogcast/internal/game/knowledge"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

// discoveryRecorder forwards updates to a knowledge grid and keeps the
// coordinates that were seen for the first time.
type discoveryRecorder struct {
	grid       *knowledge.Grid
	discovered []core.Coordinate
}

var _ shadowcast.KnowledgeSink[core.Tile, knowledge.Context] = (*discoveryRecorder)(nil)

func (r *discoveryRecorder) SetTime(t uint64) { r.grid.SetTime(t) }

func (r *discoveryRecorder) UpdateCell(c core.Coordinate, tile core.Tile, visibility float64, ctx knowledge.Context) (shadowcast.Metadata, error) {
	m, err := r.grid.UpdateCell(c, tile, visibility, ctx)
	if err != nil {
		return m, err
	}
	if m.Has(shadowcast.NewlySeen) {
		r.discovered = append(r.discovered, c)
	}
	return m, nil
}

// observe runs one observation for o at the current step. Callers hold e.mu.
func (e *Engine) observe(o *Observer) (shadowcast.Metadata, error) {
	start := time.Now()
	recorder := &discoveryRecorder{grid: o.knowledge}
	ctx := knowledge.Context{RememberContent: e.config.RememberContent}

	changes, err := shadowcast.Observe[core.Tile](e.env, o.Position, e.board, o.Distance, ctx, e.step, recorder)
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("observer_id", o.ID).
			Uint64("step", e.step).
			Msg("Observation failed")
		return changes, err
	}

	duration := time.Since(start)
	visible := len(o.knowledge.VisibleCoordinates())
	known := o.knowledge.KnownCount()

	e.logger.Debug().
		Str("observer_id", o.ID).
		Uint64("step", e.step).
		Stringer("changes", changes).
		Int("visible", visible).
		Int("discovered", len(recorder.discovered)).
		Dur("duration", duration).
		Msg("Observation completed")

	e.eventBus.Publish(events.NewObservationCompletedEvent(e.worldID, o.ID, e.step, changes, visible, known, duration))
	if len(recorder.discovered) > 0 {
		e.eventBus.Publish(events.NewCellsDiscoveredEvent(e.worldID, o.ID, e.step, recorder.discovered))
	}

	return changes, nil
}
