package game

import (
	"errors"
	"math/rand"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

// Wander moves an observer one cell in a random passable cardinal direction.
// It reports false, with no error, when every direction is blocked. The step
// is taken from the observer's position at the time of the call, even when
// other goroutines move it concurrently.
func (e *Engine) Wander(id string, rng *rand.Rand) (shadowcast.Metadata, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.observer(id)
	if err != nil {
		return 0, false, err
	}

	dirs := core.Directions
	rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	for _, d := range dirs {
		m, err := e.moveObserver(o, o.Position.Move(d))
		switch {
		case err == nil:
			return m, true, nil
		case errors.Is(err, core.ErrBlocked), errors.Is(err, core.ErrInvalidCoordinates):
			continue
		default:
			return 0, false, err
		}
	}
	return 0, false, nil
}
