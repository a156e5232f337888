package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// AssertPanic asserts that the given function panics
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
}

// Update is one recorded KnowledgeSink.UpdateCell call
type Update struct {
	Coord      core.Coordinate
	Visibility float64
}

// RecordingSink is a KnowledgeSink that remembers every update it receives.
// Err, when set, is returned from UpdateCell once FailAfter calls have succeeded.
type RecordingSink struct {
	Time      uint64
	Updates   []Update
	Err       error
	FailAfter int

	seen map[core.Coordinate]float64
}

// NewRecordingSink creates an empty recording sink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{seen: make(map[core.Coordinate]float64)}
}

func (s *RecordingSink) SetTime(t uint64) { s.Time = t }

func (s *RecordingSink) UpdateCell(c core.Coordinate, _ core.Tile, visibility float64, _ struct{}) (shadowcast.Metadata, error) {
	if s.Err != nil && len(s.Updates) >= s.FailAfter {
		return 0, s.Err
	}
	s.Updates = append(s.Updates, Update{Coord: c, Visibility: visibility})

	prev, ok := s.seen[c]
	switch {
	case !ok:
		s.seen[c] = visibility
		return shadowcast.NewlySeen, nil
	case visibility > prev:
		s.seen[c] = visibility
		return shadowcast.VisibilityChanged, nil
	}
	return 0, nil
}

// Visible returns every reported coordinate with the best visibility it was reported at
func (s *RecordingSink) Visible() map[core.Coordinate]float64 {
	out := make(map[core.Coordinate]float64, len(s.seen))
	for c, v := range s.seen {
		out[c] = v
	}
	return out
}

// Seen reports whether c was reported at least once
func (s *RecordingSink) Seen(c core.Coordinate) bool {
	_, ok := s.seen[c]
	return ok
}

// Count returns how many times c was reported
func (s *RecordingSink) Count(c core.Coordinate) int {
	n := 0
	for _, u := range s.Updates {
		if u.Coord == c {
			n++
		}
	}
	return n
}
