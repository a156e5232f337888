// Package knowledge stores what a single observer has learned about the
// board: which cells it has seen, when, how clearly, and what they held.
package knowledge

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

// Cell is one remembered board cell
type Cell struct {
	// Known is set once the cell has been seen at least once
	Known bool
	// LastSeen is the time step the cell was most recently seen in
	LastSeen uint64
	// Visibility is the best visibility the cell was seen with during LastSeen
	Visibility float64
	// Tile is the content seen at LastSeen, if content is remembered
	Tile core.Tile
}

// Context is passed through each observation to every UpdateCell call
type Context struct {
	// RememberContent stores the observed tile alongside the sighting
	RememberContent bool
}

// Grid is a KnowledgeSink holding one Cell per board cell
type Grid struct {
	width, height int
	cells         []Cell
	time          uint64
	logger        zerolog.Logger
}

// Ensure Grid satisfies the observation sink contract
var _ shadowcast.KnowledgeSink[core.Tile, Context] = (*Grid)(nil)

// NewGrid creates an empty knowledge grid matching a board of the given size
func NewGrid(width, height int, logger zerolog.Logger) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		logger: logger.With().Str("component", "knowledge").Logger(),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Time returns the current time step
func (g *Grid) Time() uint64 { return g.time }

// SetTime starts a new time step. Cells seen in earlier steps stay known but
// are no longer visible.
func (g *Grid) SetTime(t uint64) {
	if t != g.time {
		g.logger.Debug().
			Uint64("from", g.time).
			Uint64("to", t).
			Msg("Knowledge time advanced")
	}
	g.time = t
}

// UpdateCell records that c was seen holding tile with the given visibility.
//
// Calls are idempotent within a time step: the stored visibility is the
// maximum reported, and repeating a call reports no further change.
func (g *Grid) UpdateCell(c core.Coordinate, tile core.Tile, visibility float64, ctx Context) (shadowcast.Metadata, error) {
	if !c.IsValid(g.width, g.height) {
		return 0, fmt.Errorf("knowledge update at %s: %w", c, core.ErrInvalidCoordinates)
	}
	if visibility < 0 || visibility > 1 {
		return 0, fmt.Errorf("knowledge update at %s with visibility %g: %w", c, visibility, core.ErrInvalidOpacity)
	}

	cell := &g.cells[c.ToIndex(g.width)]
	var metadata shadowcast.Metadata

	switch {
	case !cell.Known:
		metadata |= shadowcast.NewlySeen
		cell.Known = true
		cell.Visibility = visibility
	case cell.LastSeen != g.time:
		if visibility != cell.Visibility {
			metadata |= shadowcast.VisibilityChanged
		}
		cell.Visibility = visibility
	case visibility > cell.Visibility:
		metadata |= shadowcast.VisibilityChanged
		cell.Visibility = visibility
	}
	cell.LastSeen = g.time

	if ctx.RememberContent {
		if metadata&shadowcast.NewlySeen == 0 && !cell.Tile.Equal(tile) {
			metadata |= shadowcast.ContentChanged
		}
		if !cell.Tile.Equal(tile) {
			cell.Tile = tile.Clone()
		}
	}

	return metadata, nil
}

// Get returns the remembered cell at c
func (g *Grid) Get(c core.Coordinate) (Cell, bool) {
	if !c.IsValid(g.width, g.height) {
		return Cell{}, false
	}
	return g.cells[c.ToIndex(g.width)], true
}

// IsVisible reports whether c was seen during the current time step
func (g *Grid) IsVisible(c core.Coordinate) bool {
	cell, ok := g.Get(c)
	return ok && cell.Known && cell.LastSeen == g.time
}

// VisibleCoordinates returns every cell seen during the current time step in
// row-major order.
func (g *Grid) VisibleCoordinates() []core.Coordinate {
	var out []core.Coordinate
	for idx, cell := range g.cells {
		if cell.Known && cell.LastSeen == g.time {
			out = append(out, core.FromIndex(idx, g.width))
		}
	}
	return out
}

// KnownCount returns how many cells have ever been seen
func (g *Grid) KnownCount() int {
	n := 0
	for _, cell := range g.cells {
		if cell.Known {
			n++
		}
	}
	return n
}
