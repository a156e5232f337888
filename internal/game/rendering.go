package game

import (
	"strings"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

const (
	ObserverSymbol = "@"
	UnknownSymbol  = " "
)

// RenderOptions controls how an observer's view is drawn
type RenderOptions struct {
	// Color wraps cells in ANSI color codes
	Color bool
	// ShowVisibility draws visible cells as a digit 0-9 scaled from their visibility
	ShowVisibility bool
}

// Render draws the board as the observer with the given ID knows it. Cells
// seen this step show the live board, cells seen earlier show what was
// remembered, and cells never seen are blank.
func (e *Engine) Render(id string, opts RenderOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	self, err := e.observer(id)
	if err != nil {
		return "", err
	}
	grid := self.knowledge
	width, height := e.board.W, e.board.H

	var sb strings.Builder
	// Each cell is a symbol, a space and up to ~10 bytes of color codes
	sb.Grow((width*12 + 4) * (height + 3))

	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		sb.WriteString(core.IntToStringFixedWidth(x%100, 2))
	}
	sb.WriteString("\n")

	for y := 0; y < height; y++ {
		sb.WriteString(core.IntToStringFixedWidth(y, 2))
		sb.WriteString(" ")
		for x := 0; x < width; x++ {
			c := core.Coordinate{X: x, Y: y}
			color, symbol := e.cellDisplay(self, c, opts)
			if opts.Color && color != "" {
				sb.WriteString(color)
				sb.WriteString(symbol)
				sb.WriteString(ColorReset)
			} else {
				sb.WriteString(symbol)
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString("@=observer #=wall \"=foliage ,=rubble '=open door +=closed door\n")
	sb.WriteString("step ")
	sb.WriteString(core.IntToStringFixedWidth(int(e.step), 1))
	sb.WriteString(", known ")
	sb.WriteString(core.IntToStringFixedWidth(grid.KnownCount(), 1))
	sb.WriteString("/")
	sb.WriteString(core.IntToStringFixedWidth(width*height, 1))
	sb.WriteString("\n")

	return sb.String(), nil
}

// cellDisplay returns the color and single-character symbol for c
func (e *Engine) cellDisplay(self *Observer, c core.Coordinate, opts RenderOptions) (string, string) {
	cell, ok := self.knowledge.Get(c)
	if !ok || !cell.Known {
		return "", UnknownSymbol
	}

	if !self.knowledge.IsVisible(c) {
		return ColorGray, cell.Tile.Type.Symbol()
	}

	tile, _ := e.board.Get(c)
	if c == self.Position {
		return ColorRed, ObserverSymbol
	}
	for _, o := range tile.Occupants {
		if o.Kind == core.OccupantObserver {
			return ColorBlue, ObserverSymbol
		}
	}
	if opts.ShowVisibility {
		level := int(core.ClampUnit(cell.Visibility) * 9)
		return visibilityColor(cell.Visibility), core.IntToStringFixedWidth(level, 1)
	}
	return tileColor(tile.Type), tile.Type.Symbol()
}

func tileColor(t core.TileType) string {
	switch t {
	case core.TileWall:
		return ColorWhite
	case core.TileFoliage:
		return ColorGreen
	case core.TileRubble:
		return ColorYellow
	case core.TileDoorOpen, core.TileDoorClosed:
		return ColorCyan
	default:
		return ""
	}
}

func visibilityColor(v float64) string {
	switch {
	case v >= 0.75:
		return ColorWhite
	case v > 0:
		return ColorYellow
	default:
		return ColorGray
	}
}
