package testutil

import (
	"fmt"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
)

// OpenBoard creates a fully transparent board
func OpenBoard(width, height int) *core.Board {
	return core.NewBoard(width, height)
}

// BoardFromRows builds a board from text rows.
//
//	'.'      floor, opacity 0
//	'#'      wall, opacity 1
//	'+'      closed door, opacity 1
//	'1'-'9'  foliage with opacity n/10
func BoardFromRows(rows ...string) *core.Board {
	if len(rows) == 0 {
		panic("testutil: BoardFromRows needs at least one row")
	}
	board := core.NewBoard(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != board.W {
			panic(fmt.Sprintf("testutil: row %d has width %d, want %d", y, len(row), board.W))
		}
		for x, ch := range row {
			c := core.Coordinate{X: x, Y: y}
			var err error
			switch {
			case ch == '.':
			case ch == '#':
				err = board.SetTile(c, core.TileWall, 1)
			case ch == '+':
				err = board.SetTile(c, core.TileDoorClosed, 1)
			case ch >= '1' && ch <= '9':
				err = board.SetTile(c, core.TileFoliage, float64(ch-'0')/10)
			default:
				err = fmt.Errorf("unknown symbol %q", ch)
			}
			if err != nil {
				panic(fmt.Sprintf("testutil: %v", err))
			}
		}
	}
	return board
}

// RotateBoard returns a copy of b rotated a quarter turn clockwise,
// along with a function mapping coordinates of b into the rotated board.
func RotateBoard(b *core.Board) (*core.Board, func(core.Coordinate) core.Coordinate) {
	rotate := func(c core.Coordinate) core.Coordinate {
		return core.Coordinate{X: b.H - 1 - c.Y, Y: c.X}
	}
	out := core.NewBoard(b.H, b.W)
	for idx, t := range b.T {
		x, y := b.XY(idx)
		r := rotate(core.Coordinate{X: x, Y: y})
		out.T[out.Idx(r.X, r.Y)] = t.Clone()
	}
	return out, rotate
}
