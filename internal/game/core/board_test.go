package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small board", 5, 5},
		{"rectangular board", 10, 20},
		{"large board", 100, 100},
		{"minimum board", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewBoard(tt.width, tt.height)

			assert.Equal(t, tt.width, board.Width())
			assert.Equal(t, tt.height, board.Height())
			assert.Len(t, board.T, tt.width*tt.height)

			for i, tile := range board.T {
				assert.Equal(t, TileFloor, tile.Type, "tile %d should be floor", i)
				assert.Zero(t, tile.OpacityTotal(), "tile %d should be transparent", i)
			}
		})
	}
}

func TestBoard_IdxXY(t *testing.T) {
	board := NewBoard(5, 4)
	for idx := range board.T {
		x, y := board.XY(idx)
		assert.Equal(t, idx, board.Idx(x, y))
	}
}

func TestTile_IsPassable(t *testing.T) {
	tests := []struct {
		tile     Tile
		passable bool
	}{
		{Tile{Type: TileFloor}, true},
		{Tile{Type: TileFoliage, Opacity: 1}, true},
		{Tile{Type: TileRubble, Occupants: []Occupant{{ID: 1, Opacity: 1}}}, true},
		{Tile{Type: TileDoorOpen}, true},
		{Tile{Type: TileWall, Opacity: 1}, false},
		{Tile{Type: TileWall, Opacity: 0.2}, false},
		{Tile{Type: TileDoorClosed, Opacity: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.tile.Type.String(), func(t *testing.T) {
			assert.Equal(t, tt.passable, tt.tile.IsPassable(), "opacity %v", tt.tile.OpacityTotal())
			assert.Equal(t, !tt.passable, tt.tile.Type.BlocksMovement())
		})
	}
}

func TestBoard_Get(t *testing.T) {
	board := NewBoard(3, 3)
	require.NoError(t, board.SetTile(Coordinate{1, 2}, TileWall, 1))

	tile, ok := board.Get(Coordinate{1, 2})
	require.True(t, ok)
	assert.Equal(t, TileWall, tile.Type)
	assert.True(t, tile.IsOpaque())

	for _, c := range []Coordinate{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		_, ok := board.Get(c)
		assert.False(t, ok, "%s should be off the board", c)
		assert.Nil(t, board.GetTile(c.X, c.Y))
	}
}

func TestBoard_SetTileErrors(t *testing.T) {
	board := NewBoard(3, 3)

	err := board.SetTile(Coordinate{5, 5}, TileWall, 1)
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))

	err = board.SetTile(Coordinate{1, 1}, TileFoliage, 1.5)
	assert.True(t, errors.Is(err, ErrInvalidOpacity))
}

func TestTile_OpacityTotal(t *testing.T) {
	tests := []struct {
		name     string
		tile     Tile
		expected float64
	}{
		{"floor", Tile{}, 0},
		{"foliage", Tile{Type: TileFoliage, Opacity: 0.25}, 0.25},
		{"foliage with creature", Tile{Type: TileFoliage, Opacity: 0.25, Occupants: []Occupant{{ID: 1, Opacity: 0.5}}}, 0.75},
		{"capped", Tile{Opacity: 0.75, Occupants: []Occupant{{ID: 1, Opacity: 0.5}}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.tile.OpacityTotal(), 1e-12)
		})
	}
}

func TestTile_EqualAndClone(t *testing.T) {
	a := Tile{Type: TileRubble, Opacity: 0.2, Occupants: []Occupant{{ID: 4, Kind: OccupantCreature}}}
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Occupants[0].ID = 5
	assert.False(t, a.Equal(b))
	assert.Equal(t, uint64(4), a.Occupants[0].ID, "clone must not share occupants")
}

func TestBoard_Occupants(t *testing.T) {
	board := NewBoard(4, 4)
	from := Coordinate{0, 0}
	to := Coordinate{3, 3}

	require.NoError(t, board.AddOccupant(from, Occupant{ID: 7, Kind: OccupantCreature, Opacity: 0.3}))
	assert.InDelta(t, 0.3, board.GetTile(0, 0).OpacityTotal(), 1e-12)

	require.NoError(t, board.MoveOccupant(from, to, 7))
	assert.Empty(t, board.GetTile(0, 0).Occupants)
	assert.Len(t, board.GetTile(3, 3).Occupants, 1)

	_, err := board.RemoveOccupant(from, 7)
	assert.True(t, errors.Is(err, ErrUnknownOccupant))

	err = board.MoveOccupant(to, Coordinate{9, 9}, 7)
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
	assert.Len(t, board.GetTile(3, 3).Occupants, 1, "failed move must leave occupant in place")
}

func TestParseTileType(t *testing.T) {
	for tt := TileFloor; tt <= TileDoorClosed; tt++ {
		parsed, err := ParseTileType(tt.String())
		require.NoError(t, err)
		assert.Equal(t, tt, parsed)
	}
	_, err := ParseTileType("lava")
	assert.Error(t, err)
}
