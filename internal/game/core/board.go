package core

import (
	"fmt"
	"slices"
)

// TileType is the terrain of a single cell
type TileType int

const (
	TileFloor TileType = iota
	TileWall
	TileFoliage
	TileRubble
	TileDoorOpen
	TileDoorClosed
)

func (t TileType) String() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileFoliage:
		return "foliage"
	case TileRubble:
		return "rubble"
	case TileDoorOpen:
		return "door_open"
	case TileDoorClosed:
		return "door_closed"
	default:
		return fmt.Sprintf("tile(%d)", int(t))
	}
}

// ParseTileType is the inverse of TileType.String
func ParseTileType(s string) (TileType, error) {
	for t := TileFloor; t <= TileDoorClosed; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tile type %q", s)
}

// Symbol returns the single character used when printing the board
func (t TileType) Symbol() string {
	switch t {
	case TileWall:
		return "#"
	case TileFoliage:
		return "\""
	case TileRubble:
		return ","
	case TileDoorOpen:
		return "'"
	case TileDoorClosed:
		return "+"
	default:
		return "."
	}
}

// OccupantKind classifies entities standing on a tile
type OccupantKind int

const (
	OccupantObserver OccupantKind = iota
	OccupantCreature
	OccupantObject
)

// Occupant is an entity standing on a tile. Occupants may add opacity
// (a boulder, a thick cloud) on top of the terrain.
type Occupant struct {
	ID      uint64
	Kind    OccupantKind
	Opacity float64
}

// Tile represents a single cell on the map.
// Opacity is the terrain opacity in [0,1]; 1 blocks sight entirely.
type Tile struct {
	Type      TileType
	Opacity   float64
	Occupants []Occupant
}

// OpacityTotal returns the combined opacity of terrain and occupants, capped at 1
func (t Tile) OpacityTotal() float64 {
	total := t.Opacity
	for _, o := range t.Occupants {
		total += o.Opacity
	}
	if total > 1 {
		return 1
	}
	return total
}

// IsOpaque reports whether the tile blocks sight completely
func (t Tile) IsOpaque() bool { return t.OpacityTotal() >= 1 }

// BlocksMovement reports whether nothing may stand on terrain of this type
func (t TileType) BlocksMovement() bool {
	return t == TileWall || t == TileDoorClosed
}

// IsPassable reports whether an observer may stand on the tile. It depends
// on the terrain type only, whatever opacity that terrain is configured with.
func (t Tile) IsPassable() bool { return !t.Type.BlocksMovement() }

// Equal compares terrain and occupants
func (t Tile) Equal(other Tile) bool {
	return t.Type == other.Type &&
		t.Opacity == other.Opacity &&
		slices.Equal(t.Occupants, other.Occupants)
}

// Clone returns a copy that does not share the occupant slice
func (t Tile) Clone() Tile {
	t.Occupants = slices.Clone(t.Occupants)
	return t
}

type Board struct {
	W, H int
	T    []Tile // length = W*H (row‑major)
}

func NewBoard(w, h int) *Board {
	// All tiles start as transparent floor
	return &Board{W: w, H: h, T: make([]Tile, w*h)}
}

func (b *Board) Idx(x, y int) int      { return y*b.W + x }
func (b *Board) XY(idx int) (int, int) { return idx % b.W, idx / b.W }
func (b *Board) Width() int            { return b.W }
func (b *Board) Height() int           { return b.H }

// InBounds checks if coordinates are within board boundaries
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// GetTile safely returns a tile pointer if coordinates are valid, nil otherwise
func (b *Board) GetTile(x, y int) *Tile {
	if !b.InBounds(x, y) {
		return nil
	}
	return &b.T[b.Idx(x, y)]
}

// Get returns the tile at c by value, or false if c is off the board
func (b *Board) Get(c Coordinate) (Tile, bool) {
	t := b.GetTile(c.X, c.Y)
	if t == nil {
		return Tile{}, false
	}
	return *t, true
}

// SetTile replaces the terrain at c, keeping its occupants
func (b *Board) SetTile(c Coordinate, tt TileType, opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return fmt.Errorf("tile %s: %w", c, ErrInvalidOpacity)
	}
	t := b.GetTile(c.X, c.Y)
	if t == nil {
		return fmt.Errorf("tile %s: %w", c, ErrInvalidCoordinates)
	}
	t.Type = tt
	t.Opacity = opacity
	return nil
}

// AddOccupant places an occupant on the tile at c
func (b *Board) AddOccupant(c Coordinate, o Occupant) error {
	if o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("occupant %d: %w", o.ID, ErrInvalidOpacity)
	}
	t := b.GetTile(c.X, c.Y)
	if t == nil {
		return fmt.Errorf("occupant %d at %s: %w", o.ID, c, ErrInvalidCoordinates)
	}
	t.Occupants = append(t.Occupants, o)
	return nil
}

// RemoveOccupant removes the occupant with the given ID from the tile at c
func (b *Board) RemoveOccupant(c Coordinate, id uint64) (Occupant, error) {
	t := b.GetTile(c.X, c.Y)
	if t == nil {
		return Occupant{}, fmt.Errorf("occupant %d at %s: %w", id, c, ErrInvalidCoordinates)
	}
	i := slices.IndexFunc(t.Occupants, func(o Occupant) bool { return o.ID == id })
	if i < 0 {
		return Occupant{}, fmt.Errorf("occupant %d at %s: %w", id, c, ErrUnknownOccupant)
	}
	o := t.Occupants[i]
	t.Occupants = slices.Delete(t.Occupants, i, i+1)
	return o, nil
}

// MoveOccupant moves an occupant between two tiles
func (b *Board) MoveOccupant(from, to Coordinate, id uint64) error {
	if !b.InBounds(to.X, to.Y) {
		return fmt.Errorf("move occupant %d to %s: %w", id, to, ErrInvalidCoordinates)
	}
	o, err := b.RemoveOccupant(from, id)
	if err != nil {
		return err
	}
	return b.AddOccupant(to, o)
}
