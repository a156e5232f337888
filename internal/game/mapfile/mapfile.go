// Package mapfile reads and writes hand-authored maps as YAML.
//
// A map document looks like:
//
//	name: courtyard
//	legend:
//	  "~": {type: foliage, opacity: 0.6}
//	rows:
//	  - "#######"
//	  - "#..~~.#"
//	  - "#.@...#"
//	  - "#######"
//	observers:
//	  - {name: guard, x: 5, y: 1, distance: 6}
//
// The built-in symbols are those printed by core.TileType.Symbol, with
// opacities taken from the terrain table. '@' marks floor with an observer on
// it. Legend entries add symbols or override built-in ones.
package mapfile

import (
	"fmt"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/mapgen"
)

// ObserverSymbol marks an observer spawn on open floor
const ObserverSymbol = '@'

// LegendEntry describes the terrain a symbol stands for
type LegendEntry struct {
	Type    string   `yaml:"type"`
	Opacity *float64 `yaml:"opacity,omitempty"`
}

// ObserverSpawn is an observer placed by the map. A zero Distance means the
// caller's default view distance.
type ObserverSpawn struct {
	Name     string `yaml:"name"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Distance uint32 `yaml:"distance,omitempty"`
}

// Position returns the spawn location as a coordinate
func (s ObserverSpawn) Position() core.Coordinate {
	return core.Coordinate{X: s.X, Y: s.Y}
}

type document struct {
	Name      string                 `yaml:"name"`
	Legend    map[string]LegendEntry `yaml:"legend,omitempty"`
	Rows      []string               `yaml:"rows"`
	Observers []ObserverSpawn        `yaml:"observers,omitempty"`
}

// Map is a parsed map file
type Map struct {
	Name      string
	Board     *core.Board
	Observers []ObserverSpawn
}

type terrain struct {
	tt      core.TileType
	opacity float64
}

// Load reads and parses the map file at path
func Load(path string, opacity mapgen.TerrainOpacity) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	m, err := Parse(raw, opacity)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	log.Debug().
		Str("path", path).
		Str("name", m.Name).
		Int("width", m.Board.W).
		Int("height", m.Board.H).
		Int("observers", len(m.Observers)).
		Msg("Map file loaded")
	return m, nil
}

// Parse decodes a YAML map document
func Parse(raw []byte, opacity mapgen.TerrainOpacity) (*Map, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse map: %v: %w", err, core.ErrInvalidMap)
	}
	if len(doc.Rows) == 0 {
		return nil, fmt.Errorf("map has no rows: %w", core.ErrInvalidMap)
	}

	legend, err := buildLegend(doc.Legend, opacity)
	if err != nil {
		return nil, err
	}

	width := utf8.RuneCountInString(doc.Rows[0])
	if width == 0 {
		return nil, fmt.Errorf("map rows are empty: %w", core.ErrInvalidMap)
	}
	board := core.NewBoard(width, len(doc.Rows))
	var spawns []ObserverSpawn

	for y, row := range doc.Rows {
		if n := utf8.RuneCountInString(row); n != width {
			return nil, fmt.Errorf("row %d has width %d, want %d: %w", y, n, width, core.ErrInvalidMap)
		}
		x := 0
		for _, ch := range row {
			c := core.Coordinate{X: x, Y: y}
			x++

			if ch == ObserverSymbol {
				if _, overridden := legend[ch]; !overridden {
					t := board.GetTile(c.X, c.Y)
					t.Type, t.Opacity = core.TileFloor, opacity.Floor
					spawns = append(spawns, ObserverSpawn{Name: fmt.Sprintf("observer-%d", len(spawns)+1), X: c.X, Y: c.Y})
					continue
				}
			}

			tr, ok := legend[ch]
			if !ok {
				return nil, fmt.Errorf("unknown symbol %q at %s: %w", ch, c, core.ErrInvalidMap)
			}
			t := board.GetTile(c.X, c.Y)
			t.Type, t.Opacity = tr.tt, tr.opacity
		}
	}

	for _, s := range doc.Observers {
		t := board.GetTile(s.X, s.Y)
		if t == nil {
			return nil, fmt.Errorf("observer %q at %s is off the map: %w", s.Name, s.Position(), core.ErrInvalidMap)
		}
		if !t.IsPassable() {
			return nil, fmt.Errorf("observer %q at %s is inside %s: %w", s.Name, s.Position(), t.Type, core.ErrInvalidMap)
		}
		spawns = append(spawns, s)
	}

	return &Map{Name: doc.Name, Board: board, Observers: spawns}, nil
}

func buildLegend(entries map[string]LegendEntry, opacity mapgen.TerrainOpacity) (map[rune]terrain, error) {
	legend := make(map[rune]terrain)
	for tt := core.TileFloor; tt <= core.TileDoorClosed; tt++ {
		r, _ := utf8.DecodeRuneInString(tt.Symbol())
		legend[r] = terrain{tt: tt, opacity: opacity.For(tt)}
	}

	for sym, e := range entries {
		if utf8.RuneCountInString(sym) != 1 {
			return nil, fmt.Errorf("legend symbol %q must be a single character: %w", sym, core.ErrInvalidMap)
		}
		tt, err := core.ParseTileType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("legend symbol %q: %v: %w", sym, err, core.ErrInvalidMap)
		}
		o := opacity.For(tt)
		if e.Opacity != nil {
			o = *e.Opacity
		}
		if o < 0 || o > 1 {
			return nil, fmt.Errorf("legend symbol %q opacity %g: %w", sym, o, core.ErrInvalidOpacity)
		}
		r, _ := utf8.DecodeRuneInString(sym)
		legend[r] = terrain{tt: tt, opacity: o}
	}
	return legend, nil
}

// Marshal encodes a board and its observers as a map document. Terrain whose
// opacity differs from the terrain table is written with its own legend
// symbol, so Parse with the same table reproduces the board.
func Marshal(name string, b *core.Board, observers []ObserverSpawn, opacity mapgen.TerrainOpacity) ([]byte, error) {
	doc := document{Name: name, Observers: slices.Clone(observers)}

	custom := make(map[terrain]rune)
	next := 'a'
	rows := make([][]rune, b.H)
	for y := range rows {
		rows[y] = make([]rune, b.W)
		for x := range rows[y] {
			t := b.T[b.Idx(x, y)]
			if t.Opacity == opacity.For(t.Type) {
				rows[y][x], _ = utf8.DecodeRuneInString(t.Type.Symbol())
				continue
			}
			key := terrain{tt: t.Type, opacity: t.Opacity}
			sym, ok := custom[key]
			if !ok {
				if next > 'z' {
					return nil, fmt.Errorf("too many distinct terrains to encode: %w", core.ErrInvalidMap)
				}
				sym = next
				next++
				custom[key] = sym
				if doc.Legend == nil {
					doc.Legend = make(map[string]LegendEntry)
				}
				o := t.Opacity
				doc.Legend[string(sym)] = LegendEntry{Type: t.Type.String(), Opacity: &o}
			}
			rows[y][x] = sym
		}
	}

	doc.Rows = make([]string, b.H)
	for y, row := range rows {
		doc.Rows[y] = string(row)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}
	return out, nil
}
