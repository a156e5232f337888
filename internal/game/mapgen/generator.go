package mapgen

import (
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
)

// TerrainOpacity maps each terrain type to the opacity it is generated with
type TerrainOpacity struct {
	Floor      float64
	Wall       float64
	Foliage    float64
	Rubble     float64
	DoorClosed float64
	DoorOpen   float64
}

// DefaultTerrainOpacity returns the standard terrain opacities
func DefaultTerrainOpacity() TerrainOpacity {
	return TerrainOpacity{
		Floor:      0,
		Wall:       1,
		Foliage:    0.35,
		Rubble:     0.15,
		DoorClosed: 1,
		DoorOpen:   0,
	}
}

// For returns the opacity of a terrain type
func (t TerrainOpacity) For(tt core.TileType) float64 {
	switch tt {
	case core.TileWall:
		return t.Wall
	case core.TileFoliage:
		return t.Foliage
	case core.TileRubble:
		return t.Rubble
	case core.TileDoorClosed:
		return t.DoorClosed
	case core.TileDoorOpen:
		return t.DoorOpen
	default:
		return t.Floor
	}
}

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width         int
	Height        int
	WallVeinRatio int // 1 wall vein per N tiles, 0 disables
	MinVeinLength int
	MaxVeinLength int
	DoorRatio     int // 1 in N veins gets a door, 0 disables
	FoliageRatio  int // 1 foliage patch per N tiles, 0 disables
	RubbleRatio   int // 1 rubble patch per N tiles, 0 disables
	PatchRadius   int
	Opacity       TerrainOpacity
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h int) MapConfig {
	return MapConfig{
		Width:         w,
		Height:        h,
		WallVeinRatio: 50,
		MinVeinLength: 3,
		MaxVeinLength: max(w/4, 3),
		DoorRatio:     3,
		FoliageRatio:  80,
		RubbleRatio:   120,
		PatchRadius:   2,
		Opacity:       DefaultTerrainOpacity(),
	}
}

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
		logger: log.With().Str("component", "mapgen").Logger(),
	}
}

// GenerateMap creates a new board with walls, doors and patches of cover
func (g *Generator) GenerateMap() *core.Board {
	board := core.NewBoard(g.config.Width, g.config.Height)
	g.fill(board, core.TileFloor)

	veins := g.placeWallVeins(board)
	doors := g.placeDoors(board, veins)
	foliage := g.placePatches(board, core.TileFoliage, g.config.FoliageRatio)
	rubble := g.placePatches(board, core.TileRubble, g.config.RubbleRatio)

	g.logger.Debug().
		Int("width", board.W).
		Int("height", board.H).
		Int("veins", len(veins)).
		Int("doors", doors).
		Int("foliage_tiles", foliage).
		Int("rubble_tiles", rubble).
		Msg("Map generated")

	return board
}

func (g *Generator) fill(b *core.Board, tt core.TileType) {
	for i := range b.T {
		b.T[i].Type = tt
		b.T[i].Opacity = g.config.Opacity.For(tt)
	}
}

func (g *Generator) set(b *core.Board, c core.Coordinate, tt core.TileType) {
	t := b.GetTile(c.X, c.Y)
	t.Type = tt
	t.Opacity = g.config.Opacity.For(tt)
}

// placeWallVeins draws random walks of wall that never double straight back.
// Each returned vein lists its distinct cells in the order they were walled.
func (g *Generator) placeWallVeins(b *core.Board) [][]core.Coordinate {
	if g.config.WallVeinRatio <= 0 || g.config.MinVeinLength <= 0 {
		return nil
	}
	count := (b.W * b.H) / g.config.WallVeinRatio
	veins := make([][]core.Coordinate, 0, count)

	for i := 0; i < count; i++ {
		length := g.config.MinVeinLength
		if span := g.config.MaxVeinLength - g.config.MinVeinLength; span > 0 {
			length += g.rng.Intn(span + 1)
		}

		pos := core.Coordinate{X: g.rng.Intn(b.W), Y: g.rng.Intn(b.H)}
		vein := []core.Coordinate{pos}
		g.set(b, pos, core.TileWall)

		last := core.Direction(-1)
		for step := 1; step < length; step++ {
			next, dir, ok := g.stepVein(b, pos, last)
			if !ok {
				break
			}
			if b.GetTile(next.X, next.Y).Type != core.TileWall {
				vein = append(vein, next)
				g.set(b, next, core.TileWall)
			}
			pos, last = next, dir
		}
		veins = append(veins, vein)
	}
	return veins
}

func (g *Generator) stepVein(b *core.Board, pos core.Coordinate, last core.Direction) (core.Coordinate, core.Direction, bool) {
	offset := g.rng.Intn(len(core.Directions))
	for i := range core.Directions {
		dir := core.Directions[(offset+i)%len(core.Directions)]
		if last >= 0 && dir == last.Opposite() {
			continue
		}
		next := pos.Move(dir)
		if b.InBounds(next.X, next.Y) {
			return next, dir, true
		}
	}
	return pos, last, false
}

// placeDoors cuts a door into the middle of some veins, half of them left open
func (g *Generator) placeDoors(b *core.Board, veins [][]core.Coordinate) int {
	if g.config.DoorRatio <= 0 {
		return 0
	}
	doors := 0
	for _, vein := range veins {
		if len(vein) < 3 || g.rng.Intn(g.config.DoorRatio) != 0 {
			continue
		}
		door := core.TileDoorClosed
		if g.rng.Intn(2) == 0 {
			door = core.TileDoorOpen
		}
		g.set(b, vein[len(vein)/2], door)
		doors++
	}
	return doors
}

// placePatches scatters roughly circular clumps of tt over open floor
func (g *Generator) placePatches(b *core.Board, tt core.TileType, ratio int) int {
	if ratio <= 0 {
		return 0
	}
	count := (b.W * b.H) / ratio
	r := max(g.config.PatchRadius, 0)
	placed := 0

	for i := 0; i < count; i++ {
		centre := core.Coordinate{X: g.rng.Intn(b.W), Y: g.rng.Intn(b.H)}
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				c := centre.Add(core.Coordinate{X: dx, Y: dy})
				if dx*dx+dy*dy > r*r || !b.InBounds(c.X, c.Y) {
					continue
				}
				if b.GetTile(c.X, c.Y).Type != core.TileFloor || g.rng.Float64() < 0.4 {
					continue
				}
				g.set(b, c, tt)
				placed++
			}
		}
	}
	return placed
}

// RandomOpenCoordinate picks a uniformly random cell an observer may stand on
func RandomOpenCoordinate(b *core.Board, rng *rand.Rand) (core.Coordinate, bool) {
	open := make([]core.Coordinate, 0, len(b.T))
	for idx, t := range b.T {
		if t.IsPassable() {
			open = append(open, core.FromIndex(idx, b.W))
		}
	}
	if len(open) == 0 {
		return core.Coordinate{}, false
	}
	return open[rng.Intn(len(open))], true
}
