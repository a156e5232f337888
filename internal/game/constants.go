package game

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogcast/internal/config"
	"github.com/mitchelldurbincs/fogcast/internal/game/mapgen"
)

// Field of view settings
func ViewDistance() uint32 {
	return uint32(config.Get().FOV.Distance)
}

func RememberContent() bool {
	return config.Get().FOV.RememberContent
}

// Terrain settings
func OccupantOpacity() float64 {
	return config.Get().Terrain.OccupantOpacity
}

func TerrainOpacity() mapgen.TerrainOpacity {
	t := config.Get().Terrain
	return mapgen.TerrainOpacity{
		Floor:      t.FloorOpacity,
		Wall:       t.WallOpacity,
		Foliage:    t.FoliageOpacity,
		Rubble:     t.RubbleOpacity,
		DoorClosed: t.DoorClosedOpacity,
		DoorOpen:   t.DoorOpenOpacity,
	}
}

// Map generation settings
func MapGenConfig(width, height int) mapgen.MapConfig {
	m := config.Get().Map
	mc := mapgen.DefaultMapConfig(width, height)
	mc.WallVeinRatio = m.WallVeins.Ratio
	mc.MinVeinLength = m.WallVeins.MinLength
	mc.MaxVeinLength = max(int(float64(width)*m.WallVeins.MaxLengthRatio), mc.MinVeinLength)
	mc.DoorRatio = m.DoorRatio
	mc.FoliageRatio = m.FoliageRatio
	mc.RubbleRatio = m.RubbleRatio
	mc.PatchRadius = m.PatchRadius
	mc.Opacity = TerrainOpacity()
	return mc
}

// WorldConfigFromSettings builds a WorldConfig from the loaded configuration
func WorldConfigFromSettings(logger zerolog.Logger) WorldConfig {
	c := config.Get()
	mapGen := MapGenConfig(c.Map.Width, c.Map.Height)
	return WorldConfig{
		MapFile:         c.Map.File,
		Width:           c.Map.Width,
		Height:          c.Map.Height,
		MapGen:          &mapGen,
		Terrain:         TerrainOpacity(),
		DefaultDistance: ViewDistance(),
		RememberContent: RememberContent(),
		OccupantOpacity: OccupantOpacity(),
		VerboseEvents:   c.Development.VerboseLogging,
		Logger:          logger,
	}
}
