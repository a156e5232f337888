package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	FOV         FOVConfig         `mapstructure:"fov"`
	Map         MapConfig         `mapstructure:"map"`
	Terrain     TerrainConfig     `mapstructure:"terrain"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// FOVConfig holds field of view settings
type FOVConfig struct {
	Distance        int  `mapstructure:"distance"`
	RememberContent bool `mapstructure:"remember_content"`
}

// MapConfig holds map loading and generation settings
type MapConfig struct {
	Width        int            `mapstructure:"width"`
	Height       int            `mapstructure:"height"`
	Seed         int64          `mapstructure:"seed"`
	File         string         `mapstructure:"file"`
	WallVeins    WallVeinConfig `mapstructure:"wall_veins"`
	DoorRatio    int            `mapstructure:"door_ratio"`
	FoliageRatio int            `mapstructure:"foliage_ratio"`
	RubbleRatio  int            `mapstructure:"rubble_ratio"`
	PatchRadius  int            `mapstructure:"patch_radius"`
}

// WallVeinConfig holds wall vein generation settings
type WallVeinConfig struct {
	Ratio          int     `mapstructure:"ratio"`
	MinLength      int     `mapstructure:"min_length"`
	MaxLengthRatio float64 `mapstructure:"max_length_ratio"`
}

// TerrainConfig holds the opacity of each terrain type
type TerrainConfig struct {
	FloorOpacity      float64 `mapstructure:"floor_opacity"`
	WallOpacity       float64 `mapstructure:"wall_opacity"`
	FoliageOpacity    float64 `mapstructure:"foliage_opacity"`
	RubbleOpacity     float64 `mapstructure:"rubble_opacity"`
	DoorClosedOpacity float64 `mapstructure:"door_closed_opacity"`
	DoorOpenOpacity   float64 `mapstructure:"door_open_opacity"`
	OccupantOpacity   float64 `mapstructure:"occupant_opacity"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseLogging bool `mapstructure:"verbose_logging"`
	ShowVisibility bool `mapstructure:"show_visibility"`
}

var (
	// Global config instance. A *Config is never mutated once published;
	// updates decode into a fresh value and swap it in under mu.
	cfg *Config
	v   *viper.Viper
	mu  sync.RWMutex
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Field of view defaults
	v.SetDefault("fov.distance", 8)
	v.SetDefault("fov.remember_content", true)

	// Map defaults
	v.SetDefault("map.width", 40)
	v.SetDefault("map.height", 20)
	v.SetDefault("map.seed", 0)
	v.SetDefault("map.file", "")
	v.SetDefault("map.wall_veins.ratio", 50)
	v.SetDefault("map.wall_veins.min_length", 3)
	v.SetDefault("map.wall_veins.max_length_ratio", 0.25)
	v.SetDefault("map.door_ratio", 3)
	v.SetDefault("map.foliage_ratio", 80)
	v.SetDefault("map.rubble_ratio", 120)
	v.SetDefault("map.patch_radius", 2)

	// Terrain defaults
	v.SetDefault("terrain.floor_opacity", 0.0)
	v.SetDefault("terrain.wall_opacity", 1.0)
	v.SetDefault("terrain.foliage_opacity", 0.35)
	v.SetDefault("terrain.rubble_opacity", 0.15)
	v.SetDefault("terrain.door_closed_opacity", 1.0)
	v.SetDefault("terrain.door_open_opacity", 0.0)
	v.SetDefault("terrain.occupant_opacity", 0.1)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Development defaults
	v.SetDefault("development.verbose_logging", false)
	v.SetDefault("development.show_visibility", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fogcast")
	}

	v.SetEnvPrefix("FOGCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and environment still apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if _, err := reload(v); err != nil {
		return err
	}
	return nil
}

// reload decodes and validates the settings held by src and publishes them
// as the global config. Invalid settings leave the current config in place.
func reload(src *viper.Viper) (*Config, error) {
	next := &Config{}
	if err := src.Unmarshal(next); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	cfg = next
	mu.Unlock()
	return next, nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}

	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml from the directory of the
// loaded config file (or the working directory) over the current settings.
// A missing overlay is not an error.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if used := v.ConfigFileUsed(); used != "" {
		envFile = filepath.Join(filepath.Dir(used), envFile)
	}
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	if _, err := reload(v); err != nil {
		return fmt.Errorf("merging %s: %w", envFile, err)
	}

	return nil
}

// Set allows runtime config updates. A value that fails validation is kept
// by viper but not published to Get.
func Set(key string, value interface{}) {
	v.Set(key, value)
	_, _ = reload(v)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. onChange receives the
// file event together with the reloaded config, or the error that kept the
// previous config in place.
func WatchConfig(onChange func(fsnotify.Event, *Config, error)) {
	watched := v
	watched.OnConfigChange(func(e fsnotify.Event) {
		next, err := reload(watched)
		if onChange != nil {
			onChange(e, next, err)
		}
	})
	watched.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.FOV.Distance < 0 {
		return fmt.Errorf("fov.distance must be non-negative")
	}

	if c.Map.File == "" && (c.Map.Width <= 0 || c.Map.Height <= 0) {
		return fmt.Errorf("map dimensions must be positive")
	}
	if c.Map.WallVeins.Ratio < 0 {
		return fmt.Errorf("map.wall_veins.ratio must be non-negative")
	}
	if c.Map.WallVeins.MinLength < 1 {
		return fmt.Errorf("map.wall_veins.min_length must be at least 1")
	}
	if c.Map.WallVeins.MaxLengthRatio < 0 || c.Map.WallVeins.MaxLengthRatio > 1 {
		return fmt.Errorf("map.wall_veins.max_length_ratio must be between 0 and 1")
	}
	if c.Map.DoorRatio < 0 || c.Map.FoliageRatio < 0 || c.Map.RubbleRatio < 0 {
		return fmt.Errorf("map door, foliage and rubble ratios must be non-negative")
	}
	if c.Map.PatchRadius < 0 {
		return fmt.Errorf("map.patch_radius must be non-negative")
	}

	opacities := []struct {
		name  string
		value float64
	}{
		{"terrain.floor_opacity", c.Terrain.FloorOpacity},
		{"terrain.wall_opacity", c.Terrain.WallOpacity},
		{"terrain.foliage_opacity", c.Terrain.FoliageOpacity},
		{"terrain.rubble_opacity", c.Terrain.RubbleOpacity},
		{"terrain.door_closed_opacity", c.Terrain.DoorClosedOpacity},
		{"terrain.door_open_opacity", c.Terrain.DoorOpenOpacity},
		{"terrain.occupant_opacity", c.Terrain.OccupantOpacity},
	}
	for _, o := range opacities {
		if o.value < 0 || o.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", o.name)
		}
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}

	return nil
}
