// Package config handles terrain build configuration loading and management.
package config

import (
	"github.com/Faultbox/marching-terrain/internal/heightfield"
	"github.com/Faultbox/marching-terrain/internal/terrain"
	"github.com/Faultbox/marching-terrain/pkg/math"
)

// Config holds all build settings.
type Config struct {
	Terrain TerrainConfig           `yaml:"terrain"`
	World   WorldConfig             `yaml:"world"`
	Noise   heightfield.NoiseConfig `yaml:"noise"`
	Export  ExportConfig            `yaml:"export"`
	Logging LoggingConfig           `yaml:"logging"`
}

// TerrainConfig holds chunk layout and meshing settings.
type TerrainConfig struct {
	ChunkSamplesX     int        `yaml:"chunk_samples_x"`
	ChunkSamplesZ     int        `yaml:"chunk_samples_z"`
	CellSizeX         float32    `yaml:"cell_size_x"`
	CellSizeZ         float32    `yaml:"cell_size_z"`
	MergeThreshold    float32    `yaml:"merge_threshold"`
	HighFidelityFloor bool       `yaml:"high_fidelity_floor"`
	SmoothAngle       float32    `yaml:"smooth_angle"` // degrees, 0 = flat shading
	DefaultPaint      [4]float32 `yaml:"default_paint"`
}

// Settings converts the config into terrain settings.
func (c TerrainConfig) Settings() terrain.Settings {
	return terrain.Settings{
		Dimensions:        terrain.Dimensions{X: c.ChunkSamplesX, Z: c.ChunkSamplesZ},
		CellSize:          math.Vec2{X: c.CellSizeX, Y: c.CellSizeZ},
		MergeThreshold:    c.MergeThreshold,
		HighFidelityFloor: c.HighFidelityFloor,
		SmoothAngle:       c.SmoothAngle,
		DefaultColor:      math.ColorFromChannels(c.DefaultPaint),
	}
}

// WorldConfig holds which chunks get built and how they are painted.
type WorldConfig struct {
	ChunksX int `yaml:"chunks_x"`
	ChunksZ int `yaml:"chunks_z"`
	// HeightTable loads heights from a baked table instead of noise.
	HeightTable string `yaml:"height_table"`
	// Samples at or above HighlandHeight get HighlandPaint after generation.
	HighlandHeight float32    `yaml:"highland_height"`
	HighlandPaint  [4]float32 `yaml:"highland_paint"`
}

// ExportConfig holds mesh export settings.
type ExportConfig struct {
	Path       string  `yaml:"path"` // .obj, or .obj.gz for gzip
	Scale      float32 `yaml:"scale"`
	YawDegrees float32 `yaml:"yaw_degrees"`
	// HeightTable, when set, also saves the final sample heights as a table.
	HeightTable string `yaml:"height_table"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			ChunkSamplesX:  33,
			ChunkSamplesZ:  33,
			CellSizeX:      1,
			CellSizeZ:      1,
			MergeThreshold: 0.6,
			SmoothAngle:    30,
			DefaultPaint:   [4]float32{1, 0, 0, 0},
		},
		World: WorldConfig{
			ChunksX:        2,
			ChunksZ:        2,
			HighlandHeight: 4,
			HighlandPaint:  [4]float32{0, 0, 1, 0},
		},
		Noise: heightfield.DefaultNoiseConfig(),
		Export: ExportConfig{
			Path:  "terrain.obj",
			Scale: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
