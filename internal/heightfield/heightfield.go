// Package heightfield provides height sources for terrain generation.
package heightfield

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
)

// Flat is a height source that returns the same height everywhere.
type Flat float32

// Height implements terrain.HeightSource.
func (f Flat) Height(x, z float32) float32 {
	return float32(f)
}

// NoiseConfig configures a Perlin height source.
type NoiseConfig struct {
	Seed      int64   `yaml:"seed"`
	Alpha     float64 `yaml:"alpha"`     // weight falloff per octave
	Beta      float64 `yaml:"beta"`      // frequency multiplier per octave
	Octaves   int32   `yaml:"octaves"`
	Frequency float64 `yaml:"frequency"` // noise cycles per world unit
	Amplitude float32 `yaml:"amplitude"`
	Offset    float32 `yaml:"offset"`
	// Step quantizes heights into terraces of this size. Zero keeps smooth heights.
	Step float32 `yaml:"step"`
}

// DefaultNoiseConfig returns settings that give rolling hills with cliff terraces.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Seed:      1,
		Alpha:     2,
		Beta:      2,
		Octaves:   3,
		Frequency: 0.03,
		Amplitude: 8,
		Step:      1,
	}
}

// Perlin samples layered perlin noise.
type Perlin struct {
	noise *perlin.Perlin
	cfg   NoiseConfig
}

// NewPerlin creates a Perlin height source.
func NewPerlin(cfg NoiseConfig) *Perlin {
	return &Perlin{
		noise: perlin.NewPerlin(cfg.Alpha, cfg.Beta, cfg.Octaves, cfg.Seed),
		cfg:   cfg,
	}
}

// Height implements terrain.HeightSource.
func (p *Perlin) Height(x, z float32) float32 {
	n := p.noise.Noise2D(float64(x)*p.cfg.Frequency, float64(z)*p.cfg.Frequency)
	h := float32(n)*p.cfg.Amplitude + p.cfg.Offset
	if p.cfg.Step > 0 {
		h = math32.Floor(h/p.cfg.Step+0.5) * p.cfg.Step
	}
	return h
}
