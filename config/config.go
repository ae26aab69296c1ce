// Package config provides configuration loading and access for the swirl animator.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all animator configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Swirl      SwirlConfig      `yaml:"swirl"`
	Noise      NoiseConfig      `yaml:"noise"`
	Background BackgroundConfig `yaml:"background"`
	Bloom      BloomConfig      `yaml:"bloom"`
	Terminal   TerminalConfig   `yaml:"terminal"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// Range is a randomized value drawn as Min + U*Span with U in [0, 1).
type Range struct {
	Min  float64 `yaml:"min"`
	Span float64 `yaml:"span"`
}

// Max returns the exclusive upper bound of the range.
func (r Range) Max() float64 {
	return r.Min + r.Span
}

// SwirlConfig holds particle pool and advancer parameters.
type SwirlConfig struct {
	ParticleCount     int     `yaml:"particle_count"`
	SpawnSpreadY      float64 `yaml:"spawn_spread_y"` // Vertical spawn offset around the centre line
	TTL               Range   `yaml:"ttl"`            // Frames
	Speed             Range   `yaml:"speed"`
	Radius            Range   `yaml:"radius"` // Stroke width in pixels
	Hue               Range   `yaml:"hue"`    // Degrees
	NoiseSteps        float64 `yaml:"noise_steps"`
	NoiseScaleX       float64 `yaml:"noise_scale_x"`
	NoiseScaleY       float64 `yaml:"noise_scale_y"`
	NoiseScaleT       float64 `yaml:"noise_scale_t"`
	VelocitySmoothing float64 `yaml:"velocity_smoothing"` // Lerp factor toward the noise direction
	StrokeSaturation  float64 `yaml:"stroke_saturation"`
	StrokeLightness   float64 `yaml:"stroke_lightness"`
}

// NoiseConfig selects the noise field implementation.
type NoiseConfig struct {
	Kind string `yaml:"kind"` // "simplex" or "perlin"
	Seed int64  `yaml:"seed"` // 0 = derive from the run seed
}

// BackgroundConfig holds the persistent-surface fade colour.
type BackgroundConfig struct {
	Hue        float64 `yaml:"hue"`
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
	Alpha      float64 `yaml:"alpha"`
}

// BloomPass describes one blurred, brightened additive copy.
type BloomPass struct {
	Blur       float64 `yaml:"blur"`       // Blur radius in pixels
	Brightness float64 `yaml:"brightness"` // 1 = unchanged, 2 = 200%
}

// BloomConfig holds the glow composite parameters.
type BloomConfig struct {
	Enabled        bool        `yaml:"enabled"`
	Passes         []BloomPass `yaml:"passes"`
	CompositeSharp bool        `yaml:"composite_sharp"` // Add the unblurred strokes on top
}

// TerminalConfig holds terminal presenter settings.
type TerminalConfig struct {
	PixelsPerCell int `yaml:"pixels_per_cell"` // Raster pixels per cell column (and per half row)
	TargetFPS     int `yaml:"target_fps"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	SnapshotEvery       int `yaml:"snapshot_every"` // Frames between PNG snapshots (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	BufferLen     int     // Swirl.ParticleCount * FieldsPerParticle
	FrameBudgetMs float64 // 1000 / Screen.TargetFPS
}

// FieldsPerParticle is the stride of one particle record in the pool buffer.
const FieldsPerParticle = 9

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Default returns the embedded defaults.
func Default() *Config {
	return MustLoad("")
}

// Validate reports configuration values the animator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	s := c.Swirl
	if s.ParticleCount < 1 {
		errs = append(errs, fmt.Errorf("swirl.particle_count must be positive, got %d", s.ParticleCount))
	}
	if s.SpawnSpreadY < 0 {
		errs = append(errs, fmt.Errorf("swirl.spawn_spread_y must not be negative, got %v", s.SpawnSpreadY))
	}
	for name, r := range map[string]Range{"ttl": s.TTL, "speed": s.Speed, "radius": s.Radius, "hue": s.Hue} {
		if r.Span < 0 {
			errs = append(errs, fmt.Errorf("swirl.%s.span must not be negative, got %v", name, r.Span))
		}
	}
	if s.TTL.Min <= 0 {
		errs = append(errs, fmt.Errorf("swirl.ttl.min must be positive, got %v", s.TTL.Min))
	}
	if s.VelocitySmoothing < 0 || s.VelocitySmoothing > 1 {
		errs = append(errs, fmt.Errorf("swirl.velocity_smoothing must be in [0, 1], got %v", s.VelocitySmoothing))
	}
	switch c.Noise.Kind {
	case "simplex", "perlin":
	default:
		errs = append(errs, fmt.Errorf("noise.kind must be simplex or perlin, got %q", c.Noise.Kind))
	}
	if c.Background.Alpha < 0 || c.Background.Alpha > 1 {
		errs = append(errs, fmt.Errorf("background.alpha must be in [0, 1], got %v", c.Background.Alpha))
	}
	for i, p := range c.Bloom.Passes {
		if p.Blur < 0 || p.Brightness < 0 {
			errs = append(errs, fmt.Errorf("bloom.passes[%d] must have non-negative blur and brightness", i))
		}
	}
	if c.Terminal.PixelsPerCell < 1 {
		errs = append(errs, fmt.Errorf("terminal.pixels_per_cell must be positive, got %d", c.Terminal.PixelsPerCell))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.BufferLen = c.Swirl.ParticleCount * FieldsPerParticle

	if c.Screen.TargetFPS > 0 {
		c.Derived.FrameBudgetMs = 1000 / float64(c.Screen.TargetFPS)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
