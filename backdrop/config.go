package backdrop

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Fixed physics and render constants.
const (
	BurstLineCount     = 8
	BurstParticleCount = 10

	LineAttractRadius     = 200.0
	LineAttractForce      = 0.02
	ParticleAttractRadius = 150.0
	ParticleAttractForce  = 0.01
	Friction              = 0.99
	BoundsMargin          = 100.0
	ConnectDistance       = 100.0

	// Largest particle pool accepted. The edge pass is quadratic in the pool
	// size; going past this needs a spatial index.
	MaxAmbientParticles = 200
)

// Base opacity per origin. Rendered opacity is life × base.
const (
	ambientLineOpacity     = 0.3
	pointerLineOpacity     = 0.6
	burstLineOpacity       = 0.8
	ambientParticleOpacity = 0.5
	burstParticleOpacity   = 0.8
)

var ErrInvalidConfig = errors.New("backdrop: invalid config")

// Config holds the tunable entity counts of an engine. Zero values are not
// defaults; start from DefaultConfig.
type Config struct {
	AmbientLines     int     `yaml:"ambient_lines" json:"ambient_lines"`
	MaxLines         int     `yaml:"max_lines" json:"max_lines"`
	AmbientParticles int     `yaml:"ambient_particles" json:"ambient_particles"`
	SpeedScale       float64 `yaml:"speed_scale" json:"speed_scale"`
}

func DefaultConfig() Config {
	return Config{
		AmbientLines:     20,
		MaxLines:         60,
		AmbientParticles: 50,
		SpeedScale:       1,
	}
}

// Validate reports whether the config can drive an engine.
func (c Config) Validate() error {
	switch {
	case c.AmbientLines < 0:
		return fmt.Errorf("%w: ambient_lines must be >= 0, got %d", ErrInvalidConfig, c.AmbientLines)
	case c.MaxLines < c.AmbientLines:
		return fmt.Errorf("%w: max_lines (%d) below ambient_lines (%d)", ErrInvalidConfig, c.MaxLines, c.AmbientLines)
	case c.AmbientParticles < 0 || c.AmbientParticles > MaxAmbientParticles:
		return fmt.Errorf("%w: ambient_particles must be in [0,%d], got %d", ErrInvalidConfig, MaxAmbientParticles, c.AmbientParticles)
	case c.SpeedScale <= 0:
		return fmt.Errorf("%w: speed_scale must be > 0, got %g", ErrInvalidConfig, c.SpeedScale)
	}
	return nil
}

// DefaultPresets returns the presets shipped with the site.
func DefaultPresets() map[string]Config {
	calm := DefaultConfig()
	calm.AmbientLines = 10
	calm.MaxLines = 30
	calm.AmbientParticles = 25
	calm.SpeedScale = 0.5

	dense := DefaultConfig()
	dense.AmbientLines = 40
	dense.MaxLines = 120
	dense.AmbientParticles = 90
	dense.SpeedScale = 1.5

	return map[string]Config{
		"default": DefaultConfig(),
		"calm":    calm,
		"dense":   dense,
	}
}

type presetFile struct {
	Presets map[string]yaml.Node `yaml:"presets"`
}

// ParsePresets decodes a presets document. Each preset overrides
// DefaultConfig, so a preset only needs the fields it changes.
func ParsePresets(data []byte) (map[string]Config, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	presets := make(map[string]Config, len(file.Presets))
	for name, node := range file.Presets {
		cfg := DefaultConfig()
		if err := node.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		presets[name] = cfg
	}
	if _, ok := presets["default"]; !ok {
		presets["default"] = DefaultConfig()
	}
	return presets, nil
}

// LoadPresets reads presets from a YAML file.
func LoadPresets(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return ParsePresets(data)
}

// PresetNames returns preset names in sorted order.
func PresetNames(presets map[string]Config) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
