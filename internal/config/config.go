package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/scenario"
)

const (
	DefaultWidth    = 100
	DefaultDuration = 100.0
	DefaultSpeed    = 10.0
	DefaultFPS      = 30
	DefaultDataDir  = ".particlesim"
)

// Config describes a run. Scenario, when set, names a text scenario file and
// takes precedence over the inline Width, Duration and Particles.
type Config struct {
	Name      string           `yaml:"name,omitempty"`
	Scenario  string           `yaml:"scenario,omitempty"`
	Width     int              `yaml:"width"`
	Duration  float64          `yaml:"duration"`
	Speed     float64          `yaml:"speed"`
	FPS       int              `yaml:"fps"`
	DataDir   string           `yaml:"data_dir"`
	Particles []particle.State `yaml:"particles,omitempty"`

	dir string
}

func DefaultConfig() *Config {
	return &Config{
		Width:    DefaultWidth,
		Duration: DefaultDuration,
		Speed:    DefaultSpeed,
		FPS:      DefaultFPS,
		DataDir:  DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve produces the scenario the config describes. A relative Scenario
// path is taken relative to the config file.
func (c *Config) Resolve() (*scenario.Scenario, error) {
	if c.Scenario != "" {
		path := c.Scenario
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		return scenario.Load(path)
	}

	sc := &scenario.Scenario{
		Width:     c.Width,
		Duration:  c.Duration,
		Particles: make([]particle.State, len(c.Particles)),
	}
	copy(sc.Particles, c.Particles)
	return sc, nil
}

func (c *Config) clone() *Config {
	cp := *c
	cp.Particles = make([]particle.State, len(c.Particles))
	copy(cp.Particles, c.Particles)
	return &cp
}
