// Package config provides simulation configuration loading and
// validation. Settings come from a YAML file merged over documented
// defaults; command-line flags in cmd/agorasim override both.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains every tunable of a simulation run.
type Config struct {
	// Grid dimensions.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Population size, fixed for the run.
	Population int `yaml:"population"`

	// Fraction of the population spawned as high-integrity agents.
	HighIntegrityFraction float64 `yaml:"high_integrity_fraction"`

	// Number of steps to run.
	Steps int `yaml:"steps"`

	// Seed for the run's randomness source.
	Seed int64 `yaml:"seed"`

	// Model parameters.
	FriendCap          int     `yaml:"friend_cap"`
	QualityProbability float64 `yaml:"quality_probability"`
	Alpha              float64 `yaml:"alpha"`        // base integrity influence
	Beta               float64 `yaml:"beta"`         // opinion-change scale
	FriendGamma        float64 `yaml:"friend_gamma"` // friend-phase reduction factor
	MaxRadius          int     `yaml:"max_radius"`
	Opinions           int     `yaml:"opinions"`
	IntegrityMin       float64 `yaml:"integrity_min"`
	IntegrityMax       float64 `yaml:"integrity_max"`

	// EnforceOccupancy restricts every cell to a single agent, both at
	// spawn and during movement.
	EnforceOccupancy bool `yaml:"enforce_occupancy"`

	Schedule ScheduleConfig `yaml:"schedule"`
	Recorder RecorderConfig `yaml:"recorder"`
	API      APIConfig      `yaml:"api"`
}

// ScheduleConfig configures the structured/scheduled variant.
type ScheduleConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Period            int     `yaml:"period"`
	Homes             int     `yaml:"homes"`
	Workplaces        int     `yaml:"workplaces"`
	Schools           int     `yaml:"schools"`
	Leisure           int     `yaml:"leisure"`
	WorkerProbability float64 `yaml:"worker_probability"`
}

// RecorderConfig configures per-step statistics recording.
type RecorderConfig struct {
	// Path to the SQLite database file. Empty disables recording.
	Path string `yaml:"path"`
}

// APIConfig configures the HTTP observation server.
type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns the documented model defaults.
func Default() Config {
	return Config{
		Width:                 50,
		Height:                50,
		Population:            500,
		HighIntegrityFraction: 0.1,
		Steps:                 200,
		Seed:                  42,
		FriendCap:             8,
		QualityProbability:    0.7,
		Alpha:                 0.1,
		Beta:                  0.5,
		FriendGamma:           0.0625,
		MaxRadius:             3,
		Opinions:              3,
		IntegrityMin:          0.3,
		IntegrityMax:          0.7,
		EnforceOccupancy:      true,
		Schedule: ScheduleConfig{
			Period:            120,
			Homes:             20,
			Workplaces:        6,
			Schools:           3,
			Leisure:           8,
			WorkerProbability: 0.5,
		},
		API: APIConfig{Port: 8080},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks every precondition before a run starts. Any failure
// here is fatal: the simulation refuses to construct.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid %dx%d: dimensions must be positive", c.Width, c.Height)
	}
	if c.Population <= 0 {
		return fmt.Errorf("population %d: must be positive", c.Population)
	}
	if c.EnforceOccupancy && c.Population > c.Width*c.Height {
		return fmt.Errorf("population %d exceeds grid capacity %d with occupancy enforcement on",
			c.Population, c.Width*c.Height)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps %d: must be non-negative", c.Steps)
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"high_integrity_fraction", c.HighIntegrityFraction},
		{"quality_probability", c.QualityProbability},
		{"worker_probability", c.Schedule.WorkerProbability},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s %v: must be in [0,1]", p.name, p.value)
		}
	}
	if c.FriendCap <= 0 {
		return fmt.Errorf("friend_cap %d: must be positive", c.FriendCap)
	}
	if c.Opinions <= 0 {
		return fmt.Errorf("opinions %d: must be positive", c.Opinions)
	}
	if c.MaxRadius < 0 {
		return fmt.Errorf("max_radius %d: must be non-negative", c.MaxRadius)
	}
	if c.IntegrityMin < 0 || c.IntegrityMax > 1 || c.IntegrityMin > c.IntegrityMax {
		return fmt.Errorf("integrity range [%v,%v]: must be ordered within [0,1]",
			c.IntegrityMin, c.IntegrityMax)
	}
	if c.Schedule.Enabled {
		if c.Schedule.Period <= 0 {
			return fmt.Errorf("schedule period %d: must be positive", c.Schedule.Period)
		}
		for _, g := range []struct {
			name  string
			count int
		}{
			{"homes", c.Schedule.Homes},
			{"workplaces", c.Schedule.Workplaces},
			{"schools", c.Schedule.Schools},
			{"leisure", c.Schedule.Leisure},
		} {
			if g.count <= 0 {
				return fmt.Errorf("schedule %s %d: must be positive when the scheduled variant is enabled",
					g.name, g.count)
			}
		}
	}
	if c.API.Enabled && (c.API.Port <= 0 || c.API.Port > 65535) {
		return fmt.Errorf("api port %d: out of range", c.API.Port)
	}
	return nil
}
