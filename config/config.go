// Package config loads tool settings from the environment and
// experiment descriptions from YAML files.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every command.
type Config struct {
	DataDir     string  `env:"MORAN_DATA_DIR" envDefault:"data"`
	Workers     int     `env:"MORAN_WORKERS" envDefault:"0"`
	Turns       int     `env:"MORAN_TURNS" envDefault:"200"`
	Repetitions int     `env:"MORAN_REPETITIONS" envDefault:"1000"`
	Noise       float64 `env:"MORAN_NOISE" envDefault:"0"`
	Seed        int64   `env:"MORAN_SEED" envDefault:"0"`
	MaxRounds   int     `env:"MORAN_MAX_ROUNDS" envDefault:"1000000"`
	Precision   int     `env:"MORAN_PRECISION" envDefault:"5"`
	// One of "csv", "sqlite" or "memory".
	Store     string `env:"MORAN_STORE" envDefault:"csv"`
	DebugAddr string `env:"MORAN_DEBUG_ADDR" envDefault:"localhost:4123"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Turns <= 0:
		return fmt.Errorf("MORAN_TURNS must be positive, got %d", c.Turns)
	case c.Repetitions <= 0:
		return fmt.Errorf("MORAN_REPETITIONS must be positive, got %d", c.Repetitions)
	case c.Noise < 0 || c.Noise > 1:
		return fmt.Errorf("MORAN_NOISE must be in [0, 1], got %v", c.Noise)
	case c.MaxRounds <= 0:
		return fmt.Errorf("MORAN_MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}

	switch c.Store {
	case "csv", "sqlite", "memory":
	default:
		return fmt.Errorf("MORAN_STORE must be csv, sqlite or memory, got %q", c.Store)
	}

	return nil
}

func (c Config) OutcomesPath() string {
	return filepath.Join(c.DataDir, "outcomes.csv")
}

func (c Config) PlayersPath() string {
	return filepath.Join(c.DataDir, "players.csv")
}

func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "moran.db")
}

func (c Config) ValidationPath() string {
	return filepath.Join(c.DataDir, "fixation_validation.csv")
}

func (c Config) SummaryPath() string {
	return filepath.Join(c.DataDir, "sims_summary.csv")
}

func (c Config) FitnessPath() string {
	return filepath.Join(c.DataDir, "main.csv")
}

// SimsPath returns the simulation result file of populations of n
// started with i challengers.
func (c Config) SimsPath(n, i int) string {
	var dir string
	switch i {
	case 1:
		dir = "sims_1"
	case n / 2:
		dir = "sims_n_over_2"
	case n - 1:
		dir = "sims_n_minus_1"
	default:
		dir = fmt.Sprintf("sims_i%d", i)
	}

	return filepath.Join(c.DataDir, dir, fmt.Sprintf("sims_%02d.csv", n))
}
