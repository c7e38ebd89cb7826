package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/bombuslab/occurrence-etl/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables
// and optionally overridden by CLI flags.
type Config struct {
	SpeciesPath     string `env:"SPECIES_CSV"`
	PlantPath       string `env:"PLANT_CSV"`
	TemperaturePath string `env:"TEMPERATURE_CSV"`

	OutputDir  string `env:"OUTPUT_DIR" envDefault:"out"`
	SQLitePath string `env:"SQLITE_PATH"` // empty disables the SQLite sink

	YearMin int `env:"YEAR_MIN" envDefault:"2013"`
	YearMax int `env:"YEAR_MAX" envDefault:"2023"`

	TrainFraction float64 `env:"TRAIN_FRACTION" envDefault:"0.8"`
	Seed          int64   `env:"SEED" envDefault:"42"`

	// CorrectionsPath points at a YAML file overriding the built-in region
	// correction table. Empty means the built-in three pairs.
	CorrectionsPath string `env:"REGION_CORRECTIONS"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// MetricsAddr enables the metrics HTTP listener when non-empty. Off by
	// default; the pipeline is a batch job with no network surface.
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Load reads configuration from environment variables, applying defaults
// where unset. Input paths are validated separately by Validate so CLI flags
// can fill them in after Load.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.YearMin > cfg.YearMax {
		return nil, fmt.Errorf("YEAR_MIN %d exceeds YEAR_MAX %d", cfg.YearMin, cfg.YearMax)
	}
	if cfg.TrainFraction < 0 || cfg.TrainFraction > 1 {
		return nil, fmt.Errorf("TRAIN_FRACTION %g outside [0, 1]", cfg.TrainFraction)
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default. Called after CLI
// flags have had a chance to fill them in.
func (c *Config) Validate() error {
	if c.SpeciesPath == "" {
		return errors.New("species input path is required (SPECIES_CSV or --species)")
	}
	if c.PlantPath == "" {
		return errors.New("plant input path is required (PLANT_CSV or --plant)")
	}
	if c.TemperaturePath == "" {
		return errors.New("temperature input path is required (TEMPERATURE_CSV or --temperature)")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// Years returns the configured study window.
func (c *Config) Years() domain.YearRange {
	return domain.YearRange{Min: c.YearMin, Max: c.YearMax}
}

// Corrections returns the region correction table: the configured YAML file
// when set, otherwise the built-in defaults.
func (c *Config) Corrections() ([]domain.RegionCorrection, error) {
	if c.CorrectionsPath == "" {
		return domain.DefaultRegionCorrections(), nil
	}

	data, err := os.ReadFile(c.CorrectionsPath)
	if err != nil {
		return nil, fmt.Errorf("read region corrections: %w", err)
	}
	var corrections []domain.RegionCorrection
	if err := yaml.Unmarshal(data, &corrections); err != nil {
		return nil, fmt.Errorf("parse region corrections %s: %w", c.CorrectionsPath, err)
	}
	return corrections, nil
}
