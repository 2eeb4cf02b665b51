package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Solver struct {
		URL               string        `env:"SOLVER_URL"`
		Token             string        `env:"SOLVER_TOKEN"`
		Timeout           time.Duration `env:"SOLVER_TIMEOUT" envDefault:"5m"`
		NumReads          int           `env:"SOLVER_NUM_READS" envDefault:"10000"`
		MeasurementBudget int           `env:"SOLVER_MEASUREMENT_BUDGET" envDefault:"50000"`
	}
	Placement struct {
		GridWidth     int    `env:"PLACEMENT_GRID_WIDTH" envDefault:"15"`
		GridHeight    int    `env:"PLACEMENT_GRID_HEIGHT" envDefault:"15"`
		POICount      int    `env:"PLACEMENT_POI_COUNT" envDefault:"3"`
		ExistingCount int    `env:"PLACEMENT_EXISTING_COUNT" envDefault:"4"`
		NewStations   int    `env:"PLACEMENT_NEW_STATIONS" envDefault:"2"`
		Strategy      string `env:"PLACEMENT_STRATEGY" envDefault:"verify"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Point at a local solver in development when none is configured
	if cfg.Solver.URL == "" && cfg.Environment == "development" {
		cfg.Solver.URL = "http://localhost:8000/solve"
	}

	return cfg, nil
}
