package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath       string        `env:"DB_PATH" envDefault:"data/hotseat.db"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir       string        `env:"SPA_DIR" envDefault:"../web/dist"`
	CountOptions []int         `env:"COUNT_OPTIONS" envDefault:"6,10,15" envSeparator:","`
	FlowTTL      time.Duration `env:"FLOW_TTL" envDefault:"30m"`
	SeedDemo     bool          `env:"SEED_DEMO" envDefault:"true"`

	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"admin@playperu.com"`
	// bcrypt hash; the default is the hash of "changeme".
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH" envDefault:"$2a$10$trCdqP4npsbw0R1vQxVwXeT1HebzRmP01SXaNGPz1eSAZ7mpcL0Uu"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	for _, c := range cfg.CountOptions {
		if c <= 0 {
			return nil, fmt.Errorf("COUNT_OPTIONS: %d is not a positive count", c)
		}
	}
	if cfg.FlowTTL <= 0 {
		return nil, fmt.Errorf("FLOW_TTL must be positive, got %s", cfg.FlowTTL)
	}
	return &cfg, nil
}
