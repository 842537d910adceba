// Package config holds the env-driven configuration, one concern per file.
// Everything is read once at startup; dependencies are constructed
// explicitly from these values, never from ambient globals.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server ServerConfig
	Db     DbConfig
	Jwt    JwtConfig
	Smtp   SmtpConfig
}

// Load reads the full configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to read config from env: %w", err)
	}
	return cfg, nil
}
