package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings that may come from the environment. Command-line flags
// take precedence over these values.
type Env struct {
	LogLevel  string `env:"NULLBIND_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"NULLBIND_LOG_FORMAT" envDefault:"text"`
	Database  string `env:"NULLBIND_DB"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := NormalizeLogLevel(cfg.LogLevel); err != nil {
		return Env{}, err
	}
	if _, err := NormalizeLogFormat(cfg.LogFormat); err != nil {
		return Env{}, err
	}
	return cfg, nil
}
