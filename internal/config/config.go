// Package config содержит логику чтения конфигурации системы.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress     = "localhost:8080"
	defaultTxTimeout      = 5 * time.Second
	defaultAllowedOrigins = "http://localhost:5173"
	defaultLogLevel       = "info"
)

// Config содержит параметры конфигурации системы.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	// TxTimeout ограничивает длительность одной транзакции.
	TxTimeout      time.Duration `env:"TX_TIMEOUT"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string        `env:"LOG_LEVEL"`

	// Учётная запись администратора, создаваемая при старте, если её ещё нет.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAuthSecret := cfg.AuthSecret
	envTxTimeout := cfg.TxTimeout
	envAllowedOrigins := cfg.AllowedOrigins
	envLogLevel := cfg.LogLevel

	var origins string

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, empty runs the in-memory store")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret for signing session tokens")
	flag.DurationVar(&cfg.TxTimeout, "t", defaultTxTimeout, "transaction timeout")
	flag.StringVar(&origins, "o", defaultAllowedOrigins, "comma-separated list of allowed CORS origins")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level (debug, info)")

	flag.Parse()

	cfg.AllowedOrigins = splitOrigins(origins)

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envTxTimeout != 0 {
		cfg.TxTimeout = envTxTimeout
	}
	if len(envAllowedOrigins) > 0 {
		cfg.AllowedOrigins = envAllowedOrigins
	}
	if envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.TxTimeout <= 0 {
		return nil, fmt.Errorf("transaction timeout must be positive, got %s", cfg.TxTimeout)
	}

	return cfg, nil
}

func splitOrigins(s string) []string {
	var res []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			res = append(res, o)
		}
	}
	return res
}
