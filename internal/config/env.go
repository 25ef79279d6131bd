package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are the settings that may be supplied through the environment.
// Set variables win over the config file.
type envOverrides struct {
	BotToken    string `env:"PAGINA_BOT_TOKEN"`
	DataDir     string `env:"PAGINA_DATA_DIR"`
	DBPath      string `env:"PAGINA_DB_PATH"`
	LogLevel    string `env:"PAGINA_LOG_LEVEL"`
	MetricsAddr string `env:"PAGINA_METRICS_ADDR"`
	OTLPURL     string `env:"PAGINA_OTEL_ENDPOINT"`
}

// ApplyEnv overlays PAGINA_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if overrides.BotToken != "" {
		cfg.Telegram.BotToken = overrides.BotToken
	}
	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
	}
	if overrides.DBPath != "" {
		cfg.Storage.DBPath = overrides.DBPath
	}
	if overrides.LogLevel != "" {
		cfg.Logging.Level = overrides.LogLevel
	}
	if overrides.MetricsAddr != "" {
		cfg.Metrics.Addr = overrides.MetricsAddr
		cfg.Metrics.Enabled = true
	}
	if overrides.OTLPURL != "" {
		cfg.Tracing.Endpoint = overrides.OTLPURL
		cfg.Tracing.Enabled = true
	}
	return nil
}
