package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultUpdateTimeout is the long-polling timeout in seconds.
	DefaultUpdateTimeout = 60

	DefaultBaseID       = "pagina_paginator"
	DefaultDeleteAfter  = 3600
	DefaultReapInterval = 300
	DefaultBaseColor    = 0x2B6CB0
	DefaultMetricsAddr  = "127.0.0.1:9464"
	DefaultServiceName  = "pagina"
)

// Config represents the main pagina configuration
type Config struct {
	// Telegram
	Telegram TelegramConfig `json:"telegram" mapstructure:"telegram"`

	// Paginator engine
	Paginator PaginatorConfig `json:"paginator" mapstructure:"paginator"`

	// Session storage
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Audit trail
	Audit AuditConfig `json:"audit" mapstructure:"audit"`

	// Distributed tracing
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken      string `json:"bot_token" mapstructure:"bot_token"`
	UpdateTimeout int    `json:"update_timeout" mapstructure:"update_timeout"` // seconds
	Debug         bool   `json:"debug" mapstructure:"debug"`
}

// PaginatorConfig holds paginator engine settings
type PaginatorConfig struct {
	BaseID                string `json:"base_id" mapstructure:"base_id"`
	DeleteAfter           int    `json:"delete_after" mapstructure:"delete_after"`   // seconds
	ReapInterval          int    `json:"reap_interval" mapstructure:"reap_interval"` // seconds
	BaseColor             int    `json:"base_color" mapstructure:"base_color"`
	SerializeInteractions bool   `json:"serialize_interactions" mapstructure:"serialize_interactions"`
}

// TTL returns how long a session lives after it is sent.
func (p PaginatorConfig) TTL() time.Duration {
	return time.Duration(p.DeleteAfter) * time.Second
}

// ReapEvery returns the reaper interval.
func (p PaginatorConfig) ReapEvery() time.Duration {
	return time.Duration(p.ReapInterval) * time.Second
}

// StorageConfig holds session storage settings
type StorageConfig struct {
	DBPath string `json:"db_path" mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	Console    bool   `json:"console" mapstructure:"console"`
	MaxSize    int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge     int    `json:"max_age" mapstructure:"max_age"`   // days
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
	Redaction  bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// AuditConfig holds the audit trail configuration
type AuditConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	File    string `json:"file" mapstructure:"file"`
}

// TracingConfig holds OpenTelemetry settings. An empty endpoint keeps spans
// local: trace IDs still reach the logs but nothing is exported.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" mapstructure:"enabled"`
	ServiceName string  `json:"service_name" mapstructure:"service_name"`
	Endpoint    string  `json:"endpoint" mapstructure:"endpoint"`
	SampleRatio float64 `json:"sample_ratio" mapstructure:"sample_ratio"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			UpdateTimeout: DefaultUpdateTimeout,
		},
		Paginator: PaginatorConfig{
			BaseID:                DefaultBaseID,
			DeleteAfter:           DefaultDeleteAfter,
			ReapInterval:          DefaultReapInterval,
			BaseColor:             DefaultBaseColor,
			SerializeInteractions: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 5,
			Compress:   true,
			Redaction:  true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Tracing: TracingConfig{
			Enabled:     true,
			ServiceName: DefaultServiceName,
			SampleRatio: 1,
		},
	}
}

// String returns a JSON representation of the config with the bot token masked
func (c *Config) String() string {
	masked := *c
	if masked.Telegram.BotToken != "" {
		masked.Telegram.BotToken = "***"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks if the configuration is complete enough to run the daemon
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.BotToken == "" {
		errs = append(errs, fmt.Errorf("telegram bot token is required"))
	}
	errs = append(errs, NewValidator().ValidateConfig(c)...)
	return errors.Join(errs...)
}
