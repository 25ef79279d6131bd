package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// MaxBaseIDLength keeps callback data within Telegram's 64-byte limit.
const MaxBaseIDLength = 40

var (
	telegramTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)
	baseIDPattern        = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTelegramToken validates a Telegram bot token
func (v *Validator) ValidateTelegramToken(token string) error {
	if token == "" {
		return fmt.Errorf("telegram bot token cannot be empty")
	}

	// Telegram bot tokens have format: <bot_id>:<token>
	if !telegramTokenPattern.MatchString(token) {
		return fmt.Errorf("invalid Telegram bot token format")
	}

	return nil
}

// ValidateBaseID validates the control identifier namespace
func (v *Validator) ValidateBaseID(baseID string) error {
	if baseID == "" {
		return fmt.Errorf("paginator base_id cannot be empty")
	}
	if len(baseID) > MaxBaseIDLength {
		return fmt.Errorf("paginator base_id too long (max %d), got %d", MaxBaseIDLength, len(baseID))
	}
	if !baseIDPattern.MatchString(baseID) {
		return fmt.Errorf("paginator base_id %q may only contain letters, digits, '_' and '-'", baseID)
	}
	return nil
}

// ValidatePositive validates a positive integer setting
func (v *Validator) ValidatePositive(name string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, value)
	}
	return nil
}

// ValidateColor validates a 24-bit RGB color
func (v *Validator) ValidateColor(color int) error {
	if color < 0 || color > 0xFFFFFF {
		return fmt.Errorf("base_color must be between 0x000000 and 0xFFFFFF, got %#x", color)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateListenAddr validates a host:port listen address
func (v *Validator) ValidateListenAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}

// ValidateTracing validates the tracing section
func (v *Validator) ValidateTracing(t TracingConfig) error {
	if t.ServiceName == "" {
		return fmt.Errorf("tracing service_name is required")
	}
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return fmt.Errorf("tracing sample_ratio must be within [0, 1], got %v", t.SampleRatio)
	}
	if t.Endpoint != "" {
		u, err := url.Parse(t.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid tracing endpoint %q", t.Endpoint)
		}
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if cfg.Telegram.BotToken != "" {
		if err := v.ValidateTelegramToken(cfg.Telegram.BotToken); err != nil {
			errors = append(errors, err)
		}
	}
	if cfg.Telegram.UpdateTimeout < 0 {
		errors = append(errors, fmt.Errorf("telegram update_timeout must be >= 0"))
	}

	if err := v.ValidateBaseID(cfg.Paginator.BaseID); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidatePositive("paginator delete_after", cfg.Paginator.DeleteAfter); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidatePositive("paginator reap_interval", cfg.Paginator.ReapInterval); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateColor(cfg.Paginator.BaseColor); err != nil {
		errors = append(errors, err)
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}
	if cfg.Logging.MaxSize < 0 {
		errors = append(errors, fmt.Errorf("logging max_size must be >= 0"))
	}

	if cfg.Metrics.Enabled {
		if err := v.ValidateListenAddr(cfg.Metrics.Addr); err != nil {
			errors = append(errors, err)
		}
	}

	if cfg.Tracing.Enabled {
		if err := v.ValidateTracing(cfg.Tracing); err != nil {
			errors = append(errors, err)
		}
	}

	return errors
}
