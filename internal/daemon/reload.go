package daemon

import (
	"github.com/harun/pagina/internal/config"
)

// ApplyConfig applies a reloaded configuration. Only the log level takes
// effect at runtime; other changes are reported and wait for a restart.
func (d *Daemon) ApplyConfig(next *config.Config) {
	if next == nil {
		return
	}

	d.mu.Lock()
	current := d.config
	d.mu.Unlock()

	if next.Logging.Level != current.Logging.Level {
		if err := d.logger.SetLevel(next.Logging.Level); err != nil {
			d.logger.Warn().Err(err).Msg("Ignoring reloaded log level")
		} else {
			d.logger.Info().
				Str("from", current.Logging.Level).
				Str("to", next.Logging.Level).
				Msg("Log level changed")
			d.mu.Lock()
			d.config.Logging.Level = next.Logging.Level
			d.mu.Unlock()
		}
	}

	if restartRequired(current, next) {
		d.logger.Warn().Msg("Configuration changed; restart the daemon to apply")
	}
}

func restartRequired(current, next *config.Config) bool {
	return current.Telegram != next.Telegram ||
		current.Paginator != next.Paginator ||
		current.Storage != next.Storage ||
		current.Metrics != next.Metrics ||
		current.Audit != next.Audit ||
		current.Tracing != next.Tracing ||
		current.DataDir != next.DataDir
}
