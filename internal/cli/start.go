package cli

import (
	"fmt"

	"github.com/harun/pagina/internal/config"
	"github.com/harun/pagina/internal/daemon"
	"github.com/harun/pagina/internal/logger"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the pagina daemon service",
	Long: `Start the pagina daemon service in the foreground.
The daemon polls Telegram for commands and button presses until it
receives SIGINT or SIGTERM.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pidFile := daemon.PIDFilePath(cfg.DataDir)
	if isRunning(pidFile) {
		return fmt.Errorf("daemon is already running (PID file: %s)", pidFile)
	}

	log, err := logger.New(loggerConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	d, err := daemon.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	if err := loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring invalid config change")
			return
		}
		d.ApplyConfig(next)
	}); err != nil {
		log.Debug().Err(err).Msg("Config file watch disabled")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "pagina daemon running (PID file: %s)\n", pidFile)
	d.Wait()
	return nil
}

func loggerConfig(c config.LoggingConfig) logger.Config {
	return logger.Config{
		Level:      c.Level,
		File:       c.File,
		Console:    c.Console,
		Pretty:     c.Console,
		Redaction:  c.Redaction,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}
