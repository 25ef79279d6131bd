package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/harun/pagina/internal/config"
	"github.com/harun/pagina/internal/logger"
	"github.com/harun/pagina/internal/observability"
	"github.com/harun/pagina/internal/telegram"
	"github.com/harun/pagina/internal/tracing"
	"github.com/harun/pagina/pkg/paginator"
	"github.com/harun/pagina/pkg/paginator/sqlitestore"
	"golang.org/x/sync/errgroup"
)

// Daemon represents the pagina daemon service
type Daemon struct {
	config *config.Config
	logger *logger.Logger

	// Paginator
	store  *sqlitestore.Store
	engine *paginator.Engine
	reaper *paginator.Reaper

	// Telegram
	telegramBot *telegram.Bot
	telegramCmd *telegram.Commands
	callbacks   *telegram.CallbackRouter

	// Services
	metricsServer *http.Server
	lifecycle     *LifecycleManager

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	startTime time.Time
	running   bool
	mu        sync.RWMutex

	shutdownTracing func(context.Context) error
}

// Version is the daemon release reported by the CLI and on spans.
const Version = "0.1.0"

// Status represents daemon status
type Status struct {
	Running   bool          `json:"running"`
	Uptime    time.Duration `json:"uptime"`
	StartTime time.Time     `json:"start_time"`
}

var newTelegramBot = func(cfg *config.TelegramConfig, log *logger.Logger) (*telegram.Bot, error) {
	return telegram.New(cfg, log)
}

// New creates a new daemon instance
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	observability.EnsureRegistered()

	d := &Daemon{
		config: cfg,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Setup(ctx, tracing.Config{
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: Version,
			Endpoint:       cfg.Tracing.Endpoint,
			SampleRatio:    cfg.Tracing.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing, continuing without distributed tracing")
		} else {
			d.shutdownTracing = shutdown
			log.Info().
				Str("service", cfg.Tracing.ServiceName).
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_ratio", cfg.Tracing.SampleRatio).
				Msg("Tracing initialized")
		}
	}

	if err := d.initializeCoreModules(); err != nil {
		d.release()
		return nil, fmt.Errorf("failed to initialize core modules: %w", err)
	}

	if err := d.initializeServices(); err != nil {
		d.release()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	d.lifecycle = NewLifecycleManager(d)

	return d, nil
}

// release undoes a partially completed New
func (d *Daemon) release() {
	d.cancel()
	if d.store != nil {
		_ = d.store.Close()
	}
	_ = observability.CloseAuditLogger()
	if d.shutdownTracing != nil {
		_ = d.shutdownTracing(context.Background())
		d.shutdownTracing = nil
	}
}

// initializeCoreModules opens storage and builds the paginator engine
func (d *Daemon) initializeCoreModules() error {
	if err := os.MkdirAll(d.config.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if d.config.Audit.Enabled {
		if err := observability.InitAuditLogger(d.config.Audit.File); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to initialize audit logger, audit events are discarded")
		} else {
			d.logger.Info().Str("path", d.config.Audit.File).Msg("Audit logger initialized")
		}
	}

	if err := os.MkdirAll(filepath.Dir(d.config.Storage.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	store, err := sqlitestore.Open(d.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	d.store = store
	d.logger.Info().Str("path", d.config.Storage.DBPath).Msg("Session store opened")

	bot, err := newTelegramBot(&d.config.Telegram, d.logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	d.telegramBot = bot

	messenger := telegram.NewMessenger(bot.Client(), d.logger.GetZerolog())
	d.engine = paginator.New(store, messenger, paginator.Options{
		BaseID:                d.config.Paginator.BaseID,
		TTL:                   d.config.Paginator.TTL(),
		BaseColor:             d.config.Paginator.BaseColor,
		SerializeInteractions: d.config.Paginator.SerializeInteractions,
		Logger:                d.logger.GetZerolog(),
	})
	d.logger.Info().
		Str("base_id", d.engine.BaseID()).
		Dur("ttl", d.config.Paginator.TTL()).
		Msg("Paginator engine initialized")

	return nil
}

// initializeServices wires Telegram handlers, the reaper and the metrics endpoint
func (d *Daemon) initializeServices() error {
	d.telegramCmd = telegram.NewCommands(d.telegramBot)
	telegram.RegisterPaginatorCommands(d.telegramCmd, d.engine)
	telegram.RegisterBotCommands(d.telegramCmd, Version)
	d.telegramBot.SetCommandHandler(d.telegramCmd)

	d.callbacks = telegram.NewCallbackRouter(d.engine, d.telegramBot.Client(), d.telegramBot.Logger())
	d.telegramBot.SetCallbackHandler(d.callbacks)

	d.reaper = paginator.NewReaper(d.engine, d.config.Paginator.ReapEvery())

	if d.config.Metrics.Enabled {
		d.metricsServer = newMetricsServer(d.config.Metrics.Addr)
	}

	return nil
}

// Start starts the daemon service
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	traceID := tracing.NewTraceID()
	logger := d.logger.GetZerolog().With().Str("trace_id", traceID).Logger()
	logger.Info().Msg("Starting pagina daemon")

	if err := d.lifecycle.Start(); err != nil {
		d.setStopped()
		return fmt.Errorf("failed to start lifecycle manager: %w", err)
	}

	if err := d.telegramCmd.SyncCommands(); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish bot commands")
	}

	d.group, _ = errgroup.WithContext(d.ctx)
	if d.metricsServer != nil {
		serveMetrics(d.ctx, d.group, d.metricsServer, logger)
	}

	if err := d.reaper.Start(); err != nil {
		d.abortStart()
		return fmt.Errorf("failed to start reaper: %w", err)
	}
	logger.Info().Dur("interval", d.reaper.Interval()).Msg("Reaper started")

	if err := d.telegramBot.Start(d.ctx); err != nil {
		_ = d.reaper.Stop()
		d.abortStart()
		return fmt.Errorf("failed to start telegram bot: %w", err)
	}
	logger.Info().Msg("Telegram bot started")

	logger.Info().Msg("Daemon started successfully")
	return nil
}

func (d *Daemon) setStopped() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

// abortStart unwinds the services started before a failing step
func (d *Daemon) abortStart() {
	d.cancel()
	if d.group != nil {
		_ = d.group.Wait()
	}
	_ = d.lifecycle.Stop()
	d.setStopped()
}

// Stop stops the daemon service gracefully
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	traceID := tracing.NewTraceID()
	logger := d.logger.GetZerolog().With().Str("trace_id", traceID).Logger()
	logger.Info().Msg("Stopping pagina daemon")

	if d.telegramBot != nil && d.telegramBot.IsRunning() {
		if err := d.telegramBot.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop telegram bot")
		}
	}

	if d.reaper != nil && d.reaper.IsRunning() {
		if err := d.reaper.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop reaper")
		}
	}

	d.cancel()

	done := make(chan error, 1)
	go func() {
		if d.group == nil {
			done <- nil
			return
		}
		done <- d.group.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error().Err(err).Msg("Background service failed")
		}
		logger.Info().Msg("All goroutines stopped")
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("Timeout waiting for goroutines to stop")
	}

	if err := d.lifecycle.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop lifecycle manager")
	}

	if err := d.store.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close session store")
	}

	if d.shutdownTracing != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown tracing")
		}
		cancel()
		d.shutdownTracing = nil
	}

	if err := observability.CloseAuditLogger(); err != nil {
		logger.Error().Err(err).Msg("Failed to close audit logger")
	}

	logger.Info().Msg("Daemon stopped successfully")
	return nil
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running: d.running,
	}

	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}

	return status
}

// Wait blocks until SIGINT or SIGTERM, then stops the daemon
func (d *Daemon) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		d.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	case <-d.ctx.Done():
	}

	if !d.Status().Running {
		return
	}
	if err := d.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop daemon")
	}
}

// GetConfig returns the daemon configuration
func (d *Daemon) GetConfig() *config.Config {
	return d.config
}

// GetLogger returns the daemon logger
func (d *Daemon) GetLogger() *logger.Logger {
	return d.logger
}

// GetEngine returns the paginator engine
func (d *Daemon) GetEngine() *paginator.Engine {
	return d.engine
}

// GetStore returns the session store
func (d *Daemon) GetStore() *sqlitestore.Store {
	return d.store
}

// GetReaper returns the expired session reaper
func (d *Daemon) GetReaper() *paginator.Reaper {
	return d.reaper
}

// GetTelegramBot returns the Telegram bot instance
func (d *Daemon) GetTelegramBot() *telegram.Bot {
	return d.telegramBot
}

// GetCommands returns the Telegram command registry
func (d *Daemon) GetCommands() *telegram.Commands {
	return d.telegramCmd
}
