package paginator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harun/pagina/internal/observability"
	"github.com/harun/pagina/internal/tracing"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultReapInterval = 5 * time.Minute

// ReapStats summarizes one sweep.
type ReapStats struct {
	Expired int
	Deleted int
	Failed  int
}

// Reaper periodically deletes expired sessions and detaches their controls.
type Reaper struct {
	engine   *Engine
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewReaper creates a reaper sweeping every interval.
func NewReaper(engine *Engine, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		engine:   engine,
		interval: interval,
		logger:   engine.logger.With().Str("module", "reaper").Logger(),
	}
}

// Start schedules the sweep. Overlapping sweeps are skipped.
func (r *Reaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("reaper is already running")
	}

	logger := cronLogger{logger: r.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	r.ctx, r.cancel = context.WithCancel(context.Background())
	ctx := r.ctx

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", r.interval), func() {
		r.SweepNow(ctx)
	}); err != nil {
		r.cancel()
		return fmt.Errorf("failed to schedule reaper: %w", err)
	}

	c.Start()
	r.cron = c
	r.running = true

	r.logger.Info().Dur("interval", r.interval).Msg("Paginator reaper started")
	return nil
}

// Stop cancels the schedule and waits for a running sweep to finish.
func (r *Reaper) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return fmt.Errorf("reaper is not running")
	}

	r.cancel()
	<-r.cron.Stop().Done()
	r.running = false

	r.logger.Info().Msg("Paginator reaper stopped")
	return nil
}

// IsRunning returns whether the schedule is active.
func (r *Reaper) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Interval returns the sweep interval.
func (r *Reaper) Interval() time.Duration {
	return r.interval
}

// SweepNow reaps every session whose expiry has passed. A failure on one
// session does not stop the sweep.
func (r *Reaper) SweepNow(ctx context.Context) ReapStats {
	ctx, span := tracing.StartSpan(ctx, "pagina.paginator", "paginator.reap")
	defer span.End()
	start := time.Now()

	var stats ReapStats
	now := r.engine.now()

	expired, err := r.engine.store.ListExpired(ctx, now)
	if err != nil {
		span.RecordError(err)
		r.logger.Error().Err(err).Msg("Failed to list expired paginator sessions")
		return stats
	}
	stats.Expired = len(expired)

	for _, session := range expired {
		if ctx.Err() != nil {
			break
		}
		if err := r.engine.remove(ctx, session.Ref, "reaped"); err != nil {
			stats.Failed++
			r.logger.Warn().
				Err(err).
				Str("message_id", session.Ref.MessageID).
				Msg("Failed to reap paginator session")
			continue
		}
		stats.Deleted++
	}

	span.SetAttributes(
		attribute.Int("expired", stats.Expired),
		attribute.Int("deleted", stats.Deleted),
	)
	observability.RecordReap(stats.Deleted, time.Since(start))

	if stats.Expired > 0 {
		r.logger.Info().
			Int("expired", stats.Expired).
			Int("deleted", stats.Deleted).
			Int("failed", stats.Failed).
			Msg("Reaped expired paginators")
	}
	return stats
}

// cronLogger adapts zerolog to the cron.Logger interface.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
