package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	sessionsCreated  prometheus.Counter
	pagesPerSession  prometheus.Histogram
	interactions     *prometheus.CounterVec
	sessionsReaped   prometheus.Counter
	reapDuration     prometheus.Histogram
	transportErrors  *prometheus.CounterVec
	telegramUpdates  *prometheus.CounterVec
	telegramCommands *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			sessionsCreated: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "paginator_sessions_created_total",
					Help: "Total paginator sessions persisted.",
				},
			),
			pagesPerSession: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "paginator_pages_per_session",
					Help:    "Number of pages in each persisted paginator session.",
					Buckets: []float64{2, 5, 10, 25, 50, 100, 250},
				},
			),
			interactions: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "paginator_interactions_total",
					Help: "Paginator interactions by action and outcome.",
				},
				[]string{"action", "outcome"},
			),
			sessionsReaped: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "paginator_sessions_reaped_total",
					Help: "Total expired paginator sessions deleted by the reaper.",
				},
			),
			reapDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "paginator_reap_duration_seconds",
					Help:    "Reaper sweep duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			transportErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "paginator_transport_errors_total",
					Help: "Transport failures by operation.",
				},
				[]string{"op"},
			),
			telegramUpdates: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "telegram_updates_total",
					Help: "Telegram updates received by kind.",
				},
				[]string{"kind"},
			),
			telegramCommands: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "telegram_commands_total",
					Help: "Telegram commands handled by command and status.",
				},
				[]string{"command", "status"},
			),
		}

		prometheus.MustRegister(
			m.sessionsCreated,
			m.pagesPerSession,
			m.interactions,
			m.sessionsReaped,
			m.reapDuration,
			m.transportErrors,
			m.telegramUpdates,
			m.telegramCommands,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordPaginatorSent(pages int) {
	m := getMetrics()
	m.sessionsCreated.Inc()
	m.pagesPerSession.Observe(float64(pages))
}

func RecordInteraction(action, outcome string) {
	getMetrics().interactions.WithLabelValues(action, outcome).Inc()
}

func RecordReap(deleted int, duration time.Duration) {
	m := getMetrics()
	m.sessionsReaped.Add(float64(deleted))
	m.reapDuration.Observe(duration.Seconds())
}

func RecordTransportError(op string) {
	getMetrics().transportErrors.WithLabelValues(op).Inc()
}

func RecordTelegramUpdate(kind string) {
	getMetrics().telegramUpdates.WithLabelValues(kind).Inc()
}

func RecordTelegramCommand(command string, success bool) {
	status := "error"
	if success {
		status = "success"
	}
	getMetrics().telegramCommands.WithLabelValues(command, status).Inc()
}
