package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/harun/pagina/internal/observability"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serveMetrics runs srv on g until ctx is cancelled. The listener is bound
// before returning so a bad address is logged at startup.
func serveMetrics(ctx context.Context, g *errgroup.Group, srv *http.Server, logger zerolog.Logger) {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error().Err(err).Str("addr", srv.Addr).Msg("Failed to bind metrics endpoint")
		return
	}
	logger.Info().Str("addr", ln.Addr().String()).Msg("Metrics endpoint listening")

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
