package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tank0226/current-task/internal/util"
)

// Serve exposes the recorder's registry on /metrics until the context is
// cancelled. It returns nil on clean shutdown.
func Serve(ctx context.Context, addr string, recorder *Recorder, logger *util.Logger) error {
	registry := recorder.Registry()
	if registry == nil {
		return errors.New("metrics recorder has no registry")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("metrics listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
