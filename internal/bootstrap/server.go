package bootstrap

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mepla/Enchilada/internal/config"

	"github.com/appleboy/graceful"
)

func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addHTTPServerJobs serves until the manager is cancelled, then drains
// in-flight requests within SERVER_SHUTDOWN_TIMEOUT.
func addHTTPServerJobs(m *graceful.Manager, srv *http.Server, timeout time.Duration) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("[Server] listen on %s: %v", srv.Addr, err)
			}
		}()
		<-ctx.Done()
		return nil
	})

	addTimedShutdownJob(m, "http server", timeout, srv.Shutdown)
}

// addTimedShutdownJob runs stop with a fresh deadline once shutdown starts.
func addTimedShutdownJob(
	m *graceful.Manager,
	name string,
	timeout time.Duration,
	stop func(ctx context.Context) error,
) {
	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := stop(ctx); err != nil {
			log.Printf("[Shutdown] %s: %v", name, err)
			return err
		}
		log.Printf("[Shutdown] %s stopped", name)
		return nil
	})
}

// addCloserJob closes a resource on shutdown and stops waiting after timeout.
// A nil closer is skipped.
func addCloserJob(m *graceful.Manager, name string, timeout time.Duration, closeFn func() error) {
	if closeFn == nil {
		return
	}
	addTimedShutdownJob(m, name, timeout, func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() { done <- closeFn() }()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// addPeriodicJob calls run immediately and then every interval until the
// manager shuts down.
func addPeriodicJob(m *graceful.Manager, interval time.Duration, run func(ctx context.Context)) {
	if interval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			run(ctx)
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return nil
			}
		}
	})
}
