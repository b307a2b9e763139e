// Package app holds what the gateway, sales and inventory binaries share:
// the base router, tracing setup and the server lifecycle.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpapp "github.com/tumbleweedd/two_services_system/order_inventory/internal/app/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/metrics"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// NewRouter returns a router carrying request ids, panic recovery, the
// access log, /healthz and /metrics. Callers mount their API in a group that
// adds middleware.Tracing.
func NewRouter(log *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Logging(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

func SetupTracing(ctx context.Context, log *slog.Logger, cfg config.TracingConfig, service string) func(context.Context) error {
	name := cfg.ServiceName
	if name == "" {
		name = service
	}

	shutdown, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:    cfg.Endpoint,
		ServiceName: name,
		Insecure:    cfg.Insecure,
	})
	if err != nil {
		log.Warn("tracing disabled", slog.String("service", name), logger.Err(err))
		return func(context.Context) error { return nil }
	}

	return shutdown
}

// Serve runs srv inside g, which should come from errgroup.WithContext so a
// failing listener cancels ctx for its siblings. It shuts srv down
// gracefully once ctx is done.
func Serve(ctx context.Context, g *errgroup.Group, srv *httpapp.App, shutdownTimeout time.Duration) {
	g.Go(srv.Run)

	g.Go(func() error {
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return srv.Stop(stopCtx)
	})
}
