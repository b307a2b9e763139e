package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/app"
	httpapp "github.com/tumbleweedd/two_services_system/order_inventory/internal/app/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	loginHandler "github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/auth/login"
	gatewayHandler "github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/gateway"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/token"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/auth/login"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/gateway/forward"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/gateway/route"
	"golang.org/x/sync/errgroup"
)

const serviceName = "gateway"

var errEmptyJWTKey = errors.New("jwt.key must be set")

type App struct {
	log        *slog.Logger
	cfg        *config.Config
	HTTPServer *httpapp.App

	shutdownTracing func(context.Context) error
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.gateway.NewApp"

	if cfg.JWT.Key == "" {
		return nil, fmt.Errorf("%s: %w", op, errEmptyJWTKey)
	}

	shutdownTracing := app.SetupTracing(ctx, log, cfg.Tracing, serviceName)

	loginSvc, err := login.New(log, cfg.Users, token.NewIssuer(cfg.JWT))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	table, err := route.NewTable(cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	forwarder, err := forward.New(log, cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	auth := loginHandler.NewHandler(log, loginSvc)
	proxy := gatewayHandler.NewHandler(log, token.NewVerifier(cfg.JWT), table, forwarder)

	router := app.NewRouter(log)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Tracing(serviceName))

		r.Post("/auth/login", auth.Login)
		r.HandleFunc(route.Prefix+"*", proxy.Proxy)
	})

	httpServer, err := httpapp.NewApp(log, router, cfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		log:             log,
		cfg:             cfg,
		HTTPServer:      httpServer,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run serves until ctx is done, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	app.Serve(gctx, g, a.HTTPServer, a.cfg.HTTP.ShutdownTimeout)

	err := g.Wait()

	if tErr := a.shutdownTracing(context.WithoutCancel(ctx)); tErr != nil {
		a.log.Warn("failed to flush traces", slog.String("error", tErr.Error()))
	}

	return err
}
