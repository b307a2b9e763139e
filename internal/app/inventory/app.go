package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/app"
	httpapp "github.com/tumbleweedd/two_services_system/order_inventory/internal/app/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	productHandler "github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/product"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/reconciler"
	productRepository "github.com/tumbleweedd/two_services_system/order_inventory/internal/repository/product"
	productService "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/product"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/stock/reconcile"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/brokers/rabbitmq"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/databases/postgres"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const serviceName = "inventory"

type App struct {
	log        *slog.Logger
	cfg        *config.Config
	HTTPServer *httpapp.App
	Reconciler *reconciler.Reconciler

	db              *postgres.PgDB
	rabbit          *rabbitmq.Connection
	shutdownTracing func(context.Context) error
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.inventory.NewApp"

	shutdownTracing := app.SetupTracing(ctx, log, cfg.Tracing, serviceName)

	db, err := postgres.NewPostgresDB(ctx, log, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: connect to postgres: %w", op, err)
	}

	repo := productRepository.NewProductRepository(log, db.GetDB())

	conn, err := rabbitmq.Dial(ctx, log, rabbitmq.DialConfig{
		URL:      cfg.RabbitMQ.URL,
		Attempts: cfg.RabbitMQ.DialAttempts,
		Backoff:  cfg.RabbitMQ.DialBackoff,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		log:             log,
		cfg:             cfg,
		db:              db,
		rabbit:          conn,
		shutdownTracing: shutdownTracing,
	}

	consumer, err := rabbitmq.NewConsumer(conn.Channel(), rabbitmq.Topology{
		Queue:      cfg.RabbitMQ.Queue,
		DeadLetter: cfg.RabbitMQ.DeadLetter,
	}, reconciler.Prefetch)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", op, err), a.close(ctx))
	}

	a.Reconciler, err = reconciler.New(log, consumer, reconcile.New(log, repo), cfg.Reconciler)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", op, err), a.close(ctx))
	}

	products := productHandler.NewHandler(log, productService.New(log, repo))

	router := app.NewRouter(log)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Tracing(serviceName))
		r.Use(middleware.RequireIdentity)

		r.Route("/api/products", products.Routes)
	})

	a.HTTPServer, err = httpapp.NewApp(log, router, cfg.HTTP)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", op, err), a.close(ctx))
	}

	return a, nil
}

// Run serves HTTP and reconciles stock until ctx is done. If the broker drops
// the consumer, Run stops the server too and returns the error.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	app.Serve(gctx, g, a.HTTPServer, a.cfg.HTTP.ShutdownTimeout)
	g.Go(func() error {
		return a.Reconciler.Run(gctx)
	})

	err := g.Wait()

	return errors.Join(err, a.close(ctx))
}

// close runs after the reconciler returned, so no message is in hand when
// the channel goes away.
func (a *App) close(ctx context.Context) error {
	var err error

	if rErr := a.rabbit.Close(); rErr != nil {
		err = fmt.Errorf("close rabbitmq: %w", rErr)
	}

	if dbErr := a.db.Close(); dbErr != nil {
		err = errors.Join(err, fmt.Errorf("close postgres: %w", dbErr))
	}

	if tErr := a.shutdownTracing(context.WithoutCancel(ctx)); tErr != nil {
		a.log.Warn("failed to flush traces", logger.Err(tErr))
	}

	a.log.Info("inventory service stopped")

	return err
}
