package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/app"
	httpapp "github.com/tumbleweedd/two_services_system/order_inventory/internal/app/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/cache_impl"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/middleware"
	createHandler "github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/order/create"
	getHandler "github.com/tumbleweedd/two_services_system/order_inventory/internal/delivery/http/order/get"
	orderRepository "github.com/tumbleweedd/two_services_system/order_inventory/internal/repository/order"
	outboxRepository "github.com/tumbleweedd/two_services_system/order_inventory/internal/repository/outbox"
	orderCreationService "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/order/create"
	orderRetrievalService "github.com/tumbleweedd/two_services_system/order_inventory/internal/services/order/get"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/services/outbox/dispatch"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/brokers/kafka/producer"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/brokers/rabbitmq"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/databases/postgres"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const serviceName = "sales"

type App struct {
	log        *slog.Logger
	cfg        *config.Config
	HTTPServer *httpapp.App
	Outbox     *Outbox

	db              *postgres.PgDB
	shutdownTracing func(context.Context) error
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.sales.NewApp"

	shutdownTracing := app.SetupTracing(ctx, log, cfg.Tracing, serviceName)

	db, err := postgres.NewPostgresDB(ctx, log, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: connect to postgres: %w", op, err)
	}

	outbox, err := NewOutbox(ctx, log, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo := orderRepository.NewOrderRepository(log, db.GetDB())
	cache := cache_impl.NewOrderCache(log, cfg.Cache.Size, cfg.Cache.TTL)

	orderCreationSvc := orderCreationService.New(log, cache, repo, outbox.Dispatcher)
	orderRetrievalSvc := orderRetrievalService.New(log, cache, repo)

	create := createHandler.NewHandler(log, orderCreationSvc)
	get := getHandler.NewHandler(log, orderRetrievalSvc)

	router := app.NewRouter(log)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Tracing(serviceName))
		r.Use(middleware.RequireIdentity)

		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", create.Create)
			r.Get("/", get.Orders)
			r.Get("/{id}", get.Order)
		})
	})

	httpServer, err := httpapp.NewApp(log, router, cfg.HTTP)
	if err != nil {
		_ = outbox.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		log:             log,
		cfg:             cfg,
		HTTPServer:      httpServer,
		Outbox:          outbox,
		db:              db,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run serves HTTP and drains the outbox in the background until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	app.Serve(gctx, g, a.HTTPServer, a.cfg.HTTP.ShutdownTimeout)
	g.Go(func() error {
		return a.Outbox.Dispatcher.Run(gctx)
	})

	err := g.Wait()

	return errors.Join(err, a.close(ctx))
}

func (a *App) close(ctx context.Context) error {
	err := a.Outbox.Close()

	if dbErr := a.db.Close(); dbErr != nil {
		err = errors.Join(err, fmt.Errorf("close postgres: %w", dbErr))
	}

	if tErr := a.shutdownTracing(context.WithoutCancel(ctx)); tErr != nil {
		a.log.Warn("failed to flush traces", logger.Err(tErr))
	}

	a.log.Info("sales service stopped")

	return err
}

// Outbox is the dispatcher together with the broker connections it owns.
type Outbox struct {
	Dispatcher *dispatch.Service

	rabbit *rabbitmq.Connection
	kafka  *producer.Producer
}

// NewOutbox connects the sinks: RabbitMQ always, Kafka when enabled.
func NewOutbox(ctx context.Context, log *slog.Logger, cfg *config.Config, db *postgres.PgDB) (*Outbox, error) {
	const op = "app.sales.NewOutbox"

	conn, err := rabbitmq.Dial(ctx, log, rabbitmq.DialConfig{
		URL:      cfg.RabbitMQ.URL,
		Attempts: cfg.RabbitMQ.DialAttempts,
		Backoff:  cfg.RabbitMQ.DialBackoff,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	publisher, err := rabbitmq.NewPublisher(conn.Channel(), rabbitmq.Topology{
		Queue:      cfg.RabbitMQ.Queue,
		DeadLetter: cfg.RabbitMQ.DeadLetter,
	}, cfg.RabbitMQ.ConfirmTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	o := &Outbox{rabbit: conn}
	sinks := []dispatch.Sink{dispatch.NewRabbitSink(publisher)}

	if cfg.Kafka.Enabled {
		o.kafka, err = producer.New(cfg.Kafka.BrokerList, cfg.Kafka.OrderEventTopic)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sinks = append(sinks, dispatch.NewKafkaSink(o.kafka))
	}

	o.Dispatcher = dispatch.New(log, outboxRepository.New(log, db.GetDB()), cfg.Outbox, sinks...)

	log.Info("outbox sinks ready",
		slog.String("op", op),
		slog.String("queue", cfg.RabbitMQ.Queue),
		slog.Bool("kafka", cfg.Kafka.Enabled),
	)

	return o, nil
}

func (o *Outbox) Close() error {
	var err error

	if o.kafka != nil {
		if kErr := o.kafka.Close(); kErr != nil {
			err = fmt.Errorf("close kafka producer: %w", kErr)
		}
	}

	if rErr := o.rabbit.Close(); rErr != nil {
		err = errors.Join(err, fmt.Errorf("close rabbitmq: %w", rErr))
	}

	return err
}
