package main

import (
	"fmt"
	"log/slog"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/app"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/app/sales"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/databases/postgres"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

// The standalone dispatcher drains the sales outbox without serving HTTP. It
// can run next to sales_service instances; SKIP LOCKED keeps them from
// publishing the same row at once.
func main() {
	cfg := config.InitConfig()

	log := logger.SetupLogger(cfg.Env)

	ctx, stop := app.SignalContext()
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, log, cfg.Postgres.DSN())
	if err != nil {
		panic(fmt.Sprintf("failed connect to db: %v", err.Error()))
	}
	defer db.Close()

	outbox, err := sales.NewOutbox(ctx, log, &cfg, db)
	if err != nil {
		panic(fmt.Sprintf("failed to connect outbox sinks: %v", err.Error()))
	}
	defer outbox.Close()

	sent, err := outbox.Dispatcher.Dispatch(ctx)
	if err != nil {
		log.Error("initial outbox pass failed", logger.Err(err))
	}
	log.Info("initial outbox pass done", slog.Int("sent", sent))

	if err = outbox.Dispatcher.Run(ctx); err != nil {
		panic(fmt.Sprintf("outbox dispatcher error: %v", err.Error()))
	}

	log.Info("outbox dispatcher stopped")
}
