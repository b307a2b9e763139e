package main

import (
	"fmt"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/app"
	gatewayApp "github.com/tumbleweedd/two_services_system/order_inventory/internal/app/gateway"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

func main() {
	cfg := config.InitConfig()

	log := logger.SetupLogger(cfg.Env)

	ctx, stop := app.SignalContext()
	defer stop()

	application, err := gatewayApp.NewApp(ctx, log, &cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create app: %v", err))
	}

	if err = application.Run(ctx); err != nil {
		panic(fmt.Sprintf("gateway stopped with error: %v", err))
	}

	log.Info("application stopped")
}
