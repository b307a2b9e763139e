package httpapp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
)

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       int
	tls        config.TLSConfig
}

// NewApp wraps handler in a server. With a client CA configured the server
// demands a client certificate signed by it, which is how backends admit
// only the gateway.
func NewApp(log *slog.Logger, handler http.Handler, cfg config.HTTPConfig) (*App, error) {
	const op = "httpapp.NewApp"

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.TLS.ClientCAFile != "" {
		if !cfg.TLS.Enabled() {
			return nil, fmt.Errorf("%s: client_ca_file requires cert_file and key_file", op)
		}

		pem, err := os.ReadFile(cfg.TLS.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("%s: read client ca: %w", op, err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%s: client ca %s holds no certificates", op, cfg.TLS.ClientCAFile)
		}

		httpServer.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ClientCAs:  pool,
			ClientAuth: tls.RequireAndVerifyClientCert,
		}
	}

	return &App{
		log:        log,
		httpServer: httpServer,
		port:       cfg.Port,
		tls:        cfg.TLS,
	}, nil
}

// Run blocks until the server stops. A graceful Stop is not an error.
func (a *App) Run() error {
	const op = "httpapp.run"

	log := a.log.With(slog.String("op", op), slog.Int("port", a.port), slog.Bool("tls", a.tls.Enabled()))

	log.Info("starting http server")

	var err error
	if a.tls.Enabled() {
		err = a.httpServer.ListenAndServeTLS(a.tls.CertFile, a.tls.KeyFile)
	} else {
		err = a.httpServer.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (a *App) Stop(ctx context.Context) error {
	const op = "httpapp.stop"

	log := a.log.With(slog.String("op", op))

	log.Info("stopping http server")

	return a.httpServer.Shutdown(ctx)
}
