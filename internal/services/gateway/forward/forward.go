package forward

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBytes = 10 << 20

// Request is what the gateway hands over after the caller was authorized.
type Request struct {
	Service   string
	Method    string
	Target    *url.URL
	RawQuery  string
	Body      []byte
	Identity  models.Identity
	RequestID string
}

// Response is relayed to the caller as is.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type Forwarder struct {
	log    logger.Logger
	client *http.Client
	tracer trace.Tracer
}

// New builds the upstream client. When the trusted boundary carries a client
// certificate the gateway presents it to backends, and when it carries a CA
// backends are verified against it instead of the system pool.
func New(log logger.Logger, cfg config.GatewayConfig) (*Forwarder, error) {
	const op = "services.gateway.forward.New"

	transport := http.DefaultTransport.(*http.Transport).Clone()

	tlsCfg, err := clientTLS(cfg.TrustedBoundary)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	transport.TLSClientConfig = tlsCfg

	return NewWithClient(log, &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}), nil
}

func NewWithClient(log logger.Logger, client *http.Client) *Forwarder {
	return &Forwarder{
		log:    log,
		client: client,
		tracer: otel.Tracer("gateway"),
	}
}

func clientTLS(cfg config.ClientTLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" && cfg.CAFile == "" {
		return nil, nil
	}

	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read upstream ca: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("upstream ca %s holds no certificates", cfg.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	return tlsCfg, nil
}

// Forward performs exactly one upstream call. Only the identity derived from
// the verified token travels upstream: nothing from the caller's own headers
// is copied except the request id.
func (f *Forwarder) Forward(ctx context.Context, req Request) (*Response, error) {
	const op = "services.gateway.forward.Forward"

	body, err := reencode(req.Method, req.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	target := *req.Target
	target.RawQuery = req.RawQuery

	ctx, span := f.tracer.Start(ctx, "gateway.forward",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.service", req.Service),
			attribute.String("http.request.method", req.Method),
		),
	)
	defer span.End()

	upstream, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bodyReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	if body != nil {
		upstream.Header.Set("Content-Type", "application/json")
	}
	upstream.Header.Set("Accept", "application/json")
	if req.Identity.Name != "" {
		upstream.Header.Set(httpLib.HeaderUserName, req.Identity.Name)
	}
	if req.Identity.Role != "" {
		upstream.Header.Set(httpLib.HeaderUserRole, string(req.Identity.Role))
	}
	if req.RequestID != "" {
		upstream.Header.Set(httpLib.HeaderRequestID, req.RequestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(upstream.Header))

	start := time.Now()
	resp, err := f.client.Do(upstream)
	metrics.UpstreamDuration.WithLabelValues(req.Service, req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream call failed")

		return nil, fmt.Errorf("%s: %w: %v", op, internalErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read upstream response")

		return nil, fmt.Errorf("%s: read response: %w: %v", op, internalErrors.ErrUpstreamUnavailable, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	f.log.InfoContext(ctx, "request forwarded",
		slog.String("op", op),
		slog.String("method", req.Method),
		slog.String("target", target.String()),
		slog.Int("status", resp.StatusCode),
		slog.String("user", req.Identity.Name),
		slog.String("role", string(req.Identity.Role)),
	)

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, nil
}

// reencode re-serializes the JSON body of POST and PUT requests. Other verbs
// never carry a body upstream.
func reencode(method string, raw []byte) ([]byte, error) {
	if method != http.MethodPost && method != http.MethodPut {
		return nil, nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", internalErrors.ErrInvalidBody, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after json value", internalErrors.ErrInvalidBody)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalErrors.ErrInvalidBody, err)
	}

	return encoded, nil
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}

	return bytes.NewReader(body)
}
