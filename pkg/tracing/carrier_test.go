package tracing

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrierRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03},
		SpanID:     trace.SpanID{0x0a, 0x0b},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	headers := InjectHeaders(ctx, nil)
	require.Contains(t, headers, "traceparent")

	extracted := trace.SpanContextFromContext(ExtractHeaders(context.Background(), headers))
	require.Equal(t, spanCtx.TraceID(), extracted.TraceID())
	require.Equal(t, spanCtx.SpanID(), extracted.SpanID())
}

func TestHeaderCarrierIgnoresNonStringValues(t *testing.T) {
	carrier := HeaderCarrier(amqp.Table{"x-delivery-count": int64(3), "traceparent": "abc"})

	require.Equal(t, "", carrier.Get("x-delivery-count"))
	require.Equal(t, "abc", carrier.Get("traceparent"))
	require.ElementsMatch(t, []string{"x-delivery-count", "traceparent"}, carrier.Keys())
}
