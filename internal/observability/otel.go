package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName = "recipebox"

	defaultOTLPEndpoint = "localhost:4317"
)

// SetupTracing installs a batching OTLP/gRPC tracer provider when enabled.
// Disabled, it leaves the global no-op provider alone and the returned
// shutdown does nothing.
func SetupTracing(ctx context.Context, enabled bool, endpoint string) (func(context.Context) error, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}
	if endpoint == "" {
		endpoint = defaultOTLPEndpoint
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(ServiceName)),
		resource.WithFromEnv(),
		resource.WithProcessRuntimeName(),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tp := newTracerProvider(res, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(2*time.Second)))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Probes hit /healthz and /readyz constantly; their spans are dropped unless
// the caller already sampled the trace.
func newTracerProvider(res *resource.Resource, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	if res != nil {
		opts = append(opts, sdktrace.WithResource(res))
	}
	opts = append(opts, sdktrace.WithSampler(sdktrace.ParentBased(probeFilter{next: sdktrace.AlwaysSample()})))
	return sdktrace.NewTracerProvider(opts...)
}

type probeFilter struct {
	next sdktrace.Sampler
}

func (s probeFilter) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	// span names are either "/route" or "METHOD /route"
	route := p.Name
	if i := strings.LastIndexByte(route, ' '); i >= 0 {
		route = route[i+1:]
	}

	switch route {
	case "/healthz", "/readyz", "/metrics":
		return sdktrace.SamplingResult{
			Decision:   sdktrace.Drop,
			Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
		}
	}
	return s.next.ShouldSample(p)
}

func (s probeFilter) Description() string { return "ProbeFilter{" + s.next.Description() + "}" }
