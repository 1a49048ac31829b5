package observability

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

const DefaultServiceName = "bmu-faultfinder"

// TracingConfig selects the trace pipeline. app.LoadConfig fills it from the
// OTEL_* variables; the bmu fields are set once the catalog is loaded.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string

	// Endpoint is an OTLP/HTTP host:port. Empty selects the stdout exporter.
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64

	JobStore   string
	FaultFlows int
	Strict     bool
}

var (
	tracingOnce sync.Once
	tracingStop func(context.Context) error
)

// InitTracing installs the global tracer provider once per process. The
// returned shutdown func is nil while tracing is off; app wiring mounts
// otelgin only when it is not.
func InitTracing(ctx context.Context, log *logger.Logger, cfg TracingConfig) func(context.Context) error {
	tracingOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		tp, err := newTracerProvider(ctx, cfg)
		if err != nil {
			log.Warn("tracing disabled", "error", err)
			return
		}
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		tracingStop = tp.Shutdown
		log.Info("tracing enabled",
			"service", serviceName(cfg),
			"exporter", exporterName(cfg),
			"sample_ratio", ClampSampleRatio(cfg.SampleRatio),
		)
	})
	return tracingStop
}

func newTracerProvider(ctx context.Context, cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s exporter: %w", exporterName(cfg), err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(ResourceAttributes(cfg)...)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ClampSampleRatio(cfg.SampleRatio)))),
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)),
	), nil
}

// ResourceAttributes describes this process: the service identity plus the
// catalog and job log setup it is serving with.
func ResourceAttributes(cfg TracingConfig) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName(cfg)),
		attribute.String("bmu.job_store", strings.TrimSpace(cfg.JobStore)),
		attribute.Int("bmu.catalog.fault_flows", cfg.FaultFlows),
		attribute.Bool("bmu.catalog.strict", cfg.Strict),
	}
	if v := strings.TrimSpace(cfg.Version); v != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(v))
	}
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		attrs = append(attrs, attribute.String("deployment.environment", env))
	}
	return attrs
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func exporterName(cfg TracingConfig) string {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return "stdout"
	}
	return "otlphttp"
}

func serviceName(cfg TracingConfig) string {
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		return name
	}
	return DefaultServiceName
}

// ClampSampleRatio keeps a configured ratio inside [0, 1]; NaN samples
// everything.
func ClampSampleRatio(f float64) float64 {
	switch {
	case math.IsNaN(f), f > 1:
		return 1
	case f < 0:
		return 0
	}
	return f
}

// ParseOTLPHeaders reads the "k1=v1,k2=v2" form. Entries without a key or a
// value are skipped.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		if headers == nil {
			headers = map[string]string{}
		}
		headers[key] = val
	}
	return headers
}
