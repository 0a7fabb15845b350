package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/futig/rag-gateway"

// Tracker records telemetry events as spans. Recording never blocks on
// the exporter and never fails the caller.
type Tracker struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	logger   *zap.Logger
}

// New builds a tracker for the configured exporter, or nil when telemetry
// is disabled.
func New(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Tracker, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		)),
	)

	return NewWithProvider(provider, logger), nil
}

// NewWithProvider wraps an existing provider. Used by tests to attach a
// span recorder.
func NewWithProvider(provider *sdktrace.TracerProvider, logger *zap.Logger) *Tracker {
	return &Tracker{
		provider: provider,
		tracer:   provider.Tracer(tracerName),
		logger:   logger,
	}
}

func newExporter(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case config.TelemetryExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(os.Stdout))
	case config.TelemetryExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported exporter %q", cfg.Exporter)
	}
}

// Track turns ev into a span that starts ResponseTimeMs before OccurredAt.
func (t *Tracker) Track(ctx context.Context, ev entity.TelemetryEvent) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("telemetry event dropped", zap.String("event", ev.Name), zap.Any("panic", r))
		}
	}()

	end := ev.OccurredAt
	if end.IsZero() {
		end = time.Now()
	}
	start := end.Add(-time.Duration(ev.ResponseTimeMs) * time.Millisecond)

	attrs := []attribute.KeyValue{
		attribute.Bool("success", ev.Success),
		attribute.Int64("response_time_ms", ev.ResponseTimeMs),
	}
	if ev.ConversationID != "" {
		attrs = append(attrs, attribute.String("conversation_id", ev.ConversationID))
	}
	for k, v := range ev.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	_, span := t.tracer.Start(ctx, ev.Name,
		trace.WithTimestamp(start),
		trace.WithAttributes(attrs...),
	)
	if ev.Err != nil {
		span.RecordError(ev.Err, trace.WithTimestamp(end))
	}
	if ev.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		msg := "failed"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		span.SetStatus(codes.Error, msg)
	}
	span.End(trace.WithTimestamp(end))
}

// Shutdown flushes buffered spans.
func (t *Tracker) Shutdown(ctx context.Context) error {
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry: shutdown: %w", err)
	}
	return nil
}
