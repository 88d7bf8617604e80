// Package telemetry wires OpenTelemetry metrics for the gateway. Metrics
// are exported to a rotating file so they can be inspected locally or
// scraped by a collector.
package telemetry

import (
	"context"
	"fmt"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/cleoai/cleo/internal/version"
)

// Telemetry owns the meter provider and the gateway's instruments. A nil
// *Telemetry is valid and records nothing.
type Telemetry struct {
	provider *sdkmetric.MeterProvider

	connections metric.Int64Counter
	requests    metric.Int64Counter
	errors      metric.Int64Counter
	sessions    metric.Int64UpDownCounter
}

// Init sets up the meter provider with a file exporter. file may be empty,
// in which case metrics land in <logsDir>/cleo_metrics.log.
func Init(ctx context.Context, file, logsDir string) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("cleo"),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	if file == "" {
		file = filepath.Join(logsDir, "cleo_metrics.log")
	}
	out := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter("cleo/gateway")
	t := &Telemetry{provider: provider}

	if t.connections, err = meter.Int64Counter("gateway.connections",
		metric.WithDescription("Total accepted WebSocket connections")); err != nil {
		return nil, err
	}
	if t.requests, err = meter.Int64Counter("gateway.requests",
		metric.WithDescription("Inbound capability requests")); err != nil {
		return nil, err
	}
	if t.errors, err = meter.Int64Counter("gateway.errors",
		metric.WithDescription("Error events emitted to clients")); err != nil {
		return nil, err
	}
	if t.sessions, err = meter.Int64UpDownCounter("gateway.sessions",
		metric.WithDescription("Live sessions in the registry")); err != nil {
		return nil, err
	}

	return t, nil
}

// Shutdown flushes and stops the meter provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// ConnectionOpened records a new connection and session.
func (t *Telemetry) ConnectionOpened(ctx context.Context) {
	if t == nil {
		return
	}
	t.connections.Add(ctx, 1)
	t.sessions.Add(ctx, 1)
}

// SessionClosed records a session leaving the registry (disconnect or
// eviction).
func (t *Telemetry) SessionClosed(ctx context.Context) {
	if t == nil {
		return
	}
	t.sessions.Add(ctx, -1)
}

// Request records an inbound request for the given capability.
func (t *Telemetry) Request(ctx context.Context, capability string) {
	if t == nil {
		return
	}
	t.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", capability)))
}

// Error records an error event with its status classification.
func (t *Telemetry) Error(ctx context.Context, capability string, status int) {
	if t == nil {
		return
	}
	t.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("capability", capability),
		attribute.Int("status", status),
	))
}
