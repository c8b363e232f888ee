package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes assignment engine instruments.
type Metrics struct {
	assignmentsCreated metric.Int64Counter
	milestoneUpdates   metric.Int64Counter
	paymentsRecorded   metric.Int64Counter
	paymentAmount      metric.Float64Counter
	addOnsAdded        metric.Int64Counter
	versionConflicts   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "quotation"
	}
	meter := provider.Meter(name)

	assignmentsCreated, err := meter.Int64Counter("quotation_assignments_created_total")
	if err != nil {
		return nil, err
	}
	milestoneUpdates, err := meter.Int64Counter("quotation_milestone_updates_total")
	if err != nil {
		return nil, err
	}
	paymentsRecorded, err := meter.Int64Counter("quotation_payments_recorded_total")
	if err != nil {
		return nil, err
	}
	paymentAmount, err := meter.Float64Counter("quotation_payment_amount_total")
	if err != nil {
		return nil, err
	}
	addOnsAdded, err := meter.Int64Counter("quotation_addons_added_total")
	if err != nil {
		return nil, err
	}
	versionConflicts, err := meter.Int64Counter("quotation_version_conflicts_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		assignmentsCreated: assignmentsCreated,
		milestoneUpdates:   milestoneUpdates,
		paymentsRecorded:   paymentsRecorded,
		paymentAmount:      paymentAmount,
		addOnsAdded:        addOnsAdded,
		versionConflicts:   versionConflicts,
	}, nil
}

// RecordAssignmentsCreated counts assignments produced by one request.
func (m *Metrics) RecordAssignmentsCreated(ctx context.Context, category string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("package_category", strings.TrimSpace(category)))
	m.assignmentsCreated.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordMilestoneUpdate counts project milestone status changes.
func (m *Metrics) RecordMilestoneUpdate(ctx context.Context, status, assignmentStatus string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("milestone_status", strings.TrimSpace(status)),
		attribute.String("assignment_status", strings.TrimSpace(assignmentStatus)),
	)
	m.milestoneUpdates.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayment counts recorded installments and their amounts.
func (m *Metrics) RecordPayment(ctx context.Context, category string, amount float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("package_category", strings.TrimSpace(category)))
	m.paymentsRecorded.Add(ctx, 1, metric.WithAttributes(attrs...))
	if amount > 0 {
		m.paymentAmount.Add(ctx, amount, metric.WithAttributes(attrs...))
	}
}

// RecordAddOnAdded counts add-ons attached after assignment.
func (m *Metrics) RecordAddOnAdded(ctx context.Context, addOnCategory string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("addon_category", strings.TrimSpace(addOnCategory)))
	m.addOnsAdded.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordVersionConflict counts writes that lost an optimistic concurrency race.
func (m *Metrics) RecordVersionConflict(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.versionConflicts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"package_category":  {},
	"addon_category":    {},
	"milestone_status":  {},
	"assignment_status": {},
	"operation":         {},
	"route":             {},
	"method":            {},
	"status_code":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
