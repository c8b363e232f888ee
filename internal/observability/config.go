package observability

import (
	"strings"

	"github.com/smallbiznis/quotation/internal/config"
	"github.com/smallbiznis/quotation/internal/observability/metrics"
	"github.com/smallbiznis/quotation/internal/observability/tracing"
)

func provideMetricsConfig(cfg config.Config) metrics.Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "quotation"
	}
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		ExporterProtocol: cfg.OTLPProtocol,
		ServiceName:      serviceName,
		Environment:      strings.TrimSpace(cfg.Environment),
	}
}

func provideTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      strings.TrimSpace(cfg.AppName),
		ServiceVersion:   strings.TrimSpace(cfg.AppVersion),
		Environment:      strings.TrimSpace(cfg.Environment),
		ExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		ExporterProtocol: cfg.OTLPProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}
