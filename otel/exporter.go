// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	logsPath    = "/v1/logs"
	metricsPath = "/v1/metrics"

	// metricExportTimeout is the timeout for metric export operations.
	metricExportTimeout = 30 * time.Second
)

// hasScheme reports whether the endpoint is a full URL rather than host:port.
func hasScheme(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

// createLogExporter creates an OTLP log exporter based on config.
func createLogExporter(ctx context.Context, config *Config) (sdklog.Exporter, error) {
	headers := config.ExportHeaders()

	switch config.Protocol {
	case ProtocolGRPC:
		var opts []otlploggrpc.Option
		if hasScheme(config.Endpoint) {
			opts = append(opts, otlploggrpc.WithEndpointURL(config.Endpoint))
		} else {
			opts = append(opts, otlploggrpc.WithEndpoint(config.Endpoint))
			if config.Insecure {
				opts = append(opts, otlploggrpc.WithInsecure())
			}
		}
		if len(headers) > 0 {
			opts = append(opts, otlploggrpc.WithHeaders(headers))
		}
		opts = append(opts, otlploggrpc.WithTimeout(config.exportTimeout()))
		exp, err := otlploggrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC log exporter: %w", err)
		}
		return exp, nil

	default: // http
		var opts []otlploghttp.Option
		if hasScheme(config.Endpoint) {
			opts = append(opts, otlploghttp.WithEndpointURL(config.Endpoint))
		} else {
			opts = append(opts,
				otlploghttp.WithEndpoint(config.Endpoint),
				otlploghttp.WithURLPath(logsPath),
			)
			if config.Insecure {
				opts = append(opts, otlploghttp.WithInsecure())
			}
		}
		if len(headers) > 0 {
			opts = append(opts, otlploghttp.WithHeaders(headers))
		}
		opts = append(opts, otlploghttp.WithTimeout(config.exportTimeout()))
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP log exporter: %w", err)
		}
		return exp, nil
	}
}

// createConsoleExporter creates an exporter that mirrors records to w.
func createConsoleExporter(w io.Writer) (sdklog.Exporter, error) {
	exp, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout log exporter: %w", err)
	}
	return exp, nil
}

// metricsEndpointURL derives the metrics URL from a logs URL by swapping the
// signal path, e.g. https://host/v1/logs -> https://host/v1/metrics.
func metricsEndpointURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	switch {
	case strings.HasSuffix(u.Path, logsPath):
		u.Path = strings.TrimSuffix(u.Path, logsPath) + metricsPath
	default:
		u.Path = strings.TrimSuffix(u.Path, "/") + metricsPath
	}
	return u.String(), nil
}

// createMetricReader creates an OTLP metric periodic reader based on config.
func createMetricReader(ctx context.Context, config *Config) (sdkmetric.Reader, error) {
	headers := config.ExportHeaders()

	switch config.Protocol {
	case ProtocolGRPC:
		var opts []otlpmetricgrpc.Option
		if hasScheme(config.Endpoint) {
			opts = append(opts, otlpmetricgrpc.WithEndpointURL(config.Endpoint))
		} else {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(config.Endpoint))
			if config.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}
		}
		if len(headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(headers))
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC metric exporter: %w", err)
		}
		return newPeriodicReader(exporter), nil

	default: // http
		var opts []otlpmetrichttp.Option
		if hasScheme(config.Endpoint) {
			endpoint, err := metricsEndpointURL(config.Endpoint)
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlpmetrichttp.WithEndpointURL(endpoint))
		} else {
			opts = append(opts,
				otlpmetrichttp.WithEndpoint(config.Endpoint),
				otlpmetrichttp.WithURLPath(metricsPath),
			)
			if config.Insecure {
				opts = append(opts, otlpmetrichttp.WithInsecure())
			}
		}
		if len(headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(headers))
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP metric exporter: %w", err)
		}
		return newPeriodicReader(exporter), nil
	}
}

func newPeriodicReader(exporter sdkmetric.Exporter) sdkmetric.Reader {
	return sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(DefaultMetricsExportInterval),
		sdkmetric.WithTimeout(metricExportTimeout),
	)
}
