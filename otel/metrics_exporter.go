// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultMetricsExportInterval is the default interval for periodic metric export.
const DefaultMetricsExportInterval = 30 * time.Second

// MetricsBridge owns the MeterProvider used for roll metrics. The reader
// is drained one last time on Shutdown.
type MetricsBridge struct {
	meterProvider *sdkmetric.MeterProvider
}

// newMetricsBridge creates the bridge from a reader with optional MeterProvider options.
func newMetricsBridge(reader sdkmetric.Reader, opts ...sdkmetric.Option) *MetricsBridge {
	providerOpts := []sdkmetric.Option{
		sdkmetric.WithReader(reader),
	}
	providerOpts = append(providerOpts, opts...)

	return &MetricsBridge{
		meterProvider: sdkmetric.NewMeterProvider(providerOpts...),
	}
}

// Meter returns a named meter from the underlying provider.
func (b *MetricsBridge) Meter(name string) metric.Meter {
	return b.meterProvider.Meter(name)
}

// Shutdown collects and exports outstanding metrics, then stops the reader.
func (b *MetricsBridge) Shutdown(ctx context.Context) error {
	return b.meterProvider.Shutdown(ctx)
}
