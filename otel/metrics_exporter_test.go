// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetricsBridge(t *testing.T) {
	reader := sdkmetric.NewManualReader()

	bridge := newMetricsBridge(reader)
	if bridge.meterProvider == nil {
		t.Fatal("expected non-nil meterProvider")
	}

	_ = bridge.Shutdown(context.Background())
}

func TestMetricsBridgeWithResource(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	res, _ := NewResource(context.Background(), Config{ServiceName: "test-svc"}, "1.0")

	bridge := newMetricsBridge(reader, sdkmetric.WithResource(res))
	defer bridge.Shutdown(context.Background())

	counter, err := bridge.Meter("test").Int64Counter("dice.rolls")
	if err != nil {
		t.Fatalf("Int64Counter failed: %v", err)
	}
	counter.Add(context.Background(), 1)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if rm.Resource == nil {
		t.Fatal("expected resource on collected metrics")
	}
	if len(rm.ScopeMetrics) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(rm.ScopeMetrics))
	}
}

func TestMetricsBridgeShutdownTwice(t *testing.T) {
	bridge := newMetricsBridge(sdkmetric.NewManualReader())

	if err := bridge.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown failed: %v", err)
	}
	// The provider reports repeated shutdowns; it must not panic.
	_ = bridge.Shutdown(context.Background())
}
