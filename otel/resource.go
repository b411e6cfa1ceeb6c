// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"context"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// DefaultServiceName is used when the config leaves ServiceName empty.
const DefaultServiceName = "roll-dice"

// NewResource creates an OTEL resource describing this producer. Each
// process run gets its own service.instance.id.
func NewResource(ctx context.Context, config Config, version string) (*resource.Resource, error) {
	name := config.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
		semconv.ServiceInstanceID(uuid.NewString()),
	}

	if version != "" {
		attrs = append(attrs, semconv.ServiceVersion(version))
	}

	if config.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", config.Environment))
	}

	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithProcessRuntimeDescription(),
		resource.WithOS(),
		resource.WithHost(),
	)
}
