// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	// ProtocolHTTP ships records as protobuf over HTTP (the default).
	ProtocolHTTP = "http"
	// ProtocolGRPC ships records over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultExportTimeout bounds a single batch export.
	DefaultExportTimeout = 10 * time.Second
	// DefaultFlushTimeout bounds the final flush before exit.
	DefaultFlushTimeout = 15 * time.Second

	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
)

// Config holds the log shipping configuration. It is built once at
// startup and must not be modified after Install.
type Config struct {
	// Transport
	Endpoint string // full URL, e.g. https://otlp-listener.logz.io/v1/logs
	Protocol string // "http" or "grpc"
	Insecure bool   // host:port endpoints only, a URL scheme decides itself

	// Credentials and producer identification
	Token     string // sent as "Authorization: Bearer <token>"
	UserAgent string // sent as "User-Agent: <agent>"

	// Optional sinks
	Console       bool // mirror records to stdout
	ExportMetrics bool // ship the roll counter via OTLP metrics

	// Resource attributes
	ServiceName string
	Environment string

	// Extra headers. Authorization and User-Agent above take precedence.
	Headers map[string]string

	ExportTimeout time.Duration
	FlushTimeout  time.Duration
}

// Validate reports configuration that can never produce a working exporter.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("otel: endpoint is required")
	}
	switch c.Protocol {
	case "", ProtocolHTTP, ProtocolGRPC:
	default:
		return fmt.Errorf("otel: unsupported protocol %q", c.Protocol)
	}
	if hasScheme(c.Endpoint) {
		if err := validateEndpointURL(c.Endpoint); err != nil {
			return err
		}
		if c.Insecure {
			return errors.New("otel: insecure cannot be combined with an endpoint URL, use the http scheme instead")
		}
	}
	return nil
}

// validateEndpointURL rejects URLs the exporters would otherwise drop in
// favour of their localhost default.
func validateEndpointURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("otel: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("otel: endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("otel: endpoint %q has no host", endpoint)
	}
	return nil
}

// ExportHeaders returns the headers attached to every export request.
func (c *Config) ExportHeaders() map[string]string {
	headers := make(map[string]string, len(c.Headers)+2)
	for k, v := range c.Headers {
		headers[k] = v
	}
	if c.Token != "" {
		headers[headerAuthorization] = "Bearer " + c.Token
	}
	if c.UserAgent != "" {
		headers[headerUserAgent] = c.UserAgent
	}
	return headers
}

func (c *Config) exportTimeout() time.Duration {
	if c.ExportTimeout > 0 {
		return c.ExportTimeout
	}
	return DefaultExportTimeout
}

func (c *Config) flushTimeout() time.Duration {
	if c.FlushTimeout > 0 {
		return c.FlushTimeout
	}
	return DefaultFlushTimeout
}
