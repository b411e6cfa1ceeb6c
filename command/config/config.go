// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/drone-runners/drone-dice/otel"
)

// Hard-coded shipping defaults. The environment may override them.
const (
	DefaultEndpoint  = "https://otlp-listener.logz.io/v1/logs"
	DefaultToken     = "<LOG-SHIPPING-TOKEN>"
	DefaultUserAgent = "logzio-go-logs-otlp"
)

// Config provides the command configuration.
type Config struct {
	Debug bool `envconfig:"DICE_DEBUG"`
	Trace bool `envconfig:"DICE_TRACE"`

	OTLP struct {
		Endpoint      string            `envconfig:"DICE_OTLP_ENDPOINT" default:"https://otlp-listener.logz.io/v1/logs"`
		Token         string            `envconfig:"DICE_OTLP_TOKEN" default:"<LOG-SHIPPING-TOKEN>"`
		UserAgent     string            `envconfig:"DICE_OTLP_USER_AGENT" default:"logzio-go-logs-otlp"`
		Protocol      string            `envconfig:"DICE_OTLP_PROTOCOL" default:"http"`
		Insecure      bool              `envconfig:"DICE_OTLP_INSECURE"`
		Console       bool              `envconfig:"DICE_OTLP_CONSOLE"`
		ExportMetrics bool              `envconfig:"DICE_OTLP_EXPORT_METRICS"`
		Headers       map[string]string `envconfig:"DICE_OTLP_HEADERS"`
		ExportTimeout time.Duration     `envconfig:"DICE_OTLP_EXPORT_TIMEOUT" default:"10s"`
		FlushTimeout  time.Duration     `envconfig:"DICE_OTLP_FLUSH_TIMEOUT" default:"15s"`
	}

	Service struct {
		Name        string `envconfig:"DICE_SERVICE_NAME" default:"roll-dice"`
		Environment string `envconfig:"DICE_ENVIRONMENT"`
	}
}

// FromEnviron returns the configuration loaded from the environment.
func FromEnviron() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

// Exporter maps the loaded configuration onto the exporter configuration.
func (c *Config) Exporter() *otel.Config {
	return &otel.Config{
		Endpoint:      c.OTLP.Endpoint,
		Protocol:      c.OTLP.Protocol,
		Insecure:      c.OTLP.Insecure,
		Token:         c.OTLP.Token,
		UserAgent:     c.OTLP.UserAgent,
		Console:       c.OTLP.Console,
		ExportMetrics: c.OTLP.ExportMetrics,
		ServiceName:   c.Service.Name,
		Environment:   c.Service.Environment,
		Headers:       c.OTLP.Headers,
		ExportTimeout: c.OTLP.ExportTimeout,
		FlushTimeout:  c.OTLP.FlushTimeout,
	}
}
