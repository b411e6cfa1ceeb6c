// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	otelglobal "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ErrAlreadyInstalled is returned by Install when a pipeline is already
// installed in this process.
var ErrAlreadyInstalled = errors.New("otel: log pipeline already installed")

// threshold is the minimum level shipped to the collector.
const threshold = logrus.InfoLevel

var (
	mu        sync.Mutex
	installed *Pipeline

	// consoleOutput receives records when Config.Console is set.
	consoleOutput io.Writer = os.Stdout
)

// Pipeline is an installed log export pipeline. Records logged through
// the hooked logrus logger are batched and shipped in the background
// until Flush is called.
type Pipeline struct {
	config   Config
	provider *sdklog.LoggerProvider
	hook     *Hook
	metrics  *MetricsBridge

	flushOnce sync.Once
	flushErr  error
}

// Install builds the exporters from config, registers the resulting
// provider as the process-wide OTEL logger provider and attaches the
// export hook to logger (the logrus standard logger when nil). It can
// succeed only once per process; later calls return ErrAlreadyInstalled.
func Install(ctx context.Context, config *Config, version string, logger *logrus.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	if installed != nil {
		return nil, ErrAlreadyInstalled
	}

	logrus.WithField("endpoint", config.Endpoint).
		WithField("protocol", config.Protocol).
		Debugln("initializing OTLP log export")

	exporters := make([]sdklog.Exporter, 0, 2)
	logExporter, err := createLogExporter(ctx, config)
	if err != nil {
		return nil, err
	}
	exporters = append(exporters, logExporter)

	if config.Console {
		consoleExporter, err := createConsoleExporter(consoleOutput)
		if err != nil {
			_ = logExporter.Shutdown(ctx)
			return nil, err
		}
		exporters = append(exporters, consoleExporter)
	}

	var reader sdkmetric.Reader
	if config.ExportMetrics {
		reader, err = createMetricReader(ctx, config)
		if err != nil {
			for _, exp := range exporters {
				_ = exp.Shutdown(ctx)
			}
			return nil, err
		}
	}

	p := newPipeline(ctx, config, version, reader, exporters...)
	p.register(logger)
	installed = p

	logrus.Debugln("OTLP log export installed")
	return p, nil
}

// newPipeline wires exporters into a provider without touching global state.
func newPipeline(ctx context.Context, config *Config, version string, reader sdkmetric.Reader, exporters ...sdklog.Exporter) *Pipeline {
	res, err := NewResource(ctx, *config, version)
	if err != nil {
		// resource.New returns a usable partial resource alongside detector errors.
		logrus.WithError(err).Warn("incomplete OTEL resource")
	}

	opts := make([]sdklog.LoggerProviderOption, 0, len(exporters)+1)
	for _, exp := range exporters {
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp,
			sdklog.WithExportTimeout(config.exportTimeout()),
		)))
	}
	if res != nil {
		opts = append(opts, sdklog.WithResource(res))
	}

	provider := sdklog.NewLoggerProvider(opts...)

	p := &Pipeline{
		config:   *config,
		provider: provider,
		hook:     NewHook(provider.Logger(instrumentationName), threshold),
	}

	if reader != nil {
		var metricOpts []sdkmetric.Option
		if res != nil {
			metricOpts = append(metricOpts, sdkmetric.WithResource(res))
		}
		p.metrics = newMetricsBridge(reader, metricOpts...)
	}
	return p
}

// register makes p the process-wide log sink.
func (p *Pipeline) register(logger *logrus.Logger) {
	// SDK errors (export timeouts, refused connections) are reported
	// on the process logger, never through the hooked logger.
	otelglobal.SetErrorHandler(otelglobal.ErrorHandlerFunc(func(err error) {
		logrus.WithError(err).Errorln("OTEL SDK error")
	}))
	global.SetLoggerProvider(p.provider)

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.SetLevel(threshold)
	logger.AddHook(p.hook)
}

// Meter returns a meter shipping through the pipeline, or a no-op meter
// when metric export is disabled.
func (p *Pipeline) Meter(name string) metric.Meter {
	if p.metrics == nil {
		return noop.NewMeterProvider().Meter(name)
	}
	return p.metrics.Meter(name)
}

// Flush blocks until buffered records are exported or the flush timeout
// elapses, then shuts the pipeline down. Only the first call does any
// work; later calls return its result.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.flushOnce.Do(func() {
		p.flushErr = p.flush(ctx)
	})
	return p.flushErr
}

func (p *Pipeline) flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.flushTimeout())
	defer cancel()

	var errs []error

	// Export failures are reported through the OTEL error handler.
	if err := p.provider.ForceFlush(ctx); err != nil {
		logrus.WithError(err).Warnln("OTEL log flush incomplete")
	}

	// LoggerProvider.Shutdown -> BatchProcessor.Shutdown -> exporter.Shutdown.
	if err := p.provider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("logger provider shutdown: %w", err))
	}

	if p.metrics != nil {
		if err := p.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics bridge shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("OTEL shutdown errors: %v", errs)
	}
	return nil
}
