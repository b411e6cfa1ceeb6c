// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	otellog "go.opentelemetry.io/otel/log"
)

const (
	// instrumentationName is the scope name attached to every record.
	instrumentationName = "github.com/drone-runners/drone-dice/otel"
	// baseAttributeCapacity is the base capacity for log record attributes.
	baseAttributeCapacity = 4
)

// Hook is a logrus.Hook that converts log entries into OTEL log records
// and hands them to an OTEL logger.
type Hook struct {
	logger    otellog.Logger
	threshold logrus.Level
}

// NewHook returns a hook emitting to logger. Entries less severe than
// threshold are ignored.
func NewHook(logger otellog.Logger, threshold logrus.Level) *Hook {
	return &Hook{
		logger:    logger,
		threshold: threshold,
	}
}

// Levels returns the levels at or above the threshold.
func (h *Hook) Levels() []logrus.Level {
	var levels []logrus.Level
	for _, level := range logrus.AllLevels {
		if level <= h.threshold {
			levels = append(levels, level)
		}
	}
	return levels
}

// Fire converts a logrus entry into an OTEL log record and emits it.
func (h *Hook) Fire(entry *logrus.Entry) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			// the logger can't be used here, it would re-enter the hook.
			retErr = fmt.Errorf("otel log hook panic: %v", r)
		}
	}()

	if entry.Level > h.threshold {
		return nil
	}

	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}

	h.logger.Emit(ctx, newRecord(entry))
	return nil
}

// newRecord builds the OTEL record for a logrus entry.
func newRecord(entry *logrus.Entry) otellog.Record {
	var record otellog.Record
	record.SetTimestamp(entry.Time)
	record.SetBody(otellog.StringValue(entry.Message))
	record.SetSeverity(mapLogrusLevel(entry.Level))
	record.SetSeverityText(entry.Level.String())

	attrs := make([]otellog.KeyValue, 0, len(entry.Data)+baseAttributeCapacity)
	for k, v := range entry.Data {
		if k == logrus.ErrorKey {
			continue
		}
		attrs = append(attrs, convertField(k, v))
	}

	if entry.HasCaller() {
		attrs = append(attrs,
			otellog.String("code.filepath", entry.Caller.File),
			otellog.String("code.function", entry.Caller.Function),
			otellog.Int("code.lineno", entry.Caller.Line),
		)
	}

	if errValue, ok := entry.Data[logrus.ErrorKey]; ok {
		if err, isErr := errValue.(error); isErr {
			attrs = append(attrs, otellog.String("exception.message", err.Error()))
		} else {
			attrs = append(attrs, otellog.String("exception.message", fmt.Sprint(errValue)))
		}
	}

	record.AddAttributes(attrs...)
	return record
}

// convertField keeps numeric and boolean fields typed; everything else is
// stringified.
func convertField(k string, v interface{}) otellog.KeyValue {
	switch val := v.(type) {
	case string:
		return otellog.String(k, val)
	case int:
		return otellog.Int(k, val)
	case int64:
		return otellog.Int64(k, val)
	case float64:
		return otellog.Float64(k, val)
	case bool:
		return otellog.Bool(k, val)
	default:
		return otellog.String(k, fmt.Sprintf("%v", v))
	}
}

// mapLogrusLevel converts logrus log level to OTEL severity.
func mapLogrusLevel(level logrus.Level) otellog.Severity {
	switch level {
	case logrus.TraceLevel:
		return otellog.SeverityTrace
	case logrus.DebugLevel:
		return otellog.SeverityDebug
	case logrus.InfoLevel:
		return otellog.SeverityInfo
	case logrus.WarnLevel:
		return otellog.SeverityWarn
	case logrus.ErrorLevel:
		return otellog.SeverityError
	case logrus.FatalLevel:
		return otellog.SeverityFatal
	case logrus.PanicLevel:
		return otellog.SeverityFatal4
	default:
		return otellog.SeverityInfo
	}
}
