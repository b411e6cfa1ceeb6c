// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package command

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/drone-runners/drone-dice/command/config"
)

// setupLogger configures the process logger used for diagnostics.
func setupLogger(cfg *config.Config) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(newFormatter(os.Stderr))
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if cfg.Trace {
		logrus.SetLevel(logrus.TraceLevel)
	}
}

// newEventLogger returns the logger whose entries are shipped to the
// collector. It is kept apart from the process logger so that
// diagnostics never reach the collector.
func newEventLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if f, ok := out.(*os.File); ok {
		logger.SetFormatter(newFormatter(f))
	}
	return logger
}

func newFormatter(f *os.File) logrus.Formatter {
	if isatty.IsTerminal(f.Fd()) {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}
