// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/drone/signal"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/drone-runners/drone-dice/command/config"
	"github.com/drone-runners/drone-dice/dice"
	"github.com/drone-runners/drone-dice/otel"
)

const (
	rollMessage = "Player is rolling the dice: %d"
	doneMarker  = "Done"

	meterName = "github.com/drone-runners/drone-dice/command"
)

type rollCommand struct {
	envfile string

	roller dice.Roller
	events *logrus.Logger
	stdout io.Writer
}

func (c *rollCommand) run(*kingpin.ParseContext) error {
	// the env file is optional.
	_ = godotenv.Load(c.envfile)

	cfg, err := config.FromEnviron()
	if err != nil {
		return errors.Wrap(err, "cannot load configuration")
	}
	setupLogger(&cfg)

	ctx := signal.WithContext(context.Background())
	return c.roll(ctx, cfg.Exporter())
}

// roll installs the log pipeline, rolls once, logs the result, prints
// the completion marker and flushes, in that order.
func (c *rollCommand) roll(ctx context.Context, exporter *otel.Config) error {
	pipeline, err := otel.Install(ctx, exporter, version, c.events)
	if err != nil {
		return errors.Wrap(err, "cannot install log pipeline")
	}

	value := c.roller.Roll()
	c.events.WithContext(ctx).
		WithField("dice.value", value).
		Infof(rollMessage, value)

	if err := recordRoll(ctx, pipeline.Meter(meterName), value); err != nil {
		logrus.WithError(err).Debugln("cannot record roll metric")
	}

	fmt.Fprintln(c.stdout, doneMarker)

	// export failures are not fatal, the roll already happened.
	if err := pipeline.Flush(ctx); err != nil {
		logrus.WithError(err).Warnln("log flush did not complete")
	}
	return nil
}

func recordRoll(ctx context.Context, meter metric.Meter, value int) error {
	rolls, err := meter.Int64Counter("dice.rolls",
		metric.WithDescription("The number of rolls by roll value"),
		metric.WithUnit("{roll}"),
	)
	if err != nil {
		return err
	}
	rolls.Add(ctx, 1, metric.WithAttributes(attribute.Int("roll.value", value)))
	return nil
}

func registerRoll(app *kingpin.Application) {
	c := &rollCommand{
		roller: dice.New(),
		events: newEventLogger(os.Stderr),
		stdout: os.Stdout,
	}

	cmd := app.Command("roll", "roll the die and ship the result").
		Default().
		Action(c.run)

	cmd.Flag("env-file", "environment file").
		Default(".env").
		StringVar(&c.envfile)
}
