// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package command

import (
	"os"

	"gopkg.in/alecthomas/kingpin.v2"
)

// program version
var version = "1.0.0"

// Command parses the command line arguments and then executes a
// subcommand program.
func Command() {
	app := kingpin.New("drone-dice", "rolls a die and ships the result to an OTLP collector")
	app.Version(version)
	registerRoll(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
