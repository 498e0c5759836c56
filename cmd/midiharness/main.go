// Command midiharness drives a MIDI output port from the terminal: single
// notes, chords, controllers, pitch bend, transport and demo sequences,
// plus an interactive mode.
package main

import (
	"fmt"
	"io"
	"os"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

const version = "0.1.0"

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

// run parses os.Args and executes the selected command.
func run(stdout io.Writer) error {
	app, commands := newCLI()
	if err := app.Run(); err != nil {
		fmt.Fprint(stdout, app.Usage())
		return err
	}

	active := app.ActiveCommand()
	for _, c := range commands {
		if active == c.cfg {
			return c.run(stdout)
		}
	}
	fmt.Fprint(stdout, app.Usage())
	return nil
}
