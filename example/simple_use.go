package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/chord"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/midi"
	"github.com/leandrodaf/midiharness/sdk/player"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

func main() {
	log := logger.NewStandardLogger()

	sess, err := midi.NewSession(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI session", log.Field().Error("error", err))
		return
	}
	defer sess.Close()

	devices, err := sess.RequestAccess(context.Background())
	if err != nil {
		log.Error("No MIDI outputs found or error listing outputs", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI outputs:", devices)

	if _, err = sess.SelectVirtual(); err != nil {
		log.Error("Failed to select a virtual MIDI port", log.Field().Error("error", err))
		return
	}

	p := player.New(encoder.New(sess, log), sess.Active(), log)
	if _, err := p.PlayChord(60, chord.Major7, 0, 0.8, 0); err != nil {
		log.Error("Failed to play chord", log.Field().Error("error", err))
		return
	}

	fmt.Println("Holding Cmaj7 for two seconds...")
	time.Sleep(2 * time.Second)

	if _, err := p.ReleaseAll(); err != nil {
		log.Error("Failed to release notes", log.Field().Error("error", err))
	}
}
