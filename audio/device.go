package audio

import (
	"github.com/dimfu/metronome/synth"
	"github.com/pkg/errors"
)

// ErrDeviceClosed is returned when opening a device that was closed for good.
var ErrDeviceClosed = errors.New("audio device closed")

// Device is the audio output the beat clock plays clicks through.
type Device interface {
	// Open initializes and starts the output. Calling it on a running
	// device is a no-op.
	Open() error

	// Running reports whether the output is started.
	Running() bool

	// Play cuts whatever click is sounding and starts c immediately.
	Play(c *synth.Click)

	// Halt silences the current click; the output stays open.
	Halt()

	// Close releases the output.
	Close()
}
