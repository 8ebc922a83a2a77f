package audio

import (
	"sync"
	"time"

	"github.com/dimfu/metronome/logger"
	"github.com/dimfu/metronome/synth"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BufferDuration is the speaker's mixing buffer. Short buffers keep the
// distance between a tick and the audible click small.
const BufferDuration = 10 * time.Millisecond

// Speaker plays clicks through the system audio output via beep.
type Speaker struct {
	sampleRate beep.SampleRate

	mu      sync.Mutex
	running bool
	closed  bool
	ctrl    *beep.Ctrl
	played  uint64
}

// NewSpeaker returns an unopened speaker at the click sample rate.
func NewSpeaker() *Speaker {
	return &Speaker{sampleRate: synth.SampleRate}
}

// Open implements Device.
func (s *Speaker) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrDeviceClosed
	}
	if s.running {
		return nil
	}

	if err := speaker.Init(s.sampleRate, s.sampleRate.N(BufferDuration)); err != nil {
		return errors.Wrap(err, "initializing speaker")
	}
	s.running = true

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"sample_rate": int(s.sampleRate),
		"buffer":      BufferDuration,
	}).Debug("speaker started")
	return nil
}

// Running implements Device.
func (s *Speaker) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Play implements Device.
func (s *Speaker) Play(c *synth.Click) {
	if c == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	// cut the previous click so consecutive clicks never overlap
	speaker.Lock()
	if s.ctrl != nil {
		s.ctrl.Streamer = nil
	}
	s.ctrl = &beep.Ctrl{Streamer: c.Streamer()}
	speaker.Unlock()

	speaker.Play(s.ctrl)
	s.played++
}

// Halt implements Device.
func (s *Speaker) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	speaker.Clear()
	s.ctrl = nil
}

// Close implements Device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		speaker.Clear()
		speaker.Close()
	}
	s.running = false
	s.closed = true
	s.ctrl = nil
}

// Played returns how many clicks were handed to the output.
func (s *Speaker) Played() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}
