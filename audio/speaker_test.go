package audio

import (
	"testing"

	"github.com/dimfu/metronome/synth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var _ Device = (*Speaker)(nil)

func TestSpeakerIgnoresPlayBeforeOpen(t *testing.T) {
	t.Parallel()

	s := NewSpeaker()
	assert.False(t, s.Running())

	s.Play(synth.Accent())
	s.Play(nil)
	s.Halt()
	assert.Equal(t, uint64(0), s.Played())
}

func TestSpeakerCannotReopenAfterClose(t *testing.T) {
	t.Parallel()

	s := NewSpeaker()
	s.Close()

	err := s.Open()
	assert.Equal(t, ErrDeviceClosed, errors.Cause(err))
	assert.False(t, s.Running())
}
