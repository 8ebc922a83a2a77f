package engine

import (
	"sync"

	"github.com/dimfu/metronome/preset"
)

// SubscriberBuffer is the number of pending states a subscriber may hold.
const SubscriberBuffer = 16

// State is a read-only snapshot of everything the engine exposes.
type State struct {
	BPM             float64
	Playing         bool
	BeatsPerMeasure int
	CurrentBeat     int
	AccentBeats     []int
	Presets         []preset.BeatPreset

	// SelectedPreset is the slot matching the measure, or -1.
	SelectedPreset int
}

// IsAccent reports whether beat is accented in the snapshot.
func (s State) IsAccent(beat int) bool {
	for _, a := range s.AccentBeats {
		if a == beat {
			return true
		}
	}
	return false
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	return State{
		BPM:             e.bpm,
		Playing:         e.playing,
		BeatsPerMeasure: e.measure.Beats(),
		CurrentBeat:     e.measure.Current(),
		AccentBeats:     e.measure.Accents(),
		Presets:         e.presets.All(),
		SelectedPreset:  e.selectedPresetLocked(),
	}
}

// publishLocked hands the current state to subscribers while the engine lock
// is held, so states arrive in the order they were taken.
func (e *Engine) publishLocked() {
	e.subs.publish(e.snapshotLocked())
}

// Subscribe returns a channel receiving a State after every change. The
// channel is closed by Close. A subscriber that falls behind loses the oldest
// pending states, never the newest.
func (e *Engine) Subscribe() <-chan State {
	return e.subs.add()
}

type subscribers struct {
	mu     sync.Mutex
	chans  []chan State
	closed bool
}

func (s *subscribers) add() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, SubscriberBuffer)
	if s.closed {
		close(ch)
		return ch
	}
	s.chans = append(s.chans, ch)
	return ch
}

// publish never blocks.
func (s *subscribers) publish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, ch := range s.chans {
		select {
		case ch <- st:
			continue
		default:
		}
		// full: make room by dropping the oldest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

func (s *subscribers) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.chans {
		close(ch)
	}
	s.chans = nil
}
