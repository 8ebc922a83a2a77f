package engine

import (
	"math"

	"github.com/sirupsen/logrus"
)

// BPM returns the current tempo.
func (e *Engine) BPM() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bpm
}

// SetBPM clamps bpm to [MinBPM, MaxBPM] and applies it. The ticker is
// restarted only when the clamped tempo differs from the current one.
func (e *Engine) SetBPM(bpm float64) {
	e.update(func() bool { return e.setBPMLocked(bpm) })
}

// IncrementBPM raises the tempo by one.
func (e *Engine) IncrementBPM() {
	e.update(func() bool { return e.setBPMLocked(e.bpm + 1) })
}

// DecrementBPM lowers the tempo by one.
func (e *Engine) DecrementBPM() {
	e.update(func() bool { return e.setBPMLocked(e.bpm - 1) })
}

func (e *Engine) setBPMLocked(bpm float64) bool {
	if math.IsNaN(bpm) {
		return false
	}
	clamped := clampBPM(bpm)
	if clamped == e.bpm {
		return false
	}

	e.log.WithFields(logrus.Fields{"from": e.bpm, "to": clamped}).Debug("tempo changed")
	e.bpm = clamped
	e.rescheduleLocked()
	return true
}

// TapTempo records a tap now. Once enough taps are recorded the estimated
// tempo is applied and returned.
func (e *Engine) TapTempo() (float64, bool) {
	var (
		bpm float64
		ok  bool
	)
	e.update(func() bool {
		bpm, ok = e.tapper.Tap()
		if !ok {
			return false
		}
		return e.setBPMLocked(bpm)
	})
	return bpm, ok
}

// SetBeats sets the beat count, clamped to [1, 16]. The accent pattern is
// reset to the downbeat.
func (e *Engine) SetBeats(n int) {
	e.update(func() bool {
		e.measure.SetBeats(n)
		e.rescheduleLocked()
		return true
	})
}

// AddBeat appends an unaccented beat unless the measure is full.
func (e *Engine) AddBeat() bool {
	return e.update(func() bool {
		if !e.measure.AddBeat() {
			return false
		}
		e.rescheduleLocked()
		return true
	})
}

// RemoveBeat drops the last beat and its accent unless one beat is left.
func (e *Engine) RemoveBeat() bool {
	return e.update(func() bool {
		if !e.measure.RemoveBeat() {
			return false
		}
		e.rescheduleLocked()
		return true
	})
}

// ToggleAccent flips the accent on beat. Beats outside the measure are
// ignored and report false.
func (e *Engine) ToggleAccent(beat int) bool {
	return e.update(func() bool { return e.measure.ToggleAccent(beat) })
}

// SetAccents replaces the accent pattern. Beats outside the measure are
// dropped.
func (e *Engine) SetAccents(beats []int) {
	e.update(func() bool {
		e.measure.SetAccents(beats)
		return true
	})
}

// ApplyPreset loads preset i into the measure and rewinds to the downbeat.
// Out of range slots are ignored.
func (e *Engine) ApplyPreset(i int) bool {
	return e.update(func() bool {
		p, ok := e.presets.Get(i)
		if !ok {
			return false
		}
		e.measure.Apply(p.Beats, p.Accents)
		e.rescheduleLocked()

		e.log.WithFields(logrus.Fields{"slot": i, "beats": p.Beats}).Debug("preset applied")
		return true
	})
}

// SaveCurrentAsPreset stores the current measure in slot i and persists the
// preset list. Out of range slots are ignored. Storage is written without
// the engine lock held.
func (e *Engine) SaveCurrentAsPreset(i int) bool {
	e.mu.Lock()
	beats, accents := e.measure.Beats(), e.measure.Accents()
	e.mu.Unlock()

	if !e.presets.Save(i, beats, accents) {
		return false
	}
	e.publish()
	return true
}

// ResetPreset restores slot i to its default and persists the preset list.
func (e *Engine) ResetPreset(i int) bool {
	if !e.presets.Reset(i) {
		return false
	}
	e.publish()
	return true
}

// SelectedPreset returns the first slot matching the current measure.
func (e *Engine) SelectedPreset() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.selectedPresetLocked()
	return i, i >= 0
}

func (e *Engine) selectedPresetLocked() int {
	for i, p := range e.presets.All() {
		if e.measure.Matches(p.Beats, p.Accents) {
			return i
		}
	}
	return -1
}

// update runs fn under the engine lock and publishes the new state when fn
// reports a change.
func (e *Engine) update(fn func() bool) bool {
	e.mu.Lock()
	changed := fn()
	if !changed {
		e.mu.Unlock()
		return false
	}
	e.publishLocked()
	e.mu.Unlock()
	return true
}

func (e *Engine) publish() {
	e.mu.Lock()
	e.publishLocked()
	e.mu.Unlock()
}
