package measure

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	MinBeats     = 1
	MaxBeats     = 16
	DefaultBeats = 4
)

// State holds the bar layout the beat clock consults on every tick.
// It is not safe for concurrent use; the engine guards it.
type State struct {
	beats   int
	accents map[int]struct{}
	current int
}

// New returns a 4 beat measure accented on the downbeat.
func New() *State {
	return &State{
		beats:   DefaultBeats,
		accents: map[int]struct{}{0: {}},
	}
}

func clampBeats(n int) int {
	if n < MinBeats {
		return MinBeats
	}
	if n > MaxBeats {
		return MaxBeats
	}
	return n
}

// Beats returns the number of beats per measure.
func (s *State) Beats() int {
	return s.beats
}

// Current returns the index of the beat that last sounded.
func (s *State) Current() int {
	return s.current
}

// IsAccent reports whether beat is accented.
func (s *State) IsAccent(beat int) bool {
	_, ok := s.accents[beat]
	return ok
}

// Accents returns the accented beat indices in ascending order.
func (s *State) Accents() []int {
	out := maps.Keys(s.accents)
	slices.Sort(out)
	return out
}

// SetBeats clamps n to [MinBeats, MaxBeats] and discards any custom accent
// pattern, leaving only the downbeat accented.
func (s *State) SetBeats(n int) {
	s.beats = clampBeats(n)
	s.accents = map[int]struct{}{0: {}}
	s.current = 0
}

// AddBeat appends an unaccented beat. Returns false at MaxBeats.
func (s *State) AddBeat() bool {
	if s.beats >= MaxBeats {
		return false
	}
	s.beats++
	return true
}

// RemoveBeat drops the last beat and its accent. Returns false at MinBeats.
func (s *State) RemoveBeat() bool {
	if s.beats <= MinBeats {
		return false
	}
	last := s.beats - 1
	delete(s.accents, last)
	s.beats--
	if s.current >= s.beats {
		s.current = 0
	}
	return true
}

// ToggleAccent flips the accent on beat. Indices outside the measure are
// ignored and reported as false.
func (s *State) ToggleAccent(beat int) bool {
	if beat < 0 || beat >= s.beats {
		return false
	}
	if _, ok := s.accents[beat]; ok {
		delete(s.accents, beat)
	} else {
		s.accents[beat] = struct{}{}
	}
	return true
}

// SetAccents replaces the accent set. Out of range indices are dropped.
func (s *State) SetAccents(beats []int) {
	accents := make(map[int]struct{}, len(beats))
	for _, b := range beats {
		if b >= 0 && b < s.beats {
			accents[b] = struct{}{}
		}
	}
	s.accents = accents
}

// Apply loads a beat count and accent pattern and rewinds to the downbeat.
func (s *State) Apply(beats int, accents []int) {
	s.beats = clampBeats(beats)
	s.SetAccents(accents)
	s.current = 0
}

// Advance moves to the next beat, wrapping at the end of the measure.
func (s *State) Advance() int {
	s.current = (s.current + 1) % s.beats
	return s.current
}

// Reset rewinds to the downbeat.
func (s *State) Reset() {
	s.current = 0
}

// Matches reports whether the measure has exactly this beat count and accent set.
func (s *State) Matches(beats int, accents []int) bool {
	if s.beats != beats {
		return false
	}
	seen := make(map[int]struct{}, len(accents))
	for _, a := range accents {
		seen[a] = struct{}{}
	}
	if len(seen) != len(s.accents) {
		return false
	}
	for a := range seen {
		if _, ok := s.accents[a]; !ok {
			return false
		}
	}
	return true
}
