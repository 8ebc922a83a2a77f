package preset

import (
	"encoding/json"
	"sync"

	"github.com/dimfu/metronome/logger"
	"github.com/dimfu/metronome/measure"
	"github.com/dimfu/metronome/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// StoreKey is the key the preset list is persisted under.
const StoreKey = "metronome.presets"

// BeatPreset is a named bar layout: a beat count and its accented beats.
type BeatPreset struct {
	Beats   int   `json:"beats"`
	Accents []int `json:"accents"`
}

// AccentSet returns the accents as a set.
func (p BeatPreset) AccentSet() map[int]struct{} {
	out := make(map[int]struct{}, len(p.Accents))
	for _, a := range p.Accents {
		out[a] = struct{}{}
	}
	return out
}

// Equal compares beat count and accent lists.
func (p BeatPreset) Equal(o BeatPreset) bool {
	return p.Beats == o.Beats && slices.Equal(p.Accents, o.Accents)
}

// Valid reports whether the beat count is within the measure limits and every
// accent falls inside the bar.
func (p BeatPreset) Valid() bool {
	if p.Beats < measure.MinBeats || p.Beats > measure.MaxBeats {
		return false
	}
	for _, a := range p.Accents {
		if a < 0 || a >= p.Beats {
			return false
		}
	}
	return true
}

func (p BeatPreset) clone() BeatPreset {
	return BeatPreset{Beats: p.Beats, Accents: slices.Clone(p.Accents)}
}

var defaults = []BeatPreset{
	{Beats: 4, Accents: []int{0}},
	{Beats: 3, Accents: []int{0}},
	{Beats: 6, Accents: []int{0, 3}},
	{Beats: 9, Accents: []int{0, 3, 6}},
}

// Defaults returns a copy of the compiled-in preset table.
func Defaults() []BeatPreset {
	return cloneAll(defaults)
}

func cloneAll(in []BeatPreset) []BeatPreset {
	out := make([]BeatPreset, len(in))
	for i, p := range in {
		out[i] = p.clone()
	}
	return out
}

// Store is the fixed-length list of presets, persisted as a whole.
type Store struct {
	mu      sync.RWMutex
	kv      store.KV
	presets []BeatPreset

	// serializes writes to kv in the order the list was encoded
	persistMu sync.Mutex
}

// NewStore loads the persisted presets from kv, falling back to the
// defaults when nothing usable is stored. kv may be nil.
func NewStore(kv store.KV) *Store {
	s := &Store{kv: kv}
	s.presets = s.load()
	return s
}

func (s *Store) load() []BeatPreset {
	log := logger.GetProjectLogger().WithField("key", StoreKey)

	if s.kv == nil {
		return Defaults()
	}

	data, err := s.kv.Get(StoreKey)
	if err != nil {
		if store.IsNotFound(err) {
			log.Debug("no saved presets, using defaults")
		} else {
			log.WithError(err).Warn("could not read saved presets, using defaults")
		}
		return Defaults()
	}

	var saved []BeatPreset
	if err := json.Unmarshal(data, &saved); err != nil {
		log.WithError(err).Warn("saved presets are malformed, using defaults")
		return Defaults()
	}
	if len(saved) != len(defaults) {
		log.WithFields(logrus.Fields{"saved": len(saved), "expected": len(defaults)}).
			Warn("saved preset count does not match, using defaults")
		return Defaults()
	}
	for i, p := range saved {
		if !p.Valid() {
			log.WithFields(logrus.Fields{"slot": i, "beats": p.Beats}).
				Warn("saved preset is invalid, using defaults")
			return Defaults()
		}
	}
	return saved
}

// persistUnlock encodes the list under s.mu, releases s.mu and writes the
// blob to kv. Readers are never blocked on kv I/O.
func (s *Store) persistUnlock(slot int) {
	if s.kv == nil {
		s.mu.Unlock()
		return
	}

	data, err := json.Marshal(s.presets)
	s.persistMu.Lock()
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	if err != nil {
		s.logPersist(slot, errors.Wrap(err, "encoding presets"))
		return
	}
	s.logPersist(slot, errors.Wrap(s.kv.Put(StoreKey, data), "saving presets"))
}

// Len returns the number of preset slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presets)
}

// Get returns the preset in slot i.
func (s *Store) Get(i int) (BeatPreset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.presets) {
		return BeatPreset{}, false
	}
	return s.presets[i].clone(), true
}

// All returns a copy of every slot.
func (s *Store) All() []BeatPreset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.presets)
}

// Save overwrites slot i and persists the list. Accents are stored sorted.
// Returns false when i is out of range.
func (s *Store) Save(i, beats int, accents []int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.presets) {
		s.mu.Unlock()
		return false
	}

	sorted := slices.Clone(accents)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted == nil {
		sorted = []int{}
	}
	s.presets[i] = BeatPreset{Beats: beats, Accents: sorted}

	s.persistUnlock(i)
	return true
}

// Reset restores slot i to its compiled-in default and persists the list.
// Returns false when i is outside the default table.
func (s *Store) Reset(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.presets) || i >= len(defaults) {
		s.mu.Unlock()
		return false
	}
	s.presets[i] = defaults[i].clone()

	s.persistUnlock(i)
	return true
}

func (s *Store) logPersist(slot int, err error) {
	if err == nil {
		return
	}
	logger.GetProjectLogger().
		WithFields(logrus.Fields{"slot": slot, "key": StoreKey}).
		WithError(err).
		Warn("could not persist presets")
}
