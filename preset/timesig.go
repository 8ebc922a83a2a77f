package preset

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TimeSignature is a meter as written: beats per measure over note value.
type TimeSignature struct {
	Beats     int // number of beats per measure
	NoteValue int // note that represents one beat
}

// TimeSignatures lists the meters accepted by ParseTimeSignature.
var TimeSignatures = []TimeSignature{
	{4, 4},
	{3, 4},
	{2, 4},
	{2, 2},
	{3, 8},
	{6, 8},
	{9, 8},
	{12, 8},
	{5, 4},
	{6, 4},
	{7, 8},
}

// Compound reports whether the meter groups eighth notes in threes.
func (ts TimeSignature) Compound() bool {
	return ts.NoteValue == 8 && ts.Beats > 3 && ts.Beats%3 == 0
}

// Preset converts the meter to a bar layout. Compound meters accent the first
// beat of every group of three, simple meters only the downbeat.
func (ts TimeSignature) Preset() BeatPreset {
	if !ts.Compound() {
		return BeatPreset{Beats: ts.Beats, Accents: []int{0}}
	}
	accents := make([]int, 0, ts.Beats/3)
	for i := 0; i < ts.Beats; i += 3 {
		accents = append(accents, i)
	}
	return BeatPreset{Beats: ts.Beats, Accents: accents}
}

func (ts TimeSignature) String() string {
	return strconv.Itoa(ts.Beats) + "/" + strconv.Itoa(ts.NoteValue)
}

// ParseTimeSignature parses "6/8" style input against TimeSignatures.
func ParseTimeSignature(input string) (TimeSignature, error) {
	parts := strings.Split(strings.TrimSpace(input), "/")
	if len(parts) != 2 {
		return TimeSignature{}, errors.Errorf("invalid time signature format %q", input)
	}

	beats, err1 := strconv.Atoi(parts[0])
	noteValue, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return TimeSignature{}, errors.Errorf("invalid number in time signature %q", input)
	}

	for _, ts := range TimeSignatures {
		if ts.Beats == beats && ts.NoteValue == noteValue {
			return ts, nil
		}
	}
	return TimeSignature{}, errors.Errorf("time signature %q not supported", input)
}
