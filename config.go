package main

import (
	"github.com/dimfu/metronome/preset"
	"github.com/dimfu/metronome/store"
	"github.com/pkg/errors"
)

// Config is the command line and environment configuration.
type Config struct {
	BPM       float64 `arg:"--bpm,env:METRONOME_BPM" default:"120" help:"tempo in beats per minute, clamped to 40-240"`
	TimeSig   string  `arg:"--timesig,env:METRONOME_TIMESIG" help:"initial time signature, e.g. 6/8"`
	Preset    int     `arg:"--preset,env:METRONOME_PRESET" help:"preset slot (1-4) to load at startup"`
	Store     string  `arg:"--store,env:METRONOME_STORE" help:"preset file [default: ~/.metronome.json]"`
	Silent    bool    `arg:"--silent,env:METRONOME_SILENT" help:"keep time without audio output"`
	NoColor   bool    `arg:"--no-color,env:METRONOME_NO_COLOR" help:"disable colors in the beat view"`
	LogLevel  string  `arg:"--log-level,env:METRONOME_LOG_LEVEL" default:"warn" help:"trace, debug, info, warn or error"`
	Autostart bool    `arg:"--autostart,env:METRONOME_AUTOSTART" help:"start playing immediately"`
}

func (Config) Description() string {
	return "metronome: a terminal click track with accents, tap tempo and presets"
}

// Validate checks the options that cannot be clamped and parses the time
// signature. The returned signature is nil when none was given.
func (c *Config) Validate() (*preset.TimeSignature, error) {
	if c.TimeSig != "" && c.Preset != 0 {
		return nil, errors.New("--timesig and --preset cannot be used together")
	}
	if c.Preset < 0 {
		return nil, errors.Errorf("preset %d out of range", c.Preset)
	}
	if c.TimeSig == "" {
		return nil, nil
	}

	ts, err := preset.ParseTimeSignature(c.TimeSig)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// StorePath returns the preset file, falling back to the home directory.
func (c *Config) StorePath() string {
	if c.Store != "" {
		return c.Store
	}
	return store.DefaultPath()
}
