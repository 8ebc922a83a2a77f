package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dimfu/metronome/engine"
	"github.com/dimfu/metronome/preset"
	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"
)

func parseConfig(t *testing.T, args ...string) Config {
	t.Helper()

	var cfg Config
	p, err := arg.NewParser(arg.Config{}, &cfg)
	require.NoError(t, err)
	require.NoError(t, p.Parse(args))
	return cfg
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	e := engine.New(nil, preset.NewStore(nil), testclock.NewFakeClock(time.Unix(0, 0)))
	t.Cleanup(e.Close)
	return e
}

func TestConfigDefaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.Equal(t, 120.0, cfg.BPM)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Silent)

	ts, err := cfg.Validate()
	require.NoError(t, err)
	assert.Nil(t, ts)
}

func TestConfigTimeSignature(t *testing.T) {
	cfg := parseConfig(t, "--bpm", "90", "--timesig", "6/8", "--silent")

	assert.Equal(t, 90.0, cfg.BPM)
	assert.True(t, cfg.Silent)

	ts, err := cfg.Validate()
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, []int{0, 3}, ts.Preset().Accents)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := map[string]Config{
		"bad timesig":      {TimeSig: "7/7"},
		"negative preset":  {Preset: -1},
		"timesig + preset": {TimeSig: "4/4", Preset: 2},
	}
	for name, cfg := range testCases {
		_, err := cfg.Validate()
		assert.Error(t, err, name)
	}
}

func TestConfigStorePath(t *testing.T) {
	t.Parallel()

	cfg := Config{Store: filepath.Join("tmp", "presets.json")}
	assert.Equal(t, filepath.Join("tmp", "presets.json"), cfg.StorePath())

	cfg = Config{}
	assert.True(t, strings.HasSuffix(cfg.StorePath(), ".metronome.json"))
}

func TestSetupFromTimeSignature(t *testing.T) {
	t.Parallel()

	cfg := Config{BPM: 300, Silent: true, Store: filepath.Join(t.TempDir(), "presets.json")}
	ts := preset.TimeSignature{Beats: 9, NoteValue: 8}

	e, err := setup(&cfg, &ts)
	require.NoError(t, err)
	defer e.Close()

	st := e.Snapshot()
	assert.Equal(t, engine.MaxBPM, st.BPM)
	assert.Equal(t, 9, st.BeatsPerMeasure)
	assert.Equal(t, []int{0, 3, 6}, st.AccentBeats)
	assert.Equal(t, 3, st.SelectedPreset)
	assert.False(t, st.Playing)
}

func TestSetupPresetOutOfRange(t *testing.T) {
	t.Parallel()

	cfg := Config{BPM: 120, Silent: true, Preset: 9, Store: filepath.Join(t.TempDir(), "presets.json")}
	_, err := setup(&cfg, nil)
	assert.Error(t, err)
}

func TestHandleKeyTempo(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyArrowUp})
	assert.Equal(t, 121.0, e.BPM())
	handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyArrowDown})
	handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyArrowDown})
	assert.Equal(t, 119.0, e.BPM())
	handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyArrowRight})
	assert.Equal(t, 129.0, e.BPM())
	handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyArrowLeft})
	handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyArrowLeft})
	assert.Equal(t, 109.0, e.BPM())
}

func TestHandleKeyMeasureAndPresets(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	handleKey(e, keyboard.KeyEvent{Rune: '+'})
	assert.Equal(t, 5, e.Snapshot().BeatsPerMeasure)
	handleKey(e, keyboard.KeyEvent{Rune: '-'})
	assert.Equal(t, 4, e.Snapshot().BeatsPerMeasure)

	handleKey(e, keyboard.KeyEvent{Rune: '3'})
	assert.Equal(t, []int{0, 2}, e.Snapshot().AccentBeats)
	handleKey(e, keyboard.KeyEvent{Rune: '1'})
	assert.Equal(t, []int{2}, e.Snapshot().AccentBeats)

	handleKey(e, keyboard.KeyEvent{Rune: 'W'})
	assert.Equal(t, preset.BeatPreset{Beats: 4, Accents: []int{2}}, e.Snapshot().Presets[1])

	handleKey(e, keyboard.KeyEvent{Rune: 'e'})
	st := e.Snapshot()
	assert.Equal(t, 6, st.BeatsPerMeasure)
	assert.Equal(t, 2, st.SelectedPreset)

	handleKey(e, keyboard.KeyEvent{Rune: 'x'})
	assert.Equal(t, preset.Defaults()[1], e.Snapshot().Presets[1])
}

func TestHandleKeyToggleAndQuit(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	assert.True(t, handleKey(e, keyboard.KeyEvent{Key: keyboard.KeySpace}))
	assert.True(t, e.IsPlaying())
	assert.True(t, handleKey(e, keyboard.KeyEvent{Key: keyboard.KeySpace}))
	assert.False(t, e.IsPlaying())

	assert.False(t, handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyEsc}))
	assert.False(t, handleKey(e, keyboard.KeyEvent{Key: keyboard.KeyCtrlC}))
}

func TestRender(t *testing.T) {
	t.Parallel()

	st := engine.State{
		BPM:             96,
		Playing:         true,
		BeatsPerMeasure: 4,
		CurrentBeat:     2,
		AccentBeats:     []int{0},
		Presets:         preset.Defaults(),
		SelectedPreset:  0,
	}

	out := render(st, newPalette(false))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, " 96 bpm  4 beats  playing", lines[0])
	assert.Equal(t, " ●  ○ [○] ○ ", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "*1:4[0] "))
	assert.Contains(t, lines[2], " 3:6[0 3] ")
}

func TestRenderColors(t *testing.T) {
	t.Parallel()

	st := engine.State{BPM: 120, BeatsPerMeasure: 2, AccentBeats: []int{0}, SelectedPreset: -1}

	assert.NotContains(t, render(st, newPalette(false)), "\x1b[")
	assert.Contains(t, render(st, newPalette(true)), "\x1b[38;2;")
}

func TestHandleKeyAccentsPastNine(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	e.SetBeats(16)

	handleKey(e, keyboard.KeyEvent{Rune: '!'})
	handleKey(e, keyboard.KeyEvent{Rune: '^'})
	assert.Equal(t, []int{0, 10, 15}, e.Snapshot().AccentBeats)

	// outside a shorter bar the key does nothing
	e.SetBeats(12)
	handleKey(e, keyboard.KeyEvent{Rune: '%'})
	assert.Equal(t, []int{0}, e.Snapshot().AccentBeats)
}

func TestColorDisabledOffTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
	assert.False(t, colorEnabled(false, f))
	assert.False(t, colorEnabled(true, f))
}
