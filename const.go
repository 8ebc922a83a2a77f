package main

import (
	"strings"

	"github.com/dimfu/metronome/engine"
	"github.com/eiannone/keyboard"
)

// coarse tempo step for the left and right arrows
const bpmStep = 10

const (
	accentKeys = "1234567890!@#$%^" // beats 0-15, shifted digits for 10-15
	applyKeys  = "qwer"
	saveKeys   = "QWER"
	resetKeys  = "zxcv"
)

const helpLine = "space start/stop  ↑↓ ±1  ←→ ±10  t tap  +/- beats  1-0 !-^ accent  qwer load  QWER save  zxcv reset  esc quit"

// handleKey applies one key press to e. It reports false when the key asks
// to quit.
func handleKey(e *engine.Engine, ev keyboard.KeyEvent) bool {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return false
	case keyboard.KeySpace:
		e.Toggle()
		return true
	case keyboard.KeyArrowUp:
		e.IncrementBPM()
		return true
	case keyboard.KeyArrowDown:
		e.DecrementBPM()
		return true
	case keyboard.KeyArrowRight:
		e.SetBPM(e.BPM() + bpmStep)
		return true
	case keyboard.KeyArrowLeft:
		e.SetBPM(e.BPM() - bpmStep)
		return true
	}

	switch r := ev.Rune; {
	case r == 't' || r == 'T':
		e.TapTempo()
	case r == '+' || r == '=':
		e.AddBeat()
	case r == '-' || r == '_':
		e.RemoveBeat()
	case strings.ContainsRune(accentKeys, r):
		e.ToggleAccent(strings.IndexRune(accentKeys, r))
	case strings.ContainsRune(applyKeys, r):
		e.ApplyPreset(strings.IndexRune(applyKeys, r))
	case strings.ContainsRune(saveKeys, r):
		e.SaveCurrentAsPreset(strings.IndexRune(saveKeys, r))
	case strings.ContainsRune(resetKeys, r):
		e.ResetPreset(strings.IndexRune(resetKeys, r))
	}
	return true
}
