package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dimfu/metronome/engine"
	"github.com/gosuri/uilive"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled reports whether out can show truecolor escapes.
func colorEnabled(noColor bool, out *os.File) bool {
	return !noColor && isTerminal(out) && os.Getenv("TERM") != "dumb"
}

type palette struct {
	enabled bool
	accent  colorful.Color
	normal  colorful.Color
	current colorful.Color
	muted   colorful.Color
}

func newPalette(enabled bool) palette {
	accent := colorful.Hsv(8, 0.75, 0.95)
	normal := colorful.Hsv(210, 0.45, 0.85)
	return palette{
		enabled: enabled,
		accent:  accent,
		normal:  normal,
		current: colorful.Hsv(55, 0.9, 1),
		muted:   normal.BlendLab(colorful.Color{}, 0.5),
	}
}

func (p palette) paint(c colorful.Color, s string) string {
	if !p.enabled {
		return s
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, s)
}

// render draws the state as three lines: status, beats and presets.
func render(st engine.State, p palette) string {
	var b strings.Builder

	status := "stopped"
	if st.Playing {
		status = "playing"
	}
	fmt.Fprintf(&b, "%3.0f bpm  %d beats  %s\n", st.BPM, st.BeatsPerMeasure, status)

	for i := 0; i < st.BeatsPerMeasure; i++ {
		mark := "○"
		c := p.normal
		if st.IsAccent(i) {
			mark = "●"
			c = p.accent
		}
		if st.Playing && i == st.CurrentBeat {
			b.WriteString(p.paint(p.current, "["+mark+"]"))
			continue
		}
		b.WriteString(p.paint(c, " "+mark+" "))
	}
	b.WriteString("\n")

	for i, ps := range st.Presets {
		label := fmt.Sprintf("%d:%d%v", i+1, ps.Beats, ps.Accents)
		if i == st.SelectedPreset {
			b.WriteString(p.paint(p.current, "*"+label+" "))
			continue
		}
		b.WriteString(p.paint(p.muted, " "+label+" "))
	}
	b.WriteString("\n")

	return b.String()
}

// view redraws the state in place.
type view struct {
	w       *uilive.Writer
	palette palette
}

func newView(out io.Writer, p palette) *view {
	w := uilive.New()
	w.Out = out
	return &view{w: w, palette: p}
}

func (v *view) draw(st engine.State) {
	fmt.Fprint(v.w, render(st, v.palette))
	fmt.Fprintln(v.w, v.palette.paint(v.palette.muted, helpLine))
	_ = v.w.Flush()
}
