package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/dimfu/metronome/audio"
	"github.com/dimfu/metronome/engine"
	"github.com/dimfu/metronome/logger"
	"github.com/dimfu/metronome/preset"
	"github.com/dimfu/metronome/store"
	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

func main() {
	var cfg Config
	p := arg.MustParse(&cfg)

	log := logger.GetProjectLogger()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		p.Fail(err.Error())
	}

	ts, err := cfg.Validate()
	if err != nil {
		p.Fail(err.Error())
	}

	e, err := setup(&cfg, ts)
	if err != nil {
		log.WithError(err).Fatal("could not start")
	}
	defer e.Close()

	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		err = runInteractive(e, colorEnabled(cfg.NoColor, os.Stdout))
	} else {
		runHeadless(e)
	}
	if err != nil {
		log.WithError(err).Error("terminal")
	}
}

// setup builds the engine from cfg and applies the initial measure.
func setup(cfg *Config, ts *preset.TimeSignature) (*engine.Engine, error) {
	presets := preset.NewStore(store.NewFileStore(cfg.StorePath()))

	var device audio.Device
	if !cfg.Silent {
		device = audio.NewSpeaker()
	}

	e := engine.New(device, presets, clock.RealClock{})
	e.SetBPM(cfg.BPM)

	switch {
	case ts != nil:
		p := ts.Preset()
		e.SetBeats(p.Beats)
		e.SetAccents(p.Accents)
	case cfg.Preset > 0:
		if !e.ApplyPreset(cfg.Preset - 1) {
			e.Close()
			return nil, errors.Errorf("preset %d out of range (1-%d)", cfg.Preset, presets.Len())
		}
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"bpm":   e.BPM(),
		"store": cfg.StorePath(),
	}).Info("metronome ready")

	if cfg.Autostart {
		e.Start()
	}
	return e, nil
}

func runInteractive(e *engine.Engine, color bool) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return errors.Wrap(err, "opening keyboard")
	}
	defer keyboard.Close()

	v := newView(os.Stdout, newPalette(color))

	// log lines go above the live view instead of through it
	logger.SetOutput(v.w.Bypass())
	defer logger.SetOutput(os.Stderr)

	states := e.Subscribe()
	v.draw(e.Snapshot())

	for {
		select {
		case st, ok := <-states:
			if !ok {
				return nil
			}
			v.draw(st)
		case ev := <-keys:
			if ev.Err != nil {
				return errors.Wrap(ev.Err, "reading keyboard")
			}
			if !handleKey(e, ev) {
				return nil
			}
		}
	}
}

func runHeadless(e *engine.Engine) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	e.Start()
	<-sig
}
