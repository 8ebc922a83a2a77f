package engine

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/dimfu/metronome/audio"
	"github.com/dimfu/metronome/logger"
	"github.com/dimfu/metronome/measure"
	"github.com/dimfu/metronome/preset"
	"github.com/dimfu/metronome/synth"
	"github.com/dimfu/metronome/tap"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const (
	MinBPM     = 40.0
	MaxBPM     = 240.0
	DefaultBPM = 120.0
)

// session is one armed ticker and the goroutine draining it. The engine holds
// at most one current session; a tick from any other session is discarded.
type session struct {
	id     uint64
	ticker clock.Ticker
	done   chan struct{}
}

// Engine is the beat clock. It owns the tempo, the playing state and the
// measure, and drives the audio device from a dedicated scheduler goroutine.
type Engine struct {
	device  audio.Device
	presets *preset.Store
	clock   clock.WithTicker
	log     *logrus.Entry

	mu       sync.Mutex
	bpm      float64
	playing  bool
	closed   bool
	measure  *measure.State
	tapper   *tap.Estimator
	session  *session
	sessions uint64

	// scheduler goroutines
	wg sync.WaitGroup

	subs subscribers
}

// New builds a stopped engine at 120 bpm in 4/4 accented on the downbeat.
// A nil device runs the clock silently, a nil preset store uses the defaults
// without persistence and a nil clock uses the wall clock.
func New(device audio.Device, presets *preset.Store, clk clock.WithTicker) *Engine {
	if presets == nil {
		presets = preset.NewStore(nil)
	}
	if clk == nil {
		clk = clock.RealClock{}
	}

	e := &Engine{
		device:  device,
		presets: presets,
		clock:   clk,
		log:     logger.GetProjectLogger().WithField("component", "engine"),
		bpm:     DefaultBPM,
		measure: measure.New(),
		tapper:  tap.New(clk),
	}

	if device == nil {
		e.log.Info("no audio device, running silently")
	} else if err := device.Open(); err != nil {
		e.log.WithError(err).Warn("audio device unavailable, running silently")
	}
	return e
}

// Period returns the time between two ticks at bpm.
func Period(bpm float64) time.Duration {
	return time.Duration(float64(time.Minute) / bpm)
}

func clampBPM(bpm float64) float64 {
	return math.Max(MinBPM, math.Min(MaxBPM, bpm))
}

// Start plays the downbeat immediately and schedules the following beats.
// It does nothing when already playing.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.playing || e.closed {
		e.mu.Unlock()
		return
	}

	e.measure.Reset()
	e.ensureDeviceLocked()
	e.playLocked(e.measure.IsAccent(0))
	e.playing = true
	e.scheduleLocked()

	e.log.WithFields(logrus.Fields{
		"bpm":     e.bpm,
		"beats":   e.measure.Beats(),
		"session": e.session.id,
	}).Info("started")

	e.publishLocked()
	e.mu.Unlock()
}

// Stop cancels the ticker and silences the device. Once Stop returns no
// further tick plays. It never waits on the scheduler goroutine, so it may be
// called from any goroutine including subscribers.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.stopLocked() {
		e.mu.Unlock()
		return
	}
	e.publishLocked()
	e.mu.Unlock()
}

func (e *Engine) stopLocked() bool {
	if !e.playing {
		return false
	}
	e.cancelLocked()
	if e.device != nil {
		e.device.Halt()
	}
	e.measure.Reset()
	e.playing = false

	e.log.Info("stopped")
	return true
}

// Toggle starts a stopped engine and stops a playing one.
func (e *Engine) Toggle() {
	if e.IsPlaying() {
		e.Stop()
		return
	}
	e.Start()
}

// IsPlaying reports whether the clock is running.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Close stops the clock, releases the device, waits for every scheduler
// goroutine to exit and closes all subscriptions. The engine is unusable
// afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopLocked()
	e.closed = true
	if e.device != nil {
		e.device.Close()
	}
	e.mu.Unlock()

	e.wg.Wait()
	e.subs.close()
}

// ensureDeviceLocked re-opens a device that is not running. Failure leaves
// the engine silent until the next Start.
func (e *Engine) ensureDeviceLocked() {
	if e.device == nil || e.device.Running() {
		return
	}
	if err := e.device.Open(); err != nil {
		e.log.WithError(err).Warn("audio device still unavailable")
	}
}

func (e *Engine) playLocked(accent bool) {
	if e.device == nil {
		return
	}
	e.device.Play(synth.For(accent))
}

// scheduleLocked replaces the current session with a fresh one whose first
// tick is a full period from now.
func (e *Engine) scheduleLocked() {
	e.cancelLocked()

	e.sessions++
	s := &session{
		id:     e.sessions,
		ticker: e.clock.NewTicker(Period(e.bpm)),
		done:   make(chan struct{}),
	}
	e.session = s

	e.wg.Add(1)
	go e.run(s)

	e.log.WithFields(logrus.Fields{
		"session": s.id,
		"period":  Period(e.bpm),
	}).Debug("scheduled")
}

func (e *Engine) cancelLocked() {
	if e.session == nil {
		return
	}
	e.session.ticker.Stop()
	close(e.session.done)
	e.session = nil
}

// rescheduleLocked restarts the period from now if the clock is running.
func (e *Engine) rescheduleLocked() {
	if e.playing {
		e.scheduleLocked()
	}
}

func (e *Engine) run(s *session) {
	defer e.wg.Done()

	// best effort: keeps the tick loop off the threads the runtime hands
	// to other goroutines
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C():
			e.tick(s)
		}
	}
}

func (e *Engine) tick(s *session) {
	e.mu.Lock()
	if e.session != s {
		e.mu.Unlock()
		return
	}

	next := e.measure.Advance()
	accent := e.measure.IsAccent(next)
	e.playLocked(accent)

	e.log.WithFields(logrus.Fields{
		"session": s.id,
		"beat":    next,
		"accent":  accent,
	}).Debug("tick")

	e.publishLocked()
	e.mu.Unlock()
}
