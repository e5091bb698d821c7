package colorfx

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"lightgroove/internal/logger"
)

var ErrUnknownEffect = errors.New("unknown color effect")

const (
	DefaultBPM  = 120
	MinBPM      = 1
	MaxBPM      = 480
	stopTimeout = 2 * time.Second

	minFadeSteps       = 10
	fadeStepsPerSecond = 20
)

// Fixtures is what the engine drives.
type Fixtures interface {
	List() []string
	SetFixtureColor(id string, r, g, b, w float64)
	GetFixtureChannel(id, channel string) float64
	HasColorWheel(id string) bool
}

// Status is the engine state reported to clients.
type Status struct {
	Running        bool     `json:"running"`
	CurrentFX      string   `json:"current_fx"`
	BPM            int      `json:"bpm"`
	FadePercentage float64  `json:"fade_percentage"`
	CurrentColors  []string `json:"current_colors"`
	Effects        []string `json:"effects"`
}

type effectFunc func(p *picker, fixtures, names []string) []assignment

var effects = map[string]effectFunc{
	"uniform":     (*picker).uniform,
	"random":      (*picker).uniform,
	"independent": (*picker).independent,
	"alternating": (*picker).alternating,
}

// Effects lists the effect names Start accepts.
func Effects() []string {
	return []string{"uniform", "independent", "alternating"}
}

// Engine cycles palette colors over all fixtures at musical tempo.
type Engine struct {
	log      logger.Logger
	fixtures Fixtures
	palette  atomic.Pointer[Palette]

	lifecycle sync.Mutex

	mu            sync.Mutex
	bpm           int
	fade          float64
	current       string
	currentColors []string
	cancel        context.CancelFunc
	done          chan struct{}
}

// NewEngine конструктор. A nil palette selects DefaultPalette.
func NewEngine(log logger.Logger, fixtures Fixtures, palette *Palette) *Engine {
	if palette == nil {
		palette = DefaultPalette()
	}
	e := &Engine{
		log:      log,
		fixtures: fixtures,
		bpm:      DefaultBPM,
	}
	e.palette.Store(palette)
	return e
}

func (e *Engine) logger() *logger.Log {
	return e.log.With(logger.Fields{"module": "colorfx"})
}

// Palette returns the palette in use.
func (e *Engine) Palette() *Palette {
	return e.palette.Load()
}

// ReloadPalette swaps the palette; a running effect picks it up on its next beat.
func (e *Engine) ReloadPalette(p *Palette) {
	if p == nil {
		return
	}
	e.palette.Store(p)
	e.logger().Infof("Palette reloaded (%d colors)", len(p.names))
}

// SetBPM sets the tempo, clamped to 1-480.
func (e *Engine) SetBPM(bpm int) {
	if bpm < MinBPM {
		bpm = MinBPM
	}
	if bpm > MaxBPM {
		bpm = MaxBPM
	}
	e.mu.Lock()
	e.bpm = bpm
	e.mu.Unlock()
	e.logger().Infof("BPM set to %d", bpm)
}

// SetFadePercentage sets the fade length as a fraction (0.0-1.0) of the beat.
func (e *Engine) SetFadePercentage(f float64) {
	f = clamp01(f)
	e.mu.Lock()
	e.fade = f
	e.mu.Unlock()
	e.logger().Infof("Fade set to %d%% of the beat", int(math.Round(f*100)))
}

// SetCurrentColors records colors applied from outside the engine, for status.
func (e *Engine) SetCurrentColors(names ...string) {
	e.mu.Lock()
	e.currentColors = append([]string(nil), names...)
	e.mu.Unlock()
}

func (e *Engine) interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return beatInterval(e.bpm)
}

func beatInterval(bpm int) time.Duration {
	return time.Duration(float64(time.Minute) / float64(bpm))
}

func (e *Engine) fadeTime(interval time.Duration) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.fade * float64(interval))
}

// Start runs the named effect, stopping any running effect first.
func (e *Engine) Start(name string) error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.stop()

	effect, ok := effects[name]
	if !ok {
		e.logger().Warnf("Unknown effect '%s'", name)
		return ErrUnknownEffect
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.mu.Lock()
	e.current = name
	e.cancel, e.done = cancel, done
	bpm := e.bpm
	e.mu.Unlock()

	go e.run(ctx, effect, done)
	e.logger().Infof("Started '%s' effect at %d BPM", name, bpm)
	return nil
}

// Stop stops the running effect and waits for it to exit.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.stop()
}

func (e *Engine) stop() {
	e.mu.Lock()
	cancel, done, name := e.cancel, e.done, e.current
	e.cancel, e.done, e.current = nil, nil, ""
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	e.logger().Infof("Stopping '%s' effect", name)
	cancel()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		e.logger().Warnf("Effect '%s' did not stop in time", name)
	}
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancel != nil
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:        e.cancel != nil,
		CurrentFX:      e.current,
		BPM:            e.bpm,
		FadePercentage: e.fade,
		CurrentColors:  append([]string{}, e.currentColors...),
		Effects:        Effects(),
	}
}

func (e *Engine) run(ctx context.Context, effect effectFunc, done chan<- struct{}) {
	defer close(done)
	p := newPicker(rand.New(rand.NewSource(time.Now().UnixNano())))

	for {
		interval := e.interval()
		targets := effect(p, e.fixtures.List(), e.Palette().EffectColors())

		start := time.Now()
		if !e.apply(ctx, targets, e.fadeTime(interval)) {
			return
		}
		if !sleep(ctx, interval-time.Since(start)) {
			return
		}
	}
}

// apply writes the targets, fading over fade when it is positive. It returns
// false if the engine was stopped meanwhile.
func (e *Engine) apply(ctx context.Context, targets []assignment, fade time.Duration) bool {
	pal := e.Palette()
	e.recordColors(targets)

	if fade <= 0 {
		for _, a := range targets {
			c := lookup(pal, a.color)
			e.fixtures.SetFixtureColor(a.fixture, c.R, c.G, c.B, c.W)
		}
		return ctx.Err() == nil
	}

	type fading struct {
		fixture  string
		from, to Color
	}
	var fades []fading
	for _, a := range targets {
		to := lookup(pal, a.color)
		if e.fixtures.HasColorWheel(a.fixture) {
			// a wheel cannot blend, it jumps at the start of the fade
			e.fixtures.SetFixtureColor(a.fixture, to.R, to.G, to.B, to.W)
			continue
		}
		fades = append(fades, fading{fixture: a.fixture, from: e.currentColor(a.fixture), to: to})
	}

	steps := fadeSteps(fade)
	stepTime := fade / time.Duration(steps)
	for s := 1; s <= steps; s++ {
		t := float64(s) / float64(steps)
		for _, f := range fades {
			c := lerp(f.from, f.to, t)
			e.fixtures.SetFixtureColor(f.fixture, c.R, c.G, c.B, c.W)
		}
		if !sleep(ctx, stepTime) {
			return false
		}
	}
	return true
}

func (e *Engine) currentColor(id string) Color {
	return Color{
		R: e.fixtures.GetFixtureChannel(id, "red"),
		G: e.fixtures.GetFixtureChannel(id, "green"),
		B: e.fixtures.GetFixtureChannel(id, "blue"),
		W: e.fixtures.GetFixtureChannel(id, "white"),
	}
}

func (e *Engine) recordColors(targets []assignment) {
	var names []string
	seen := map[string]bool{}
	for _, a := range targets {
		if !seen[a.color] {
			seen[a.color] = true
			names = append(names, a.color)
		}
	}
	e.SetCurrentColors(names...)
}

// fadeSteps is about 20 steps per second of fade, never fewer than 10.
func fadeSteps(fade time.Duration) int {
	steps := int(math.Round(fade.Seconds() * fadeStepsPerSecond))
	if steps < minFadeSteps {
		steps = minFadeSteps
	}
	return steps
}

func lookup(p *Palette, name string) Color {
	c, _ := p.Lookup(name)
	return c
}

func lerp(a, b Color, t float64) Color {
	mix := func(x, y float64) float64 { return x + (y-x)*t }
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), W: mix(a.W, b.W)}
}

// sleep waits for d or until ctx is done. It reports whether to keep going.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
