package movefx

import (
	"context"
	"errors"
	"sync"
	"time"

	"lightgroove/internal/logger"
)

var (
	ErrUnknownEffect    = errors.New("unknown move effect")
	ErrNoMovingFixtures = errors.New("no fixtures with pan/tilt")
)

const stopTimeout = 2 * time.Second

// Fixtures is what the engine moves.
type Fixtures interface {
	MovingFixtures() []string
	SetPanTilt(id string, pan, tilt float64)
	PanTilt(id string) (pan, tilt float64)
	SetAllMovingPositions(name string)
}

// Persister is told whenever the persisted parameters change.
type Persister interface {
	MarkDirty()
}

// Status is the engine state reported to clients.
type Status struct {
	State
	Running        bool     `json:"running"`
	CurrentFX      string   `json:"current_fx"`
	MovingFixtures []string `json:"moving_fixtures"`
	Patterns       []string `json:"patterns"`
}

// Engine runs pan/tilt patterns on every fixture that has both axes.
type Engine struct {
	log       logger.Logger
	fixtures  Fixtures
	persister Persister

	lifecycle sync.Mutex

	mu      sync.Mutex
	state   State
	current string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine конструктор. persister may be nil.
func NewEngine(log logger.Logger, fixtures Fixtures, st State, persister Persister) *Engine {
	return &Engine{
		log:       log,
		fixtures:  fixtures,
		persister: persister,
		state:     st.normalize(),
	}
}

func (e *Engine) logger() *logger.Log {
	return e.log.With(logger.Fields{"module": "movefx"})
}

// Snapshot returns the persisted parameters.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) update(fn func(s *State)) State {
	e.mu.Lock()
	fn(&e.state)
	e.state = e.state.normalize()
	st := e.state
	e.mu.Unlock()
	if e.persister != nil {
		e.persister.MarkDirty()
	}
	return st
}

func (e *Engine) SetBPM(bpm int) {
	st := e.update(func(s *State) { s.BPM = bpm })
	e.logger().Infof("BPM set to %d", st.BPM)
}

// SetCenter moves the pattern center; an idle engine moves the fixtures there at once.
func (e *Engine) SetCenter(pan, tilt float64) {
	st := e.update(func(s *State) { s.CenterPan, s.CenterTilt = pan, tilt })
	if !e.IsRunning() {
		for _, id := range e.fixtures.MovingFixtures() {
			e.fixtures.SetPanTilt(id, st.CenterPan, st.CenterTilt)
		}
	}
}

func (e *Engine) SetSize(size float64) {
	e.update(func(s *State) { s.Size = size })
}

func (e *Engine) SetPhase(phase float64) {
	e.update(func(s *State) { s.Phase = phase })
}

// SetSpeed sets the multiplier on the beat rate, 0-2.
func (e *Engine) SetSpeed(speed float64) {
	e.update(func(s *State) { s.Speed = speed })
}

// stepTime is the pause between steps of p at the current tempo.
func stepTime(st State, p pattern) time.Duration {
	speed := st.Speed
	if speed <= 0 {
		speed = minSpeed
	}
	beat := float64(time.Minute) / float64(st.BPM) / speed
	return time.Duration(beat * p.beats / float64(p.steps))
}

// Start runs the named pattern, stopping any running one first. "off"
// stops and returns every mover to the front position.
func (e *Engine) Start(name string) error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.stop()

	if name == "off" {
		e.fixtures.SetAllMovingPositions("front")
		return nil
	}
	p, ok := patterns[name]
	if !ok {
		e.logger().Warnf("Unknown effect '%s'", name)
		return ErrUnknownEffect
	}
	if len(e.fixtures.MovingFixtures()) == 0 {
		e.logger().Warn("No fixtures with pan/tilt found")
		return ErrNoMovingFixtures
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.mu.Lock()
	e.current = name
	e.cancel, e.done = cancel, done
	bpm := e.state.BPM
	e.mu.Unlock()

	go e.run(ctx, p, done)
	e.logger().Infof("Started '%s' effect at %d BPM", name, bpm)
	return nil
}

// Stop stops the running pattern and waits for it to exit. Fixtures stay where they are.
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
	st := Status{State: e.state, Running: e.cancel != nil, CurrentFX: e.current, Patterns: Patterns()}
	e.mu.Unlock()
	st.MovingFixtures = e.fixtures.MovingFixtures()
	if st.MovingFixtures == nil {
		st.MovingFixtures = []string{}
	}
	return st
}

func (e *Engine) run(ctx context.Context, p pattern, done chan<- struct{}) {
	defer close(done)

	var theta float64
	for {
		st := e.Snapshot()
		e.step(p, st, theta)
		theta += p.angleStep()
		if !sleep(ctx, stepTime(st, p)) {
			return
		}
	}
}

// step places every mover on the curve at angle theta.
func (e *Engine) step(p pattern, st State, theta float64) {
	g := st.geometry()
	movers := e.fixtures.MovingFixtures()
	for i, id := range movers {
		pan, tilt := p.point(g, theta+phaseOffset(i, len(movers), st.Phase))
		switch p.hold {
		case holdPan:
			pan = e.held(id, true, g.centerPan)
		case holdTilt:
			tilt = e.held(id, false, g.centerTilt)
		}
		e.fixtures.SetPanTilt(id, clamp01(pan), clamp01(tilt))
	}
}

// held is the last written value of one axis, or center when it was never set.
func (e *Engine) held(id string, pan bool, center float64) float64 {
	p, t := e.fixtures.PanTilt(id)
	v := t
	if pan {
		v = p
	}
	if v == 0 {
		return center
	}
	return v
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
