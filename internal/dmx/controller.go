package dmx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"lightgroove/internal/logger"
)

const (
	DefaultFPS  = 44
	stopTimeout = 2 * time.Second
)

// UniverseInfo describes a universe for status rendering.
type UniverseInfo struct {
	ID   int        `json:"id"`
	Mode OutputMode `json:"output_mode"`
}

// Controller owns all universes and their transports and runs the output loop.
type Controller struct {
	log logger.Logger
	fps int

	mu         sync.RWMutex
	universes  map[int]*Universe
	order      []int
	transports []Transport

	grandmaster atomic.Uint64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr map[int]string
}

// NewController конструктор. fps <= 0 selects DefaultFPS.
func NewController(log logger.Logger, fps int) *Controller {
	if fps <= 0 {
		fps = DefaultFPS
	}
	c := &Controller{
		log:       log,
		fps:       fps,
		universes: map[int]*Universe{},
		lastErr:   map[int]string{},
	}
	c.grandmaster.Store(math.Float64bits(1))
	return c
}

func (c *Controller) FPS() int { return c.fps }

// AddUniverse registers a universe with its transport. An existing universe is left untouched.
func (c *Controller) AddUniverse(id int, mode OutputMode, t Transport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addUniverseLocked(id, mode, t)
}

func (c *Controller) addUniverseLocked(id int, mode OutputMode, t Transport) *Universe {
	if u, ok := c.universes[id]; ok {
		return u
	}
	u := NewUniverse(id, mode, t)
	c.universes[id] = u
	c.order = append(c.order, id)
	sort.Ints(c.order)
	c.registerTransportLocked(u.transport)
	c.log.With(logger.Fields{"module": "dmx"}).Infof("Universe %d initialized (%s)", id, u.mode)
	return u
}

func (c *Controller) registerTransportLocked(t Transport) {
	if _, ok := t.(Virtual); ok {
		return
	}
	for _, known := range c.transports {
		if known == t {
			return
		}
	}
	c.transports = append(c.transports, t)
}

func (c *Controller) universe(id int) *Universe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.universes[id]
}

func (c *Controller) universeOrCreate(id int) *Universe {
	if u := c.universe(id); u != nil {
		return u
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addUniverseLocked(id, ModeVirtual, nil)
}

// SetGrandmaster sets the level (0.0-1.0) applied to subsequent writes.
func (c *Controller) SetGrandmaster(level float64) {
	if math.IsNaN(level) {
		level = 0
	}
	level = math.Max(0, math.Min(1, level))
	c.grandmaster.Store(math.Float64bits(level))
	c.log.With(logger.Fields{"module": "dmx"}).Infof("Grandmaster set to %d%%", int(math.Round(level*100)))
}

func (c *Controller) Grandmaster() float64 {
	return math.Float64frombits(c.grandmaster.Load())
}

func (c *Controller) scale(value int) int {
	v := float64(clampByte(value)) * c.Grandmaster()
	return clampByte(int(math.Round(v)))
}

// SetChannel sets channel (1-512) of universe to value (0-255) scaled by the grandmaster.
// Unknown universes are created in virtual mode.
func (c *Controller) SetChannel(universe, channel, value int) {
	c.universeOrCreate(universe).SetChannel(channel, c.scale(value))
}

// SetChannels sets consecutive channels starting at start.
func (c *Controller) SetChannels(universe, start int, values []int) {
	scaled := make([]int, len(values))
	for i, v := range values {
		scaled[i] = c.scale(v)
	}
	c.universeOrCreate(universe).SetChannels(start, scaled)
}

// GetChannel returns the stored value, 0 for unknown universes or channels.
func (c *Controller) GetChannel(universe, channel int) int {
	u := c.universe(universe)
	if u == nil {
		return 0
	}
	return u.Channel(channel)
}

// Snapshot returns a copy of a universe buffer.
func (c *Controller) Snapshot(universe int) ([UniverseSize]byte, bool) {
	u := c.universe(universe)
	if u == nil {
		return [UniverseSize]byte{}, false
	}
	return u.Data(), true
}

// Blackout zeroes the given universes, or all of them when none are given.
func (c *Controller) Blackout(universes ...int) {
	if len(universes) == 0 {
		c.mu.RLock()
		for _, u := range c.universes {
			u.Blackout()
		}
		c.mu.RUnlock()
		return
	}
	for _, id := range universes {
		if u := c.universe(id); u != nil {
			u.Blackout()
		}
	}
}

// Universes lists the known universes ordered by id.
func (c *Controller) Universes() []UniverseInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]UniverseInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, UniverseInfo{ID: id, Mode: c.universes[id].mode})
	}
	return out
}

// Start opens every transport and starts the output loop. A transport that
// cannot be opened aborts the start and is reported to the caller.
func (c *Controller) Start(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel != nil {
		return nil
	}
	if c.done != nil {
		// a loop that missed the stop deadline must exit before another starts
		select {
		case <-c.done:
			c.done = nil
		case <-time.After(stopTimeout):
			return errors.New("failed to start DMX output: previous output loop still running")
		}
	}

	c.mu.RLock()
	transports := append([]Transport(nil), c.transports...)
	c.mu.RUnlock()

	for i, t := range transports {
		if err := t.Open(); err != nil {
			for _, opened := range transports[:i] {
				_ = opened.Close()
			}
			return fmt.Errorf("failed to start DMX output: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.outputLoop(ctx, c.done)

	c.log.With(logger.Fields{"module": "dmx"}).Infof("Output started at %d fps", c.fps)
	return nil
}

// Stop stops the output loop, waits for it and closes every transport.
func (c *Controller) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	select {
	case <-c.done:
		c.done = nil
	case <-time.After(stopTimeout):
		c.log.With(logger.Fields{"module": "dmx"}).Warn("output loop did not stop in time")
	}

	c.mu.RLock()
	transports := append([]Transport(nil), c.transports...)
	c.mu.RUnlock()

	var errs []error
	for _, t := range transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.log.With(logger.Fields{"module": "dmx"}).Errorf("closing transports: %v", err)
	}
	c.log.With(logger.Fields{"module": "dmx"}).Info("Output stopped")
}

func (c *Controller) outputLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	interval := time.Second / time.Duration(c.fps)

	for {
		start := time.Now()
		c.sendFrame()
		if !sleep(ctx, frameDelay(interval, time.Since(start))) {
			return
		}
	}
}

// sendFrame hands a snapshot of every universe to its transport.
func (c *Controller) sendFrame() {
	c.mu.RLock()
	universes := make([]*Universe, 0, len(c.order))
	for _, id := range c.order {
		universes = append(universes, c.universes[id])
	}
	c.mu.RUnlock()

	for _, u := range universes {
		data := u.Data()
		c.report(u.id, u.transport.Send(data[:]))
	}
}

// report logs a transport error the first time it appears and when it clears,
// so a failing universe does not flood the log at frame rate.
func (c *Controller) report(universe int, err error) {
	prev := c.lastErr[universe]
	switch {
	case err != nil && err.Error() != prev:
		c.lastErr[universe] = err.Error()
		c.log.With(logger.Fields{"module": "dmx", "universe": universe}).Errorf("Output error: %v", err)
	case err == nil && prev != "":
		delete(c.lastErr, universe)
		c.log.With(logger.Fields{"module": "dmx", "universe": universe}).Info("Output recovered")
	}
}

// frameDelay is the pause that keeps the loop at the target frame rate; never negative.
func frameDelay(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// sleep waits for d or until ctx is done. It reports whether the loop should continue.
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
