package fixture

import (
	"errors"
	"math"
	"sync"

	"lightgroove/internal/dmx"
	"lightgroove/internal/logger"
)

var ErrUnknownType = errors.New("unknown fixture type")

const blackThreshold = 0.01

// DMX is the channel sink the manager writes through.
type DMX interface {
	SetChannel(universe, channel, value int)
}

// Position is a named pan/tilt target.
type Position struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
}

// Positions are the named moving-head positions.
var Positions = map[string]Position{
	"front": {Pan: 0.5, Tilt: 0.5},
	"back":  {Pan: 1.0, Tilt: 0.5},
	"up":    {Pan: 0.5, Tilt: 0.0},
	"down":  {Pan: 0.5, Tilt: 1.0},
}

type instance struct {
	entry    PatchEntry
	typ      *Type
	channels map[string]ChannelDef

	dimmerCap  DimmerCapability
	dimmer     string
	wheel      string
	pan, tilt  string
	panFine    string
	tiltFine   string
	colorNames []string

	state map[string]float64
	saved savedDimmer
}

// Manager maps logical fixture writes to DMX addresses and keeps the last logical state.
type Manager struct {
	log logger.Logger
	dmx DMX

	mu       sync.Mutex
	fixtures map[string]*instance
	order    []string
}

// NewManager patches every valid entry. Invalid entries are logged and skipped.
func NewManager(log logger.Logger, out DMX, catalog Catalog, patch []PatchEntry) *Manager {
	m := &Manager{
		log:      log,
		dmx:      out,
		fixtures: map[string]*instance{},
	}
	l := m.logger()
	for _, e := range patch {
		if err := m.add(catalog, e); err != nil {
			l.Errorf("Fixture %q not patched: %v", e.ID, err)
			continue
		}
		l.Infof("Initialized fixture '%s' (%s) at Universe %d, Address %d", e.ID, e.Type, e.Universe, e.StartAddress)
	}
	return m
}

func (m *Manager) logger() *logger.Log {
	return m.log.With(logger.Fields{"module": "fixture"})
}

func (m *Manager) add(catalog Catalog, e PatchEntry) error {
	t, ok := catalog[e.Type]
	switch {
	case e.ID == "":
		return errors.New("empty fixture id")
	case !ok:
		return ErrUnknownType
	case m.fixtures[e.ID] != nil:
		return errors.New("duplicate fixture id")
	case e.Universe <= 0:
		return errors.New("universe must be positive")
	case e.StartAddress < 1 || e.StartAddress > dmx.UniverseSize:
		return errors.New("start address out of range 1-512")
	case e.StartAddress+t.MaxIndex() > dmx.UniverseSize:
		return errors.New("fixture does not fit into the universe")
	}

	f := &instance{
		entry:    e,
		typ:      t,
		channels: make(map[string]ChannelDef, len(t.Channels)),
		state:    map[string]float64{},
	}
	for _, ch := range t.Channels {
		f.channels[ch.Name] = ch
	}
	f.resolve()
	m.fixtures[e.ID] = f
	m.order = append(m.order, e.ID)
	return nil
}

// resolve computes the capabilities of the instance once.
func (f *instance) resolve() {
	for _, d := range dimmerNames {
		if _, ok := f.channels[d.name]; ok {
			f.dimmer, f.dimmerCap = d.name, d.cap
			break
		}
	}
	byRole := func(name string, role Role) string {
		if _, ok := f.channels[name]; ok {
			return name
		}
		for _, ch := range f.typ.Channels {
			if ch.Role == role {
				return ch.Name
			}
		}
		return ""
	}
	if f.dimmer == "" {
		if name := byRole("", RoleDimmer); name != "" {
			f.dimmer, f.dimmerCap = name, DimmerByRole
		}
	}
	f.wheel = byRole(ChannelColorWheel, RoleColorWheel)
	f.pan = byRole(ChannelPan, RolePan)
	f.tilt = byRole(ChannelTilt, RoleTilt)
	f.panFine = byRole(ChannelPanFine, RolePanFine)
	f.tiltFine = byRole(ChannelTiltFine, RoleTiltFine)
	for _, name := range []string{ChannelRed, ChannelGreen, ChannelBlue, ChannelWhite} {
		if _, ok := f.channels[name]; ok {
			f.colorNames = append(f.colorNames, name)
		}
	}
}

func (m *Manager) lookup(id string) *instance {
	f, ok := m.fixtures[id]
	if !ok {
		m.logger().Warnf("Fixture '%s' not found", id)
		return nil
	}
	return f
}

// write stores the logical value and sends it to the DMX controller. Callers hold m.mu.
func (m *Manager) write(f *instance, channel string, value float64) {
	ch, ok := f.channels[channel]
	if !ok {
		m.logger().Warnf("Channel '%s' not found in fixture '%s'", channel, f.entry.ID)
		return
	}
	value = clamp01(value)
	m.dmx.SetChannel(f.entry.Universe, f.entry.StartAddress+ch.Index, toDMX(value))
	f.state[channel] = value
}

// SetFixtureChannel sets a named channel of a fixture to value (0.0-1.0).
func (m *Manager) SetFixtureChannel(id, channel string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f := m.lookup(id); f != nil {
		m.write(f, channel, value)
	}
}

// GetFixtureChannel returns the last logical value of a channel, 0 if never set.
func (m *Manager) GetFixtureChannel(id, channel string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.fixtures[id]; ok {
		return f.state[channel]
	}
	return 0
}

func (m *Manager) HasChannel(id, channel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.fixtures[id]; ok {
		_, ok = f.channels[channel]
		return ok
	}
	return false
}

func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.fixtures[id]
	return ok
}

// HasColorWheel reports whether the fixture mixes color with a wheel instead of RGBW.
func (m *Manager) HasColorWheel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fixtures[id]
	return ok && f.wheel != ""
}

func (m *Manager) HasPanTilt(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fixtures[id]
	return ok && f.pan != "" && f.tilt != ""
}

// SetFixtureColor sets an RGBW color. Color-wheel fixtures get the nearest wheel slot.
// Black saves and zeroes the dimmer; the next color brings it back.
func (m *Manager) SetFixtureColor(id string, r, g, b, w float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.lookup(id)
	if f == nil {
		return
	}

	black := r < blackThreshold && g < blackThreshold && b < blackThreshold && w < blackThreshold
	coupled := f.typ.DimmerOnBlack && f.dimmer != ""

	if black && coupled {
		f.saved = f.saved.capture(f.state[f.dimmer])
		m.write(f, f.dimmer, 0)
	}

	if f.wheel != "" {
		if !(black && coupled) {
			raw := wheelValue(f.typ.ColorWheel, ClassifyWheelColor(r, g, b, w))
			m.write(f, f.wheel, float64(raw)/255)
		}
	} else {
		values := map[string]float64{ChannelRed: r, ChannelGreen: g, ChannelBlue: b, ChannelWhite: w}
		for _, name := range f.colorNames {
			m.write(f, name, values[name])
		}
	}

	if !black && coupled && f.state[f.dimmer] < blackThreshold {
		if v, ok := f.saved.restore(); ok {
			m.write(f, f.dimmer, v)
		}
	}
}

// SetFixtureDimmer sets the fixture intensity. A manual value is remembered
// and takes priority when restoring from black.
func (m *Manager) SetFixtureDimmer(id string, intensity float64, manual bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.lookup(id)
	if f == nil || f.dimmer == "" {
		return
	}
	m.write(f, f.dimmer, intensity)
	if manual {
		f.saved = manualDimmer(clamp01(intensity))
	}
}

// FixtureDimmer returns the current intensity, 1.0 for fixtures without a dimmer.
func (m *Manager) FixtureDimmer(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fixtures[id]
	if !ok || f.dimmer == "" {
		return 1
	}
	return f.state[f.dimmer]
}

// DimmerCapability reports how the fixture exposes intensity.
func (m *Manager) DimmerCapability(id string) DimmerCapability {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.fixtures[id]; ok {
		return f.dimmerCap
	}
	return DimmerNone
}

// SetPanTilt moves a fixture and zeroes its fine channels. Values are clamped to 0.0-1.0.
func (m *Manager) SetPanTilt(id string, pan, tilt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f := m.lookup(id); f != nil {
		m.setPanTilt(f, pan, tilt)
	}
}

func (m *Manager) setPanTilt(f *instance, pan, tilt float64) {
	if f.pan == "" || f.tilt == "" {
		return
	}
	m.write(f, f.pan, pan)
	m.write(f, f.tilt, tilt)
	if f.panFine != "" {
		m.write(f, f.panFine, 0)
	}
	if f.tiltFine != "" {
		m.write(f, f.tiltFine, 0)
	}
}

// PanTilt returns the last written pan and tilt.
func (m *Manager) PanTilt(id string) (pan, tilt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fixtures[id]
	if !ok || f.pan == "" || f.tilt == "" {
		return 0, 0
	}
	return f.state[f.pan], f.state[f.tilt]
}

// SetFixturePosition moves a fixture to a named position (front, back, up, down).
func (m *Manager) SetFixturePosition(id, name string) {
	pos, ok := Positions[name]
	if !ok {
		m.logger().Warnf("Unknown position '%s'", name)
		return
	}
	m.SetPanTilt(id, pos.Pan, pos.Tilt)
}

// SetAllMovingPositions moves every pan/tilt fixture to a named position.
func (m *Manager) SetAllMovingPositions(name string) {
	pos, ok := Positions[name]
	if !ok {
		m.logger().Warnf("Unknown position '%s'", name)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		m.setPanTilt(m.fixtures[id], pos.Pan, pos.Tilt)
	}
}

// List returns fixture ids in patch order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// MovingFixtures returns ids of fixtures with both pan and tilt, in patch order.
func (m *Manager) MovingFixtures() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, id := range m.order {
		if f := m.fixtures[id]; f.pan != "" && f.tilt != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Fixtures enumerates the patch.
func (m *Manager) Fixtures() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, 0, len(m.order))
	for _, id := range m.order {
		f := m.fixtures[id]
		out = append(out, Info{
			ID:           id,
			Type:         f.typ.Name,
			Universe:     f.entry.Universe,
			StartAddress: f.entry.StartAddress,
			Channels:     append([]ChannelDef(nil), f.typ.Channels...),
		})
	}
	return out
}

// State returns a copy of the logical state of one fixture, nil if unknown.
func (m *Manager) State(id string) map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fixtures[id]
	if !ok {
		return nil
	}
	return copyState(f.state)
}

// BlackoutAll sets every fixture to black with the dimmer at zero.
func (m *Manager) BlackoutAll() {
	for _, id := range m.List() {
		m.SetFixtureColor(id, 0, 0, 0, 0)
		m.SetFixtureDimmer(id, 0, false)
	}
}

// FlashAllWhite sets every fixture to full white at full intensity.
func (m *Manager) FlashAllWhite() {
	for _, id := range m.List() {
		m.SetFixtureColor(id, 0, 0, 0, 1)
		m.SetFixtureDimmer(id, 1, false)
	}
}

// ReapplyAllStates rewrites every stored value, e.g. after a grandmaster change.
func (m *Manager) ReapplyAllStates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		f := m.fixtures[id]
		for name, v := range f.state {
			m.write(f, name, v)
		}
	}
}

// SaveCurrentStates snapshots the logical state of all fixtures.
func (m *Manager) SaveCurrentStates() States {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(States, len(m.fixtures))
	for id, f := range m.fixtures {
		out[id] = copyState(f.state)
	}
	return out
}

// RestoreStates writes back a snapshot taken by SaveCurrentStates.
func (m *Manager) RestoreStates(states States) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, state := range states {
		f, ok := m.fixtures[id]
		if !ok {
			continue
		}
		for name, v := range state {
			m.write(f, name, v)
		}
	}
}

func copyState(s map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func toDMX(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}
