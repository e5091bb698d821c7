package clientmqtt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightgroove/internal/colorfx"
	"lightgroove/internal/logger"
	"lightgroove/internal/movefx"
)

type recorder struct {
	calls []string
	gm    float64
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Exists(id string) bool { return id == "par1" }
func (r *recorder) SetFixtureColor(id string, red, g, b, w float64) {
	r.add("color %s %.2f %.2f %.2f %.2f", id, red, g, b, w)
}
func (r *recorder) SetFixtureDimmer(id string, v float64, manual bool) {
	r.add("dimmer %s %.2f %v", id, v, manual)
}
func (r *recorder) SetFixtureChannel(id, ch string, v float64) {
	r.add("channel %s %s %.2f", id, ch, v)
}
func (r *recorder) SetFixturePosition(id, name string) { r.add("position %s %s", id, name) }
func (r *recorder) SetPanTilt(id string, pan, tilt float64) {
	r.add("pantilt %s %.2f %.2f", id, pan, tilt)
}
func (r *recorder) BlackoutAll()                 { r.add("blackout") }
func (r *recorder) ReapplyAllStates()            { r.add("reapply") }
func (r *recorder) SetGrandmaster(level float64) { r.gm = level }

type colorRec struct {
	recorder
	status colorfx.Status
}

func (c *colorRec) Start(name string) error {
	if name == "bogus" {
		return colorfx.ErrUnknownEffect
	}
	c.add("start %s", name)
	return nil
}
func (c *colorRec) Stop()                       { c.add("stop") }
func (c *colorRec) SetBPM(bpm int)              { c.add("bpm %d", bpm) }
func (c *colorRec) SetFadePercentage(f float64) { c.add("fade %.2f", f) }
func (c *colorRec) Status() colorfx.Status      { return c.status }

type moveRec struct {
	recorder
	status movefx.Status
}

func (m *moveRec) Start(name string) error     { m.add("start %s", name); return nil }
func (m *moveRec) Stop()                       { m.add("stop") }
func (m *moveRec) SetBPM(bpm int)              { m.add("bpm %d", bpm) }
func (m *moveRec) SetCenter(pan, tilt float64) { m.add("center %.2f %.2f", pan, tilt) }
func (m *moveRec) SetSize(s float64)           { m.add("size %.2f", s) }
func (m *moveRec) SetPhase(p float64)          { m.add("phase %.2f", p) }
func (m *moveRec) SetSpeed(s float64)          { m.add("speed %.2f", s) }
func (m *moveRec) Status() movefx.Status       { return m.status }

func newTestClient() (*ClientMQTT, *recorder, *colorRec, *moveRec) {
	fx := &recorder{}
	col := &colorRec{}
	mv := &moveRec{status: movefx.Status{State: movefx.DefaultState()}}
	c := NewClient(logger.Discard(), MQTTConf{TopicPrefix: "lg"}, Targets{
		Fixtures:    fx,
		Grandmaster: fx,
		Color:       col,
		Move:        mv,
	})
	return c, fx, col, mv
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(logger.Discard(), MQTTConf{}, Targets{})
	assert.Regexp(t, `^lightgroove-[0-9a-f]{8}$`, c.cfgClient.ClientID)
	assert.Equal(t, "tcp", c.cfgClient.Schema)
	assert.Equal(t, "lightgroove/nodes", c.topic("nodes"))
}

func TestHandleFixture(t *testing.T) {
	c, fx, _, _ := newTestClient()

	require.NoError(t, c.handle("lg/fixture/par1/color", []byte(`{"r":1,"b":0.5}`)))
	require.NoError(t, c.handle("lg/fixture/par1/dimmer", []byte(`0.25`)))
	require.NoError(t, c.handle("lg/fixture/par1/dimmer", []byte(`{"value":0.75}`)))
	require.NoError(t, c.handle("lg/fixture/par1/channel/strobe", []byte(`"0.1"`)))
	require.NoError(t, c.handle("lg/fixture/par1/position", []byte(`front`)))
	require.NoError(t, c.handle("lg/fixture/par1/position", []byte(`{"pan":0.2,"tilt":0.8}`)))

	assert.Equal(t, []string{
		"color par1 1.00 0.00 0.50 0.00",
		"dimmer par1 0.25 true",
		"dimmer par1 0.75 true",
		"channel par1 strobe 0.10",
		"position par1 front",
		"pantilt par1 0.20 0.80",
	}, fx.calls)
}

func TestHandleErrors(t *testing.T) {
	c, fx, _, _ := newTestClient()

	assert.ErrorIs(t, c.handle("lg/fixture/nope/color", []byte(`{}`)), ErrUnknownFixture)
	assert.ErrorIs(t, c.handle("lg/fixture/par1/color", []byte(`red`)), ErrBadPayload)
	assert.ErrorIs(t, c.handle("lg/fixture/par1/dimmer", []byte(`loud`)), ErrBadPayload)
	assert.ErrorIs(t, c.handle("lg/fixture/par1/spin", []byte(`1`)), ErrUnknownTopic)
	assert.ErrorIs(t, c.handle("other/blackout", nil), ErrUnknownTopic)
	assert.ErrorIs(t, c.handle("lg/status/color", nil), ErrUnknownTopic)
	assert.Empty(t, fx.calls)
}

func TestHandleGlobal(t *testing.T) {
	c, fx, _, _ := newTestClient()

	require.NoError(t, c.handle("lg/grandmaster", []byte(`0.5`)))
	assert.Equal(t, 0.5, fx.gm)
	require.NoError(t, c.handle("lg/blackout", nil))
	assert.Equal(t, []string{"reapply", "blackout"}, fx.calls)
}

func TestHandleColorFX(t *testing.T) {
	c, _, col, _ := newTestClient()

	require.NoError(t, c.handle("lg/fx/color", []byte(`{"effect":"uniform","bpm":128,"fade_percentage":0.5}`)))
	require.NoError(t, c.handle("lg/fx/color", []byte(`{"effect":"stop"}`)))
	assert.ErrorIs(t, c.handle("lg/fx/color", []byte(`{"effect":"bogus"}`)), colorfx.ErrUnknownEffect)
	assert.Equal(t, []string{"bpm 128", "fade 0.50", "start uniform", "stop"}, col.calls)
}

func TestHandleMoveFX(t *testing.T) {
	c, _, _, mv := newTestClient()

	require.NoError(t, c.handle("lg/fx/move", []byte(`{"effect":"circle","fx_size":0.4,"center_tilt":0.3}`)))
	assert.Equal(t, []string{"size 0.40", "center 0.50 0.30", "start circle"}, mv.calls)
}

func TestParseNumber(t *testing.T) {
	for in, want := range map[string]float64{`1`: 1, `"0.5"`: 0.5, ` 0.25 `: 0.25, `{"value":2}`: 2} {
		got, err := parseNumber([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{`{}`, `NaN`, `"NaN"`, `Inf`, `-Inf`} {
		_, err := parseNumber([]byte(in))
		assert.ErrorIs(t, err, ErrBadPayload, in)
	}
}
