package colorfx

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightgroove/internal/logger"
)

type fakeFixtures struct {
	mu     sync.Mutex
	ids    []string
	wheel  map[string]bool
	colors map[string]Color
	writes int
}

func newFakeFixtures(ids ...string) *fakeFixtures {
	return &fakeFixtures{ids: ids, wheel: map[string]bool{}, colors: map[string]Color{}}
}

func (f *fakeFixtures) List() []string { return f.ids }

func (f *fakeFixtures) SetFixtureColor(id string, r, g, b, w float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors[id] = Color{R: r, G: g, B: b, W: w}
	f.writes++
}

func (f *fakeFixtures) GetFixtureChannel(id, channel string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.colors[id]
	switch channel {
	case "red":
		return c.R
	case "green":
		return c.G
	case "blue":
		return c.B
	case "white":
		return c.W
	}
	return 0
}

func (f *fakeFixtures) HasColorWheel(id string) bool { return f.wheel[id] }

func (f *fakeFixtures) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeFixtures) color(id string) Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.colors[id]
}

func testEngine(fx Fixtures) *Engine {
	return NewEngine(logger.Discard(), fx, nil)
}

func TestStartUnknownEffect(t *testing.T) {
	e := testEngine(newFakeFixtures("a"))
	require.NoError(t, e.Start("uniform"))
	assert.ErrorIs(t, e.Start("strobe"), ErrUnknownEffect)
	assert.False(t, e.IsRunning())
	assert.Equal(t, "", e.Status().CurrentFX)
}

func TestSetBPMClamp(t *testing.T) {
	e := testEngine(newFakeFixtures())
	e.SetBPM(0)
	assert.Equal(t, MinBPM, e.Status().BPM)
	e.SetBPM(1000)
	assert.Equal(t, MaxBPM, e.Status().BPM)
	e.SetFadePercentage(1.5)
	assert.Equal(t, 1.0, e.Status().FadePercentage)
}

func TestUniformRunsAndStops(t *testing.T) {
	fx := newFakeFixtures("a", "b")
	e := testEngine(fx)
	e.SetBPM(MaxBPM)
	require.NoError(t, e.Start("uniform"))
	time.Sleep(400 * time.Millisecond)

	begin := time.Now()
	e.Stop()
	assert.Less(t, time.Since(begin), stopTimeout)

	st := e.Status()
	assert.False(t, st.Running)
	require.Len(t, st.CurrentColors, 1)
	assert.Equal(t, fx.color("a"), fx.color("b"))

	n := fx.count()
	assert.Greater(t, n, 0)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, n, fx.count(), "no writes after stop")
}

func TestRestartLeavesSingleWriter(t *testing.T) {
	fx := newFakeFixtures("a", "b")
	e := testEngine(fx)
	e.SetBPM(MaxBPM)
	require.NoError(t, e.Start("uniform"))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, e.Start("independent"))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "independent", e.Status().CurrentFX)

	e.Stop()
	n := fx.count()
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, n, fx.count(), "no writes after stop")
}

func TestBeatIncludesFadeTime(t *testing.T) {
	fx := newFakeFixtures("a")
	e := testEngine(fx)
	e.SetBPM(MaxBPM)
	e.SetFadePercentage(1)
	require.NoError(t, e.Start("uniform"))
	time.Sleep(1100 * time.Millisecond)
	e.Stop()

	// 8 beats per second, each a full fade of minFadeSteps writes
	beats := fx.count() / minFadeSteps
	assert.GreaterOrEqual(t, beats, 7)
	assert.LessOrEqual(t, beats, 10)
}

func TestStopDuringFade(t *testing.T) {
	fx := newFakeFixtures("a")
	e := testEngine(fx)
	e.SetBPM(MinBPM)
	e.SetFadePercentage(1)
	require.NoError(t, e.Start("uniform"))
	time.Sleep(100 * time.Millisecond)

	begin := time.Now()
	e.Stop()
	assert.Less(t, time.Since(begin), 500*time.Millisecond)
}

func TestApplyFade(t *testing.T) {
	fx := newFakeFixtures("a", "wheel")
	fx.wheel["wheel"] = true
	e := testEngine(fx)

	targets := []assignment{{fixture: "a", color: "red"}, {fixture: "wheel", color: "blue"}}
	begin := time.Now()
	require.True(t, e.apply(context.Background(), targets, 100*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(begin), 100*time.Millisecond)
	assert.Equal(t, Color{R: 1}, fx.color("a"))
	assert.Equal(t, Color{B: 1}, fx.color("wheel"))
	// one jump for the wheel plus ten steps for the RGB fixture
	assert.Equal(t, 1+minFadeSteps, fx.count())
}

func TestFadeSteps(t *testing.T) {
	assert.Equal(t, 10, fadeSteps(100*time.Millisecond))
	assert.Equal(t, 20, fadeSteps(time.Second))
	assert.Equal(t, 50, fadeSteps(2500*time.Millisecond))
}

func TestLerp(t *testing.T) {
	c := lerp(Color{}, Color{R: 1, W: 0.5}, 0.5)
	assert.InDelta(t, 0.5, c.R, 1e-9)
	assert.InDelta(t, 0.25, c.W, 1e-9)
}

func TestPickerIndependent(t *testing.T) {
	p := newPicker(rand.New(rand.NewSource(1)))
	names := DefaultPalette().EffectColors()
	prev := map[string]string{}
	for beat := 0; beat < 100; beat++ {
		for _, a := range p.independent([]string{"a", "b", "c"}, names) {
			assert.NotEqual(t, Black, a.color)
			assert.NotEqual(t, prev[a.fixture], a.color)
			prev[a.fixture] = a.color
		}
	}
}

func TestPickerUniformNeverRepeats(t *testing.T) {
	p := newPicker(rand.New(rand.NewSource(2)))
	names := []string{"red", "blue"}
	last := ""
	for i := 0; i < 50; i++ {
		out := p.uniform([]string{"a", "b"}, names)
		assert.Equal(t, out[0].color, out[1].color)
		assert.NotEqual(t, last, out[0].color)
		last = out[0].color
	}
}

func TestPickerSingleColor(t *testing.T) {
	p := newPicker(rand.New(rand.NewSource(3)))
	for i := 0; i < 3; i++ {
		assert.Equal(t, "red", p.uniform([]string{"a"}, []string{"red"})[0].color)
	}
}

func TestPickerAlternating(t *testing.T) {
	p := newPicker(rand.New(rand.NewSource(4)))
	fixtures := []string{"a", "b", "c", "d"}
	names := DefaultPalette().EffectColors()

	first := p.alternating(fixtures, names)
	assert.NotEqual(t, Black, first[0].color)
	assert.Equal(t, Black, first[1].color)
	assert.Equal(t, first[0].color, first[2].color)
	assert.Equal(t, Black, first[3].color)

	second := p.alternating(fixtures, names)
	assert.Equal(t, Black, second[0].color)
	assert.NotEqual(t, Black, second[1].color)
	assert.Equal(t, Black, second[2].color)
	assert.Equal(t, second[1].color, second[3].color)
}
