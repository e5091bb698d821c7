package movefx

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircleTrace(t *testing.T) {
	st := State{CenterPan: 0.5, CenterTilt: 0.5, Size: 0.4, BPM: 60, Speed: 1}
	p := patterns["circle"]
	g := st.geometry()

	var theta float64
	var elapsed time.Duration
	for i := 0; i <= p.steps; i++ {
		pan, tilt := p.point(g, theta)
		assert.GreaterOrEqual(t, pan, 0.1)
		assert.LessOrEqual(t, pan, 0.9)
		assert.GreaterOrEqual(t, tilt, 0.1)
		assert.LessOrEqual(t, tilt, 0.9)
		assert.InDelta(t, 0.2, math.Hypot(pan-0.5, tilt-0.5), 1e-9)
		if i < p.steps {
			theta += p.angleStep()
			elapsed += stepTime(st, p)
		}
	}
	assert.InDelta(t, 2*math.Pi, theta, 1e-9, "one beat closes the loop")
	assert.InDelta(t, float64(time.Second), float64(elapsed), float64(time.Millisecond))

	x0, y0 := p.point(g, 0)
	x1, y1 := p.point(g, theta)
	assert.InDelta(t, x0, x1, 1e-9)
	assert.InDelta(t, y0, y1, 1e-9)
}

func TestEightSpansTwoBeats(t *testing.T) {
	st := DefaultState()
	st.BPM = 60
	p := patterns["eight"]
	assert.Equal(t, 2*time.Second, stepTime(st, p)*time.Duration(p.steps))
}

func TestStepTimeSpeed(t *testing.T) {
	st := DefaultState()
	st.BPM = 60
	p := patterns["circle"]

	st.Speed = 2
	assert.InDelta(t, float64(500*time.Millisecond/80), float64(stepTime(st, p)), float64(time.Microsecond))

	st.Speed = 0
	assert.InDelta(t, float64(100*time.Second/80), float64(stepTime(st, p)), float64(time.Microsecond))
}

func TestPatternsStayBounded(t *testing.T) {
	g := geometry{centerPan: 0.5, centerTilt: 0.5, radius: 0.5}
	for name, p := range patterns {
		for i := 0; i < 4*p.steps; i++ {
			pan, tilt := p.point(g, float64(i)*p.angleStep())
			assert.LessOrEqual(t, math.Abs(pan-0.5), 0.5+1e-9, name)
			assert.LessOrEqual(t, math.Abs(tilt-0.5), 0.5+1e-9, name)
		}
	}
}

func TestDiamondCorners(t *testing.T) {
	g := geometry{centerPan: 0.5, centerTilt: 0.5, radius: 0.2}
	pan, tilt := diamond(g, 0)
	assert.InDelta(t, 0.7, pan, 1e-9)
	assert.InDelta(t, 0.5, tilt, 1e-9)

	pan, tilt = diamond(g, math.Pi/4)
	// cos³ at 45° pulls the edge inward
	assert.InDelta(t, 0.5+0.2*math.Pow(math.Sqrt2/2, 3), pan, 1e-9)
	assert.InDelta(t, 0.5+0.2*math.Pow(math.Sqrt2/2, 3), tilt, 1e-9)
}

func TestPhaseOffset(t *testing.T) {
	assert.Equal(t, 0.0, phaseOffset(0, 4, 1))
	assert.InDelta(t, math.Pi, phaseOffset(2, 4, 1), 1e-9)
	assert.InDelta(t, math.Pi/2, phaseOffset(2, 4, 0.5), 1e-9)
	assert.Equal(t, 0.0, phaseOffset(3, 4, 0))
	assert.Equal(t, 0.0, phaseOffset(0, 0, 1))
}

func TestNormalize(t *testing.T) {
	st := State{CenterPan: -1, CenterTilt: 2, Size: 3, BPM: 0, Phase: -0.5, Speed: 5}.normalize()
	assert.Equal(t, State{CenterPan: 0, CenterTilt: 1, Size: 1, BPM: MinBPM, Phase: 0, Speed: MaxSpeed}, st)

	nan := math.NaN()
	st = State{CenterPan: nan, CenterTilt: nan, Size: nan, BPM: 90, Phase: nan, Speed: nan}.normalize()
	assert.Equal(t, State{BPM: 90}, st)
}
