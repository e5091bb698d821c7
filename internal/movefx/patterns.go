package movefx

import "math"

// hold says which axis a pattern leaves alone.
type hold int

const (
	holdNone hold = iota
	holdPan
	holdTilt
)

// geometry is the shape every pattern is drawn around.
type geometry struct {
	centerPan  float64
	centerTilt float64
	radius     float64
}

// pattern is a closed curve sampled in steps; one cycle spans beats beats.
type pattern struct {
	steps int
	beats float64
	hold  hold
	point func(g geometry, theta float64) (pan, tilt float64)
}

var patterns = map[string]pattern{
	"pan_sway":  {steps: 60, beats: 1, hold: holdTilt, point: panSway},
	"tilt_sway": {steps: 60, beats: 1, hold: holdPan, point: tiltSway},
	"circle":    {steps: 80, beats: 1, point: circle},
	"eight":     {steps: 100, beats: 2, point: eight},
	"lissajous": {steps: 100, beats: 1, point: lissajous},
	"diamond":   {steps: 80, beats: 1, point: diamond},
}

// Patterns lists the effect names Start accepts, "off" included.
func Patterns() []string {
	return []string{"pan_sway", "tilt_sway", "circle", "eight", "lissajous", "diamond", "off"}
}

func panSway(g geometry, theta float64) (float64, float64) {
	return g.centerPan + g.radius*math.Sin(theta), g.centerTilt
}

func tiltSway(g geometry, theta float64) (float64, float64) {
	return g.centerPan, g.centerTilt + g.radius*math.Sin(theta)
}

func circle(g geometry, theta float64) (float64, float64) {
	return g.centerPan + g.radius*math.Cos(theta), g.centerTilt + g.radius*math.Sin(theta)
}

// eight is a lemniscate of Bernoulli.
func eight(g geometry, theta float64) (float64, float64) {
	sin, cos := math.Sincos(theta)
	d := 1 + sin*sin
	return g.centerPan + g.radius*cos/d, g.centerTilt + g.radius*sin*cos/d
}

// lissajous runs 3:2 with a quarter turn between axes.
func lissajous(g geometry, theta float64) (float64, float64) {
	return g.centerPan + g.radius*math.Sin(3*theta), g.centerTilt + g.radius*math.Sin(2*theta+math.Pi/2)
}

func diamond(g geometry, theta float64) (float64, float64) {
	sin, cos := math.Sincos(theta)
	return g.centerPan + g.radius*cos*cos*cos, g.centerTilt + g.radius*sin*sin*sin
}

// angleStep is how far theta advances per step.
func (p pattern) angleStep() float64 {
	return 2 * math.Pi / float64(p.steps)
}

// phaseOffset spreads fixture i of n around the cycle.
func phaseOffset(i, n int, spread float64) float64 {
	if n == 0 {
		return 0
	}
	return 2 * math.Pi * float64(i) / float64(n) * spread
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
