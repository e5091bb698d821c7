package fixture

const (
	wheelOff = 0.2
	wheelOn  = 0.8
)

// ClassifyWheelColor picks the color-wheel entry closest to an RGBW mix.
// Rules are checked in order: white, two-component mixes, pure colors,
// a purple-ish fallback to magenta, and white for anything else.
func ClassifyWheelColor(r, g, b, w float64) string {
	on := func(v float64) bool { return v > wheelOn }
	off := func(v float64) bool { return v < wheelOff }

	switch {
	case w > 0.5 || (on(r) && on(g) && on(b)):
		return "white"

	case on(r) && on(g) && off(b):
		return "yellow"
	case off(r) && on(g) && on(b):
		return "cyan"
	case on(r) && off(g) && on(b):
		return "magenta"
	case on(r) && g > 0.3 && g < 0.7 && off(b):
		return "orange"

	case on(r) && off(g) && off(b):
		return "red"
	case off(r) && on(g) && off(b):
		return "green"
	case off(r) && off(g) && on(b):
		return "blue"

	case r > 0.4 && on(b) && g < 0.5:
		return "magenta"
	}
	return "white"
}

// wheelValue returns the raw DMX value for a named color, 0 when the table lacks it.
func wheelValue(table map[string]int, name string) int {
	return table[name]
}
