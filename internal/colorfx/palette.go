package colorfx

import (
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Black is the reserved palette entry effects use for "off"; it is never picked at random.
const Black = "black"

// Color is a normalized RGBW value.
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	W float64 `json:"w" yaml:"w"`
}

// NamedColor is one palette entry.
type NamedColor struct {
	Name  string
	Color Color
}

// Palette is an ordered, immutable table of named colors.
type Palette struct {
	names  []string
	colors map[string]Color
}

// NewPalette builds a palette; later duplicates replace earlier entries in place.
func NewPalette(entries []NamedColor) *Palette {
	p := &Palette{colors: make(map[string]Color, len(entries))}
	for _, e := range entries {
		if _, ok := p.colors[e.Name]; !ok {
			p.names = append(p.names, e.Name)
		}
		p.colors[e.Name] = e.Color
	}
	if _, ok := p.colors[Black]; !ok {
		p.names = append(p.names, Black)
		p.colors[Black] = Color{}
	}
	return p
}

// DefaultPalette is used when no palette file can be read.
func DefaultPalette() *Palette {
	return NewPalette([]NamedColor{
		{"red", Color{R: 1}},
		{"green", Color{G: 1}},
		{"blue", Color{B: 1}},
		{"cyan", Color{G: 1, B: 1}},
		{"magenta", Color{R: 1, B: 1}},
		{"yellow", Color{R: 1, G: 1}},
		{"white", Color{W: 1}},
		{"orange", Color{R: 1, G: 0.5}},
		{"purple", Color{R: 0.65, G: 0.3, B: 1}},
		{Black, Color{}},
	})
}

// Names returns every color name in palette order, black included.
func (p *Palette) Names() []string {
	return append([]string(nil), p.names...)
}

// EffectColors returns the names effects choose from.
func (p *Palette) EffectColors() []string {
	out := make([]string, 0, len(p.names))
	for _, n := range p.names {
		if n != Black {
			out = append(out, n)
		}
	}
	return out
}

func (p *Palette) Lookup(name string) (Color, bool) {
	c, ok := p.colors[name]
	return c, ok
}

// Map returns a copy of the table for status output.
func (p *Palette) Map() map[string]Color {
	out := make(map[string]Color, len(p.colors))
	for k, v := range p.colors {
		out[k] = v
	}
	return out
}

// Match returns the name of the palette color equal to c within 0.01.
func (p *Palette) Match(c Color) (string, bool) {
	near := func(a, b float64) bool { return a-b < 0.01 && b-a < 0.01 }
	for _, n := range p.names {
		v := p.colors[n]
		if near(v.R, c.R) && near(v.G, c.G) && near(v.B, c.B) && near(v.W, c.W) {
			return n, true
		}
	}
	return "", false
}

type paletteEntry struct {
	Name string  `yaml:"name"`
	Hex  string  `yaml:"hex"`
	R    float64 `yaml:"r"`
	G    float64 `yaml:"g"`
	B    float64 `yaml:"b"`
	W    float64 `yaml:"w"`
}

// LoadPalette reads a YAML list of colors.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}
	return ParsePalette(data)
}

// ParsePalette decodes entries of the form {name, r, g, b, w} or {name, hex, w}.
func ParsePalette(data []byte) (*Palette, error) {
	var raw []paletteEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}
	entries := make([]NamedColor, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" {
			return nil, fmt.Errorf("parse palette: entry without name")
		}
		c := Color{R: e.R, G: e.G, B: e.B, W: e.W}
		if e.Hex != "" {
			hc, err := colorful.Hex(e.Hex)
			if err != nil {
				return nil, fmt.Errorf("parse palette color %q: %w", e.Name, err)
			}
			c.R, c.G, c.B = hc.R, hc.G, hc.B
		}
		entries = append(entries, NamedColor{Name: e.Name, Color: clampColor(c)})
	}
	return NewPalette(entries), nil
}

func clampColor(c Color) Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), W: clamp01(c.W)}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
