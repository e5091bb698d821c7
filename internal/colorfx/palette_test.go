package colorfx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	assert.NotContains(t, p.EffectColors(), Black)
	assert.Contains(t, p.Names(), Black)

	c, ok := p.Lookup("white")
	require.True(t, ok)
	assert.Equal(t, 1.0, c.W)

	_, ok = p.Lookup("nope")
	assert.False(t, ok)
}

func TestParsePalette(t *testing.T) {
	data := []byte(`
- name: warm
  hex: "#ff8000"
  w: 0.2
- name: deep
  r: 0.1
  g: 0
  b: 1.5
`)
	p, err := ParsePalette(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"warm", "deep"}, p.EffectColors())

	warm, _ := p.Lookup("warm")
	assert.InDelta(t, 1.0, warm.R, 1e-6)
	assert.InDelta(t, 128.0/255, warm.G, 1e-6)
	assert.InDelta(t, 0.2, warm.W, 1e-6)

	deep, _ := p.Lookup("deep")
	assert.Equal(t, 1.0, deep.B)

	_, ok := p.Lookup(Black)
	assert.True(t, ok)
}

func TestParsePaletteErrors(t *testing.T) {
	_, err := ParsePalette([]byte(`- name: bad
  hex: "zzz"`))
	assert.Error(t, err)

	_, err = ParsePalette([]byte(`- r: 1`))
	assert.Error(t, err)
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: red\n  r: 1\n"), 0o644))

	p, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, p.EffectColors())

	_, err = LoadPalette(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	p := DefaultPalette()
	name, ok := p.Match(Color{G: 1})
	require.True(t, ok)
	assert.Equal(t, "green", name)
}
