package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logger]
log-level = "debug"

[dmx]
fps = 30

[[dmx.nodes]]
id = "stage"
ip = "10.0.0.5"
enabled = false

[[dmx.universes]]
id = 1
output-mode = "artnet"
node-id = "stage"
artnet-universe = 3
`), 0o644))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 30, cfg.DMX.FPS)
	require.Len(t, cfg.DMX.Nodes, 1)
	assert.False(t, cfg.DMX.Nodes[0].IsEnabled())
	require.Len(t, cfg.DMX.Universes, 1)
	assert.Equal(t, uint16(3), cfg.DMX.Universes[0].ArtNetUniverse)

	// untouched sections
	assert.Equal(t, "configs/fixtures.yaml", cfg.Fixtures.Catalog)
	assert.Equal(t, 5555, cfg.HTTP.Port)
	assert.Equal(t, "lightgroove", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 2.0, cfg.MoveFX.Debounce)
}

func TestNodeEnabledByDefault(t *testing.T) {
	assert.True(t, NodeConf{ID: "a"}.IsEnabled())
}

func TestNewConfigMissingFile(t *testing.T) {
	cfg, err := NewConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 44, cfg.DMX.FPS)
}
