package dmx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lightgroove/internal/config"
	"lightgroove/internal/logger"
)

func TestNewFromConfig(t *testing.T) {
	disabled := false
	cfg := config.DMXConf{
		FPS:        30,
		SerialPort: "/dev/ttyUSB0",
		Nodes: []config.NodeConf{
			{ID: "stage", IP: "10.0.0.2"},
			{ID: "off", IP: "10.0.0.3", Enabled: &disabled},
		},
		Universes: []config.UniverseConf{
			{ID: 1, OutputMode: "artnet", NodeID: "stage", ArtNetUniverse: 0},
			{ID: 2, OutputMode: "artnet", NodeID: "stage", ArtNetUniverse: 0},
			{ID: 3, OutputMode: "artnet", NodeID: "off"},
			{ID: 4, OutputMode: "serial"},
			{ID: 5, OutputMode: "laser"},
			{ID: 0, OutputMode: "virtual"},
		},
	}

	c := NewFromConfig(logger.Discard(), cfg)

	assert.Equal(t, 30, c.FPS())
	assert.Equal(t, []UniverseInfo{
		{ID: 1, Mode: ModeArtNet},
		{ID: 2, Mode: ModeArtNet},
		{ID: 3, Mode: ModeVirtual},
		{ID: 4, Mode: ModeSerial},
		{ID: 5, Mode: ModeVirtual},
	}, c.Universes())

	// universes 1 and 2 share one sender, plus the serial line
	require.Len(t, c.transports, 2)
	assert.Same(t, c.universe(1).transport, c.universe(2).transport)
}
