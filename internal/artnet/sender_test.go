package artnet

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lightgroove/internal/logger"
)

func TestUniverseToAddress(t *testing.T) {
	a := UniverseToAddress(0x0123)
	assert.Equal(t, uint8(0x01), a.Net)
	assert.Equal(t, uint8(0x23), a.SubUni)

	a = UniverseToAddress(0)
	assert.Equal(t, uint8(0), a.Net)
	assert.Equal(t, uint8(0), a.SubUni)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "10.0.0.7", Target("10.0.0.7", false))
	assert.Equal(t, BroadcastIP, Target("10.0.0.7", true))
	assert.Equal(t, BroadcastIP, Target("", false))
}

func TestSenderWritesArtDMX(t *testing.T) {
	listener, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer listener.Close()

	s := NewSender(logger.Discard(), "local", listener.LocalAddr().String(), 0x0102)
	require.NoError(t, s.Open())
	defer s.Close()

	frame := make([]byte, UniverseSize)
	frame[0], frame[511] = 255, 42
	require.NoError(t, s.Send(frame))

	buf := make([]byte, 1024)
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, 18+UniverseSize, n)

	assert.Equal(t, "Art-Net\x00", string(buf[0:8]))
	assert.Equal(t, []byte{0x00, 0x50}, buf[8:10], "OpDmx, little endian")
	assert.Equal(t, uint8(1), buf[12], "first sequence number")
	assert.Equal(t, uint8(0x02), buf[14], "SubUni")
	assert.Equal(t, uint8(0x01), buf[15], "Net")
	assert.Equal(t, []byte{0x02, 0x00}, buf[16:18], "length, big endian")
	assert.Equal(t, uint8(255), buf[18])
	assert.Equal(t, uint8(42), buf[18+511])
}

func TestSenderNotOpen(t *testing.T) {
	s := NewSender(logger.Discard(), "n", "127.0.0.1", 0)
	assert.Error(t, s.Send(make([]byte, UniverseSize)))
	assert.NoError(t, s.Close())
}
