package dmx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	calls   []string
	breakD  time.Duration
	written []byte
	closed  bool
}

func (p *fakePort) Break(d time.Duration) error {
	p.calls = append(p.calls, "break")
	p.breakD = d
	return nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.calls = append(p.calls, "write")
	p.written = append([]byte(nil), b...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newTestLine(p *fakePort, err error) *SerialLine {
	l := NewSerialLine("/dev/null-dmx")
	l.open = func(string) (serialPort, error) {
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return l
}

func TestSerialFrame(t *testing.T) {
	p := &fakePort{}
	l := newTestLine(p, nil)
	require.NoError(t, l.Open())

	frame := make([]byte, UniverseSize)
	frame[0], frame[511] = 1, 2
	require.NoError(t, l.Send(frame))

	assert.Equal(t, []string{"break", "write"}, p.calls)
	assert.GreaterOrEqual(t, p.breakD, 100*time.Microsecond)
	require.Len(t, p.written, UniverseSize+1)
	assert.Equal(t, byte(0x00), p.written[0], "start code")
	assert.Equal(t, byte(1), p.written[1])
	assert.Equal(t, byte(2), p.written[512])

	require.NoError(t, l.Close())
	assert.True(t, p.closed)
	assert.ErrorIs(t, l.Send(frame), ErrNotOpen)
}

func TestSerialOpenError(t *testing.T) {
	l := newTestLine(nil, errors.New("no such device"))
	err := l.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/null-dmx")
}
