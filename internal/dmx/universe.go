package dmx

import "sync"

// UniverseSize is the number of channel slots in a DMX-512 universe.
const UniverseSize = 512

// OutputMode selects how a universe reaches the wire.
type OutputMode string

const (
	ModeVirtual OutputMode = "virtual"
	ModeSerial  OutputMode = "serial"
	ModeArtNet  OutputMode = "artnet"
)

// Universe wraps the 512 byte array of one DMX universe together with its transport.
type Universe struct {
	id        int
	mode      OutputMode
	transport Transport

	mu   sync.Mutex
	data [UniverseSize]byte
}

// NewUniverse returns a zeroed universe. A nil transport means virtual output.
func NewUniverse(id int, mode OutputMode, t Transport) *Universe {
	if t == nil {
		t, mode = Virtual{}, ModeVirtual
	}
	return &Universe{id: id, mode: mode, transport: t}
}

// SetChannel stores value into channel (1-512). Out of range channels are ignored.
func (u *Universe) SetChannel(channel, value int) {
	if channel < 1 || channel > UniverseSize {
		return
	}
	u.mu.Lock()
	u.data[channel-1] = byte(clampByte(value))
	u.mu.Unlock()
}

// SetChannels stores values starting at channel start, dropping what falls past 512.
func (u *Universe) SetChannels(start int, values []int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, v := range values {
		ch := start + i
		if ch < 1 || ch > UniverseSize {
			continue
		}
		u.data[ch-1] = byte(clampByte(v))
	}
}

// Channel returns the stored value of channel, 0 when out of range.
func (u *Universe) Channel(channel int) int {
	if channel < 1 || channel > UniverseSize {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return int(u.data[channel-1])
}

// Data returns a copy of all 512 slots.
func (u *Universe) Data() [UniverseSize]byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.data
}

// Blackout sets all channels to 0.
func (u *Universe) Blackout() {
	u.mu.Lock()
	u.data = [UniverseSize]byte{}
	u.mu.Unlock()
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
