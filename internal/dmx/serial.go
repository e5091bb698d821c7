package dmx

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	serialBaudRate = 250000
	breakTime      = 100 * time.Microsecond
	markAfterBreak = 12 * time.Microsecond
	startCode      = 0x00
)

// serialPort is the part of serial.Port the DMX framing needs.
type serialPort interface {
	Break(d time.Duration) error
	Write(p []byte) (int, error)
	Close() error
}

// SerialLine is a DMX-512 serial transport (250000 baud, 8N2).
type SerialLine struct {
	name string
	open func(name string) (serialPort, error)

	mu   sync.Mutex
	port serialPort
	buf  [UniverseSize + 1]byte
}

// NewSerialLine returns a transport for the serial device name. The port is opened by Open.
func NewSerialLine(name string) *SerialLine {
	return &SerialLine{name: name, open: openSerial}
}

func openSerial(name string) (serialPort, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: serialBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SerialLine) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	p, err := s.open(s.name)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.name, err)
	}
	s.port = p
	return nil
}

// Send writes break, mark-after-break, start code and up to 512 data bytes.
func (s *SerialLine) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return ErrNotOpen
	}
	if err := s.port.Break(breakTime); err != nil {
		return fmt.Errorf("break: %w", err)
	}
	time.Sleep(markAfterBreak)

	s.buf[0] = startCode
	n := copy(s.buf[1:], frame)
	if _, err := s.port.Write(s.buf[:n+1]); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *SerialLine) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
