package dmx

import "errors"

// ErrNotOpen is returned by a transport asked to send before Open succeeded.
var ErrNotOpen = errors.New("transport is not open")

// Transport puts one universe frame on the wire. Open is called once when the
// output loop starts, Close once when it stops. A transport may be shared by
// several universes.
type Transport interface {
	Open() error
	Send(frame []byte) error
	Close() error
}

// Virtual is the no-op transport.
type Virtual struct{}

func (Virtual) Open() error { return nil }

func (Virtual) Send([]byte) error { return nil }

func (Virtual) Close() error { return nil }
