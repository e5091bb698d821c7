package artnet

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/Haba1234/go-artnet"
	"github.com/Haba1234/go-artnet/packet"
	"lightgroove/internal/logger"
)

const (
	// Port is the UDP port every art-net node listens on.
	Port = 6454
	// BroadcastIP is the limited broadcast destination.
	BroadcastIP = "255.255.255.255"
)

// Target returns the destination host for a node.
func Target(ip string, broadcast bool) string {
	if broadcast || ip == "" {
		return BroadcastIP
	}
	return ip
}

// Sender sends ArtDMX frames for one art-net universe to one destination.
// It is shared by all local universes mapped to the same node and port address.
type Sender struct {
	log      logger.Logger
	node     string
	host     string
	universe uint16
	address  artnet.Address

	mu   sync.Mutex
	conn *net.UDPConn
	seq  uint8
}

// NewSender конструктор. host is an IP, optionally with a port (default 6454).
func NewSender(log logger.Logger, node, host string, universe uint16) *Sender {
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, strconv.Itoa(Port))
	}
	return &Sender{
		log:      log,
		node:     node,
		host:     host,
		universe: universe,
		address:  UniverseToAddress(universe),
	}
}

// Key identifies the (node, port address) pair the sender serves.
func (s *Sender) Key() string {
	return fmt.Sprintf("%s/%d", s.node, s.universe)
}

func (s *Sender) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	raddr, err := net.ResolveUDPAddr("udp4", s.host)
	if err != nil {
		return fmt.Errorf("failed to resolve art-net node %s (%s): %w", s.node, s.host, err)
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return fmt.Errorf("failed to open art-net sender %s: %w", s.Key(), err)
	}
	s.conn = conn
	s.log.With(logger.Fields{"module": "art-net"}).Infof("Sender for node %q universe %d connected to %s (%s)",
		s.node, s.universe, s.host, s.address.String())
	return nil
}

// Send wraps frame into an ArtDMX packet and writes it.
func (s *Sender) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("art-net sender %s is not open", s.Key())
	}

	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}

	p := packet.NewArtDMXPacket()
	p.Sequence = s.seq
	p.SubUni = s.address.SubUni
	p.Net = s.address.Net
	p.Length = UniverseSize
	copy(p.Data[:], frame)

	b, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal ArtDMX: %w", err)
	}
	if _, err := s.conn.Write(b); err != nil {
		return fmt.Errorf("send ArtDMX to %s: %w", s.host, err)
	}
	return nil
}

func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.log.With(logger.Fields{"module": "art-net"}).Infof("Sender %s stopped", s.Key())
	return err
}
