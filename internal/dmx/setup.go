package dmx

import (
	"lightgroove/internal/artnet"
	"lightgroove/internal/config"
	"lightgroove/internal/logger"
)

// NewFromConfig builds a controller and its universes from the [dmx] section.
// Configuration problems are logged and the affected universe falls back to virtual output.
func NewFromConfig(log logger.Logger, cfg config.DMXConf) *Controller {
	c := NewController(log, cfg.FPS)
	l := log.With(logger.Fields{"module": "dmx"})

	nodes := map[string]config.NodeConf{}
	for _, n := range cfg.Nodes {
		nodes[n.ID] = n
	}
	senders := map[string]*artnet.Sender{}
	lines := map[string]*SerialLine{}

	for _, u := range cfg.Universes {
		if u.ID <= 0 {
			l.Errorf("Universe id %d is not positive, skipped", u.ID)
			continue
		}

		switch OutputMode(u.OutputMode) {
		case ModeArtNet:
			node, ok := nodes[u.NodeID]
			if !ok || !node.IsEnabled() {
				l.Errorf("ArtNet node %q for universe %d not found or disabled, using virtual output", u.NodeID, u.ID)
				c.AddUniverse(u.ID, ModeVirtual, nil)
				continue
			}
			s := artnet.NewSender(log, node.ID, artnet.Target(node.IP, node.Broadcast), u.ArtNetUniverse)
			if known, ok := senders[s.Key()]; ok {
				s = known
			}
			senders[s.Key()] = s
			c.AddUniverse(u.ID, ModeArtNet, s)

		case ModeSerial:
			port := u.SerialPort
			if port == "" {
				port = cfg.SerialPort
			}
			if port == "" {
				l.Errorf("No serial port configured for universe %d, using virtual output", u.ID)
				c.AddUniverse(u.ID, ModeVirtual, nil)
				continue
			}
			line, ok := lines[port]
			if !ok {
				line = NewSerialLine(port)
				lines[port] = line
			}
			c.AddUniverse(u.ID, ModeSerial, line)

		case ModeVirtual, "":
			c.AddUniverse(u.ID, ModeVirtual, nil)

		default:
			l.Errorf("Unknown output mode %q for universe %d, using virtual output", u.OutputMode, u.ID)
			c.AddUniverse(u.ID, ModeVirtual, nil)
		}
	}
	return c
}
