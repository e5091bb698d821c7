package artnet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Haba1234/go-artnet"
	"lightgroove/internal/logger"
)

const discoveryInterval = 30 * time.Second

// Discovery polls the art-net network for nodes and reports what it sees.
type Discovery struct {
	logger     logger.Logger
	controller *artnet.Controller
	interval   time.Duration
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewDiscovery creates a discovery controller bound to the interface inside addressRange.
func NewDiscovery(log logger.Logger, addressRange string) (*Discovery, error) {
	ip, err := FindArtNetIP(addressRange)
	if err != nil {
		return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
	}

	if len(ip) == 0 {
		return nil, errors.New("failed to find the art-net IP: No interface found")
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	host = strings.ToLower(strings.Split(host, ".")[0])
	log.With(logger.Fields{"module": "art-net"}).Infof("Using ArtNet IP %s and hostname %s", ip.String(), host)

	return &Discovery{
		logger:     log,
		controller: artnet.NewController(host, ip, artnet.NewDefaultLogger("info"), artnet.MaxFPS(1)),
		interval:   discoveryInterval,
	}, nil
}

// Start the discovery. publish is called with every poll result.
func (d *Discovery) Start(ctx context.Context, publish func([]NodeInfo)) error {
	if err := d.controller.Start(); err != nil {
		return fmt.Errorf("failed to start Controller: %w", err)
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	go d.poll(ctx, publish)
	return nil
}

// Stop the discovery.
func (d *Discovery) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	d.controller.Stop()
}

// Nodes returns the nodes currently registered.
func (d *Discovery) Nodes() []NodeInfo {
	nodes := make([]NodeInfo, 0, len(d.controller.Nodes))
	for _, n := range d.controller.Nodes {
		_, info := NodeToString(n)
		nodes = append(nodes, info)
	}
	return nodes
}

func (d *Discovery) poll(ctx context.Context, publish func([]NodeInfo)) {
	defer close(d.done)
	t := time.NewTicker(d.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		nodes := d.Nodes()
		lines := make([]string, 0, len(nodes))
		for _, n := range d.controller.Nodes {
			line, _ := NodeToString(n)
			lines = append(lines, line)
		}
		d.logger.With(logger.Fields{"module": "art-net"}).Debugf("Currently %d devices are registered: %v", len(nodes), lines)
		if publish != nil {
			publish(nodes)
		}
	}
}

// NodeToString returns a string representation of the given Node.
func NodeToString(n *artnet.ControlledNode) (string, NodeInfo) {
	info := NodeInfo{
		Name:         n.Node.Name,
		IP:           n.UDPAddress.String(),
		Type:         fmt.Sprint(n.Node.Type),
		Manufacturer: n.Node.Manufacturer,
		Description:  n.Node.Description,
	}

	for _, p := range n.Node.InputPorts {
		info.Inputs = append(info.Inputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
	}

	for _, p := range n.Node.OutputPorts {
		info.Outputs = append(info.Outputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
		info.OutputPorts = append(info.OutputPorts, uint16(p.Address.Integer()))
	}

	return fmt.Sprintf(
		" | IP=%s name=%q type=%q manufacturer=%q desc=%q inputs=%q outputs=%q",
		info.IP, info.Name, info.Type, info.Manufacturer, info.Description,
		strings.Join(info.Inputs, "; "), strings.Join(info.Outputs, "; "),
	), info
}
