package artnet

import (
	"encoding/binary"

	"github.com/Haba1234/go-artnet"
)

// UniverseSize is the ArtDMX payload length used for every frame.
const UniverseSize = 512

// NodeInfo describes a node seen on the network.
type NodeInfo struct {
	Name         string   `json:"name"`
	IP           string   `json:"ip"`
	Type         string   `json:"type"`
	Manufacturer string   `json:"manufacturer"`
	Description  string   `json:"description"`
	Inputs       []string `json:"inputs"`
	Outputs      []string `json:"outputs"`
	OutputPorts  []uint16 `json:"output_ports"`
}

// UniverseToAddress converts a 15-bit port address to an art-net address:
// старший байт - Net, младший байт - SubUni.
func UniverseToAddress(universe uint16) artnet.Address {
	v := make([]uint8, 2)
	binary.BigEndian.PutUint16(v, universe&0x7fff)

	return artnet.Address{
		Net:    v[0],
		SubUni: v[1],
	}
}
