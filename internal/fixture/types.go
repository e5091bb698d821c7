package fixture

// Role tags what a channel does.
type Role string

const (
	RoleColor      Role = "color"
	RoleDimmer     Role = "dimmer"
	RolePan        Role = "pan"
	RoleTilt       Role = "tilt"
	RolePanFine    Role = "pan_fine"
	RoleTiltFine   Role = "tilt_fine"
	RoleColorWheel Role = "color_wheel"
	RoleOther      Role = "other"
)

func parseRole(s string) Role {
	switch r := Role(s); r {
	case RoleColor, RoleDimmer, RolePan, RoleTilt, RolePanFine, RoleTiltFine, RoleColorWheel:
		return r
	}
	return RoleOther
}

// Well-known channel names.
const (
	ChannelRed        = "red"
	ChannelGreen      = "green"
	ChannelBlue       = "blue"
	ChannelWhite      = "white"
	ChannelColorWheel = "color_wheel"
	ChannelPan        = "pan"
	ChannelTilt       = "tilt"
	ChannelPanFine    = "pan_fine"
	ChannelTiltFine   = "tilt_fine"
)

// ChannelDef is one channel of a fixture type.
type ChannelDef struct {
	Name  string `json:"name" yaml:"name"`
	Index int    `json:"index" yaml:"index"` // offset from the fixture start address
	Role  Role   `json:"type" yaml:"type"`
}

// Type is a channel layout shared by fixture instances.
type Type struct {
	Name          string
	Channels      []ChannelDef
	ColorWheel    map[string]int // named color -> raw DMX value
	DimmerOnBlack bool           // black forces the dimmer to zero and restores it afterwards
}

// MaxIndex returns the largest channel offset of the type.
func (t *Type) MaxIndex() int {
	max := 0
	for _, ch := range t.Channels {
		if ch.Index > max {
			max = ch.Index
		}
	}
	return max
}

// Catalog maps type names to types.
type Catalog map[string]*Type

// PatchEntry places one fixture instance.
type PatchEntry struct {
	ID           string
	Type         string
	Universe     int
	StartAddress int
}

// DimmerCapability is how a fixture type exposes intensity, resolved once at patch load.
type DimmerCapability int

const (
	DimmerNone DimmerCapability = iota
	DimmerMaster
	DimmerGeneric
	DimmerIntensity
	DimmerByRole
)

var dimmerNames = []struct {
	name string
	cap  DimmerCapability
}{
	{"master_dimmer", DimmerMaster},
	{"dimmer", DimmerGeneric},
	{"intensity", DimmerIntensity},
}

// Info is the read-only view of a patched fixture.
type Info struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Universe     int          `json:"universe"`
	StartAddress int          `json:"start_address"`
	Channels     []ChannelDef `json:"channels"`
}

// States maps fixture id to its logical channel values.
type States map[string]map[string]float64
