package api

import (
	"lightgroove/internal/colorfx"
	"lightgroove/internal/dmx"
	"lightgroove/internal/fixture"
	"lightgroove/internal/movefx"
)

// DMX is the controller surface exposed over HTTP.
type DMX interface {
	SetGrandmaster(level float64)
	Grandmaster() float64
	Universes() []dmx.UniverseInfo
	Snapshot(universe int) ([dmx.UniverseSize]byte, bool)
}

// Fixtures is the fixture manager surface exposed over HTTP.
type Fixtures interface {
	Exists(id string) bool
	List() []string
	Fixtures() []fixture.Info
	SaveCurrentStates() fixture.States
	RestoreStates(states fixture.States)
	SetFixtureColor(id string, r, g, b, w float64)
	SetFixtureDimmer(id string, intensity float64, manual bool)
	SetFixtureChannel(id, channel string, value float64)
	HasChannel(id, channel string) bool
	SetFixturePosition(id, name string)
	SetPanTilt(id string, pan, tilt float64)
	BlackoutAll()
	FlashAllWhite()
	ReapplyAllStates()
}

type ColorFX interface {
	Start(name string) error
	Stop()
	SetBPM(bpm int)
	SetFadePercentage(f float64)
	SetCurrentColors(names ...string)
	Palette() *colorfx.Palette
	ReloadPalette(p *colorfx.Palette)
	Status() colorfx.Status
}

type MoveFX interface {
	Start(name string) error
	Stop()
	SetBPM(bpm int)
	SetCenter(pan, tilt float64)
	SetSize(size float64)
	SetPhase(phase float64)
	SetSpeed(speed float64)
	Status() movefx.Status
}
