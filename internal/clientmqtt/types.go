package clientmqtt

import (
	"lightgroove/internal/colorfx"
	"lightgroove/internal/movefx"
)

type MQTTConf struct {
	ClientID    string // ClientID - уникальное имя клиента для брокеров.
	Schema      string // Schema - тип подключения.
	Host        string // Host - адрес MQTT сервера.
	Port        string // Port - порт MQTT сервера.
	User        string // User - логин для подключения к MQTT серверу.
	Password    string // Password - пароль для подключения к MQTT серверу.
	Qos         byte   // Qos - качество обслуживания для подписок и публикаций.
	TopicPrefix string // TopicPrefix - корень всех топиков.
}

// Fixtures is the part of the fixture manager the bridge drives.
type Fixtures interface {
	Exists(id string) bool
	SetFixtureColor(id string, r, g, b, w float64)
	SetFixtureDimmer(id string, intensity float64, manual bool)
	SetFixtureChannel(id, channel string, value float64)
	SetFixturePosition(id, name string)
	SetPanTilt(id string, pan, tilt float64)
	BlackoutAll()
	ReapplyAllStates()
}

type Grandmaster interface {
	SetGrandmaster(level float64)
}

type ColorFX interface {
	Start(name string) error
	Stop()
	SetBPM(bpm int)
	SetFadePercentage(f float64)
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

// Targets are the components commands are dispatched to.
type Targets struct {
	Fixtures    Fixtures
	Grandmaster Grandmaster
	Color       ColorFX
	Move        MoveFX
}

// ColorPayload is {"r":1,"g":0,"b":0,"w":0}.
type ColorPayload struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	W float64 `json:"w"`
}

// PositionPayload is either {"name":"front"} or {"pan":0.5,"tilt":0.5}.
type PositionPayload struct {
	Name string   `json:"name"`
	Pan  *float64 `json:"pan"`
	Tilt *float64 `json:"tilt"`
}

// ColorFXCommand drives the color engine; an empty or "stop" effect stops it.
type ColorFXCommand struct {
	Effect string   `json:"effect"`
	BPM    *int     `json:"bpm"`
	Fade   *float64 `json:"fade_percentage"`
}

// MoveFXCommand drives the move engine; only the fields present are applied.
type MoveFXCommand struct {
	Effect     string   `json:"effect"`
	BPM        *int     `json:"bpm"`
	CenterPan  *float64 `json:"center_pan"`
	CenterTilt *float64 `json:"center_tilt"`
	Size       *float64 `json:"fx_size"`
	Phase      *float64 `json:"move_phase"`
	Speed      *float64 `json:"move_speed_multiplier"`
}
