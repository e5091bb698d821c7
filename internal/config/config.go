package config

import (
	"github.com/BurntSushi/toml"
)

// Config структура конфигурации.
type Config struct {
	Logger   LogConf      `toml:"logger"`   // Logger - конфигурация регистратора.
	DMX      DMXConf      `toml:"dmx"`      // DMX - вселенные, узлы ArtNet и последовательный порт.
	Fixtures FixturesConf `toml:"fixtures"` // Fixtures - пути к каталогу приборов, патчу и палитре.
	MoveFX   MoveFXConf   `toml:"movefx"`   // MoveFX - сохранение состояния эффектов движения.
	MQTT     MQTTConf     `toml:"mqtt"`     // MQTT - конфигурация MQTT клиента.
	HTTP     HTTPConf     `toml:"http"`     // HTTP - конфигурация HTTP API.
}

// LogConf структура конфигурации.
type LogConf struct {
	Level string `toml:"log-level"` // Level - уровень логирования.
}

// DMXConf describes the output side: frame rate, serial line and the universe map.
type DMXConf struct {
	FPS        int            `toml:"fps"`         // FPS - частота кадров вывода.
	SerialPort string         `toml:"serial-port"` // SerialPort - порт DMX по умолчанию.
	Nodes      []NodeConf     `toml:"nodes"`       // Nodes - узлы ArtNet.
	Universes  []UniverseConf `toml:"universes"`   // Universes - карта вселенных.
	Discovery  DiscoveryConf  `toml:"discovery"`   // Discovery - поиск узлов ArtNet.
}

// NodeConf is one ArtNet node a universe can be mapped to.
type NodeConf struct {
	ID        string `toml:"id"`
	IP        string `toml:"ip"`
	Broadcast bool   `toml:"broadcast"`
	Enabled   *bool  `toml:"enabled"` // nil means enabled.
}

// IsEnabled reports whether the node may receive output.
func (n NodeConf) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// UniverseConf maps a local universe to its output.
type UniverseConf struct {
	ID             int    `toml:"id"`
	OutputMode     string `toml:"output-mode"`     // virtual, serial, artnet.
	NodeID         string `toml:"node-id"`         // artnet only.
	ArtNetUniverse uint16 `toml:"artnet-universe"` // artnet only, 15-bit port address.
	SerialPort     string `toml:"serial-port"`     // serial only, overrides DMXConf.SerialPort.
}

// DiscoveryConf включает периодический поиск узлов ArtNet.
type DiscoveryConf struct {
	Enabled bool   `toml:"enabled"`
	CIDR    string `toml:"cidr"` // CIDR - сеть, в которой ищется интерфейс ArtNet.
}

// FixturesConf points at the YAML files describing the rig.
type FixturesConf struct {
	Catalog string `toml:"catalog"` // Catalog - типы приборов.
	Patch   string `toml:"patch"`   // Patch - размещение приборов по адресам.
	Palette string `toml:"palette"` // Palette - именованные цвета.
}

// MoveFXConf структура конфигурации.
type MoveFXConf struct {
	StateFile        string  `toml:"state-file"`        // StateFile - файл состояния эффектов движения.
	AutosaveInterval float64 `toml:"autosave-interval"` // AutosaveInterval - период проверки, секунды.
	Debounce         float64 `toml:"debounce"`          // Debounce - минимальный интервал между записями, секунды.
}

// MQTTConf структура конфигурации.
type MQTTConf struct {
	Enabled     bool   `toml:"enabled"`
	ClientID    string `toml:"clientID"`     // ClientID - имя клиента.
	Host        string `toml:"server"`       // Host - адрес MQTT сервера.
	Port        string `toml:"port"`         // Port - порт MQTT сервера.
	User        string `toml:"user"`         // User - логин для подключения к MQTT серверу.
	Password    string `toml:"password"`     // Password - пароль для подключения к MQTT серверу.
	Qos         byte   `toml:"qos"`          // Qos - качество обслуживания.
	TopicPrefix string `toml:"topic-prefix"` // TopicPrefix - корень всех топиков.
}

// HTTPConf структура конфигурации.
type HTTPConf struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	MDNS    bool   `toml:"mdns"` // MDNS - анонсировать API в локальной сети.
}

// Default returns the configuration used for every key the file omits.
func Default() Config {
	return Config{
		Logger: LogConf{Level: "info"},
		DMX: DMXConf{
			FPS:       44,
			Discovery: DiscoveryConf{CIDR: "192.168.6.0/24"},
		},
		Fixtures: FixturesConf{
			Catalog: "configs/fixtures.yaml",
			Patch:   "configs/patch.yaml",
			Palette: "configs/colors.yaml",
		},
		MoveFX: MoveFXConf{
			StateFile:        "state/move_state.json",
			AutosaveInterval: 1,
			Debounce:         2,
		},
		MQTT: MQTTConf{
			Port:        "1883",
			TopicPrefix: "lightgroove",
		},
		HTTP: HTTPConf{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    5555,
		},
	}
}

// NewConfig конструктор.
func NewConfig(path string) (*Config, error) {
	// default values
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}
