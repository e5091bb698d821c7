package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lightgroove/internal/api"
	"lightgroove/internal/artnet"
	"lightgroove/internal/clientmqtt"
	"lightgroove/internal/colorfx"
	"lightgroove/internal/config"
	"lightgroove/internal/dmx"
	"lightgroove/internal/fixture"
	"lightgroove/internal/logger"
	"lightgroove/internal/movefx"
)

var (
	configFile string
	version    = "dev"
)

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}

	log.With(logger.Fields{"module": "logger"}).Debug("newLogger created ok")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	out := dmx.NewFromConfig(log, cfg.DMX)
	if err = out.Start(ctx); err != nil {
		log.With(logger.Fields{"module": "dmx"}).Errorf("failed to start DMX output: %v", err)
		os.Exit(1)
	}

	fixtures := fixture.NewManager(log, out, loadCatalog(log, cfg.Fixtures.Catalog), loadPatch(log, cfg.Fixtures.Patch))
	color := colorfx.NewEngine(log, fixtures, loadPalette(log, cfg.Fixtures.Palette))

	store := movefx.NewStore(log, cfg.MoveFX.StateFile, seconds(cfg.MoveFX.AutosaveInterval), seconds(cfg.MoveFX.Debounce))
	moveState, err := store.Load()
	if err != nil {
		log.With(logger.Fields{"module": "movefx"}).Warnf("using default move state: %v", err)
	}
	move := movefx.NewEngine(log, fixtures, moveState, store)
	store.Start(ctx, move.Snapshot)

	var client *clientmqtt.ClientMQTT
	if cfg.MQTT.Enabled {
		client = clientmqtt.NewClient(log, ConvertConfigClientMQTT(cfg.MQTT), clientmqtt.Targets{
			Fixtures:    fixtures,
			Grandmaster: out,
			Color:       color,
			Move:        move,
		})
		if err = client.Start(ctx); err != nil {
			log.With(logger.Fields{"module": "mqtt"}).Errorf("failed to start MQTT service: %v", err)
			client = nil
		}
	}

	var discovery *artnet.Discovery
	if cfg.DMX.Discovery.Enabled {
		discovery, err = startDiscovery(ctx, log, cfg.DMX.Discovery.CIDR, client)
		if err != nil {
			log.With(logger.Fields{"module": "art-net"}).Errorf("discovery disabled: %v", err)
		}
	}

	var server *api.Server
	var serverErrs <-chan error
	if cfg.HTTP.Enabled {
		server = api.NewServer(log, api.ServerConf{Host: cfg.HTTP.Host, Port: cfg.HTTP.Port, MDNS: cfg.HTTP.MDNS}, api.Dependencies{
			DMX:         out,
			Fixtures:    fixtures,
			Color:       color,
			Move:        move,
			PalettePath: cfg.Fixtures.Palette,
			Version:     version,
		})
		if err = server.Start(ctx); err != nil {
			log.With(logger.Fields{"module": "http"}).Errorf("failed to start HTTP API: %v", err)
			server = nil
		} else {
			serverErrs = server.Errors()
		}
	}

	select {
	case <-ctx.Done():
	case <-serverErrs:
		cancel()
	}

	color.Stop()
	move.Stop()
	if err := store.Close(); err != nil {
		log.With(logger.Fields{"module": "movefx"}).Errorf("final save failed: %v", err)
	}
	if server != nil {
		server.Stop()
	}
	if discovery != nil {
		discovery.Stop()
	}
	if client != nil {
		if err := client.Stop(); err != nil {
			log.Error("failed to stop MQTT service:", err.Error())
		}
	}
	out.Stop()

	log.Info("shutdown complete")
}

func startDiscovery(ctx context.Context, log logger.Logger, cidr string, client *clientmqtt.ClientMQTT) (*artnet.Discovery, error) {
	d, err := artnet.NewDiscovery(log, cidr)
	if err != nil {
		return nil, err
	}
	publish := func([]artnet.NodeInfo) {}
	if client != nil {
		publish = client.PublishNodes
	}
	if err := d.Start(ctx, publish); err != nil {
		return nil, err
	}
	return d, nil
}

func loadCatalog(log logger.Logger, path string) fixture.Catalog {
	cat, err := fixture.LoadCatalog(path)
	if err != nil {
		log.With(logger.Fields{"module": "fixture"}).Errorf("fixture catalog: %v", err)
		return fixture.Catalog{}
	}
	return cat
}

func loadPatch(log logger.Logger, path string) []fixture.PatchEntry {
	patch, err := fixture.LoadPatch(path)
	if err != nil {
		log.With(logger.Fields{"module": "fixture"}).Errorf("patch: %v", err)
		return nil
	}
	return patch
}

func loadPalette(log logger.Logger, path string) *colorfx.Palette {
	p, err := colorfx.LoadPalette(path)
	if err != nil {
		log.With(logger.Fields{"module": "colorfx"}).Warnf("using default palette: %v", err)
		return colorfx.DefaultPalette()
	}
	return p
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// ConvertConfigClientMQTT преобразует структуры.
func ConvertConfigClientMQTT(cfg config.MQTTConf) clientmqtt.MQTTConf {
	return clientmqtt.MQTTConf{
		ClientID:    cfg.ClientID,
		Schema:      "tcp",
		Host:        cfg.Host,
		Port:        cfg.Port,
		User:        cfg.User,
		Password:    cfg.Password,
		Qos:         cfg.Qos,
		TopicPrefix: cfg.TopicPrefix,
	}
}
