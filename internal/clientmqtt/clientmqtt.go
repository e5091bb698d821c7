package clientmqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lightgroove/internal/artnet"
	"lightgroove/internal/logger"
)

const (
	statusInterval = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// ClientMQTT структура клиента MQTT.
type ClientMQTT struct {
	log       logger.Logger
	cfgClient MQTTConf
	targets   Targets
	client    mqtt.Client
	opts      *mqtt.ClientOptions

	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient конструктор.
func NewClient(log logger.Logger, cfgClient MQTTConf, targets Targets) *ClientMQTT {
	if cfgClient.ClientID == "" {
		cfgClient.ClientID = "lightgroove-" + uuid.NewString()[:8]
	}
	if cfgClient.Schema == "" {
		cfgClient.Schema = "tcp"
	}
	if cfgClient.TopicPrefix == "" {
		cfgClient.TopicPrefix = "lightgroove"
	}
	return &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
		targets:   targets,
	}
}

func (c *ClientMQTT) logger() *logger.Log {
	return c.log.With(logger.Fields{"module": "mqtt"})
}

func (c *ClientMQTT) topic(suffix string) string {
	return c.cfgClient.TopicPrefix + "/" + suffix
}

func (c *ClientMQTT) Start(ctx context.Context) error {
	if c.log.GetLevel() == "debug" {
		mqtt.ERROR = stdlog.New(c.logger().WriterLevel(logrus.ErrorLevel), "", 0)
		mqtt.CRITICAL = stdlog.New(c.logger().WriterLevel(logrus.ErrorLevel), "", 0)
		mqtt.WARN = stdlog.New(c.logger().WriterLevel(logrus.WarnLevel), "", 0)
	}

	c.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", c.cfgClient.Schema, c.cfgClient.Host, c.cfgClient.Port)).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetDefaultPublishHandler(c.messageHandler).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetOrderMatters(false).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	c.client = mqtt.NewClient(c.opts)

	token := c.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("mqtt connect: %w", token.Error())
		}
	case <-ctx.Done():
		return errors.New("context canceled")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.publishStatusLoop(ctx)

	c.logger().Infof("Status: %v", c.client.IsConnected())
	return nil
}

func (c *ClientMQTT) Stop() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(500)
	}
	return nil
}

// connectHandler (re)subscribes after every connect, the session is clean.
func (c *ClientMQTT) connectHandler(client mqtt.Client) {
	c.logger().Info("client connected to server")
	filters := map[string]byte{}
	for _, s := range []string{"fixture/#", "grandmaster", "blackout", "fx/color", "fx/move"} {
		filters[c.topic(s)] = c.cfgClient.Qos
	}
	token := client.SubscribeMultiple(filters, nil)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			c.logger().Warn("subscription not confirmed in time")
			return
		}
		if token.Error() != nil {
			c.logger().Errorf("subscription error. %v", token.Error())
			return
		}
		c.logger().Debugf("subscribed to %d topics under %s/", len(filters), c.cfgClient.TopicPrefix)
	}()
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.logger().Errorf("server connect lost: %v", err)
}

func (c *ClientMQTT) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	c.logger().Debugf("received message: %s from topic: %s", msg.Payload(), msg.Topic())
	if err := c.handle(msg.Topic(), msg.Payload()); err != nil {
		c.logger().Errorf("topic %s: %v", msg.Topic(), err)
	}
}

func (c *ClientMQTT) publishStatusLoop(ctx context.Context) {
	defer close(c.done)
	t := time.NewTicker(statusInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.PublishStatus()
		}
	}
}

// PublishStatus publishes both engine states as retained messages.
func (c *ClientMQTT) PublishStatus() {
	if c.targets.Color != nil {
		c.publish("status/color", c.targets.Color.Status())
	}
	if c.targets.Move != nil {
		c.publish("status/move", c.targets.Move.Status())
	}
}

// PublishNodes publishes the ArtNet nodes seen by discovery.
func (c *ClientMQTT) PublishNodes(nodes []artnet.NodeInfo) {
	if nodes == nil {
		nodes = []artnet.NodeInfo{}
	}
	c.publish("nodes", nodes)
}

func (c *ClientMQTT) publish(suffix string, v any) {
	if c.client == nil || !c.client.IsConnected() {
		return
	}
	msg, err := json.Marshal(v)
	if err != nil {
		c.logger().Errorf("public topic. msg: %v", err)
		return
	}
	topic := c.topic(suffix)
	token := c.client.Publish(topic, c.cfgClient.Qos, true, msg)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			return
		}
		if token.Error() != nil {
			c.logger().Errorf("error publish topic %s. %v", topic, token.Error())
		}
	}()
}
