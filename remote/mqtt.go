package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/driver"
	"lautenbacher.net/gosignal/util"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 2 * time.Second
)

// publisher is the part of mqtt.Client used for status messages.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTCommander takes mode commands from an MQTT topic and publishes the
// signal status as a retained message.
type MQTTCommander struct {
	cfg    config.MQTTConfig
	submit func(*util.Request) bool
	client mqtt.Client
	pub    publisher
}

// NewMQTTCommander returns a commander that hands every parsed command to
// submit. Nothing connects before Start.
func NewMQTTCommander(cfg config.MQTTConfig, submit func(*util.Request) bool) *MQTTCommander {
	if cfg.ClientID == "" {
		cfg.ClientID = "gosignal-" + uuid.NewString()
	}
	return &MQTTCommander{cfg: cfg, submit: submit}
}

func (c *MQTTCommander) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.cfg.Broker)
	opts.SetClientID(c.cfg.ClientID)
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
	}
	if c.cfg.Password != "" {
		opts.SetPassword(c.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(onConnectionLost)

	slog.Info("MQTT connection configured", "broker", c.cfg.Broker, "clientID", c.cfg.ClientID, "topic", c.cfg.CommandTopic)

	c.client = mqtt.NewClient(opts)
	c.pub = c.client
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout connecting to MQTT broker %s", c.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("can't connect to MQTT broker %s: %w", c.cfg.Broker, err)
	}
	return nil
}

func (c *MQTTCommander) Stop() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

// onConnect subscribes on every (re)connect, the session is not kept by
// the broker.
func (c *MQTTCommander) onConnect(client mqtt.Client) {
	slog.Info("Connected to MQTT broker", "clientID", c.cfg.ClientID)
	token := client.Subscribe(c.cfg.CommandTopic, 1, c.onMessage)
	go func() {
		if token.WaitTimeout(connectTimeout) && token.Error() == nil {
			slog.Info("MQTT subscribed", "topic", c.cfg.CommandTopic)
			return
		}
		slog.Error("MQTT subscribe failed", "topic", c.cfg.CommandTopic, "error", token.Error())
	}()
}

func onConnectionLost(client mqtt.Client, err error) {
	slog.Warn("MQTT connection lost", "error", err)
}

func (c *MQTTCommander) onMessage(client mqtt.Client, message mqtt.Message) {
	slog.Debug("MQTT message received", "topic", message.Topic(), "payload", string(message.Payload()))
	kind, err := ParseCommand(string(message.Payload()))
	if err != nil {
		slog.Warn("Ignoring MQTT command", "topic", message.Topic(), "error", err)
		return
	}
	c.submit(util.NewRequest("mqtt", kind, time.Now()))
}

// PublishStatus sends st as retained JSON to the status topic.
func (c *MQTTCommander) PublishStatus(st driver.Status) error {
	if c.pub == nil || c.cfg.StatusTopic == "" {
		return nil
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("can't marshal status: %w", err)
	}
	token := c.pub.Publish(c.cfg.StatusTopic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("timeout publishing status")
	}
	return token.Error()
}
