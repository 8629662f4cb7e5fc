// Package mqtt bridges sweep lifecycle events from the in-process bus to an
// MQTT broker so external integrations can react to fare drops and dispatches
// without touching the store.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ngworks1909/pulse-backend/core/events"
	"github.com/ngworks1909/pulse-backend/infra/logger"
	"github.com/ngworks1909/pulse-backend/internal/eventbus"
)

// Config defines the connection parameters for the MQTT bridge.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "pulse-backend"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "pulse"
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Bridge subscribes to the event bus and republishes events as JSON messages.
// Each event lands on <prefix>/<kind>, e.g. pulse/fare_checked.
type Bridge struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
	sub    <-chan events.Event
	bus    eventbus.EventBus
	done   chan struct{}
}

// NewBridge connects to the broker and starts forwarding events from the bus.
func NewBridge(cfg Config, bus eventbus.EventBus) (*Bridge, error) {
	cfg.SetDefaults()
	log := logger.New("mqtt-bridge")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	b := &Bridge{
		cli:    c,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    log,
		sub:    bus.Subscribe(),
		bus:    bus,
		done:   make(chan struct{}),
	}
	go b.forward()
	return b, nil
}

func (b *Bridge) forward() {
	defer close(b.done)
	for e := range b.sub {
		topic := b.prefix + "/" + e.Kind()
		payload, err := json.Marshal(e)
		if err != nil {
			b.log.Errorf("encode %s event: %v", e.Kind(), err)
			continue
		}
		if token := b.cli.Publish(topic, b.qos, false, payload); token.Wait() && token.Error() != nil {
			b.log.Errorf("publish %s: %v", topic, token.Error())
		}
	}
}

// Close unsubscribes from the bus, waits for in-flight publishes and
// disconnects from the broker.
func (b *Bridge) Close() error {
	b.bus.Unsubscribe(b.sub)
	select {
	case <-b.done:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout draining event bridge")
	}
	b.cli.Disconnect(250)
	return nil
}
