package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/config"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

const (
	defaultTopicPrefix = "bantaybot"
	disconnectQuiesce  = 250 // ms
)

// ErrNotConnected is returned by Send while the broker link is down.
var ErrNotConnected = errors.New("mqtt: not connected")

// commandMessage is the payload published on <prefix>/<device>/commands.
type commandMessage struct {
	Action   string         `json:"action"`
	Params   map[string]any `json:"params,omitempty"`
	IssuedAt time.Time      `json:"issuedAt"`
}

// MQTT carries commands to the device and sensor snapshots back from it.
type MQTT struct {
	client mqtt.Client
	prefix string
	qos    byte
	log    *logger.Logger

	reconnects chan struct{}

	mu       sync.RWMutex
	onSensor func(models.SensorSnapshot)
}

// NewMQTT builds the client without connecting. Call Start to connect.
func NewMQTT(cfg config.MQTTConfig, log *logger.Logger) *MQTT {
	t := &MQTT{
		prefix:     strings.Trim(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		log:        log.Named("mqtt"),
		reconnects: make(chan struct{}, 1),
	}
	if t.prefix == "" {
		t.prefix = defaultTopicPrefix
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(time.Minute)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = t.handleConnect
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		t.log.Warnw("mqtt_connection_lost", "err", err)
	}

	t.client = mqtt.NewClient(opts)
	return t
}

func newMQTTWithClient(client mqtt.Client, prefix string, qos byte, log *logger.Logger) *MQTT {
	return &MQTT{
		client:     client,
		prefix:     prefix,
		qos:        qos,
		log:        log,
		reconnects: make(chan struct{}, 1),
	}
}

// Start connects in the background, backing off between failed attempts
// until ctx is cancelled. Paho handles reconnection afterwards.
func (t *MQTT) Start(ctx context.Context) {
	go t.connectWithBackoff(ctx, time.Second, 30*time.Second)
}

func (t *MQTT) connectWithBackoff(ctx context.Context, start, max time.Duration) {
	backoff := start
	for {
		token := t.client.Connect()
		if token.Wait() && token.Error() == nil {
			return
		}
		t.log.Warnw("mqtt_connect_failed", "err", token.Error(), "retry_in", backoff)
		select {
		case <-time.After(backoff):
			if backoff < max {
				backoff *= 2
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close disconnects from the broker.
func (t *MQTT) Close() {
	if t.client.IsConnected() {
		t.client.Disconnect(disconnectQuiesce)
	}
}

// Connected reports whether the broker link is currently usable.
func (t *MQTT) Connected() bool {
	return t.client.IsConnectionOpen()
}

// Reconnects fires after every (re)connection. Signals coalesce while unread.
func (t *MQTT) Reconnects() <-chan struct{} {
	return t.reconnects
}

// OnSensor registers the handler for incoming sensor snapshots. It must be
// set before Start so the subscription is made on connect.
func (t *MQTT) OnSensor(fn func(models.SensorSnapshot)) {
	t.mu.Lock()
	t.onSensor = fn
	t.mu.Unlock()
}

// Send publishes one command and waits for the broker acknowledgement.
func (t *MQTT) Send(ctx context.Context, deviceID, action string, params map[string]any) error {
	if !t.Connected() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(commandMessage{Action: action, Params: params, IssuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	token := t.client.Publish(commandTopic(t.prefix, deviceID), t.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", action, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *MQTT) handleConnect(c mqtt.Client) {
	t.log.Infow("mqtt_connected")

	t.mu.RLock()
	fn := t.onSensor
	t.mu.RUnlock()
	if fn != nil {
		topic := sensorTopicFilter(t.prefix)
		if token := c.Subscribe(topic, t.qos, t.sensorHandler(fn)); token.Wait() && token.Error() != nil {
			t.log.Errorw("mqtt_subscribe_failed", "topic", topic, "err", token.Error())
		}
	}

	select {
	case t.reconnects <- struct{}{}:
	default:
	}
}

func (t *MQTT) sensorHandler(fn func(models.SensorSnapshot)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		snap, err := decodeSensorMessage(msg.Topic(), msg.Payload())
		if err != nil {
			t.log.Warnw("mqtt_sensor_decode_failed", "topic", msg.Topic(), "err", err)
			return
		}
		fn(snap)
	}
}

func commandTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/commands"
}

func sensorTopicFilter(prefix string) string {
	return prefix + "/+/sensors"
}

// deviceFromTopic extracts <device> from <prefix>/<device>/sensors.
func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[len(parts)-1] != "sensors" {
		return ""
	}
	return parts[len(parts)-2]
}

func decodeSensorMessage(topic string, payload []byte) (models.SensorSnapshot, error) {
	var snap models.SensorSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return models.SensorSnapshot{}, fmt.Errorf("decode sensor payload: %w", err)
	}
	if snap.DeviceID == "" {
		snap.DeviceID = deviceFromTopic(topic)
	}
	return snap, nil
}
