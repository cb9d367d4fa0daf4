//go:build !no_mqtt

package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"esphome-go/internal/device"
	"esphome-go/internal/entity"
	"esphome-go/internal/store"
)

// Config holds MQTT bridge configuration.
type Config struct {
	Broker          string
	Username        string
	Password        string
	ClientID        string
	TopicPrefix     string
	DiscoveryPrefix string
}

func (c *Config) applyDefaults() {
	if c.ClientID == "" {
		c.ClientID = "esphome-go"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "esphome"
	}
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = "homeassistant"
	}
}

// Source is the device side of the bridge.
type Source interface {
	Address() string
	Registry() *entity.Registry
}

// client is the part of pahomqtt.Client the bridge uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token
	Disconnect(quiesce uint)
}

// Bridge publishes ESPHome entity states to MQTT with HA autodiscovery and
// forwards commands from set topics to the device.
type Bridge struct {
	client          client
	prefix          string
	discoveryPrefix string
	logger          *slog.Logger

	mu        sync.Mutex
	sources   map[string]Source        // address -> device
	announced map[string]*store.Device // address -> last announced record
	unsubs    []func()
}

// NewBridge creates and connects an MQTT bridge.
func NewBridge(cfg Config, logger *slog.Logger) (*Bridge, error) {
	cfg.applyDefaults()
	b := newBridge(nil, cfg, logger)

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(cfg.TopicPrefix+"/bridge/state", "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			b.logger.Info("MQTT connected")
			b.publishBridgeState("online")
			b.reannounce()
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			b.logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c := pahomqtt.NewClient(opts)
	b.client = c
	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return b, nil
}

func newBridge(c client, cfg Config, logger *slog.Logger) *Bridge {
	cfg.applyDefaults()
	return &Bridge{
		client:          c,
		prefix:          cfg.TopicPrefix,
		discoveryPrefix: cfg.DiscoveryPrefix,
		logger:          logger.With("component", "mqtt"),
		sources:         make(map[string]Source),
		announced:       make(map[string]*store.Device),
	}
}

// Attach subscribes to a device's session events.
func (b *Bridge) Attach(src Source, bus *device.EventBus) {
	addr := src.Address()
	b.mu.Lock()
	b.sources[addr] = src
	b.unsubs = append(b.unsubs,
		bus.On(device.UnitEntityUpdate, func(n device.Notification) {
			if u, ok := n.Data.(device.EntityUpdate); ok {
				b.publishState(addr, u.Entity)
			}
		}),
		bus.On(device.NotifyDisconnected, func(device.Notification) {
			b.publishAvailability(addr, "offline")
		}),
	)
	b.mu.Unlock()
	b.logger.Info("MQTT bridge attached", "address", addr, "prefix", b.prefix)
}

// Announce publishes discovery for a device record, removes discovery of
// entities the device no longer has, marks the device online and listens
// on its command topics. Call it after each entity listing.
func (b *Bridge) Announce(dev *store.Device) {
	b.mu.Lock()
	prev := b.announced[dev.Address]
	b.announced[dev.Address] = dev
	b.mu.Unlock()

	if prev != nil {
		for _, msg := range buildRemoveDiscovery(prev, dev, b.discoveryPrefix) {
			b.publish(msg.Topic, msg.Payload, true)
		}
	}
	b.announce(dev)
}

func (b *Bridge) announce(dev *store.Device) {
	for _, msg := range buildDiscovery(dev, b.prefix, b.discoveryPrefix) {
		b.publish(msg.Topic, msg.Payload, true)
	}
	b.publishAvailability(dev.Address, "online")
	b.subscribeCommands(dev)
	b.logger.Info("published HA discovery", "address", dev.Address, "name", deviceDisplayName(dev))
}

func (b *Bridge) reannounce() {
	b.mu.Lock()
	devs := make([]*store.Device, 0, len(b.announced))
	for _, dev := range b.announced {
		devs = append(devs, dev)
	}
	b.mu.Unlock()
	for _, dev := range devs {
		b.announce(dev)
	}
}

// Stop publishes offline state, unsubscribes, and disconnects.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs = nil
	addrs := make([]string, 0, len(b.announced))
	for addr := range b.announced {
		addrs = append(addrs, addr)
	}
	b.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	for _, addr := range addrs {
		b.publishAvailability(addr, "offline")
	}
	b.publishBridgeState("offline")
	b.client.Disconnect(1000)
	b.logger.Info("MQTT bridge stopped")
}

func (b *Bridge) topicsFor(addr string) (topics, bool) {
	b.mu.Lock()
	dev, ok := b.announced[addr]
	b.mu.Unlock()
	if !ok {
		return topics{}, false
	}
	return deviceTopics(dev, b.prefix), true
}

func (b *Bridge) publishState(addr string, e entity.Entity) {
	t, ok := b.topicsFor(addr)
	if !ok {
		return
	}
	b.publish(t.state(string(e.Kind()), e.Info().ObjectID), statePayload(e), true)
}

func (b *Bridge) publishAvailability(addr, state string) {
	if t, ok := b.topicsFor(addr); ok {
		b.publish(t.avail, []byte(state), true)
	}
}

func (b *Bridge) publishBridgeState(state string) {
	b.publish(b.prefix+"/bridge/state", []byte(state), true)
}

func (b *Bridge) subscribeCommands(dev *store.Device) {
	base := deviceTopics(dev, b.prefix).base
	addr := dev.Address
	topic := base + "/+/+/set"
	token := b.client.Subscribe(topic, 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		b.handleCommand(addr, msg.Topic(), msg.Payload())
	})
	b.watch(token, "subscribe", topic)
}

func (b *Bridge) handleCommand(addr, topic string, payload []byte) {
	t, ok := b.topicsFor(addr)
	if !ok {
		return
	}
	kind, objectID, ok := splitCommandTopic(t.base, topic)
	if !ok {
		b.logger.Warn("malformed command topic", "topic", topic)
		return
	}

	b.mu.Lock()
	src := b.sources[addr]
	b.mu.Unlock()
	var reg *entity.Registry
	if src != nil {
		reg = src.Registry()
	}
	if reg == nil {
		b.logger.Warn("command while device is offline", "address", addr, "topic", topic)
		return
	}
	e, ok := reg.ByObjectID(kind, objectID)
	if !ok {
		b.logger.Warn("command for unknown entity", "address", addr, "kind", kind, "object_id", objectID)
		return
	}
	if err := applyCommand(e, payload); err != nil {
		b.logger.Warn("command failed", "address", addr, "topic", topic, "err", err)
	}
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	b.watch(b.client.Publish(topic, 1, retained, payload), "publish", topic)
}

// watch logs a failed or timed-out token without blocking the caller,
// which may be a paho callback.
func (b *Bridge) watch(token pahomqtt.Token, op, topic string) {
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT "+op+" timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT "+op+" error", "topic", topic, "err", err)
		}
	}()
}
