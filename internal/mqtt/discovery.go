//go:build !no_mqtt

package mqtt

import (
	"fmt"
	"strings"

	"esphome-go/internal/store"
)

// discoveryMsg is a Home Assistant MQTT discovery payload.
type discoveryMsg struct {
	Topic   string // e.g. "homeassistant/sensor/kitchen/temperature/config"
	Payload []byte // JSON, empty means delete
}

// haDevice is the "device" block in HA discovery.
type haDevice struct {
	Identifiers  []string    `json:"identifiers"`
	Connections  [][2]string `json:"connections,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	Model        string      `json:"model,omitempty"`
	Name         string      `json:"name"`
	SWVersion    string      `json:"sw_version,omitempty"`
}

// haDiscovery is a generic HA discovery payload.
type haDiscovery struct {
	Name                string   `json:"name"`
	UniqueID            string   `json:"unique_id"`
	ObjectID            string   `json:"object_id,omitempty"`
	StateTopic          string   `json:"state_topic,omitempty"`
	CommandTopic        string   `json:"command_topic,omitempty"`
	AvailabilityTopic   string   `json:"availability_topic"`
	ValueTemplate       string   `json:"value_template,omitempty"`
	UnitOfMeasurement   string   `json:"unit_of_measurement,omitempty"`
	DeviceClass         string   `json:"device_class,omitempty"`
	EntityCategory      string   `json:"entity_category,omitempty"`
	Icon                string   `json:"icon,omitempty"`
	EnabledByDefault    *bool    `json:"enabled_by_default,omitempty"`
	PayloadOn           string   `json:"payload_on,omitempty"`
	PayloadOff          string   `json:"payload_off,omitempty"`
	PayloadPress        string   `json:"payload_press,omitempty"`
	BrightnessScale     int      `json:"brightness_scale,omitempty"`
	Brightness          bool     `json:"brightness,omitempty"`
	SupportedColorModes []string `json:"supported_color_modes,omitempty"`
	Effect              bool     `json:"effect,omitempty"`
	Schema              string   `json:"schema,omitempty"`
	Options             []string `json:"options,omitempty"`
	Min                 *float32 `json:"min,omitempty"`
	Max                 *float32 `json:"max,omitempty"`
	Step                float32  `json:"step,omitempty"`
	Device              haDevice `json:"device"`
}

// deviceDisplayName returns a display name for the device.
func deviceDisplayName(dev *store.Device) string {
	if dev.FriendlyName != "" {
		return dev.FriendlyName
	}
	if dev.Name != "" {
		return dev.Name
	}
	return dev.Address
}

// deviceIdentifier returns the unique identifier for HA device registry.
func deviceIdentifier(dev *store.Device) string {
	if dev.MACAddress != "" {
		return "esphome_" + strings.ToLower(strings.ReplaceAll(dev.MACAddress, ":", ""))
	}
	return "esphome_" + deviceTopicName(dev)
}

// deviceTopicName returns the topic name for a device (node name or address).
func deviceTopicName(dev *store.Device) string {
	name := dev.Name
	if name == "" {
		name = dev.Address
	}
	// Sanitize: lowercase and keep only safe chars for MQTT topics.
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
}

// topics of one device.
type topics struct {
	base  string
	avail string
}

func deviceTopics(dev *store.Device, prefix string) topics {
	base := prefix + "/" + deviceTopicName(dev)
	return topics{base: base, avail: base + "/status"}
}

func (t topics) state(kind, objectID string) string {
	return t.base + "/" + kind + "/" + objectID + "/state"
}

func (t topics) command(kind, objectID string) string {
	return t.base + "/" + kind + "/" + objectID + "/set"
}

// haComponent maps an entity kind to the HA MQTT component announcing it.
// Kinds without one get state topics but no discovery.
var haComponent = map[string]string{
	"sensor":        "sensor",
	"text_sensor":   "sensor",
	"binary_sensor": "binary_sensor",
	"switch":        "switch",
	"button":        "button",
	"light":         "light",
	"fan":           "fan",
	"cover":         "cover",
	"lock":          "lock",
	"number":        "number",
	"select":        "select",
	"text":          "text",
}

// buildDiscovery generates HA discovery messages for a device's entity
// catalogue.
func buildDiscovery(dev *store.Device, prefix, discoveryPrefix string) []discoveryMsg {
	t := deviceTopics(dev, prefix)
	nodeID := deviceIdentifier(dev)
	haDev := haDevice{
		Identifiers:  []string{nodeID},
		Manufacturer: dev.Manufacturer,
		Model:        dev.Model,
		Name:         deviceDisplayName(dev),
		SWVersion:    dev.ESPHomeVersion,
	}
	if dev.MACAddress != "" {
		haDev.Connections = [][2]string{{"mac", strings.ToLower(dev.MACAddress)}}
	}

	var msgs []discoveryMsg
	for _, e := range dev.Entities {
		component, ok := haComponent[e.Kind]
		if !ok {
			continue
		}
		payload := haDiscovery{
			Name:              e.Name,
			UniqueID:          entityUniqueID(nodeID, e),
			ObjectID:          deviceTopicName(dev) + "_" + e.ObjectID,
			StateTopic:        t.state(e.Kind, e.ObjectID),
			AvailabilityTopic: t.avail,
			ValueTemplate:     "{{ value_json.state }}",
			DeviceClass:       e.DeviceClass,
			Icon:              e.Icon,
			Device:            haDev,
		}
		if e.Category != "" && e.Category != "none" {
			payload.EntityCategory = e.Category
		}
		if e.DisabledByDefault {
			payload.EnabledByDefault = new(bool)
		}

		switch e.Kind {
		case "sensor":
			payload.UnitOfMeasurement = e.Unit
		case "binary_sensor", "switch", "fan":
			payload.PayloadOn = "ON"
			payload.PayloadOff = "OFF"
			if e.Kind != "binary_sensor" {
				payload.CommandTopic = t.command(e.Kind, e.ObjectID)
			}
			if e.Kind == "fan" {
				payload.ValueTemplate = ""
				payload.StateTopic = ""
			}
		case "button":
			payload.StateTopic = ""
			payload.ValueTemplate = ""
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
			payload.PayloadPress = "PRESS"
		case "light":
			payload.ValueTemplate = ""
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
			payload.Schema = "json"
			payload.SupportedColorModes = []string{"onoff"}
			if lightDims(e.ColorModes) {
				payload.SupportedColorModes = []string{"brightness"}
				payload.BrightnessScale = 255
			}
		case "cover":
			payload.ValueTemplate = "{{ 'open' if value_json.open else 'closed' }}"
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
		case "lock":
			payload.ValueTemplate = "{{ value_json.state | upper }}"
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
		case "number":
			payload.UnitOfMeasurement = e.Unit
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
			payload.Min = &e.Min
			payload.Max = &e.Max
			payload.Step = e.Step
		case "select":
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
			payload.Options = e.Options
		case "text":
			payload.CommandTopic = t.command(e.Kind, e.ObjectID)
		}

		msgs = append(msgs, discoveryMsg{
			Topic:   discoveryTopic(discoveryPrefix, component, nodeID, e.ObjectID),
			Payload: mustJSON(payload),
		})
	}
	return msgs
}

func discoveryTopic(discoveryPrefix, component, nodeID, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", discoveryPrefix, component, nodeID, objectID)
}

func entityUniqueID(nodeID string, e store.Entity) string {
	if e.UniqueID != "" {
		return e.UniqueID
	}
	return nodeID + "_" + e.Kind + "_" + e.ObjectID
}

// lightDims reports whether any color mode carries a brightness channel.
func lightDims(modes []string) bool {
	for _, m := range modes {
		if m != "on_off" && m != "unknown" {
			return true
		}
	}
	return false
}

// buildRemoveDiscovery generates empty retained messages that remove the
// entities of old missing from current. A nil current removes them all.
func buildRemoveDiscovery(old, current *store.Device, discoveryPrefix string) []discoveryMsg {
	keep := make(map[string]bool)
	if current != nil {
		for _, e := range current.Entities {
			keep[e.Kind+"/"+e.ObjectID] = true
		}
	}
	nodeID := deviceIdentifier(old)

	var msgs []discoveryMsg
	for _, e := range old.Entities {
		component, ok := haComponent[e.Kind]
		if !ok || keep[e.Kind+"/"+e.ObjectID] {
			continue
		}
		msgs = append(msgs, discoveryMsg{
			Topic:   discoveryTopic(discoveryPrefix, component, nodeID, e.ObjectID),
			Payload: nil, // empty retained = delete
		})
	}
	return msgs
}
