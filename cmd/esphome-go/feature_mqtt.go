//go:build !no_mqtt

package main

import (
	"log/slog"

	mqttbridge "esphome-go/internal/mqtt"

	"esphome-go/internal/device"
	"esphome-go/internal/store"
)

// mqttBridge wraps the bridge so serve runs unchanged when MQTT is
// disabled.
type mqttBridge struct {
	bridge *mqttbridge.Bridge
}

func (m *mqttBridge) Attach(d *device.Device, bus *device.EventBus) {
	if m.bridge != nil {
		m.bridge.Attach(d, bus)
	}
}

func (m *mqttBridge) Announce(dev *store.Device) {
	if m.bridge != nil {
		m.bridge.Announce(dev)
	}
}

func (m *mqttBridge) Stop() {
	if m.bridge != nil {
		m.bridge.Stop()
	}
}

func initMQTT(cfg *Config, logger *slog.Logger) *mqttBridge {
	if !cfg.MQTT.Enabled {
		return &mqttBridge{}
	}
	bridge, err := mqttbridge.NewBridge(mqttbridge.Config{
		Broker:          cfg.MQTT.Broker,
		Username:        cfg.MQTT.Username,
		Password:        cfg.MQTT.Password,
		ClientID:        cfg.MQTT.ClientID,
		TopicPrefix:     cfg.MQTT.TopicPrefix,
		DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
	}, logger)
	if err != nil {
		logger.Error("mqtt bridge", "err", err)
		return &mqttBridge{}
	}
	return &mqttBridge{bridge: bridge}
}
