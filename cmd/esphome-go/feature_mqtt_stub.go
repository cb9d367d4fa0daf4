//go:build no_mqtt

package main

import (
	"log/slog"

	"esphome-go/internal/device"
	"esphome-go/internal/store"
)

type mqttBridge struct{}

func (m *mqttBridge) Attach(_ *device.Device, _ *device.EventBus) {}
func (m *mqttBridge) Announce(_ *store.Device)                    {}
func (m *mqttBridge) Stop()                                       {}

func initMQTT(_ *Config, _ *slog.Logger) *mqttBridge {
	return &mqttBridge{}
}
