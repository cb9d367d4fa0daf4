package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
)

const testKey = "px7tsbK3C7bpXHr2OevEV2ZMg/FrNBw2+O2pNPbedtA="

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, `
devices:
  - name: porch
    address: porch.local
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if cfg.Devices[0].Port != device.DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Devices[0].Port, device.DefaultPort)
	}
	if cfg.Web.Listen != "127.0.0.1:8080" || cfg.Store.Path != "esphome.db" || cfg.ScriptsDir != "scripts" {
		t.Errorf("defaults not applied: web=%q store=%q scripts=%q", cfg.Web.Listen, cfg.Store.Path, cfg.ScriptsDir)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Exec.Timeout != 10*time.Second || cfg.Reconnect.Delay != 5*time.Second {
		t.Errorf("exec timeout = %v, reconnect delay = %v", cfg.Exec.Timeout, cfg.Reconnect.Delay)
	}
	if got, ok := cfg.retryPolicy().(device.FixedDelay); !ok || got.Delay != 5*time.Second {
		t.Errorf("retryPolicy() = %#v, want FixedDelay{5s}", cfg.retryPolicy())
	}
}

func TestLoadConfigFull(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, `
devices:
  - name: porch
    address: 192.168.1.40
    port: 6054
    encryption_key: "`+testKey+`"
    password: hunter2
    connect_timeout: 3s
    read_timeout: 1m
reconnect:
  delay: 1s
  max_delay: 1m
  factor: 1.5
  max_attempts: 10
log_stream:
  level: very_verbose
  dump_config: true
mqtt:
  enabled: true
  broker: tcp://broker:1883
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, err := cfg.Devices[0].deviceConfig()
	if err != nil {
		t.Fatal(err)
	}
	psk, _ := api.DecodePSK(testKey)
	want := device.Config{
		Address:        "192.168.1.40",
		Port:           6054,
		PSK:            psk,
		Password:       "hunter2",
		ConnectTimeout: 3 * time.Second,
		ReadTimeout:    time.Minute,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deviceConfig() (-want +got):\n%s", diff)
	}

	wantPolicy := device.ExponentialBackoff{Min: time.Second, Max: time.Minute, Factor: 1.5, MaxAttempts: 10}
	if diff := cmp.Diff(device.RetryPolicy(wantPolicy), cfg.retryPolicy()); diff != "" {
		t.Errorf("retryPolicy() (-want +got):\n%s", diff)
	}
	if !cfg.LogStream.DumpConfig || cfg.MQTT.TopicPrefix != "esphome" {
		t.Errorf("log_stream = %+v, mqtt prefix = %q", cfg.LogStream, cfg.MQTT.TopicPrefix)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
	if _, err := loadConfig(writeConfig(t, "devices: [")); err == nil {
		t.Error("malformed YAML loaded")
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{Devices: []DeviceConfig{{Name: "porch", Address: "porch.local"}}}
		c.applyDefaults()
		return c
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no devices", func(c *Config) { c.Devices = nil }, "at least one device"},
		{"no name", func(c *Config) { c.Devices[0].Name = "" }, "name is required"},
		{"duplicate name", func(c *Config) { c.Devices = append(c.Devices, c.Devices[0]) }, "used twice"},
		{"no address", func(c *Config) { c.Devices[0].Address = "" }, "address is required"},
		{"bad port", func(c *Config) { c.Devices[0].Port = 70000 }, "port"},
		{"bad key", func(c *Config) { c.Devices[0].EncryptionKey = "c2hvcnQ=" }, "encryption key"},
		{"bad log stream level", func(c *Config) { c.LogStream.Level = "loud" }, "log_stream.level"},
		{"bad factor", func(c *Config) { c.Reconnect.Factor = 0.5 }, "reconnect.factor"},
		{"max below delay", func(c *Config) { c.Reconnect.MaxDelay = time.Second }, "max_delay"},
		{"mqtt without broker", func(c *Config) { c.MQTT.Enabled = true }, "mqtt.broker"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFlagSettings(t *testing.T) {
	path := writeConfig(t, `
devices:
  - name: porch
    address: porch.local
  - name: garage
    address: garage.local
log:
  level: warn
`)

	f := &globalFlags{configPath: path, device: "garage", logLevel: "debug"}
	cfg, err := f.settings()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want flag override", cfg.Log.Level)
	}
	if d, err := f.selected(cfg); err != nil || d.Address != "garage.local" {
		t.Errorf("selected = %+v, %v", d, err)
	}

	f.device = "attic"
	if _, err := f.selected(cfg); err == nil {
		t.Error("selected unknown device")
	}

	// --address works without a config file and replaces the device list.
	f = &globalFlags{configPath: filepath.Join(t.TempDir(), "none.yaml"), address: "10.0.0.9", port: 6053}
	cfg, err = f.settings()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Devices) != 1 || cfg.Devices[0].Name != "10.0.0.9" || cfg.Devices[0].Port != 6053 {
		t.Errorf("devices = %+v", cfg.Devices)
	}

	f = &globalFlags{configPath: filepath.Join(t.TempDir(), "none.yaml")}
	if _, err := f.settings(); err == nil {
		t.Error("settings without config or address succeeded")
	}
}

func TestPrintUnit(t *testing.T) {
	now := time.Date(2024, 3, 9, 22, 15, 30, 0, time.UTC)
	tests := []struct {
		name string
		unit device.Unit
		want string
	}{
		{"log", device.LogLine{Level: api.LogLevelWarn, Message: "low heap"}, "22:15:30 [WARN] low heap\n"},
		{"action", device.Action{Service: "light.turn_on", Data: map[string]string{"entity_id": "light.hall", "brightness": "80"}},
			"22:15:30 action light.turn_on brightness=80 entity_id=light.hall\n"},
		{"event", device.Event{Event: "esphome.button"}, "22:15:30 event esphome.button\n"},
		{"tag", device.TagScanned{TagID: "04-A1"}, "22:15:30 tag 04-A1\n"},
		{"subscription", device.StateSubscription{EntityID: "sun.sun", Attribute: "elevation"}, "22:15:30 subscribe sun.sun.elevation\n"},
		{"raw", device.RawMessage{Message: &api.PingRequest{}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printUnit(&buf, now, tt.unit)
			if got := buf.String(); got != tt.want {
				t.Errorf("printUnit() = %q, want %q", got, tt.want)
			}
		})
	}
}
