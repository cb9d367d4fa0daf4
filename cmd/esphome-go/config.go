package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
)

// Config is the YAML configuration file.
type Config struct {
	Devices []DeviceConfig `yaml:"devices"`

	Reconnect struct {
		Delay       time.Duration `yaml:"delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
		Factor      float64       `yaml:"factor"`
		MaxAttempts int           `yaml:"max_attempts"`
	} `yaml:"reconnect"`
	LogStream struct {
		Level      string `yaml:"level"` // empty disables the log stream
		DumpConfig bool   `yaml:"dump_config"`
	} `yaml:"log_stream"`
	Web struct {
		Listen         string   `yaml:"listen"`
		APIKey         string   `yaml:"api_key"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"web"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	MQTT struct {
		Enabled         bool   `yaml:"enabled"`
		Broker          string `yaml:"broker"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		ClientID        string `yaml:"client_id"`
		TopicPrefix     string `yaml:"topic_prefix"`
		DiscoveryPrefix string `yaml:"discovery_prefix"`
	} `yaml:"mqtt"`
	Metrics struct {
		Enabled   bool   `yaml:"enabled"`
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Exec struct {
		Allowlist []string      `yaml:"allowlist"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"exec"`
	ScriptsDir string `yaml:"scripts_dir"`
}

// DeviceConfig is one device entry.
type DeviceConfig struct {
	Name           string        `yaml:"name"`
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	EncryptionKey  string        `yaml:"encryption_key"`
	Password       string        `yaml:"password"`
	ClientInfo     string        `yaml:"client_info"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
}

func (c *Config) validate() error {
	if len(c.Devices) == 0 {
		return fmt.Errorf("at least one device is required")
	}
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.Name == "" {
			return fmt.Errorf("devices[%d].name is required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("devices[%d].name %q is used twice", i, d.Name)
		}
		seen[d.Name] = true
		if d.Address == "" {
			return fmt.Errorf("device %q: address is required", d.Name)
		}
		if d.Port < 0 || d.Port > 65535 {
			return fmt.Errorf("device %q: port must be 1-65535, got %d", d.Name, d.Port)
		}
		if d.EncryptionKey != "" {
			if _, err := api.DecodePSK(d.EncryptionKey); err != nil {
				return fmt.Errorf("device %q: %w", d.Name, err)
			}
		}
	}
	if c.LogStream.Level != "" {
		if _, ok := api.ParseLogLevel(c.LogStream.Level); !ok {
			return fmt.Errorf("log_stream.level: unknown level %q", c.LogStream.Level)
		}
	}
	if c.Reconnect.Factor != 0 && c.Reconnect.Factor < 1 {
		return fmt.Errorf("reconnect.factor must be >= 1, got %g", c.Reconnect.Factor)
	}
	if c.Reconnect.MaxDelay != 0 && c.Reconnect.MaxDelay < c.Reconnect.Delay {
		return fmt.Errorf("reconnect.max_delay must not be below reconnect.delay")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// device returns the named device entry.
func (c *Config) device(name string) (DeviceConfig, bool) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return DeviceConfig{}, false
}

// deviceConfig converts an entry to the session configuration.
func (d DeviceConfig) deviceConfig() (device.Config, error) {
	cfg := device.Config{
		Address:        d.Address,
		Port:           d.Port,
		Password:       d.Password,
		ClientInfo:     d.ClientInfo,
		ConnectTimeout: d.ConnectTimeout,
		ReadTimeout:    d.ReadTimeout,
	}
	if d.EncryptionKey != "" {
		psk, err := api.DecodePSK(d.EncryptionKey)
		if err != nil {
			return device.Config{}, err
		}
		cfg.PSK = psk
	}
	return cfg, nil
}

// retryPolicy is exponential unless no max_delay is set.
func (c *Config) retryPolicy() device.RetryPolicy {
	r := c.Reconnect
	if r.MaxDelay == 0 {
		return device.FixedDelay{Delay: r.Delay, MaxAttempts: r.MaxAttempts}
	}
	return device.ExponentialBackoff{
		Min:         r.Delay,
		Max:         r.MaxDelay,
		Factor:      r.Factor,
		MaxAttempts: r.MaxAttempts,
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Devices {
		if c.Devices[i].Port == 0 {
			c.Devices[i].Port = device.DefaultPort
		}
	}
	if c.Reconnect.Delay == 0 {
		c.Reconnect.Delay = 5 * time.Second
	}
	if c.Web.Listen == "" {
		c.Web.Listen = "127.0.0.1:8080"
	}
	if c.Store.Path == "" {
		c.Store.Path = "esphome.db"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "esphome"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "esphome"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Exec.Timeout == 0 {
		c.Exec.Timeout = 10 * time.Second
	}
	if c.ScriptsDir == "" {
		c.ScriptsDir = "scripts"
	}
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
