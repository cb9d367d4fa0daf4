package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"esphome-go/internal/device"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// globalFlags are shared by every command. A device given with --address
// replaces the configured device list.
type globalFlags struct {
	configPath string
	device     string
	address    string
	port       int
	key        string
	password   string
	logLevel   string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "esphome-go",
		Short:         "Client for the ESPHome native API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "config.yaml", "config file")
	pf.StringVarP(&flags.device, "device", "d", "", "configured device name (default: first device)")
	pf.StringVar(&flags.address, "address", "", "device host, overrides the config file")
	pf.IntVar(&flags.port, "port", device.DefaultPort, "device port, with --address")
	pf.StringVar(&flags.key, "key", "", "base64 API encryption key, with --address")
	pf.StringVar(&flags.password, "password", "", "API password, with --address")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		monitorCmd(&flags),
		entitiesCmd(&flags),
		serveCmd(&flags),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// settings loads the config file, applies flag overrides and validates the
// result. A missing config file is fine when --address names the device.
func (f *globalFlags) settings() (*Config, error) {
	cfg, err := loadConfig(f.configPath)
	switch {
	case err == nil:
	case f.address != "" && errors.Is(err, fs.ErrNotExist):
		cfg = &Config{}
		cfg.applyDefaults()
	default:
		return nil, err
	}

	if f.address != "" {
		name := f.device
		if name == "" {
			name = f.address
		}
		cfg.Devices = []DeviceConfig{{
			Name:          name,
			Address:       f.address,
			Port:          f.port,
			EncryptionKey: f.key,
			Password:      f.password,
		}}
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// selected returns the device a single-device command talks to.
func (f *globalFlags) selected(cfg *Config) (DeviceConfig, error) {
	if f.device == "" || f.address != "" {
		return cfg.Devices[0], nil
	}
	d, ok := cfg.device(f.device)
	if !ok {
		return DeviceConfig{}, fmt.Errorf("no device named %q in %s", f.device, f.configPath)
	}
	return d, nil
}

// setup loads the settings and installs the configured logger as default.
func (f *globalFlags) setup() (*Config, *slog.Logger, error) {
	cfg, err := f.settings()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
