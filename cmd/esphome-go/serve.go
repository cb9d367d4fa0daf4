package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
	"esphome-go/internal/metrics"
	"esphome-go/internal/store"
	"esphome-go/internal/web"
)

// node is one configured device with its event bus.
type node struct {
	name string
	dev  *device.Device
	bus  *device.EventBus
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Keep every configured device connected and serve the API, MQTT bridge and automations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	logger.Info("esphome-go starting", "version", version, "devices", len(cfg.Devices))

	db, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	nodes := make([]*node, 0, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		devCfg, err := dc.deviceConfig()
		if err != nil {
			return err
		}
		d := device.New(devCfg, logger.With("device", dc.Name))
		bus := device.NewEventBus(logger)
		d.SetObserver(bus)
		n := &node{name: dc.Name, dev: d, bus: bus}
		bus.On(device.NotifyDisconnected, func(ev device.Notification) {
			cause, _ := ev.Data.(error)
			if err := store.RecordDisconnect(db, d.Address(), cause, time.Now()); err != nil {
				logger.Error("record disconnect", "device", n.name, "err", err)
			}
		})
		nodes = append(nodes, n)
	}

	webOpts := []web.ServerOption{
		web.WithStore(db),
		web.WithVersion(version),
	}
	if cfg.Web.APIKey != "" {
		webOpts = append(webOpts, web.WithAPIKey(cfg.Web.APIKey))
	}
	if len(cfg.Web.AllowedOrigins) > 0 {
		webOpts = append(webOpts, web.WithAllowedOrigins(cfg.Web.AllowedOrigins))
	}
	for _, n := range nodes {
		webOpts = append(webOpts, web.WithNode(n.name, n.dev, n.bus))
	}
	if cfg.Metrics.Enabled {
		webOpts = append(webOpts, web.WithMetrics(initMetrics(cfg, nodes)))
	}

	// MQTT bridge (no-op when built with no_mqtt tag).
	bridge := initMQTT(cfg, logger)
	for _, n := range nodes {
		bridge.Attach(n.dev, n.bus)
	}

	// Automation engine (no-op when built with no_automation tag).
	auto, autoWebOpts := initAutomation(cfg, nodes, logger)
	webOpts = append(webOpts, autoWebOpts...)

	webServer := web.NewServer(logger, webOpts...)
	httpServer := &http.Server{
		Addr:         cfg.Web.Listen,
		Handler:      webServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info("web server starting", "addr", cfg.Web.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "err", err)
		}
	}()

	var wg sync.WaitGroup
	policy := cfg.retryPolicy()
	setup := sessionSetup(cfg, db, bridge, logger)
	for _, n := range nodes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sup := device.NewSupervisor(n.dev, policy, setup, logger.With("device", n.name))
			if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("device supervisor stopped", "device", n.name, "err", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	auto.Stop()
	wg.Wait()
	bridge.Stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "err", err)
	}
	webServer.Stop()

	logger.Info("goodbye")
	return nil
}

// sessionSetup lists entities, caches the device record, announces it over
// MQTT and starts the streams. It runs after every successful connect.
func sessionSetup(cfg *Config, db store.Store, bridge *mqttBridge, logger *slog.Logger) device.SetupFunc {
	logLevel, streamLog := api.ParseLogLevel(cfg.LogStream.Level)
	return func(ctx context.Context, d *device.Device) error {
		if _, err := d.Entities(); err != nil {
			return err
		}
		info, _ := d.Info()
		ents := d.Registry().Sorted()
		now := time.Now()
		if err := store.RecordSession(db, d.Address(), info, ents, now); err != nil {
			logger.Error("record session", "address", d.Address(), "err", err)
		}
		bridge.Announce(store.NewRecord(d.Address(), info, ents, now))

		if err := d.StreamStates(); err != nil {
			return err
		}
		if err := d.StreamActions(); err != nil {
			return err
		}
		if err := d.StreamHomeAssistantStates(); err != nil {
			return err
		}
		if streamLog {
			return d.StreamLog(logLevel, cfg.LogStream.DumpConfig)
		}
		return nil
	}
}

// initMetrics registers the process, runtime and session metrics on a
// private registry and returns its scrape handler.
func initMetrics(cfg *Config, nodes []*node) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sources := make([]metrics.StatsSource, 0, len(nodes))
	for _, n := range nodes {
		sources = append(sources, n.dev)
	}
	m := metrics.New(sources,
		metrics.WithRegistry(reg),
		metrics.WithNamespace(cfg.Metrics.Namespace),
	)
	for _, n := range nodes {
		n.bus.OnAll(device.Forward(m))
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
