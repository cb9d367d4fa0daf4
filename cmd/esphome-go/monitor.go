package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
)

func monitorCmd(flags *globalFlags) *cobra.Command {
	var (
		level      string
		dumpConfig bool
		noStates   bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream a device's log and entity updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.setup()
			if err != nil {
				return err
			}
			dc, err := flags.selected(cfg)
			if err != nil {
				return err
			}
			devCfg, err := dc.deviceConfig()
			if err != nil {
				return err
			}
			if level == "" {
				level = cfg.LogStream.Level
			}
			if level == "" {
				level = "debug"
			}
			lvl, ok := api.ParseLogLevel(level)
			if !ok {
				return fmt.Errorf("unknown log level %q", level)
			}

			out := cmd.OutOrStdout()
			d := device.New(devCfg, logger)
			d.OnConnect(func() {
				if info, ok := d.Info(); ok {
					fmt.Fprintf(out, "Connected to %s (%s, ESPHome %s)\n", info.Name, info.MACAddress, info.ESPHomeVersion)
				}
			})
			d.OnDisconnect(func(err error) {
				if err != nil && !errors.Is(err, context.Canceled) {
					fmt.Fprintf(out, "Disconnected: %v\n", err)
				}
			})
			d.OnMessage(func(u device.Unit) {
				printUnit(out, time.Now(), u)
			})

			setup := func(ctx context.Context, d *device.Device) error {
				if !noStates {
					if _, err := d.Entities(); err != nil {
						return err
					}
					if err := d.StreamStates(); err != nil {
						return err
					}
				}
				return d.StreamLog(lvl, dumpConfig)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = device.NewSupervisor(d, cfg.retryPolicy(), setup, logger).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", "", "device log level (default: log_stream.level or debug)")
	cmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "ask the device to log its configuration")
	cmd.Flags().BoolVar(&noStates, "no-states", false, "only stream the log")
	return cmd
}

// printUnit writes one line per unit. Raw messages are not shown.
func printUnit(w io.Writer, now time.Time, u device.Unit) {
	ts := now.Format("15:04:05")
	switch u := u.(type) {
	case device.LogLine:
		fmt.Fprintf(w, "%s [%s] %s\n", ts, strings.ToUpper(u.Level.String()), u.Message)
	case device.EntityUpdate:
		fmt.Fprintf(w, "%s %s.%s = %s\n", ts, u.Entity.Kind(), u.Entity.Info().ObjectID, u.Entity.FormattedState())
	case device.Action:
		fmt.Fprintf(w, "%s action %s%s\n", ts, u.Service, formatMap(u.Data))
	case device.Event:
		fmt.Fprintf(w, "%s event %s%s\n", ts, u.Event, formatMap(u.Data))
	case device.TagScanned:
		fmt.Fprintf(w, "%s tag %s\n", ts, u.TagID)
	case device.StateSubscription:
		ref := u.EntityID
		if u.Attribute != "" {
			ref += "." + u.Attribute
		}
		fmt.Fprintf(w, "%s subscribe %s\n", ts, ref)
	}
}

func formatMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, m[k])
	}
	return b.String()
}
