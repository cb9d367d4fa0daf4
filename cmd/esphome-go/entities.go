package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"esphome-go/internal/device"
	"esphome-go/internal/store"
)

func entitiesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List a device's entities",
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

			d := device.New(devCfg, logger)
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := d.Connect(ctx); err != nil {
				return err
			}
			defer d.Disconnect()

			if _, err := d.Entities(); err != nil {
				return err
			}
			info, _ := d.Info()
			rec := store.NewRecord(d.Address(), info, d.Registry().Sorted(), time.Now())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			return printCatalogue(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the device record as JSON")
	return cmd
}

func printCatalogue(w io.Writer, rec *store.Device) error {
	fmt.Fprintf(w, "%s (%s) ESPHome %s, %d entities\n\n", rec.Name, rec.MACAddress, rec.ESPHomeVersion, len(rec.Entities))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tKIND\tOBJECT ID\tNAME\tCLASS\tUNIT")
	for _, e := range rec.Entities {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.Key, e.Kind, e.ObjectID, e.Name, e.DeviceClass, e.Unit)
	}
	return tw.Flush()
}
