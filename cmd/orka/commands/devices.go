/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: devices.go
Description: Lists the devices known to adb, optionally waiting for one and printing its
properties.
*/

package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/kleascm/orka/pkg/mobile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ListDevices prints `adb devices -l` as a table.
func ListDevices(cmd *cobra.Command, args []string) error {
	paths, err := LoadConfig()
	if err != nil {
		return err
	}
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	ctx, stop := signalContext()
	defer stop()

	serial := viper.GetString("serial")
	adb := mobile.NewDeviceController(paths.ADB, serial, mobile.NewExecRunner(logger.GetLogger()))
	if viper.GetBool("wait") {
		logger.GetLogger().WithField("serial", serial).Info("Waiting for device")
		if err := adb.WaitForDevice(ctx); err != nil {
			return err
		}
	}

	devices, err := adb.Devices(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	writeDevices(out, devices)

	if serial != "" && viper.GetBool("props") {
		props, err := adb.DeviceInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		writeProps(out, props)
	}
	return nil
}

func writeDevices(w io.Writer, devices []mobile.Device) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tSTATE\tEMULATOR\tMODEL")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", d.Serial, d.State, d.Emulator(), d.Attributes["model"])
	}
	tw.Flush()
}

func writeProps(w io.Writer, props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %s\n", k, strings.TrimSpace(props[k]))
	}
}
