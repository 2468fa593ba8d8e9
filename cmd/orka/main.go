/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for Orka. Profiles the energy consumption of Android apps
by instrumenting them, replaying an interaction session on an emulator and charting the
estimated cost per routine and per hardware component.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/orka/cmd/orka/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orka",
		Short: "Orka - energy profiler for Android apps",
		Long: `Orka instruments Android apps to log their energy-relevant API calls, replays an
interaction session on an emulator and charts the estimated energy cost per routine and per
hardware component. Apps, emulator and interaction are read from $ORKA_HOME/conf.ini.`,
		Version:       "1.0.0",
		Args:          cobra.NoArgs,
		RunE:          commands.RunProfile,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Run configuration file (default $ORKA_HOME/conf.ini)")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory for timestamped log files (empty disables)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))

	// Pipeline flags
	rootCmd.Flags().Bool("skip-inj", false, "Reuse an existing instrumented APK")
	rootCmd.Flags().Bool("skip-simul", false, "Reuse existing simulation logs")
	rootCmd.Flags().Bool("skip-analysis", false, "Stop after simulation")
	rootCmd.Flags().Bool("batch", false, "Replay every interaction input for every app")
	rootCmd.Flags().Bool("strict-instrumentation", false, "Also require a zero exit status from the instrumentation script")
	rootCmd.Flags().String("export", "", "Static copies of the profile to write (png, pdf)")
	rootCmd.Flags().Bool("no-display", false, "Do not open the profile in a browser")
	rootCmd.Flags().String("metrics-file", "", "Write session metrics in Prometheus text format")

	viper.BindPFlag("skip_inj", rootCmd.Flags().Lookup("skip-inj"))
	viper.BindPFlag("skip_simul", rootCmd.Flags().Lookup("skip-simul"))
	viper.BindPFlag("skip_analysis", rootCmd.Flags().Lookup("skip-analysis"))
	viper.BindPFlag("batch", rootCmd.Flags().Lookup("batch"))
	viper.BindPFlag("strict_instrumentation", rootCmd.Flags().Lookup("strict-instrumentation"))
	viper.BindPFlag("export", rootCmd.Flags().Lookup("export"))
	viper.BindPFlag("no_display", rootCmd.Flags().Lookup("no-display"))
	viper.BindPFlag("metrics_file", rootCmd.Flags().Lookup("metrics-file"))

	infoCmd := &cobra.Command{
		Use:   "info <apk>",
		Short: "Show package information of an APK",
		Args:  cobra.ExactArgs(1),
		RunE:  commands.ShowInfo,
	}
	infoCmd.Flags().Bool("json", false, "Print as JSON")
	viper.BindPFlag("json", infoCmd.Flags().Lookup("json"))

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the Orka installation and the target emulator",
		Args:  cobra.NoArgs,
		RunE:  commands.PerformSelfCheck,
	}

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices attached to adb",
		Args:  cobra.NoArgs,
		RunE:  commands.ListDevices,
	}
	devicesCmd.Flags().String("serial", "", "Target device serial")
	devicesCmd.Flags().Bool("wait", false, "Wait for the target device to come online")
	devicesCmd.Flags().Bool("props", false, "Print the properties of the target device")
	viper.BindPFlag("serial", devicesCmd.Flags().Lookup("serial"))
	viper.BindPFlag("wait", devicesCmd.Flags().Lookup("wait"))
	viper.BindPFlag("props", devicesCmd.Flags().Lookup("props"))

	costsCmd := &cobra.Command{
		Use:   "costs",
		Short: "List the API cost table, most expensive first",
		Args:  cobra.NoArgs,
		RunE:  commands.ListCosts,
	}
	costsCmd.Flags().Int("top", 0, "Number of entries to show (0 for all)")
	viper.BindPFlag("top", costsCmd.Flags().Lookup("top"))

	rootCmd.AddCommand(infoCmd, checkCmd, devicesCmd, costsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
