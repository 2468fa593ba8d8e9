/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Self-check of an Orka installation. Validates the environment, the scripts, the
SDK build tools, the cost table, the run configuration and the target emulator.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/costs"
	"github.com/kleascm/orka/pkg/errs"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/spf13/cobra"
)

type check struct {
	name     string
	function func(ctx context.Context) error
}

// PerformSelfCheck runs every installation check and fails if any of them fails.
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 Orka - Installation Self-Check")
	fmt.Fprintln(out, "=================================")
	fmt.Fprintln(out)

	checks := installationChecks(paths, mobile.NewExecRunner(logger.GetLogger()), configPath(paths))
	passed := 0
	for _, c := range checks {
		fmt.Fprintf(out, "%s... ", c.name)
		if err := c.function(ctx); err != nil {
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "✅ PASSED")
		passed++
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, len(checks))
	if passed < len(checks) {
		return fmt.Errorf("%d/%d checks failed", len(checks)-passed, len(checks))
	}
	return nil
}

// installationChecks lists the checks in the order they are reported.
func installationChecks(paths *config.Paths, runner mobile.Runner, cfgPath string) []check {
	var cfg *config.RunConfig
	return []check{
		{"Installation layout", func(context.Context) error {
			return errors.Join(paths.Validate()...)
		}},
		{"Build tools", func(context.Context) error {
			aapt, err := mobile.NewPackageInspector(paths.SDK, runner).AAPTPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(aapt); err != nil {
				return fmt.Errorf("%w: %s", errs.ErrEnvironment, aapt)
			}
			return nil
		}},
		{"API cost table", func(context.Context) error {
			table, err := costs.Load(paths.CostsFile)
			if err != nil {
				return err
			}
			if len(table) == 0 {
				return fmt.Errorf("%w: %s has no entries", errs.ErrParse, paths.CostsFile)
			}
			return nil
		}},
		{"Run configuration", func(context.Context) (err error) {
			cfg, err = config.ParseConfig(cfgPath, false)
			return err
		}},
		{"Emulator", func(ctx context.Context) error {
			if _, err := os.Stat(paths.ADB); err != nil {
				return fmt.Errorf("%w: adb not found at %s", errs.ErrEnvironment, paths.ADB)
			}
			devices, err := mobile.NewDeviceController(paths.ADB, "", runner).Devices(ctx)
			if err != nil {
				return err
			}
			if cfg == nil {
				return nil
			}
			for _, d := range devices {
				if d.Serial == cfg.EmulatorID {
					if d.State != "device" {
						return fmt.Errorf("%s is %s", d.Serial, d.State)
					}
					return nil
				}
			}
			return fmt.Errorf("%w: %s is not attached", errs.ErrNotFound, cfg.EmulatorID)
		}},
	}
}
