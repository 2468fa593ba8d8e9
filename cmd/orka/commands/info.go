/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: info.go
Description: Prints the package information of an APK and the state of its artifacts.
*/

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ShowInfo inspects the APK given as the only argument.
func ShowInfo(cmd *cobra.Command, args []string) error {
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

	inspector := mobile.NewPackageInspector(paths.SDK, newRunner(paths, logger))
	info, err := inspector.Inspect(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if viper.GetBool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	apk := paths.InstrumentedAPK(info.PackageName)
	fmt.Fprintf(out, "Package:        %s\n", info.PackageName)
	fmt.Fprintf(out, "Package dir:    %s\n", info.PackageDir)
	fmt.Fprintf(out, "Activity:       %s\n", info.ActivityName)
	fmt.Fprintf(out, "Component:      %s\n", info.ComponentName)
	fmt.Fprintf(out, "Instrumented:   %s (%s)\n", apk, present(config.Exists(apk)))
	return nil
}

func present(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
