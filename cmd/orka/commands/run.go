/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: run.go
Description: The profiling command. Loads the run configuration and cost table, wires the
aapt, script, analysis and reporting components into a pipeline driver and runs every job.
*/

package commands

import (
	"fmt"
	"io"

	"github.com/kleascm/orka/pkg/analysis"
	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/costs"
	"github.com/kleascm/orka/pkg/metrics"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/kleascm/orka/pkg/pipeline"
	"github.com/kleascm/orka/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunProfile profiles every app of the run configuration.
func RunProfile(cmd *cobra.Command, args []string) error {
	paths, err := LoadConfig()
	if err != nil {
		return err
	}

	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()
	log := logger.GetLogger()

	cfg, err := config.ParseConfig(configPath(paths), viper.GetBool("batch"))
	if err != nil {
		return err
	}
	if err := cfg.AbsApps(); err != nil {
		return err
	}
	table, err := costs.Load(paths.CostsFile)
	if err != nil {
		return err
	}
	formats, err := reporting.ParseFormats(viper.GetString("export"))
	if err != nil {
		return err
	}

	runner := newRunner(paths, logger)
	rec := metrics.NewRecorder()
	deps := pipeline.Deps{
		Paths:        paths,
		Inspector:    mobile.NewPackageInspector(paths.SDK, runner),
		Instrumenter: mobile.NewInstrumenter(paths.InstrumentScript, paths.Sentinel, runner),
		Simulator:    mobile.NewSimulator(paths.SimulationScript, runner),
		Analyser:     analysis.NewAnalyser(paths, log),
		Renderer:     reporting.NewHTMLRenderer(log),
		Metrics:      rec,
		Logger:       log,
	}
	if len(formats) > 0 {
		deps.Exporter = reporting.NewChromeExporter(formats, log)
	}
	if !viper.GetBool("no_display") {
		deps.Display = reporting.NewBrowserDisplay()
	}

	driver := pipeline.NewDriver(deps, pipeline.Options{
		SkipInjection:         viper.GetBool("skip_inj"),
		SkipSimulation:        viper.GetBool("skip_simul"),
		SkipAnalysis:          viper.GetBool("skip_analysis"),
		StrictInstrumentation: viper.GetBool("strict_instrumentation"),
	})

	ctx, stop := signalContext()
	defer stop()

	summary, runErr := driver.Run(ctx, cfg, table)

	if path := viper.GetString("metrics_file"); path != "" {
		if err := rec.WriteFile(path); err != nil {
			log.WithError(err).Warn("Failed to write metrics file")
		} else {
			log.WithField("path", path).Debug("Metrics written")
		}
	}

	printSummary(cmd.OutOrStdout(), summary)
	return runErr
}

// printSummary lists the reports produced by the session.
func printSummary(w io.Writer, summary *pipeline.Summary) {
	if summary == nil {
		return
	}
	for _, res := range summary.Results {
		if res.ReportPath == "" {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", res.Package.PackageName, res.ReportPath)
		for _, path := range res.Exports {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}
}
