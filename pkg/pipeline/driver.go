/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: driver.go
Description: The profiling pipeline. Processes the configured apps strictly in order:
package inspection, instrumentation, simulation and analysis, reusing the artifacts of
earlier sessions when the matching skip option is set and the artifacts exist.
*/

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/costs"
	"github.com/kleascm/orka/pkg/errs"
	"github.com/kleascm/orka/pkg/logging"
	"github.com/kleascm/orka/pkg/metrics"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/kleascm/orka/pkg/reporting"
	"github.com/sirupsen/logrus"
)

// Inspector extracts package information from an APK.
type Inspector interface {
	Inspect(ctx context.Context, appPath string) (*mobile.PackageInfo, error)
}

// Instrumenter rewrites an APK to log energy-relevant API calls.
type Instrumenter interface {
	Instrument(ctx context.Context, appPath, packageName, packageDir string) (*mobile.InstrumentationResult, error)
}

// Simulator installs an instrumented APK and replays an interaction session.
type Simulator interface {
	Simulate(ctx context.Context, req mobile.SimulationRequest) error
}

// Analyser turns raw results into an energy figure.
type Analyser interface {
	Analyse(emulatorID, packageName string, table costs.Table) (*reporting.Figure, error)
}

// Exporter writes static copies of a rendered page.
type Exporter interface {
	Export(ctx context.Context, htmlPath string) ([]string, error)
}

// Options control which phases run.
type Options struct {
	// SkipInjection reuses an existing instrumented APK.
	SkipInjection bool
	// SkipSimulation reuses existing run1 logs.
	SkipSimulation bool
	// SkipAnalysis stops after simulation.
	SkipAnalysis bool
	// StrictInstrumentation also requires a zero exit status from the instrumentation script.
	StrictInstrumentation bool
}

// Deps are the collaborators of a Driver. Exporter and Display may be nil.
type Deps struct {
	Paths        *config.Paths
	Inspector    Inspector
	Instrumenter Instrumenter
	Simulator    Simulator
	Analyser     Analyser
	Renderer     reporting.Renderer
	Exporter     Exporter
	Display      reporting.Displayer
	Metrics      *metrics.Recorder
	Logger       *logrus.Logger
}

// Driver sequences the pipeline phases for every configured app.
type Driver struct {
	Deps
	opts Options
}

// AppResult is the outcome of one job.
type AppResult struct {
	App          string
	Package      *mobile.PackageInfo
	Instrumented bool
	Simulated    bool
	Figure       *reporting.Figure
	ReportPath   string
	Exports      []string
}

// Summary is the outcome of a session.
type Summary struct {
	SessionID string
	Results   []*AppResult
	Elapsed   time.Duration
}

// NewDriver creates a driver.
func NewDriver(deps Deps, opts Options) *Driver {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRecorder()
	}
	if deps.Display == nil {
		deps.Display = reporting.NoDisplay{}
	}
	return &Driver{Deps: deps, opts: opts}
}

// Run processes every job of cfg in order. The first error aborts the remaining jobs and is
// returned wrapped with the app path, together with the results gathered so far.
func (d *Driver) Run(ctx context.Context, cfg *config.RunConfig, table costs.Table) (*Summary, error) {
	start := time.Now()
	summary := &Summary{SessionID: uuid.New().String()}
	log := d.Logger.WithField("session", summary.SessionID)

	jobs := cfg.Jobs()
	log.WithFields(logrus.Fields{
		"emulator":    cfg.EmulatorID,
		"jobs":        len(jobs),
		"repetitions": cfg.Repetitions,
		"batch":       cfg.Batch,
	}).Info("Profiling session started")

	var runErr error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("session interrupted: %w", err)
			break
		}
		res, err := d.process(ctx, log.WithField("app", job.App), cfg, job, table, summary.SessionID)
		if res != nil {
			summary.Results = append(summary.Results, res)
		}
		if err != nil {
			runErr = fmt.Errorf("%s: %w", job.App, err)
			break
		}
	}

	summary.Elapsed = time.Since(start)
	failed := 0
	if runErr != nil {
		failed = 1
	}
	logging.LogSummary(log, len(summary.Results), failed, summary.Elapsed)
	return summary, runErr
}

// process runs the phases of one job.
func (d *Driver) process(ctx context.Context, log *logrus.Entry, cfg *config.RunConfig, job config.Job, table costs.Table, session string) (*AppResult, error) {
	res := &AppResult{App: job.App}

	var info *mobile.PackageInfo
	err := d.phase(log, metrics.PhaseInspect, func() (err error) {
		info, err = d.Inspector.Inspect(ctx, job.App)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Package = info
	log = log.WithField("package", info.PackageName)

	apk := d.Paths.InstrumentedAPK(info.PackageName)
	if d.opts.SkipInjection && config.Exists(apk) {
		d.skip(log, metrics.PhaseInstrument, "instrumented APK exists")
	} else {
		if err := d.phase(log, metrics.PhaseInstrument, func() error {
			return d.instrument(ctx, log, job.App, info)
		}); err != nil {
			return res, err
		}
		res.Instrumented = true
	}

	logcat := d.Paths.LogcatFile(cfg.EmulatorID, info.PackageName)
	batterystats := d.Paths.BatteryStatsFile(cfg.EmulatorID, info.PackageName)
	if d.opts.SkipSimulation && config.Exists(logcat) && config.Exists(batterystats) {
		d.skip(log, metrics.PhaseSimulate, "run logs exist")
	} else {
		req := mobile.SimulationRequest{
			APK:               apk,
			PackageName:       info.PackageName,
			ComponentName:     info.ComponentName,
			EmulatorID:        cfg.EmulatorID,
			InteractionScript: cfg.InteractionScript,
			InteractionInput:  job.InteractionInput,
			Repetitions:       cfg.Repetitions,
		}
		if err := d.phase(log, metrics.PhaseSimulate, func() error {
			return d.Simulator.Simulate(ctx, req)
		}); err != nil {
			return res, err
		}
		res.Simulated = true
	}

	if d.opts.SkipAnalysis {
		d.skip(log, metrics.PhaseAnalyse, "analysis disabled")
		return res, nil
	}

	var fig *reporting.Figure
	if err := d.phase(log, metrics.PhaseAnalyse, func() (err error) {
		fig, err = d.Analyser.Analyse(cfg.EmulatorID, info.PackageName, table)
		return err
	}); err != nil {
		return res, err
	}
	fig.SessionID = session
	res.Figure = fig
	d.recordFigure(fig)

	if err := d.phase(log, metrics.PhaseRender, func() error {
		return d.render(ctx, log, cfg.EmulatorID, res)
	}); err != nil {
		return res, err
	}
	return res, nil
}

// instrument runs the instrumentation script and applies the success predicate. In lenient
// mode a failed predicate is only reported.
func (d *Driver) instrument(ctx context.Context, log *logrus.Entry, appPath string, info *mobile.PackageInfo) error {
	out, err := d.Instrumenter.Instrument(ctx, appPath, info.PackageName, info.PackageDir)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"exit_code":        out.ExitCode,
		"sentinel_present": out.SentinelPresent,
		"sentinel_fresh":   out.SentinelFresh,
	}
	if !out.Succeeded(d.opts.StrictInstrumentation) {
		if d.opts.StrictInstrumentation {
			return fmt.Errorf("%w: exit status %d, sentinel present %t",
				errs.ErrInstrumentation, out.ExitCode, out.SentinelPresent)
		}
		log.WithFields(fields).Warn("Instrumentation reported failure, continuing")
		return nil
	}
	if !out.SentinelFresh || out.ExitCode != 0 {
		log.WithFields(fields).Warn("Instrumentation sentinel may be stale")
	}
	return nil
}

// render writes the figure, exports it when configured and shows it.
func (d *Driver) render(ctx context.Context, log *logrus.Entry, emulatorID string, res *AppResult) error {
	dir := d.Paths.ResultsDir(emulatorID, res.Package.PackageName)
	path, err := d.Renderer.Render(res.Figure, dir)
	if err != nil {
		return err
	}
	res.ReportPath = path

	if d.Exporter != nil {
		exports, err := d.Exporter.Export(ctx, path)
		res.Exports = exports
		if err != nil {
			return err
		}
	}

	if err := d.Display.Display(path); err != nil {
		log.WithError(err).Warn("Could not display energy profile")
	}
	return nil
}

func (d *Driver) recordFigure(fig *reporting.Figure) {
	for _, p := range fig.Panels() {
		d.Metrics.RecordEnergy(fig.PackageName, p.Title, p.Unit, p.Total())
	}
	d.Metrics.RecordWarnings(fig.PackageName, len(fig.Warnings))
}

// phase times fn and logs its completion.
func (d *Driver) phase(log *logrus.Entry, name string, fn func() error) error {
	start := time.Now()
	log.WithField("phase", name).Debug("Phase started")
	err := fn()
	elapsed := time.Since(start)
	d.Metrics.Observe(name, elapsed, err)
	if err != nil {
		log.WithField("phase", name).WithError(err).Error("Phase failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	logging.LogPhase(log, name, elapsed, nil)
	return nil
}

func (d *Driver) skip(log *logrus.Entry, name, reason string) {
	d.Metrics.Skip(name)
	logging.LogSkip(log, name, reason)
}
