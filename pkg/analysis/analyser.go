/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyser.go
Description: Results analysis. Derives the app uid, builds the two-panel energy figure and
delegates each panel to its analyser; crashes found in the captured logcats become warnings.
*/

package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/costs"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/kleascm/orka/pkg/reporting"
	"github.com/sirupsen/logrus"
)

// Analyser produces energy figures from raw run results.
type Analyser struct {
	paths    *config.Paths
	api      APIAnalyser
	hardware HardwareAnalyser
	logger   *logrus.Logger
}

// NewAnalyser wires the default log-based analysers.
func NewAnalyser(paths *config.Paths, logger *logrus.Logger) *Analyser {
	return NewAnalyserWith(paths, NewLogcatAPIAnalyser(), NewBatteryStatsAnalyser(), logger)
}

// NewAnalyserWith allows substituting the panel analysers.
func NewAnalyserWith(paths *config.Paths, api APIAnalyser, hardware HardwareAnalyser, logger *logrus.Logger) *Analyser {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Analyser{paths: paths, api: api, hardware: hardware, logger: logger}
}

// Analyse builds the energy figure of packageName on emulatorID.
func (a *Analyser) Analyse(emulatorID, packageName string, table costs.Table) (*reporting.Figure, error) {
	resultsDir := a.paths.ResultsDir(emulatorID, packageName)
	log := a.logger.WithFields(logrus.Fields{
		"package":     packageName,
		"results_dir": resultsDir,
	})

	uid, err := FindAppUID(resultsDir)
	if err != nil {
		return nil, err
	}
	log = log.WithField("uid", uid)

	fig := reporting.NewFigure(packageName, emulatorID)
	if err := a.api.AnalyseAPI(resultsDir, table, fig.Routine); err != nil {
		return nil, fmt.Errorf("api analysis: %w", err)
	}
	if err := a.hardware.AnalyseHardware(resultsDir, uid, fig.Component); err != nil {
		return nil, fmt.Errorf("hardware analysis: %w", err)
	}

	a.collectCrashes(resultsDir, packageName, fig)

	log.WithFields(logrus.Fields{
		"routines":        len(fig.Routine.Slices),
		"routine_total":   fig.Routine.Total(),
		"components":      len(fig.Component.Slices),
		"component_total": fig.Component.Total(),
		"warnings":        len(fig.Warnings),
	}).Info("Energy profile computed")
	return fig, nil
}

// collectCrashes flags crashes in any run's logcat; scanning failures are only logged.
func (a *Analyser) collectCrashes(resultsDir, packageName string, fig *reporting.Figure) {
	runs, err := RunDirs(resultsDir)
	if err != nil {
		return
	}
	for _, run := range runs {
		path := filepath.Join(run, LogcatFile)
		crashes, err := mobile.ScanCrashFile(path, packageName)
		if err != nil {
			a.logger.WithError(err).WithField("file", path).Debug("Crash scan skipped")
			continue
		}
		for _, c := range crashes {
			fig.Warn(fmt.Sprintf("%s: %s during %s", c.Type, c.Message, filepath.Base(run)))
		}
	}
}
