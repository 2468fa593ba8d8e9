/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus metrics of a profiling session. Counts executed and skipped pipeline
phases, times them, and records the energy totals of each profiled app. Metrics live in a
private registry and can be dumped in the text exposition format.
*/

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline phases.
const (
	PhaseInspect    = "inspect"
	PhaseInstrument = "instrument"
	PhaseSimulate   = "simulate"
	PhaseAnalyse    = "analyse"
	PhaseRender     = "render"
)

// Recorder collects the metrics of one session.
type Recorder struct {
	registry *prometheus.Registry

	// How often each phase ran.
	phaseRuns *prometheus.CounterVec
	// How often each phase was skipped because its artifacts already existed.
	phaseSkips *prometheus.CounterVec
	// How often each phase failed.
	phaseFailures *prometheus.CounterVec
	// How long each phase took.
	phaseDuration *prometheus.HistogramVec
	// Energy total of each panel of the latest figure of an app.
	appEnergy *prometheus.GaugeVec
	// Warnings attached to the latest figure of an app.
	appWarnings *prometheus.GaugeVec
}

// NewRecorder registers the session metrics in a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		phaseRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orka_phase_runs_total",
			Help: "Number of pipeline phase executions",
		}, []string{"phase"}),
		phaseSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orka_phase_skipped_total",
			Help: "Number of pipeline phases skipped because their artifacts already existed",
		}, []string{"phase"}),
		phaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orka_phase_failures_total",
			Help: "Number of pipeline phase executions that failed",
		}, []string{"phase"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orka_phase_duration_seconds",
			Help:    "Duration of pipeline phases",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 18), // 10ms to ~22min
		}, []string{"phase"}),
		appEnergy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orka_app_energy",
			Help: "Energy total of a figure panel, in the unit of the panel",
		}, []string{"package", "panel", "unit"}),
		appWarnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orka_app_warnings",
			Help: "Number of warnings attached to the energy profile of an app",
		}, []string{"package"}),
	}
	r.registry.MustRegister(
		r.phaseRuns,
		r.phaseSkips,
		r.phaseFailures,
		r.phaseDuration,
		r.appEnergy,
		r.appWarnings,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one phase execution.
func (r *Recorder) Observe(phase string, d time.Duration, err error) {
	r.phaseRuns.WithLabelValues(phase).Inc()
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	if err != nil {
		r.phaseFailures.WithLabelValues(phase).Inc()
	}
}

// Time runs fn as phase and records it.
func (r *Recorder) Time(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Observe(phase, time.Since(start), err)
	return err
}

// Skip records a skipped phase.
func (r *Recorder) Skip(phase string) {
	r.phaseSkips.WithLabelValues(phase).Inc()
}

// RecordEnergy stores the totals of an app's energy panels.
func (r *Recorder) RecordEnergy(packageName, panel, unit string, total float64) {
	r.appEnergy.WithLabelValues(packageName, panel, unit).Set(total)
}

// RecordWarnings stores the number of warnings of an app's profile.
func (r *Recorder) RecordWarnings(packageName string, n int) {
	r.appWarnings.WithLabelValues(packageName).Set(float64(n))
}

// WriteFile dumps every metric to path in the Prometheus text format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
