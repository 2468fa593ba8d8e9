/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_test.go
Description: Tests for the session metrics recorder.
*/

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsRunsAndFailures(t *testing.T) {
	r := NewRecorder()
	r.Observe(PhaseInstrument, time.Second, nil)
	r.Observe(PhaseInstrument, 2*time.Second, errors.New("exit status 1"))
	r.Observe(PhaseSimulate, time.Minute, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.phaseRuns.WithLabelValues(PhaseInstrument)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.phaseRuns.WithLabelValues(PhaseSimulate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.phaseFailures.WithLabelValues(PhaseInstrument)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.phaseDuration))
}

func TestTime(t *testing.T) {
	r := NewRecorder()
	called := false
	err := r.Time(PhaseAnalyse, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.phaseRuns.WithLabelValues(PhaseAnalyse)))

	boom := errors.New("boom")
	assert.ErrorIs(t, r.Time(PhaseAnalyse, func() error { return boom }), boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.phaseFailures.WithLabelValues(PhaseAnalyse)))
}

func TestSkipAndEnergy(t *testing.T) {
	r := NewRecorder()
	r.Skip(PhaseInstrument)
	r.Skip(PhaseInstrument)
	r.RecordEnergy("com.example.app", "routine", "cost units per run", 14)
	r.RecordEnergy("com.example.app", "routine", "cost units per run", 12)
	r.RecordWarnings("com.example.app", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.phaseSkips.WithLabelValues(PhaseInstrument)))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.appEnergy.WithLabelValues("com.example.app", "routine", "cost units per run")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.appWarnings.WithLabelValues("com.example.app")))
}

func TestWriteFile(t *testing.T) {
	r := NewRecorder()
	r.Observe(PhaseInspect, 10*time.Millisecond, nil)
	r.Skip(PhaseSimulate)

	path := filepath.Join(t.TempDir(), "orka.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `orka_phase_runs_total{phase="inspect"} 1`)
	assert.Contains(t, string(data), `orka_phase_skipped_total{phase="simulate"} 1`)
	assert.Contains(t, string(data), "orka_phase_duration_seconds_bucket")

	assert.Error(t, r.WriteFile(filepath.Join(t.TempDir(), "missing", "orka.prom")))
}
