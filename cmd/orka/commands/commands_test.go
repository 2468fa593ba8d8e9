/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: Tests for the command helpers: environment loading, installation checks and the
table printers.
*/

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/costs"
	"github.com/kleascm/orka/pkg/errs"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/kleascm/orka/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const confINI = `
[emulator]
id = emulator-5554
[apps]
paths = a.apk
[interaction]
script = monkey_script.py
inputs = a_input.txt
`

// adbRunner answers `adb devices -l` with a fixed listing.
type adbRunner struct {
	listing string
}

func (r *adbRunner) Run(ctx context.Context, name string, args ...string) (*mobile.Result, error) {
	return &mobile.Result{Command: append([]string{name}, args...), Stdout: []byte(r.listing)}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
}

// installation lays out a complete ORKA_HOME and SDK.
func installation(t *testing.T) *config.Paths {
	t.Helper()
	root := t.TempDir()
	paths := config.NewPaths(filepath.Join(root, "orka"), filepath.Join(root, "sdk"))
	writeFile(t, paths.ConfigFile, confINI)
	writeFile(t, paths.CostsFile, "foo(I)V,1.5\nbar()V,2.0\n")
	writeFile(t, paths.InstrumentScript, "#!/bin/sh\n")
	writeFile(t, paths.SimulationScript, "#!/bin/sh\n")
	writeFile(t, filepath.Join(paths.SDK, "build-tools", "30.0.3", "aapt"), "")
	writeFile(t, paths.ADB, "")
	return paths
}

func runChecks(t *testing.T, paths *config.Paths, runner mobile.Runner) map[string]error {
	t.Helper()
	results := make(map[string]error)
	for _, c := range installationChecks(paths, runner, paths.ConfigFile) {
		results[c.name] = c.function(context.Background())
	}
	return results
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(config.EnvHome, "/opt/orka")
	t.Setenv(config.EnvSDK, "/opt/sdk")
	paths, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/opt/orka", paths.Home)
	assert.Equal(t, filepath.Join("/opt/orka", "conf.ini"), configPath(paths))
}

func TestLoadConfigMissingHome(t *testing.T) {
	t.Setenv(config.EnvHome, "")
	t.Setenv(config.EnvSDK, "/opt/sdk")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, errs.ErrEnvironment)
}

func TestInstallationChecksPass(t *testing.T) {
	paths := installation(t)
	runner := &adbRunner{listing: "List of devices attached\nemulator-5554 device model:sdk_gphone64\n"}

	for name, err := range runChecks(t, paths, runner) {
		assert.NoError(t, err, name)
	}
}

func TestInstallationChecksReportProblems(t *testing.T) {
	paths := installation(t)
	require.NoError(t, os.Remove(paths.SimulationScript))
	require.NoError(t, os.RemoveAll(filepath.Join(paths.SDK, "build-tools")))
	runner := &adbRunner{listing: "List of devices attached\nemulator-5556 device\n"}

	results := runChecks(t, paths, runner)
	assert.ErrorIs(t, results["Installation layout"], errs.ErrNotFound)
	assert.ErrorIs(t, results["Build tools"], errs.ErrEnvironment)
	assert.NoError(t, results["API cost table"])
	assert.NoError(t, results["Run configuration"])
	require.Error(t, results["Emulator"])
	assert.Contains(t, results["Emulator"].Error(), "emulator-5554 is not attached")
}

func TestEmulatorCheckOffline(t *testing.T) {
	paths := installation(t)
	runner := &adbRunner{listing: "emulator-5554 offline\n"}

	results := runChecks(t, paths, runner)
	require.Error(t, results["Emulator"])
	assert.Contains(t, results["Emulator"].Error(), "offline")
}

func TestWriteCosts(t *testing.T) {
	table := costs.Table{"foo": 1.5, "bar": 2.0, "baz": 0.5}

	var buf bytes.Buffer
	writeCosts(&buf, table, 2)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "bar"))
	assert.True(t, strings.HasPrefix(lines[2], "foo"))
	assert.Equal(t, "2 of 3 APIs", lines[3])

	buf.Reset()
	writeCosts(&buf, table, 0)
	assert.Contains(t, buf.String(), "3 of 3 APIs")
}

func TestWriteDevices(t *testing.T) {
	var buf bytes.Buffer
	writeDevices(&buf, []mobile.Device{
		{Serial: "emulator-5554", State: "device", Attributes: map[string]string{"model": "sdk_gphone64"}},
		{Serial: "R58M", State: "unauthorized"},
	})
	out := buf.String()
	assert.Contains(t, out, "SERIAL")
	assert.Regexp(t, `emulator-5554\s+device\s+true\s+sdk_gphone64`, out)
	assert.Regexp(t, `R58M\s+unauthorized\s+false`, out)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &pipeline.Summary{Results: []*pipeline.AppResult{
		{
			App:        "a.apk",
			Package:    &mobile.PackageInfo{PackageName: "com.example.a"},
			ReportPath: "/r/energy_profile.html",
			Exports:    []string{"/r/energy_profile.png"},
		},
		{App: "b.apk", Package: &mobile.PackageInfo{PackageName: "com.example.b"}},
	}})
	assert.Equal(t, "com.example.a: /r/energy_profile.html\n  /r/energy_profile.png\n", buf.String())

	buf.Reset()
	printSummary(&buf, nil)
	assert.Empty(t, buf.String())
}
