/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: paths.go
Description: Filesystem layout of an Orka installation. Resolves ORKA_HOME and ANDROID_HOME
once at startup and derives every fixed path the pipeline touches (configuration, cost table,
sentinel, scripts, per-package working and results directories).
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/orka/pkg/errs"
	"github.com/spf13/viper"
)

const (
	// EnvHome names the variable holding the Orka installation root.
	EnvHome = "ORKA_HOME"
	// EnvSDK names the variable holding the Android SDK root.
	EnvSDK = "ANDROID_HOME"

	// RunDirPrefix prefixes every per-repetition results directory.
	RunDirPrefix = "run"
)

// Paths holds every fixed location used by the pipeline.
type Paths struct {
	Home string
	SDK  string

	ConfigFile       string
	CostsFile        string
	Sentinel         string
	InstrumentScript string
	SimulationScript string
	ADB              string
}

// NewPaths derives the layout from explicit roots.
func NewPaths(home, sdk string) *Paths {
	return &Paths{
		Home:             home,
		SDK:              sdk,
		ConfigFile:       filepath.Join(home, "conf.ini"),
		CostsFile:        filepath.Join(home, "dependencies", "api_costs.csv"),
		Sentinel:         filepath.Join(home, "working", "apifound"),
		InstrumentScript: filepath.Join(home, "src", "instrument.sh"),
		SimulationScript: filepath.Join(home, "src", "simulationMaster.sh"),
		ADB:              filepath.Join(sdk, "platform-tools", "adb"),
	}
}

// LoadPaths resolves ORKA_HOME and ANDROID_HOME through viper and fails fast when either is unset.
func LoadPaths(v *viper.Viper) (*Paths, error) {
	if v == nil {
		v = viper.GetViper()
	}
	if err := v.BindEnv("home", EnvHome); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvHome, err)
	}
	if err := v.BindEnv("sdk", EnvSDK); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvSDK, err)
	}

	home := strings.TrimSpace(v.GetString("home"))
	if home == "" {
		return nil, fmt.Errorf("%w: %s is not set; point it at the Orka installation root", errs.ErrEnvironment, EnvHome)
	}
	sdk := strings.TrimSpace(v.GetString("sdk"))
	if sdk == "" {
		return nil, fmt.Errorf("%w: %s is not set; point it at the Android SDK root", errs.ErrEnvironment, EnvSDK)
	}
	return NewPaths(home, sdk), nil
}

// WorkingDir is the instrumentation output directory of a package.
func (p *Paths) WorkingDir(packageName string) string {
	return filepath.Join(p.Home, "working", packageName)
}

// InstrumentedAPK is the instrumented, signed APK produced for a package.
func (p *Paths) InstrumentedAPK(packageName string) string {
	return filepath.Join(p.WorkingDir(packageName), "dist", "orka.apk")
}

// ResultsDir is the per-emulator, per-package results directory.
func (p *Paths) ResultsDir(emulatorID, packageName string) string {
	return filepath.Join(p.Home, "results_"+emulatorID, packageName)
}

// RunDir is the results directory of the i-th repetition, starting at 1.
func (p *Paths) RunDir(emulatorID, packageName string, i int) string {
	return filepath.Join(p.ResultsDir(emulatorID, packageName), fmt.Sprintf("%s%d", RunDirPrefix, i))
}

// LogcatFile is the first run's logcat capture.
func (p *Paths) LogcatFile(emulatorID, packageName string) string {
	return filepath.Join(p.RunDir(emulatorID, packageName, 1), "logcat.txt")
}

// BatteryStatsFile is the first run's batterystats capture.
func (p *Paths) BatteryStatsFile(emulatorID, packageName string) string {
	return filepath.Join(p.RunDir(emulatorID, packageName, 1), "batterystats.txt")
}

// Validate checks that the roots exist and that the scripts are present.
func (p *Paths) Validate() []error {
	var problems []error
	for _, dir := range []string{p.Home, p.SDK} {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			problems = append(problems, fmt.Errorf("%w: directory %s", errs.ErrNotFound, dir))
		}
	}
	for _, file := range []string{p.InstrumentScript, p.SimulationScript, p.CostsFile} {
		if _, err := os.Stat(file); err != nil {
			problems = append(problems, fmt.Errorf("%w: %s", errs.ErrNotFound, file))
		}
	}
	return problems
}

// Exists reports whether a path exists, regardless of its type.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
