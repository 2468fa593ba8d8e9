/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Core types for driving Android tooling. Defines the command Runner abstraction
and the values exchanged with aapt, adb and the instrumentation/simulation scripts.
*/

package mobile

import (
	"context"
	"time"
)

// Runner executes an external program and waits for it to exit.
// A non-zero exit status is reported through Result.ExitCode, not as an error;
// the error is reserved for programs that could not be run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// Result is the outcome of one external process.
type Result struct {
	Command  []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// PackageInfo describes an APK as reported by aapt.
type PackageInfo struct {
	PackageName   string `json:"package_name"`
	PackageDir    string `json:"package_dir"`
	ActivityName  string `json:"activity_name"`
	ComponentName string `json:"component_name"`
}

// InstrumentationResult reports how the instrumentation script ended.
type InstrumentationResult struct {
	ExitCode        int  `json:"exit_code"`
	SentinelPresent bool `json:"sentinel_present"`
	// SentinelFresh is false when the sentinel predates this invocation.
	SentinelFresh bool `json:"sentinel_fresh"`
}

// Succeeded applies the success predicate. The lenient form only looks at the sentinel;
// the strict form also requires a zero exit status.
func (r *InstrumentationResult) Succeeded(strict bool) bool {
	if !r.SentinelPresent {
		return false
	}
	return !strict || r.ExitCode == 0
}

// SimulationRequest carries every argument of the simulation script.
type SimulationRequest struct {
	APK               string
	PackageName       string
	ComponentName     string
	EmulatorID        string
	InteractionScript string
	InteractionInput  string
	Repetitions       int
}

// Device is one entry of `adb devices -l`.
type Device struct {
	Serial     string            `json:"serial"`
	State      string            `json:"state"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Emulator reports whether the serial designates an emulator instance.
func (d Device) Emulator() bool {
	return len(d.Serial) > len("emulator-") && d.Serial[:len("emulator-")] == "emulator-"
}

// Crash is a fatal exception or ANR found in a logcat capture.
type Crash struct {
	PackageName string    `json:"package_name"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"` // crash, anr
	Message     string    `json:"message"`
	StackTrace  string    `json:"stack_trace"`
	Source      string    `json:"source,omitempty"`
}
