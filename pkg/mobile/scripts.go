/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scripts.go
Description: Drivers for the two external shell collaborators: the instrumentation script that
rewrites and signs an APK, and the simulation master script that installs it on an emulator and
replays an interaction session.
*/

package mobile

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Instrumenter runs the instrumentation script and reports its outcome.
type Instrumenter struct {
	Script   string
	Sentinel string
	Runner   Runner
}

func NewInstrumenter(script, sentinel string, runner Runner) *Instrumenter {
	return &Instrumenter{Script: script, Sentinel: sentinel, Runner: runner}
}

// Instrument invokes the script as `script apk packageName packageDir`. The exit status is
// recorded, not judged; callers apply InstrumentationResult.Succeeded.
func (i *Instrumenter) Instrument(ctx context.Context, appPath, packageName, packageDir string) (*InstrumentationResult, error) {
	start := time.Now()
	res, err := i.Runner.Run(ctx, i.Script, appPath, packageName, packageDir)
	if err != nil {
		return nil, fmt.Errorf("instrumentation script: %w", err)
	}

	out := &InstrumentationResult{ExitCode: res.ExitCode}
	if st, err := os.Stat(i.Sentinel); err == nil {
		out.SentinelPresent = true
		out.SentinelFresh = !st.ModTime().Before(start.Truncate(time.Second))
	}
	return out, nil
}

// Simulator runs the simulation master script.
type Simulator struct {
	Script string
	Runner Runner
}

func NewSimulator(script string, runner Runner) *Simulator {
	return &Simulator{Script: script, Runner: runner}
}

// Simulate installs the instrumented APK and drives the interaction session. Arguments are
// passed as a discrete argv so paths with whitespace reach the script intact.
func (s *Simulator) Simulate(ctx context.Context, req SimulationRequest) error {
	res, err := s.Runner.Run(ctx, s.Script, req.Args()...)
	if err != nil {
		return fmt.Errorf("simulation script: %w", err)
	}
	return res.Check()
}

// Args returns the positional arguments of the simulation script.
func (r SimulationRequest) Args() []string {
	return []string{
		r.APK,
		r.PackageName,
		r.ComponentName,
		r.EmulatorID,
		r.InteractionScript,
		r.InteractionInput,
		strconv.Itoa(r.Repetitions),
	}
}
