/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: runconfig.go
Description: Run configuration loaded from Orka's INI file. Yields the target emulator, the
ordered list of APKs, the interaction script and its inputs, and the repetition count, then
pairs apps with inputs according to the batch mode.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/orka/pkg/errs"
	"gopkg.in/ini.v1"
)

// INI section and key names.
const (
	sectionEmulator    = "emulator"
	sectionApps        = "apps"
	sectionInteraction = "interaction"

	keyID     = "id"
	keyPaths  = "paths"
	keyScript = "script"
	keyInputs = "inputs"
	keyRuns   = "runs"
)

// RunConfig is the immutable description of one invocation.
type RunConfig struct {
	EmulatorID        string   `json:"emulator_id"`
	Apps              []string `json:"apps"`
	InteractionScript string   `json:"interaction_script"`
	InteractionInputs []string `json:"interaction_inputs"`
	Repetitions       int      `json:"repetitions"`
	Batch             bool     `json:"batch"`

	jobs []Job
}

// Job is one (app, interaction input) pair processed by the pipeline.
type Job struct {
	App              string `json:"app"`
	InteractionInput string `json:"interaction_input"`
}

// ParseConfig loads the INI file at path.
func ParseConfig(path string, batch bool) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: configuration file %s", errs.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg, err := ParseConfigData(data, batch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfigData parses INI content.
func ParseConfigData(data []byte, batch bool) (*RunConfig, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrParse, err)
	}

	emulator, err := requiredSection(file, sectionEmulator)
	if err != nil {
		return nil, err
	}
	apps, err := requiredSection(file, sectionApps)
	if err != nil {
		return nil, err
	}
	interaction, err := requiredSection(file, sectionInteraction)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{
		EmulatorID:        strings.TrimSpace(emulator.Key(keyID).String()),
		Apps:              nonEmpty(apps.Key(keyPaths).Strings(",")),
		InteractionScript: strings.TrimSpace(interaction.Key(keyScript).String()),
		InteractionInputs: nonEmpty(interaction.Key(keyInputs).Strings(",")),
		Repetitions:       1,
		Batch:             batch,
	}
	if interaction.HasKey(keyRuns) {
		runs, err := interaction.Key(keyRuns).Int()
		if err != nil {
			return nil, fmt.Errorf("%w: [%s] %s: %v", errs.ErrParse, sectionInteraction, keyRuns, err)
		}
		cfg.Repetitions = runs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.jobs = pair(cfg.Apps, cfg.InteractionInputs, batch)
	return cfg, nil
}

// Validate enforces the configuration contract.
func (c *RunConfig) Validate() error {
	if c.EmulatorID == "" {
		return fmt.Errorf("%w: [%s] %s is required", errs.ErrParse, sectionEmulator, keyID)
	}
	if strings.ContainsAny(c.EmulatorID, ", \t") {
		return fmt.Errorf("%w: exactly one emulator id expected, got %q", errs.ErrParse, c.EmulatorID)
	}
	if len(c.Apps) == 0 {
		return fmt.Errorf("%w: [%s] %s must list at least one APK", errs.ErrParse, sectionApps, keyPaths)
	}
	if c.InteractionScript == "" {
		return fmt.Errorf("%w: [%s] %s is required", errs.ErrParse, sectionInteraction, keyScript)
	}
	if len(c.InteractionInputs) == 0 {
		return fmt.Errorf("%w: [%s] %s is required", errs.ErrParse, sectionInteraction, keyInputs)
	}
	if !c.Batch && len(c.InteractionInputs) != 1 && len(c.InteractionInputs) != len(c.Apps) {
		return fmt.Errorf("%w: %d interaction inputs for %d apps; give one per app or a single shared input",
			errs.ErrParse, len(c.InteractionInputs), len(c.Apps))
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("%w: [%s] %s must be at least 1, got %d", errs.ErrParse, sectionInteraction, keyRuns, c.Repetitions)
	}
	return nil
}

// AbsApps makes relative app paths absolute against the working directory, so they stay
// valid for scripts run from the installation root.
func (c *RunConfig) AbsApps() error {
	for i, app := range c.Apps {
		abs, err := filepath.Abs(app)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", app, err)
		}
		c.Apps[i] = abs
	}
	c.jobs = pair(c.Apps, c.InteractionInputs, c.Batch)
	return nil
}

// Jobs returns the ordered (app, input) pairs to process.
func (c *RunConfig) Jobs() []Job {
	if c.jobs == nil {
		c.jobs = pair(c.Apps, c.InteractionInputs, c.Batch)
	}
	out := make([]Job, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// pair zips apps with inputs, sharing a single input across apps. In batch mode every input
// is an independent run for every app, app-major.
func pair(apps, inputs []string, batch bool) []Job {
	var jobs []Job
	if batch {
		for _, app := range apps {
			for _, in := range inputs {
				jobs = append(jobs, Job{App: app, InteractionInput: in})
			}
		}
		return jobs
	}
	for i, app := range apps {
		in := inputs[0]
		if len(inputs) > 1 {
			in = inputs[i]
		}
		jobs = append(jobs, Job{App: app, InteractionInput: in})
	}
	return jobs
}

func requiredSection(file *ini.File, name string) (*ini.Section, error) {
	sec, err := file.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("%w: missing section [%s]", errs.ErrParse, name)
	}
	return sec, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
