/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: api.go
Description: API-level analysis. Aggregates the API calls logged by the instrumented app into an
energy breakdown per calling routine using the reference API cost table.
*/

package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/kleascm/orka/pkg/costs"
	"github.com/kleascm/orka/pkg/reporting"
)

// LogcatFile is the logcat capture of one run.
const LogcatFile = "logcat.txt"

// apiLineRe matches instrumentation log lines in both brief and threadtime logcat formats:
//
//	I/Orka    ( 1234): onCreate android.net.wifi.WifiManager.startScan()Z
//	01-02 10:00:00.000  1234  1234 I Orka    : onCreate android.net.wifi.WifiManager.startScan()Z
var apiLineRe = regexp.MustCompile(`\bOrka\w*\s*(?:\(\s*\d+\))?\s*:\s*(\S+)\s+(\S+)`)

// APIAnalyser fills the routine panel from a results directory.
type APIAnalyser interface {
	AnalyseAPI(resultsDir string, table costs.Table, panel *reporting.Panel) error
}

// LogcatAPIAnalyser sums the cost of every logged API call per routine, averaged over runs.
type LogcatAPIAnalyser struct{}

func NewLogcatAPIAnalyser() *LogcatAPIAnalyser {
	return &LogcatAPIAnalyser{}
}

// AnalyseAPI implements APIAnalyser.
func (a *LogcatAPIAnalyser) AnalyseAPI(resultsDir string, table costs.Table, panel *reporting.Panel) error {
	runs, err := RunDirs(resultsDir)
	if err != nil {
		return err
	}

	totals := make(map[string]float64)
	unknown := make(map[string]int)
	counted := 0
	for _, run := range runs {
		path := filepath.Join(run, LogcatFile)
		perRun, err := scanAPICalls(path, table, unknown)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				panel.Note(fmt.Sprintf("%s has no %s", filepath.Base(run), LogcatFile))
				continue
			}
			return err
		}
		for routine, cost := range perRun {
			totals[routine] += cost
		}
		counted++
	}
	if counted == 0 {
		return fmt.Errorf("no %s found under %s", LogcatFile, resultsDir)
	}

	panel.Unit = "cost units per run"
	for routine, cost := range totals {
		if cost > 0 {
			panel.Add(routine, cost/float64(counted))
		}
	}
	panel.Sort()

	if len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for api := range unknown {
			names = append(names, api)
		}
		sort.Strings(names)
		for _, api := range names {
			panel.Note(fmt.Sprintf("no reference cost for %s (%d calls)", api, unknown[api]))
		}
	}
	return nil
}

// scanAPICalls returns the summed cost per routine of one logcat file and counts APIs missing
// from the cost table into unknown.
func scanAPICalls(path string, table costs.Table, unknown map[string]int) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	perRoutine := make(map[string]float64)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := apiLineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		routine, api := m[1], costs.BareName(m[2])
		cost, ok := table.Cost(api)
		if !ok {
			unknown[api]++
			continue
		}
		perRoutine[routine] += cost
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return perRoutine, nil
}
