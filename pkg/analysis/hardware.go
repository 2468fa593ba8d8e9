/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: hardware.go
Description: Hardware-level analysis. Reads the per-uid estimated power line of every run's
batterystats dump and averages the component breakdown across runs.
*/

package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kleascm/orka/pkg/reporting"
)

// BatteryStatsFile is the batterystats dump of one run.
const BatteryStatsFile = "batterystats.txt"

// uidPowerRe matches estimated power lines such as
//
//	Uid u0a123: 2.55 ( cpu=2.41 wake=0.0166 wifi=0.12 )
var uidPowerRe = regexp.MustCompile(`^\s*(?i:uid)\s+(u\d+a\d+|\d+):\s*([\d.]+)(?:\s*\(([^)]*)\))?`)

// HardwareAnalyser fills the component panel for one app uid.
type HardwareAnalyser interface {
	AnalyseHardware(resultsDir, uid string, panel *reporting.Panel) error
}

// BatteryStatsAnalyser averages batterystats power estimates per component.
type BatteryStatsAnalyser struct{}

func NewBatteryStatsAnalyser() *BatteryStatsAnalyser {
	return &BatteryStatsAnalyser{}
}

// AnalyseHardware implements HardwareAnalyser.
func (a *BatteryStatsAnalyser) AnalyseHardware(resultsDir, uid string, panel *reporting.Panel) error {
	runs, err := RunDirs(resultsDir)
	if err != nil {
		return err
	}

	totals := make(map[string]float64)
	order := []string{}
	counted := 0
	for _, run := range runs {
		path := filepath.Join(run, BatteryStatsFile)
		components, found, err := scanUIDPower(path, uid)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				panel.Note(fmt.Sprintf("%s has no %s", filepath.Base(run), BatteryStatsFile))
				continue
			}
			return err
		}
		if !found {
			panel.Note(fmt.Sprintf("%s: no power estimate for %s", filepath.Base(run), uid))
			continue
		}
		for _, c := range components {
			if _, seen := totals[c.Label]; !seen {
				order = append(order, c.Label)
			}
			totals[c.Label] += c.Value
		}
		counted++
	}
	if counted == 0 {
		panel.Note(fmt.Sprintf("no batterystats power estimate for %s in any run", uid))
		return nil
	}

	panel.Unit = "mAh per run"
	for _, label := range order {
		if v := totals[label] / float64(counted); v > 0 {
			panel.Add(label, v)
		}
	}
	panel.Sort()
	return nil
}

// scanUIDPower returns the components of the first estimated power line for uid.
// A line without a component list yields a single "total" component.
func scanUIDPower(path, uid string) ([]reporting.Slice, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := uidPowerRe.FindStringSubmatch(scanner.Text())
		if m == nil || m[1] != uid {
			continue
		}
		if strings.TrimSpace(m[3]) == "" {
			total, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, false, fmt.Errorf("%s: bad power value %q", path, m[2])
			}
			return []reporting.Slice{{Label: "total", Value: total}}, true, nil
		}
		return parseComponents(m[3]), true, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil, false, nil
}

// parseComponents reads "cpu=2.41 wake=0.0166 wifi=0.12" pairs; values that do not parse are skipped.
func parseComponents(s string) []reporting.Slice {
	var out []reporting.Slice
	for _, field := range strings.Fields(s) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out = append(out, reporting.Slice{Label: k, Value: val})
	}
	return out
}
