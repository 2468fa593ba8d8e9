/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: runs.go
Description: Discovery of per-repetition run directories (run1, run2, ...) inside a results
directory.
*/

package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/errs"
)

// RunDirs returns the run directories of resultsDir ordered by repetition number.
func RunDirs(resultsDir string) ([]string, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: results directory %s", errs.ErrNotFound, resultsDir)
		}
		return nil, fmt.Errorf("failed to list results directory: %w", err)
	}

	type run struct {
		n    int
		path string
	}
	var runs []run
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), config.RunDirPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), config.RunDirPrefix))
		if err != nil || n < 1 {
			continue
		}
		runs = append(runs, run{n: n, path: filepath.Join(resultsDir, e.Name())})
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no run directories under %s", errs.ErrNotFound, resultsDir)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].n < runs[j].n })
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.path
	}
	return out, nil
}
