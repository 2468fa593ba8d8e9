/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: uid.go
Description: Android app uid derivation. Turns the raw numeric uid recorded by the simulation
script into the u0aNN form used by batterystats.
*/

package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/orka/pkg/errs"
)

// UIDPrefix is the user-0 application uid prefix.
const UIDPrefix = "u0a"

// UIDFile is the name of the file holding the raw uid.
const UIDFile = "appuid"

// AppUID reads the first line of the file at path and derives the device uid.
func AppUID(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: uid file %s", errs.ErrNotFound, path)
		}
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var line string
	if scanner.Scan() {
		line = scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read uid file: %w", err)
	}
	return DeriveUID(line), nil
}

// DeriveUID keeps the last three characters of the trimmed raw uid, drops a single leading zero
// from that window, and prefixes u0a: 10123 -> u0a123, 10023 -> u0a23.
func DeriveUID(raw string) string {
	uid := strings.TrimSpace(raw)
	if len(uid) > 3 {
		uid = uid[len(uid)-3:]
	}
	if strings.HasPrefix(uid, "0") {
		if len(uid) > 2 {
			uid = uid[len(uid)-2:]
		}
	}
	return UIDPrefix + uid
}

// FindAppUID locates the uid file of a results directory, preferring the package level and
// falling back to the first run.
func FindAppUID(resultsDir string) (string, error) {
	candidates := []string{
		filepath.Join(resultsDir, UIDFile),
		filepath.Join(resultsDir, "run1", UIDFile),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return AppUID(c)
		}
	}
	return "", fmt.Errorf("%w: no %s file under %s", errs.ErrNotFound, UIDFile, resultsDir)
}
