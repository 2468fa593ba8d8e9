/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: crash_reporter.go
Description: Crash scanning of captured logcat files. Finds FATAL EXCEPTION and ANR blocks that
mention the profiled package so that a profile built from a crashed session is flagged.
*/

package mobile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

var (
	crashRe   = regexp.MustCompile(`FATAL EXCEPTION|ANR in`)
	logTimeRe = regexp.MustCompile(`^(\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3})`)
)

// ScanCrashes reads a logcat capture and returns the crash blocks of packageName.
func ScanCrashes(r io.Reader, packageName string) ([]*Crash, error) {
	var (
		crashes []*Crash
		current *Crash
		pending *Crash // FATAL EXCEPTION header waiting for its "Process:" line
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if crashRe.MatchString(line) {
			if current != nil {
				crashes = append(crashes, current)
				current = nil
			}
			c := &Crash{PackageName: packageName, Type: "crash", Message: strings.TrimSpace(line)}
			if strings.Contains(line, "ANR in") {
				c.Type = "anr"
			}
			if m := logTimeRe.FindStringSubmatch(line); len(m) == 2 {
				if t, err := time.Parse("01-02 15:04:05.000", m[1]); err == nil {
					c.Timestamp = t
				}
			}
			if strings.Contains(line, packageName) {
				current = c
			} else {
				pending = c
			}
			continue
		}

		if pending != nil {
			switch {
			case strings.Contains(line, "Process: "+packageName):
				current, pending = pending, nil
				current.Message += " " + strings.TrimSpace(line[strings.Index(line, "Process: "):])
			case strings.Contains(line, "Process: "), !strings.Contains(line, "AndroidRuntime"):
				pending = nil
			}
			continue
		}

		if current != nil {
			if strings.Contains(line, "AndroidRuntime") || strings.Contains(line, "ActivityManager") || strings.Contains(line, "\tat ") {
				current.StackTrace += payload(line) + "\n"
			} else {
				crashes = append(crashes, current)
				current = nil
			}
		}
	}
	if current != nil {
		crashes = append(crashes, current)
	}
	if err := scanner.Err(); err != nil {
		return crashes, fmt.Errorf("failed to scan logcat: %w", err)
	}
	return crashes, nil
}

// ScanCrashFile scans the logcat capture at path.
func ScanCrashFile(path, packageName string) ([]*Crash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	crashes, err := ScanCrashes(f, packageName)
	for _, c := range crashes {
		c.Source = path
	}
	return crashes, err
}

// payload strips the logcat prefix up to the tag separator.
func payload(line string) string {
	if i := strings.Index(line, ": "); i >= 0 {
		return strings.TrimSpace(line[i+2:])
	}
	return strings.TrimSpace(line)
}
