/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: runner.go
Description: ExecRunner, the os/exec backed Runner. Passes arguments as a discrete argv (never
through a shell), captures stdout/stderr, optionally streams output into the logger, and turns
non-zero exits into Result.ExitCode.
*/

package mobile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/kleascm/orka/pkg/errs"
	"github.com/sirupsen/logrus"
)

// ExecRunner runs programs on the local machine.
type ExecRunner struct {
	Logger *logrus.Entry
	Dir    string   // working directory, empty for the current one
	Env    []string // extra KEY=VALUE pairs appended to the environment
	Stream bool     // copy process output into the logger at debug level
}

// NewExecRunner creates a runner logging through logger.
func NewExecRunner(logger *logrus.Logger) *ExecRunner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExecRunner{Logger: logrus.NewEntry(logger)}
}

// Run executes name with args and blocks until it exits or ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if r.Stream && r.Logger != nil {
		w := r.Logger.WithField("cmd", name).WriterLevel(logrus.DebugLevel)
		defer w.Close()
		cmd.Stdout = io.MultiWriter(&outBuf, w)
		cmd.Stderr = io.MultiWriter(&errBuf, w)
	}

	res := &Result{Command: append([]string{name}, args...)}
	if r.Logger != nil {
		r.Logger.WithField("argv", res.Command).Debug("Running external command")
	}

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = outBuf.Bytes()
	res.Stderr = errBuf.Bytes()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return res, nil
}

// Check converts a non-zero exit status into an ErrCommandFailed error.
func (r *Result) Check() error {
	if r.ExitCode == 0 {
		return nil
	}
	name := ""
	if len(r.Command) > 0 {
		name = r.Command[0]
	}
	msg := tail(string(r.Stderr), 512)
	if msg == "" {
		msg = tail(string(r.Stdout), 512)
	}
	return fmt.Errorf("%w: %s exited with status %d: %s", errs.ErrCommandFailed, name, r.ExitCode, msg)
}

// tail keeps the last n bytes of s, trimmed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}
