/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errs.go
Description: Error taxonomy for Orka. Every failure surfaced by the pipeline wraps one of
these sentinels so callers can classify it with errors.Is.
*/

package errs

import "errors"

var (
	// ErrInvalidArgument indicates an argument of the wrong shape, e.g. an empty APK path.
	ErrInvalidArgument = errors.New("orka: invalid argument")

	// ErrNotFound indicates a missing input file such as an APK or a results log.
	ErrNotFound = errors.New("orka: not found")

	// ErrEnvironment indicates that a required environment variable or SDK component is absent.
	ErrEnvironment = errors.New("orka: environment")

	// ErrParse indicates malformed configuration, cost table rows or tool output.
	ErrParse = errors.New("orka: parse error")

	// ErrCommandFailed indicates that an external tool exited with a non-zero status.
	ErrCommandFailed = errors.New("orka: command failed")

	// ErrInstrumentation indicates that instrumentation did not meet the configured success predicate.
	ErrInstrumentation = errors.New("orka: instrumentation failed")
)
