// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

const (
	// ExitCodeFailure is the CLI status for a packaging run that produced
	// an unsuccessful bundle or a script no strategy accepts.
	ExitCodeFailure ExitCode = 1

	// ExitCodeNotStarted is reported when the dependency resolver could not
	// be started at all (binary or image missing, bad working directory). It
	// follows the shell's "command not found" status.
	ExitCodeNotStarted ExitCode = 127
)

type (
	// ExitCode is the status of a resolver process or of the CLI itself,
	// in the POSIX range 0-255. The zero value means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}

	// exitCoder is satisfied by *exec.ExitError and similar process errors.
	exitCoder interface {
		ExitCode() int
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// ExitCodeOf maps the error returned by running a child process to its exit
// status. A nil error is success. The second result is false when err does
// not carry a status, meaning the process never ran to completion, and the
// code is then ExitCodeNotStarted.
func ExitCodeOf(err error) (ExitCode, bool) {
	if err == nil {
		return 0, true
	}
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() >= 0 {
		return ExitCode(ec.ExitCode()), true
	}
	return ExitCodeNotStarted, false
}

// Validate returns an error if the ExitCode is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the status is zero.
func (c ExitCode) IsSuccess() bool { return c == 0 }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
