// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/scriptpack/scriptpack/pkg/types"
)

// ExitError carries the process status out of a RunE handler. A nil Err
// means the command already printed its own report, so renderError stays
// quiet and only the status reaches the shell.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func (e *ExitError) reported() bool { return e.Err == nil }

// exitStatus maps a command error to the status Execute exits with.
func exitStatus(err error) types.ExitCode {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil && !exitErr.Code.IsSuccess() {
		return exitErr.Code
	}
	return types.ExitCodeFailure
}
