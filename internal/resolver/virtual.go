// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/scriptpack/scriptpack/pkg/types"
)

// VirtualInvoker interprets a shell command line with the embedded POSIX
// shell. The goal and arguments are passed as positional parameters, so a
// command of `mvn "$@"` behaves like NativeInvoker.
type VirtualInvoker struct {
	command string
}

// NewVirtualInvoker creates an invoker for command.
func NewVirtualInvoker(command string) *VirtualInvoker {
	return &VirtualInvoker{command: command}
}

// Run implements Invoker.
func (v *VirtualInvoker) Run(ctx context.Context, goal string, args []string, workDir string, stdout, stderr io.Writer) (types.ExitCode, error) {
	prog, err := parseCommand(v.command)
	if err != nil {
		return types.ExitCodeNotStarted, err
	}

	params := append([]string{"--", goal}, args...)
	runner, err := interp.New(
		interp.Dir(workDir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderr),
		interp.Params(params...),
	)
	if err != nil {
		return types.ExitCodeNotStarted, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return types.ExitCode(status), nil
		}
		return types.ExitCodeNotStarted, fmt.Errorf("resolver command failed: %w", err)
	}
	return 0, nil
}

func parseCommand(command string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "resolver.command")
	if err != nil {
		return nil, fmt.Errorf("resolver command syntax error: %w", err)
	}
	return prog, nil
}
