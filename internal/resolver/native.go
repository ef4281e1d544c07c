// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/scriptpack/scriptpack/pkg/types"
)

// NativeInvoker runs the build tool found on the host PATH.
type NativeInvoker struct {
	binary string
}

// NewNativeInvoker creates an invoker for binary.
func NewNativeInvoker(binary string) *NativeInvoker {
	return &NativeInvoker{binary: binary}
}

// Run implements Invoker.
func (n *NativeInvoker) Run(ctx context.Context, goal string, args []string, workDir string, stdout, stderr io.Writer) (types.ExitCode, error) {
	cmd := exec.CommandContext(ctx, n.binary, append([]string{goal}, args...)...)
	cmd.Dir = workDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	code, ok := types.ExitCodeOf(err)
	if !ok {
		return code, fmt.Errorf("failed to start %s: %w", n.binary, err)
	}
	return code, nil
}
