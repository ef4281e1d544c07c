// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/scriptpack/scriptpack/internal/issue"
	"github.com/scriptpack/scriptpack/pkg/types"
)

// probeTimeout bounds availability checks against a hung daemon.
const probeTimeout = 10 * time.Second

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// Tests inject a helper-process implementation.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc adjusts a mount before it is rendered as a -v argument.
	VolumeFormatFunc func(VolumeMount) VolumeMount

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine implements the CLI plumbing shared by Docker and Podman.
	// Engine-specific methods (Available, Version, ImageExists) live on the
	// concrete types.
	BaseCLIEngine struct {
		name            string
		binaryPath      string
		execCommand     ExecCommandFunc
		volumeFormatter VolumeFormatFunc
		pullBackoff     time.Duration
	}
)

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.name = name }
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.execCommand = fn }
}

// WithVolumeFormatter sets a custom volume formatter. Podman uses it to add
// SELinux labels.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.volumeFormatter = fn }
}

// WithPullBackoff overrides the base delay between pull attempts.
func WithPullBackoff(d time.Duration) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.pullBackoff = d }
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:      binaryPath,
		execCommand:     exec.CommandContext,
		volumeFormatter: func(v VolumeMount) VolumeMount { return v },
		pullBackoff:     pullBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the path to the engine binary ("" when not found).
func (e *BaseCLIEngine) BinaryPath() string { return e.binaryPath }

// RunArgs constructs arguments for a container run command.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	for _, k := range slices.Sorted(maps.Keys(opts.Env)) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}
	for _, v := range opts.Volumes {
		args = append(args, "-v", e.volumeFormatter(v).String())
	}

	args = append(args, opts.Image)
	return append(args, opts.Command...)
}

// CreateCommand creates an exec.Cmd for the given arguments.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	if err := e.CreateCommand(ctx, args...).Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out.String(), nil
}

// probe reports whether the engine answers args within probeTimeout.
func (e *BaseCLIEngine) probe(args ...string) bool {
	if e.binaryPath == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return e.CreateCommand(ctx, args...).Run() == nil
}

// versionOf runs a version query and trims its output.
func (e *BaseCLIEngine) versionOf(ctx context.Context, args ...string) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", e.name, err)
	}
	return strings.TrimSpace(out), nil
}

// Run runs a command in a container and returns the result.
// A non-zero exit code is captured in RunResult.ExitCode (not returned as error).
// Only infrastructure failures (binary not found, etc.) set RunResult.Error.
func (e *BaseCLIEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if e.binaryPath == "" {
		return nil, &EngineNotAvailableError{Engine: e.name, Reason: "binary not found in PATH"}
	}

	cmd := e.CreateCommand(ctx, e.RunArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	result := &RunResult{}
	err := cmd.Run()
	code, ok := types.ExitCodeOf(err)
	result.ExitCode = code
	if !ok {
		result.Error = runContainerError(e.name, opts, err)
	}
	return result, nil
}

// runContainerError creates an actionable error for container start failures.
func runContainerError(engine string, opts RunOptions, cause error) error {
	return issue.NewErrorContext().
		WithOperation("run container").
		WithResource(opts.Image).
		WithSuggestion("Verify the image exists (try: " + engine + " images)").
		WithSuggestion("Check that the bundle directory exists on the host").
		WithSuggestion("Set resolver.mode to \"native\" to use a locally installed build tool").
		Wrap(cause).
		BuildError()
}
