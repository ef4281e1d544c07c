// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/scriptpack/scriptpack/pkg/types"
)

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
)

// ErrNoEngineAvailable is the sentinel error wrapped by EngineNotAvailableError.
var ErrNoEngineAvailable = errors.New("no container engine available")

type (
	// Engine defines the container operations the resolver needs.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available checks if the engine is usable on this host.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Run runs a command in a new container. A non-zero exit status is
		// reported through RunResult, not as an error.
		Run(ctx context.Context, opts RunOptions) (*RunResult, error)
		// ImageExists checks if an image is present locally.
		ImageExists(ctx context.Context, image string) (bool, error)
		// Pull fetches an image, retrying transient failures.
		Pull(ctx context.Context, image string) error
	}

	// EngineType identifies the container engine type.
	EngineType string

	// RunOptions contains options for running a container.
	RunOptions struct {
		// Image is the image to run.
		Image string
		// Command is the command and its arguments.
		Command []string
		// WorkDir is the working directory inside the container.
		WorkDir string
		// Env contains environment variables.
		Env map[string]string
		// Volumes are bind mounts.
		Volumes []VolumeMount
		// User runs the process as "uid:gid" when set, so files written to
		// bind mounts stay owned by the caller.
		User string
		// Remove deletes the container after it exits.
		Remove bool
		Stdout io.Writer
		Stderr io.Writer
	}

	// RunResult contains the result of running a container.
	RunResult struct {
		// ExitCode is the exit status of the containerized command.
		ExitCode types.ExitCode
		// Error is set when the engine itself could not be started.
		Error error
	}

	// EngineNotAvailableError is returned when no usable engine is found.
	EngineNotAvailableError struct {
		Engine string
		Reason string
	}
)

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// Unwrap returns ErrNoEngineAvailable for errors.Is() compatibility.
func (e *EngineNotAvailableError) Unwrap() error { return ErrNoEngineAvailable }

// Validate checks that the options describe a runnable container.
func (o RunOptions) Validate() error {
	if o.Image == "" {
		return errors.New("container image must not be empty")
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NewEngine creates an engine of the preferred type, falling back to the
// other engine when the preferred one is unavailable.
func NewEngine(preferredType EngineType) (Engine, error) {
	var primary, fallback Engine
	switch preferredType {
	case EngineTypePodman:
		primary, fallback = NewPodmanEngine(), NewDockerEngine()
	case EngineTypeDocker:
		primary, fallback = NewDockerEngine(), NewPodmanEngine()
	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}

	if primary.Available() {
		return primary, nil
	}
	if fallback.Available() {
		return fallback, nil
	}
	return nil, &EngineNotAvailableError{
		Engine: string(preferredType),
		Reason: fmt.Sprintf("%s is not installed or not accessible, and %s fallback is also not available", primary.Name(), fallback.Name()),
	}
}

// AutoDetectEngine tries Podman first, then Docker.
func AutoDetectEngine() (Engine, error) {
	if podman := NewPodmanEngine(); podman.Available() {
		return podman, nil
	}
	if docker := NewDockerEngine(); docker.Available() {
		return docker, nil
	}
	return nil, &EngineNotAvailableError{
		Engine: "any",
		Reason: "no container engine (podman or docker) is available on this system",
	}
}
