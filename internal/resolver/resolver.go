// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/scriptpack/scriptpack/internal/container"
	"github.com/scriptpack/scriptpack/pkg/types"
)

const (
	// ModeNative runs the build tool installed on the host.
	ModeNative Mode = "native"
	// ModeContainer runs the build tool inside a container.
	ModeContainer Mode = "container"
	// ModeVirtual interprets Config.Command with the embedded shell.
	ModeVirtual Mode = "virtual"

	// DefaultBinary is the build tool invoked in native and container mode.
	DefaultBinary = "mvn"
	// DefaultImage is the container image used in container mode.
	DefaultImage = "maven:3-eclipse-temurin-21"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid resolver mode")

type (
	// Invoker runs one resolver goal. A non-zero exit status is reported
	// through the returned code with a nil error; the error is reserved for
	// failures to start the tool, in which case the code is
	// types.ExitCodeNotStarted.
	Invoker interface {
		Run(ctx context.Context, goal string, args []string, workDir string, stdout, stderr io.Writer) (types.ExitCode, error)
	}

	// Factory builds a fresh Invoker. Invokers are not shared between
	// materializations.
	Factory func() (Invoker, error)

	// Mode selects the invoker implementation.
	Mode string

	// InvalidModeError is returned for an unknown Mode.
	InvalidModeError struct {
		Value Mode
	}

	// Config selects and parameterizes the invoker.
	Config struct {
		Mode Mode
		// Binary is the tool name or path for native and container modes.
		Binary string
		// Image is the container image for container mode.
		Image string
		// Engine is the preferred container engine.
		Engine container.EngineType
		// CacheDir is bind-mounted as the local artifact cache in container
		// mode when set.
		CacheDir string
		// Command is the shell command line for virtual mode. The goal and
		// its arguments are available as "$@".
		Command string
	}
)

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid resolver mode %q (must be one of: native, container, virtual)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// Validate returns an error if the mode is unknown.
func (m Mode) Validate() error {
	switch m {
	case ModeNative, ModeContainer, ModeVirtual:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// CommandLine renders goal and args the way they are logged.
func CommandLine(binary, goal string, args []string) string {
	return strings.Join(append([]string{binary, goal}, args...), " ")
}

// NewFactory validates cfg and returns a factory for it. Container engines
// are detected lazily, once per invoker.
func NewFactory(cfg Config) (Factory, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeNative
	}
	if err := cfg.Mode.Validate(); err != nil {
		return nil, err
	}
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Image == "" {
		cfg.Image = DefaultImage
	}
	if cfg.Engine == "" {
		cfg.Engine = container.EngineTypePodman
	}

	switch cfg.Mode {
	case ModeContainer:
		return func() (Invoker, error) {
			engine, err := container.NewEngine(cfg.Engine)
			if err != nil {
				return nil, err
			}
			return NewContainerInvoker(engine, cfg.Image, cfg.Binary, cfg.CacheDir), nil
		}, nil
	case ModeVirtual:
		if strings.TrimSpace(cfg.Command) == "" {
			return nil, errors.New("resolver.command must be set in virtual mode")
		}
		if _, err := parseCommand(cfg.Command); err != nil {
			return nil, err
		}
		return func() (Invoker, error) { return NewVirtualInvoker(cfg.Command), nil }, nil
	default:
		return func() (Invoker, error) { return NewNativeInvoker(cfg.Binary), nil }, nil
	}
}
