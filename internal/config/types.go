// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"

	// BackendGit stores each user's scripts in a git repository.
	BackendGit RepositoryBackend = "git"
	// BackendMemory keeps scripts in process memory; nothing is persisted.
	BackendMemory RepositoryBackend = "memory"

	// ResolverNative runs the build tool installed on the host.
	// Defined locally to avoid coupling config to internal/resolver.
	ResolverNative ResolverMode = "native"
	// ResolverContainer runs the build tool in a container.
	ResolverContainer ResolverMode = "container"
	// ResolverVirtual interprets resolver.command with the embedded shell.
	ResolverVirtual ResolverMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidRepositoryBackend is returned when a RepositoryBackend value is not recognized.
	ErrInvalidRepositoryBackend = errors.New("invalid repository backend")
	// ErrInvalidResolverMode is returned when a ResolverMode value is not recognized.
	ErrInvalidResolverMode = errors.New("invalid resolver mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidResolverConfig is the sentinel error wrapped by InvalidResolverConfigError.
	ErrInvalidResolverConfig = errors.New("invalid resolver config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container runtime to use.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// RepositoryBackend selects the script repository implementation.
	RepositoryBackend string

	// InvalidRepositoryBackendError is returned when a RepositoryBackend value is not recognized.
	InvalidRepositoryBackendError struct {
		Value RepositoryBackend
	}

	// ResolverMode selects how dependencies are resolved. The CLI converts it
	// to resolver.Mode at the boundary.
	ResolverMode string

	// InvalidResolverModeError is returned when a ResolverMode value is not recognized.
	InvalidResolverModeError struct {
		Value ResolverMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidResolverConfigError collects resolver field errors.
	InvalidResolverConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields. It
	// collects field-level errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// User is the repository owner commands act as. Empty means the
		// login name of the current user.
		User string `json:"user" mapstructure:"user"`
		// ContainerEngine specifies whether to use "podman" or "docker".
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// Repository configures script storage.
		Repository RepositoryConfig `json:"repository" mapstructure:"repository"`
		// Resolver configures dependency resolution for Maven projects.
		Resolver ResolverConfig `json:"resolver" mapstructure:"resolver"`
		// Templates configures project scaffolding.
		Templates TemplatesConfig `json:"templates" mapstructure:"templates"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// RepositoryConfig configures script storage.
	RepositoryConfig struct {
		// Root is the directory holding one repository per user. Empty means
		// the "repository" directory under DataDir.
		Root    string            `json:"root" mapstructure:"root"`
		Backend RepositoryBackend `json:"backend" mapstructure:"backend"`
	}

	// ResolverConfig configures the dependency resolver.
	ResolverConfig struct {
		Mode ResolverMode `json:"mode" mapstructure:"mode"`
		// Binary is the build tool for native and container modes.
		Binary string `json:"binary" mapstructure:"binary"`
		// Image is the container image for container mode.
		Image string `json:"image" mapstructure:"image"`
		// Command is the shell command line for virtual mode.
		Command string `json:"command" mapstructure:"command"`
		// CacheDir is mounted as the artifact cache in container mode.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
	}

	// TemplatesConfig configures project scaffolding.
	TemplatesConfig struct {
		// Dir overrides the built-in templates with <Dir>/<strategy key>/.
		Dir string `json:"dir" mapstructure:"dir"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// Validate returns an error if the engine is not podman or docker.
func (ce ContainerEngine) Validate() error {
	switch ce {
	case ContainerEnginePodman, ContainerEngineDocker:
		return nil
	default:
		return &InvalidContainerEngineError{Value: ce}
	}
}

// Error implements the error interface.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: podman, docker)", e.Value)
}

// Unwrap returns ErrInvalidContainerEngine for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// String returns the string representation of the RepositoryBackend.
func (b RepositoryBackend) String() string { return string(b) }

// Validate returns an error if the backend is unknown.
func (b RepositoryBackend) Validate() error {
	switch b {
	case BackendGit, BackendMemory:
		return nil
	default:
		return &InvalidRepositoryBackendError{Value: b}
	}
}

// Error implements the error interface.
func (e *InvalidRepositoryBackendError) Error() string {
	return fmt.Sprintf("invalid repository backend %q (valid: git, memory)", e.Value)
}

// Unwrap returns ErrInvalidRepositoryBackend for errors.Is() compatibility.
func (e *InvalidRepositoryBackendError) Unwrap() error { return ErrInvalidRepositoryBackend }

// String returns the string representation of the ResolverMode.
func (m ResolverMode) String() string { return string(m) }

// Validate returns an error if the mode is unknown.
func (m ResolverMode) Validate() error {
	switch m {
	case ResolverNative, ResolverContainer, ResolverVirtual:
		return nil
	default:
		return &InvalidResolverModeError{Value: m}
	}
}

// Error implements the error interface.
func (e *InvalidResolverModeError) Error() string {
	return fmt.Sprintf("invalid resolver mode %q (valid: native, container, virtual)", e.Value)
}

// Unwrap returns ErrInvalidResolverMode for errors.Is() compatibility.
func (e *InvalidResolverModeError) Unwrap() error { return ErrInvalidResolverMode }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns an error if the scheme is not auto, dark or light.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks the mode and the fields it requires. Virtual mode needs
// a command; binary and image must not be whitespace-only.
func (c ResolverConfig) Validate() error {
	var errs []error
	if err := c.Mode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Mode == ResolverVirtual && strings.TrimSpace(c.Command) == "" {
		errs = append(errs, errors.New("resolver.command must be set when resolver.mode is virtual"))
	}
	if c.Binary != "" && strings.TrimSpace(c.Binary) == "" {
		errs = append(errs, errors.New("resolver.binary must not be whitespace-only"))
	}
	if c.Image != "" && strings.TrimSpace(c.Image) == "" {
		errs = append(errs, errors.New("resolver.image must not be whitespace-only"))
	}
	if len(errs) > 0 {
		return &InvalidResolverConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidResolverConfigError) Error() string {
	return fmt.Sprintf("invalid resolver config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidResolverConfig and the field errors.
func (e *InvalidResolverConfigError) Unwrap() []error {
	return append([]error{ErrInvalidResolverConfig}, e.FieldErrors...)
}

// Validate checks every section and collects all field errors.
func (c Config) Validate() error {
	var errs []error
	if err := c.ContainerEngine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Repository.Backend.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Resolver.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.ContainsAny(c.User, "/\\ \t") {
		errs = append(errs, fmt.Errorf("user %q must not contain whitespace or path separators", c.User))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEnginePodman,
		Repository: RepositoryConfig{
			Backend: BackendGit,
		},
		Resolver: ResolverConfig{
			Mode:   ResolverNative,
			Binary: "mvn",
			Image:  "maven:3-eclipse-temurin-21",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
