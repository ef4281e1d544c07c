// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/scriptpack/scriptpack/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "scriptpack"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "SCRIPTPACK"

	// maxConfigFileSize bounds the config file read into memory.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// configDirOverride allows tests to override the config directory, since
// os.UserHomeDir() does not honor HOME on every platform.
var configDirOverride string

// SetConfigDirOverride sets a custom config directory path for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// ConfigDir returns the scriptpack configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// DataDir returns the directory for persistent data such as the script
// repositories: %LOCALAPPDATA% on Windows, ~/Library/Application Support on
// macOS, and $XDG_DATA_HOME (defaulting to ~/.local/share) elsewhere.
func DataDir() (string, error) {
	var dataDir string
	switch runtime.GOOS {
	case "windows":
		dataDir = os.Getenv("LOCALAPPDATA")
		if dataDir == "" {
			dataDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, "Library", "Application Support")
	default:
		dataDir = os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(dataDir, AppName), nil
}

// RepositoryRoot returns the configured repository root, or the
// "repository" directory under DataDir when none is set.
func (c *Config) RepositoryRoot() (string, error) {
	if c.Repository.Root != "" {
		return c.Repository.Root, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "repository"), nil
}

// newViper returns a Viper instance with defaults and environment
// overrides registered for every key.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("user", defaults.User)
	v.SetDefault("container_engine", defaults.ContainerEngine)
	v.SetDefault("repository.root", defaults.Repository.Root)
	v.SetDefault("repository.backend", defaults.Repository.Backend)
	v.SetDefault("resolver.mode", defaults.Resolver.Mode)
	v.SetDefault("resolver.binary", defaults.Resolver.Binary)
	v.SetDefault("resolver.image", defaults.Resolver.Image)
	v.SetDefault("resolver.command", defaults.Resolver.Command)
	v.SetDefault("resolver.cache_dir", defaults.Resolver.CacheDir)
	v.SetDefault("templates.dir", defaults.Templates.Dir)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// resolveConfigPath returns the file to load, or "" when defaults apply.
// An explicit ConfigFilePath must exist.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'scriptpack config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cuePath) {
		return cuePath, nil
	}
	localCuePath := ConfigFileName + "." + ConfigFileExt
	if fileExists(localCuePath) {
		return localCuePath, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()
	path, err := resolveConfigPath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables").
			Wrap(err).
			BuildError()
	}
	return &cfg, path, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper. Config decodes to a map
// rather than a struct so that Viper keeps the defaults for missing keys.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DefaultConfigPath returns where CreateDefaultConfig writes.
func DefaultConfigPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// CreateDefaultConfig writes the default configuration to the config
// directory and returns its path. An existing file is kept unless force is
// set.
func CreateDefaultConfig(force bool) (string, error) {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if !force && fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// scriptpack configuration\n")
	sb.WriteString("// Every key can be overridden with " + EnvPrefix + "_<KEY>, dots replaced by underscores.\n\n")

	if cfg.User != "" {
		fmt.Fprintf(&sb, "user: %q\n", cfg.User)
	}
	fmt.Fprintf(&sb, "container_engine: %q\n", cfg.ContainerEngine)

	sb.WriteString("\nrepository: {\n")
	if cfg.Repository.Root != "" {
		fmt.Fprintf(&sb, "\troot: %q\n", cfg.Repository.Root)
	}
	fmt.Fprintf(&sb, "\tbackend: %q\n", cfg.Repository.Backend)
	sb.WriteString("}\n")

	sb.WriteString("\nresolver: {\n")
	fmt.Fprintf(&sb, "\tmode: %q\n", cfg.Resolver.Mode)
	if cfg.Resolver.Binary != "" {
		fmt.Fprintf(&sb, "\tbinary: %q\n", cfg.Resolver.Binary)
	}
	if cfg.Resolver.Image != "" {
		fmt.Fprintf(&sb, "\timage: %q\n", cfg.Resolver.Image)
	}
	if cfg.Resolver.Command != "" {
		fmt.Fprintf(&sb, "\tcommand: %q\n", cfg.Resolver.Command)
	}
	if cfg.Resolver.CacheDir != "" {
		fmt.Fprintf(&sb, "\tcache_dir: %q\n", cfg.Resolver.CacheDir)
	}
	sb.WriteString("}\n")

	if cfg.Templates.Dir != "" {
		fmt.Fprintf(&sb, "\ntemplates: dir: %q\n", cfg.Templates.Dir)
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
