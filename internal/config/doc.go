// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as
// the file format.
//
// Configuration is loaded from config.cue in the platform config directory
// ($XDG_CONFIG_HOME/scriptpack on Linux, ~/Library/Application Support/scriptpack
// on macOS, %APPDATA%\scriptpack on Windows), falling back to ./config.cue.
// The file is validated against the embedded #Config schema before it is
// merged over the defaults. Every key can be overridden from the environment
// with the SCRIPTPACK_ prefix, dots replaced by underscores
// (SCRIPTPACK_RESOLVER_MODE=virtual).
package config
