// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the scriptpack command line interface.
//
// Commands are built on an App, which owns configuration loading and the
// repository and handler wiring. Tests construct an App with their own
// Dependencies and drive the cobra tree returned by NewRootCommand.
package cmd
