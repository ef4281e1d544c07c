// SPDX-License-Identifier: MPL-2.0

// Package container drives Docker or Podman through their command line
// interfaces. It is used to run the dependency resolver inside a throwaway
// container when the build tool is not installed on the host.
//
// NewEngine selects an engine with fallback to the other one;
// AutoDetectEngine tries Podman first.
package container
