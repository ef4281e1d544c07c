// SPDX-License-Identifier: MPL-2.0

// Package resolver runs the external dependency resolver (Maven by default)
// against a staged bundle directory.
//
// Three invokers exist: NativeInvoker executes a host binary,
// ContainerInvoker runs the same tool inside a Docker or Podman container
// with the bundle bind-mounted, and VirtualInvoker interprets a configured
// shell command line in-process. Callers obtain a fresh Invoker per run from
// a Factory.
package resolver
