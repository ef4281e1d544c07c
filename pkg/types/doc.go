// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the repository, handler
// and resolver packages. Each type carries its own validation and a typed
// error that unwraps to a package-level sentinel.
//
// This package is a leaf dependency: it imports only the standard library.
package types
