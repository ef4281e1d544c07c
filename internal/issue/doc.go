// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of user-facing
// guidance rendered as terminal markdown with glamour.
//
// ActionableError carries the failed operation, the resource involved,
// short suggestions, and optionally an Id into the catalog. The CLI prints
// Format(verbose) and, in verbose mode, the rendered catalog entry.
package issue
