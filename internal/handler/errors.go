// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHandler is returned by Registry.Find when no handler applies.
	ErrNoHandler = errors.New("no handler can package this script")

	// ErrScaffold is the sentinel error wrapped by ScaffoldError.
	ErrScaffold = errors.New("project scaffolding failed")

	// ErrUnsafeTarget is the sentinel error wrapped by TargetDirError.
	ErrUnsafeTarget = errors.New("refusing to clear target directory")
)

// BundleMarker is written at the root of every bundle. Its presence is what
// allows a later materialization to clear the directory.
const BundleMarker = ".scriptpack-bundle"

// TargetDirError reports a target directory Materialize will not clear.
type TargetDirError struct {
	Dir    string
	Reason string
}

func (e *TargetDirError) Error() string {
	return fmt.Sprintf("refusing to clear target directory %s: %s", e.Dir, e.Reason)
}

func (e *TargetDirError) Unwrap() error { return ErrUnsafeTarget }

// ScaffoldError reports the template or entry that stopped CreateProject.
// Entries saved before the failure are left in place.
type ScaffoldError struct {
	// File is the template-relative path or repository path that failed.
	File string
	Err  error
}

// Error implements the error interface.
func (e *ScaffoldError) Error() string {
	return fmt.Sprintf("error while saving %s: %v", e.File, e.Err)
}

// Unwrap exposes ErrScaffold and the underlying cause.
func (e *ScaffoldError) Unwrap() []error { return []error{ErrScaffold, e.Err} }
