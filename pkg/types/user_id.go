// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidUserID is the sentinel error wrapped by InvalidUserIDError.
var ErrInvalidUserID = errors.New("invalid user id")

type (
	// UserID identifies the owner of repository entries. The zero value means
	// "no owner": unclaimed or template entries carry it.
	UserID string

	// InvalidUserIDError is returned when a UserID contains whitespace or
	// path separators.
	InvalidUserIDError struct {
		Value UserID
	}
)

// String returns the string representation of the UserID.
func (u UserID) String() string { return string(u) }

// IsZero reports whether the UserID is unset.
func (u UserID) IsZero() bool { return u == "" }

// Validate returns an error if the UserID is empty, contains whitespace, or
// contains a path separator. Owner ids are used as storage directory names.
func (u UserID) Validate() error {
	s := string(u)
	if s == "" || s == "." || s == ".." {
		return &InvalidUserIDError{Value: u}
	}
	if strings.ContainsAny(s, `/\`) || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return &InvalidUserIDError{Value: u}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidUserIDError) Error() string {
	return fmt.Sprintf("invalid user id %q: must be a non-empty name without whitespace or path separators", e.Value)
}

// Unwrap returns ErrInvalidUserID for errors.Is() compatibility.
func (e *InvalidUserIDError) Unwrap() error { return ErrInvalidUserID }
