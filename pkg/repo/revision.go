// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LatestRevision is the sentinel revision meaning "whatever is newest at
// read time". Callers that need a consistent view across several reads
// resolve it once with [Repository.HeadRevision].
const LatestRevision Revision = -1

// ErrInvalidRevision is the sentinel error wrapped by InvalidRevisionError.
var ErrInvalidRevision = errors.New("invalid revision")

type (
	// Revision identifies an immutable repository snapshot. Revision 0 is the
	// empty repository; every save increments the head revision by one.
	Revision int64

	// InvalidRevisionError is returned when a revision string cannot be parsed.
	InvalidRevisionError struct {
		Value string
	}
)

// IsLatest reports whether r is the "latest" sentinel.
func (r Revision) IsLatest() bool { return r < 0 }

// String returns "latest" for the sentinel and the decimal number otherwise.
func (r Revision) String() string {
	if r.IsLatest() {
		return "latest"
	}
	return strconv.FormatInt(int64(r), 10)
}

// ParseRevision parses a CLI revision argument. The empty string, "latest"
// and "head" (any case) select [LatestRevision].
func ParseRevision(s string) (Revision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest", "head":
		return LatestRevision, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, &InvalidRevisionError{Value: s}
	}
	return Revision(n), nil
}

// Error implements the error interface.
func (e *InvalidRevisionError) Error() string {
	return fmt.Sprintf("invalid revision %q: expected a non-negative number or \"latest\"", e.Value)
}

// Unwrap returns ErrInvalidRevision for errors.Is() compatibility.
func (e *InvalidRevisionError) Unwrap() error { return ErrInvalidRevision }
