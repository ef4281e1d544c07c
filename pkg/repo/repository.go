// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/scriptpack/scriptpack/pkg/types"
)

// ErrNotFound is the sentinel error wrapped by NotFoundError.
var ErrNotFound = errors.New("file entry not found")

type (
	// Repository is the query/save facade over a versioned file store.
	// Implementations must be safe for concurrent use.
	Repository interface {
		// FindAll lists entries below prefix at rev, sorted by path. With
		// recursive false only direct children are returned. A missing
		// prefix yields an empty list, not an error.
		FindAll(ctx context.Context, owner types.UserID, prefix string, rev Revision, recursive bool) ([]FileEntry, error)
		// HasFileEntry reports whether path exists at the latest revision.
		HasFileEntry(ctx context.Context, owner types.UserID, path string) bool
		// FindOne returns the entry at path and rev, or a *NotFoundError.
		FindOne(ctx context.Context, owner types.UserID, path string, rev Revision) (FileEntry, error)
		// Save stores entry as a new revision. encoding is recorded for text
		// content and may be empty.
		Save(ctx context.Context, owner types.UserID, entry FileEntry, encoding string) error
		// HeadRevision returns the newest concrete revision for owner.
		HeadRevision(ctx context.Context, owner types.UserID) (Revision, error)
	}

	// NotFoundError reports a path that does not exist at a revision.
	NotFoundError struct {
		Owner    types.UserID
		Path     string
		Revision Revision
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in repository of %q at revision %s", e.Path, e.Owner, e.Revision)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// HasFileEntryAt reports whether path exists at rev. For the latest revision
// it defers to HasFileEntry; otherwise it probes with FindOne.
func HasFileEntryAt(ctx context.Context, r Repository, owner types.UserID, path string, rev Revision) bool {
	if rev.IsLatest() {
		return r.HasFileEntry(ctx, owner, path)
	}
	_, err := r.FindOne(ctx, owner, path, rev)
	return err == nil
}
