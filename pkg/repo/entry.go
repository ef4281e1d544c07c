// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"maps"

	"github.com/scriptpack/scriptpack/pkg/types"
)

// Well-known entry property keys.
const (
	// PropIgnore holds a newline-separated list of path patterns the
	// repository must not track below a directory entry.
	PropIgnore = "svn:ignore"
	// PropTargetHosts records the host a script targets; execution
	// configuration reads it later.
	PropTargetHosts = "targetHosts"
)

// EncodingUTF8 is the encoding recorded for text entries written by the
// scaffolder.
const EncodingUTF8 = "UTF-8"

// FileEntry is one file or directory in the repository.
type FileEntry struct {
	// Path is repository-root-relative, slash-separated, without a leading slash.
	Path string
	// CreatedUser owns the entry. Zero means unclaimed.
	CreatedUser types.UserID
	// FileType overrides the type derived from Path when set.
	FileType FileType
	// Properties are free-form key/value pairs; order is irrelevant.
	Properties map[string]string
	// Content is the file body. Directories have none.
	Content []byte
	// Encoding names the text encoding of Content when known.
	Encoding string
	// Description is the commit message recorded when the entry was saved.
	Description string
	// Revision is the snapshot the entry was read at.
	Revision Revision
}

// Type returns the explicit file type, or the type derived from the path.
func (e *FileEntry) Type() FileType {
	if e.FileType != "" {
		return e.FileType
	}
	return TypeForPath(e.Path)
}

// IsDir reports whether the entry is a directory.
func (e *FileEntry) IsDir() bool { return e.Type() == TypeDir }

// Property returns the named property, or "" when unset.
func (e *FileEntry) Property(key string) string {
	if e.Properties == nil {
		return ""
	}
	return e.Properties[key]
}

// SetProperty sets a property, allocating the map on first use.
func (e *FileEntry) SetProperty(key, value string) {
	if e.Properties == nil {
		e.Properties = make(map[string]string)
	}
	e.Properties[key] = value
}

// Clone returns a deep copy of the entry.
func (e FileEntry) Clone() FileEntry {
	c := e
	if e.Properties != nil {
		c.Properties = maps.Clone(e.Properties)
	}
	if e.Content != nil {
		c.Content = append([]byte(nil), e.Content...)
	}
	return c
}
