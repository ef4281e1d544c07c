// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/scriptpack/scriptpack/pkg/repo"
)

const (
	// metaDir holds repository bookkeeping and is hidden from listings.
	metaDir = ".scriptpack"
	// metaFile is the sidecar path, relative to the owner's repository.
	metaFile = metaDir + "/properties.toml"
)

type (
	// sidecar is the on-disk form of the per-entry metadata git cannot hold.
	sidecar struct {
		Entries map[string]entryMeta `toml:"entries"`
	}

	entryMeta struct {
		Type        string            `toml:"type,omitempty"`
		Encoding    string            `toml:"encoding,omitempty"`
		Description string            `toml:"description,omitempty"`
		Properties  map[string]string `toml:"properties,omitempty"`
	}
)

func newSidecar() *sidecar {
	return &sidecar{Entries: make(map[string]entryMeta)}
}

func parseSidecar(data []byte) (*sidecar, error) {
	s := newSidecar()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", metaFile, err)
	}
	if s.Entries == nil {
		s.Entries = make(map[string]entryMeta)
	}
	return s, nil
}

func (s *sidecar) marshal() ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", metaFile, err)
	}
	return data, nil
}

// record stores the metadata of e, dropping the entry when it carries none.
func (s *sidecar) record(e *repo.FileEntry) {
	m := entryMeta{
		Encoding:    e.Encoding,
		Description: e.Description,
		Properties:  e.Properties,
	}
	if e.FileType != "" {
		m.Type = string(e.FileType)
	}
	if m.Type == "" && m.Encoding == "" && m.Description == "" && len(m.Properties) == 0 {
		delete(s.Entries, e.Path)
		return
	}
	s.Entries[e.Path] = m
}

// apply copies recorded metadata onto e.
func (m entryMeta) apply(e *repo.FileEntry) {
	if m.Type != "" {
		e.FileType = repo.FileType(m.Type)
	}
	e.Encoding = m.Encoding
	e.Description = m.Description
	for k, v := range m.Properties {
		e.SetProperty(k, v)
	}
}

// ignoredBy returns the directory whose svn:ignore list excludes p. As in
// Subversion, patterns match the name of direct children only.
func (s *sidecar) ignoredBy(p string) (string, bool) {
	for d := repo.Dir(p); ; d = repo.Dir(d) {
		if m, ok := s.Entries[d]; ok {
			if patterns := m.Properties[repo.PropIgnore]; patterns != "" {
				child := firstSegment(strings.TrimPrefix(p, d+"/"))
				if matchesAny(patterns, child) {
					return d, true
				}
			}
		}
		if d == "" {
			return "", false
		}
	}
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

func matchesAny(patterns, name string) bool {
	for pattern := range strings.SplitSeq(patterns, "\n") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
