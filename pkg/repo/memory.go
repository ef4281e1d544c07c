// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/scriptpack/scriptpack/pkg/types"
)

type (
	// MemoryRepository is an in-process [Repository]. Each owner has an
	// independent history; every Save appends one snapshot.
	MemoryRepository struct {
		mu     sync.RWMutex
		owners map[types.UserID][]snapshot
	}

	// snapshot maps normalized path to entry. Index i of an owner's history
	// is revision i; revision 0 is always empty.
	snapshot map[string]FileEntry
)

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{owners: make(map[types.UserID][]snapshot)}
}

// FindAll implements [Repository].
func (m *MemoryRepository) FindAll(ctx context.Context, owner types.UserID, prefix string, rev Revision, recursive bool) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, resolved, err := m.snapshotAt(owner, rev)
	if err != nil {
		return nil, err
	}
	dir := Normalize(prefix)
	var out []FileEntry
	for _, p := range slices.Sorted(maps.Keys(snap)) {
		if isUnder(p, dir, recursive) {
			out = append(out, m.read(owner, snap[p], resolved))
		}
	}
	return out, nil
}

// HasFileEntry implements [Repository].
func (m *MemoryRepository) HasFileEntry(ctx context.Context, owner types.UserID, path string) bool {
	if ctx.Err() != nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, _, err := m.snapshotAt(owner, LatestRevision)
	if err != nil {
		return false
	}
	_, ok := snap[Normalize(path)]
	return ok
}

// FindOne implements [Repository].
func (m *MemoryRepository) FindOne(ctx context.Context, owner types.UserID, path string, rev Revision) (FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return FileEntry{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, resolved, err := m.snapshotAt(owner, rev)
	if err != nil {
		return FileEntry{}, err
	}
	p := Normalize(path)
	e, ok := snap[p]
	if !ok {
		return FileEntry{}, &NotFoundError{Owner: owner, Path: p, Revision: rev}
	}
	return m.read(owner, e, resolved), nil
}

// Save implements [Repository]. Missing parent directories are created
// implicitly in the same revision.
func (m *MemoryRepository) Save(ctx context.Context, owner types.UserID, entry FileEntry, encoding string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := owner.Validate(); err != nil {
		return err
	}
	p := Normalize(entry.Path)
	if p == "" {
		return fmt.Errorf("cannot save the repository root")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.history(owner)
	next := maps.Clone(history[len(history)-1])

	for d := Dir(p); d != ""; d = Dir(d) {
		if existing, ok := next[d]; ok {
			if !existing.IsDir() {
				return fmt.Errorf("cannot save %s: %s is a file", p, d)
			}
			continue
		}
		next[d] = FileEntry{Path: d, FileType: TypeDir}
	}

	stored := entry.Clone()
	stored.Path = p
	stored.CreatedUser = owner
	if encoding != "" {
		stored.Encoding = encoding
	}
	if stored.IsDir() {
		stored.Content = nil
	}
	next[p] = stored

	m.owners[owner] = append(history, next)
	return nil
}

// HeadRevision implements [Repository].
func (m *MemoryRepository) HeadRevision(ctx context.Context, owner types.UserID) (Revision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Revision(max(len(m.owners[owner])-1, 0)), nil
}

// history returns the owner's snapshots, seeding the empty revision 0.
// Callers must hold the write lock.
func (m *MemoryRepository) history(owner types.UserID) []snapshot {
	h, ok := m.owners[owner]
	if !ok {
		h = []snapshot{{}}
		m.owners[owner] = h
	}
	return h
}

// snapshotAt resolves rev for owner. Callers must hold a lock.
func (m *MemoryRepository) snapshotAt(owner types.UserID, rev Revision) (snapshot, Revision, error) {
	h := m.owners[owner]
	if len(h) == 0 {
		if rev.IsLatest() || rev == 0 {
			return snapshot{}, 0, nil
		}
		return nil, 0, fmt.Errorf("revision %s does not exist for %q", rev, owner)
	}
	if rev.IsLatest() {
		return h[len(h)-1], Revision(len(h) - 1), nil
	}
	if int(rev) >= len(h) {
		return nil, 0, fmt.Errorf("revision %s does not exist for %q (head is %d)", rev, owner, len(h)-1)
	}
	return h[rev], rev, nil
}

func (m *MemoryRepository) read(owner types.UserID, e FileEntry, rev Revision) FileEntry {
	out := e.Clone()
	out.CreatedUser = owner
	out.Revision = rev
	return out
}
