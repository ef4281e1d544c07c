// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

// ErrIgnored is the sentinel error wrapped by IgnoredError.
var ErrIgnored = errors.New("path is ignored")

type (
	// Repository stores each owner's files in <root>/<owner>, a plain git
	// repository with a work tree. It is safe for concurrent use.
	Repository struct {
		root  types.FilesystemPath
		mu    sync.Mutex
		repos map[types.UserID]*git.Repository
		now   func() time.Time
	}

	// IgnoredError is returned by Save when a parent directory's svn:ignore
	// list matches the path.
	IgnoredError struct {
		Path string
		Dir  string
	}
)

var _ repo.Repository = (*Repository)(nil)

// New opens (creating when needed) a git-backed repository under root.
func New(root types.FilesystemPath) (*Repository, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(string(root), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create repository root: %w", err)
	}
	return &Repository{
		root:  root,
		repos: make(map[types.UserID]*git.Repository),
		now:   time.Now,
	}, nil
}

// Root returns the storage directory.
func (r *Repository) Root() types.FilesystemPath { return r.root }

// WorkTree returns the directory holding owner's checked-out files. It may
// not exist yet.
func (r *Repository) WorkTree(owner types.UserID) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	return r.root.Join(string(owner)).String(), nil
}

// Error implements the error interface.
func (e *IgnoredError) Error() string {
	return fmt.Sprintf("%s is excluded by the %s property of %q", e.Path, repo.PropIgnore, e.Dir)
}

// Unwrap returns ErrIgnored for errors.Is() compatibility.
func (e *IgnoredError) Unwrap() error { return ErrIgnored }

// FindAll implements repo.Repository.
func (r *Repository) FindAll(ctx context.Context, owner types.UserID, prefix string, rev repo.Revision, recursive bool) ([]repo.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := r.snapshot(owner, rev)
	if err != nil {
		return nil, err
	}
	dir := repo.Normalize(prefix)
	var out []repo.FileEntry
	for _, p := range slices.Sorted(maps.Keys(entries)) {
		if under(p, dir, recursive) {
			out = append(out, entries[p])
		}
	}
	return out, nil
}

// HasFileEntry implements repo.Repository.
func (r *Repository) HasFileEntry(ctx context.Context, owner types.UserID, path string) bool {
	if ctx.Err() != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := r.snapshot(owner, repo.LatestRevision)
	if err != nil {
		return false
	}
	_, ok := entries[repo.Normalize(path)]
	return ok
}

// FindOne implements repo.Repository.
func (r *Repository) FindOne(ctx context.Context, owner types.UserID, path string, rev repo.Revision) (repo.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return repo.FileEntry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := r.snapshot(owner, rev)
	if err != nil {
		return repo.FileEntry{}, err
	}
	p := repo.Normalize(path)
	e, ok := entries[p]
	if !ok {
		return repo.FileEntry{}, &repo.NotFoundError{Owner: owner, Path: p, Revision: rev}
	}
	return e, nil
}

// HeadRevision implements repo.Repository.
func (r *Repository) HeadRevision(ctx context.Context, owner types.UserID) (repo.Revision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.open(owner, false)
	if err != nil || g == nil {
		return 0, err
	}
	chain, err := firstParentChain(g)
	if err != nil {
		return 0, err
	}
	return repo.Revision(len(chain)), nil
}

// Save implements repo.Repository. Every call produces exactly one commit
// authored by the owner.
func (r *Repository) Save(ctx context.Context, owner types.UserID, entry repo.FileEntry, encoding string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := owner.Validate(); err != nil {
		return err
	}
	p := repo.Normalize(entry.Path)
	if p == "" {
		return fmt.Errorf("cannot save the repository root")
	}
	if first := firstSegment(p); first == ".git" || first == metaDir {
		return fmt.Errorf("cannot save %s: reserved path", p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.open(owner, true)
	if err != nil {
		return err
	}
	wt, err := g.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open work tree of %q: %w", owner, err)
	}
	base := r.root.Join(string(owner))

	meta, err := readSidecarFile(base.String())
	if err != nil {
		return err
	}
	if d, ignored := meta.ignoredBy(p); ignored {
		return &IgnoredError{Path: p, Dir: d}
	}
	for d := repo.Dir(p); d != ""; d = repo.Dir(d) {
		if fi, statErr := os.Stat(base.Join(d).String()); statErr == nil && !fi.IsDir() {
			return fmt.Errorf("cannot save %s: %s is a file", p, d)
		}
	}

	stored := entry.Clone()
	stored.Path = p
	if encoding != "" {
		stored.Encoding = encoding
	}
	target := base.Join(p).String()
	if stored.IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", p, err)
		}
		// Directories only exist in the sidecar as far as git is concerned.
		stored.FileType = repo.TypeDir
	} else {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create parent of %s: %w", p, err)
		}
		if err := os.WriteFile(target, stored.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("failed to stage %s: %w", p, err)
		}
	}
	meta.record(&stored)

	data, err := meta.marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(base.Join(metaDir).String(), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", metaDir, err)
	}
	if err := os.WriteFile(base.Join(metaFile).String(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", metaFile, err)
	}
	if _, err := wt.Add(metaFile); err != nil {
		return fmt.Errorf("failed to stage %s: %w", metaFile, err)
	}

	msg := stored.Description
	if msg == "" {
		msg = "save " + p
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  string(owner),
			Email: string(owner) + "@scriptpack.local",
			When:  r.now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("failed to commit %s: %w", p, err)
	}
	slog.Debug("saved repository entry", "owner", owner, "path", p, "commit", hash.String())
	return nil
}

// open returns the owner's git repository. With create false a missing
// repository yields (nil, nil).
func (r *Repository) open(owner types.UserID, create bool) (*git.Repository, error) {
	if g, ok := r.repos[owner]; ok {
		return g, nil
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	dir := r.root.Join(string(owner)).String()
	g, err := git.PlainOpen(dir)
	switch {
	case err == nil:
	case errors.Is(err, git.ErrRepositoryNotExists):
		if !create {
			return nil, nil
		}
		if g, err = git.PlainInit(dir, false); err != nil {
			return nil, fmt.Errorf("failed to initialize repository for %q: %w", owner, err)
		}
	default:
		return nil, fmt.Errorf("failed to open repository for %q: %w", owner, err)
	}
	r.repos[owner] = g
	return g, nil
}

// snapshot reads every entry visible at rev, keyed by normalized path.
func (r *Repository) snapshot(owner types.UserID, rev repo.Revision) (map[string]repo.FileEntry, repo.Revision, error) {
	g, err := r.open(owner, false)
	if err != nil {
		return nil, 0, err
	}
	var chain []*object.Commit
	if g != nil {
		if chain, err = firstParentChain(g); err != nil {
			return nil, 0, err
		}
	}
	resolved := repo.Revision(len(chain))
	if !rev.IsLatest() {
		if int(rev) > len(chain) {
			return nil, 0, fmt.Errorf("revision %s does not exist for %q (head is %d)", rev, owner, len(chain))
		}
		resolved = rev
	}
	if resolved == 0 {
		return map[string]repo.FileEntry{}, 0, nil
	}
	entries, err := readCommit(chain[resolved-1])
	if err != nil {
		return nil, 0, err
	}
	for p, e := range entries {
		e.CreatedUser = owner
		e.Revision = resolved
		entries[p] = e
	}
	return entries, resolved, nil
}

// firstParentChain returns the commits reachable from HEAD through first
// parents, oldest first. An unborn HEAD yields an empty chain.
func firstParentChain(g *git.Repository) ([]*object.Commit, error) {
	head, err := g.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	c, err := g.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	var chain []*object.Commit
	for {
		chain = append(chain, c)
		if c.NumParents() == 0 {
			break
		}
		if c, err = c.Parent(0); err != nil {
			return nil, fmt.Errorf("failed to walk history: %w", err)
		}
	}
	slices.Reverse(chain)
	return chain, nil
}

func readCommit(c *object.Commit) (map[string]repo.FileEntry, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", c.Hash, err)
	}

	meta := newSidecar()
	if f, err := tree.File(metaFile); err == nil {
		data, err := readBlob(f)
		if err != nil {
			return nil, err
		}
		if meta, err = parseSidecar(data); err != nil {
			return nil, err
		}
	}

	entries := make(map[string]repo.FileEntry)
	addParents := func(p string) {
		for d := repo.Dir(p); d != ""; d = repo.Dir(d) {
			if _, ok := entries[d]; !ok {
				entries[d] = repo.FileEntry{Path: d, FileType: repo.TypeDir}
			}
		}
	}

	err = tree.Files().ForEach(func(f *object.File) error {
		if firstSegment(f.Name) == metaDir {
			return nil
		}
		data, err := readBlob(f)
		if err != nil {
			return err
		}
		entries[f.Name] = repo.FileEntry{Path: f.Name, Content: data}
		addParents(f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for p, m := range meta.Entries {
		e, ok := entries[p]
		if !ok {
			if repo.FileType(m.Type) != repo.TypeDir {
				continue
			}
			e = repo.FileEntry{Path: p}
			addParents(p)
		}
		m.apply(&e)
		entries[p] = e
	}
	return entries, nil
}

func readBlob(f *object.File) ([]byte, error) {
	rd, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rd.Close() }()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}

func readSidecarFile(base string) (*sidecar, error) {
	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(metaFile)))
	if errors.Is(err, os.ErrNotExist) {
		return newSidecar(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", metaFile, err)
	}
	return parseSidecar(data)
}

func under(p, dir string, recursive bool) bool {
	if p == dir {
		return false
	}
	rest := p
	if dir != "" {
		var ok bool
		if rest, ok = strings.CutPrefix(p, dir+"/"); !ok {
			return false
		}
	}
	return recursive || !strings.Contains(rest, "/")
}
