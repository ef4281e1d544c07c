// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/scriptpack/scriptpack/internal/testutil"
	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

const owner types.UserID = "admin"

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	r, err := New(types.FilesystemPath(t.TempDir()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func save(t *testing.T, r *Repository, e repo.FileEntry) {
	t.Helper()
	if err := r.Save(context.Background(), owner, e, ""); err != nil {
		t.Fatalf("Save(%s) error = %v", e.Path, err)
	}
}

func TestRepository_RevisionsFollowCommits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)

	head, err := r.HeadRevision(ctx, owner)
	if err != nil || head != 0 {
		t.Fatalf("HeadRevision() before any save = %d, %v; want 0, nil", head, err)
	}

	save(t, r, repo.FileEntry{Path: "proj/a.txt", Content: []byte("one")})
	save(t, r, repo.FileEntry{Path: "proj/a.txt", Content: []byte("two"), Description: "second"})

	if head, _ = r.HeadRevision(ctx, owner); head != 2 {
		t.Fatalf("HeadRevision() = %d, want 2", head)
	}

	old, err := r.FindOne(ctx, owner, "proj/a.txt", 1)
	if err != nil {
		t.Fatalf("FindOne(rev 1) error = %v", err)
	}
	if string(old.Content) != "one" || old.Revision != 1 {
		t.Errorf("FindOne(rev 1) = %q at %d, want %q at 1", old.Content, old.Revision, "one")
	}

	latest, err := r.FindOne(ctx, owner, "proj/a.txt", repo.LatestRevision)
	if err != nil {
		t.Fatalf("FindOne(latest) error = %v", err)
	}
	if string(latest.Content) != "two" || latest.Description != "second" {
		t.Errorf("FindOne(latest) = %q (%q), want %q (second)", latest.Content, latest.Description, "two")
	}
	if latest.CreatedUser != owner {
		t.Errorf("CreatedUser = %q, want %q", latest.CreatedUser, owner)
	}

	if _, err := r.FindOne(ctx, owner, "proj/a.txt", 5); err == nil {
		t.Error("FindOne(rev 5) error = nil, want error for a revision beyond head")
	}
}

func TestRepository_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)

	if _, err := r.FindOne(ctx, owner, "nothing", repo.LatestRevision); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("FindOne() on empty repository error = %v, want ErrNotFound", err)
	}
	save(t, r, repo.FileEntry{Path: "proj/a.txt"})
	if _, err := r.FindOne(ctx, owner, "proj/b.txt", repo.LatestRevision); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("FindOne() error = %v, want ErrNotFound", err)
	}
	if r.HasFileEntry(ctx, owner, "proj/b.txt") {
		t.Error("HasFileEntry() = true for missing path")
	}
	if !r.HasFileEntry(ctx, owner, "proj") {
		t.Error("HasFileEntry() = false for implicit parent directory")
	}
}

func TestRepository_DirectoriesAndProperties(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)

	dir := repo.FileEntry{Path: "proj", FileType: repo.TypeDir, Description: "create project"}
	dir.SetProperty(repo.PropIgnore, ".project\ntarget")
	save(t, r, dir)
	save(t, r, repo.FileEntry{Path: "proj/lib", FileType: repo.TypeDir})

	script := repo.FileEntry{Path: "proj/src/main/java/Test.groovy", Content: []byte("println 1")}
	script.SetProperty(repo.PropTargetHosts, "example.com")
	if err := r.Save(ctx, owner, script, repo.EncodingUTF8); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := r.FindOne(ctx, owner, "proj", repo.LatestRevision)
	if err != nil {
		t.Fatalf("FindOne(proj) error = %v", err)
	}
	if !got.IsDir() || got.Property(repo.PropIgnore) != ".project\ntarget" {
		t.Errorf("FindOne(proj) = %+v, want directory with ignore list", got)
	}

	lib, err := r.FindOne(ctx, owner, "proj/lib", repo.LatestRevision)
	if err != nil || !lib.IsDir() {
		t.Errorf("FindOne(proj/lib) = %+v, %v; want empty directory entry", lib, err)
	}

	s, err := r.FindOne(ctx, owner, "proj/src/main/java/Test.groovy", repo.LatestRevision)
	if err != nil {
		t.Fatalf("FindOne(script) error = %v", err)
	}
	if s.Property(repo.PropTargetHosts) != "example.com" || s.Encoding != repo.EncodingUTF8 {
		t.Errorf("script metadata = %v / %q", s.Properties, s.Encoding)
	}
	if s.Type() != repo.TypeGroovy {
		t.Errorf("script Type() = %q, want groovy", s.Type())
	}
}

func TestRepository_FindAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)
	save(t, r, repo.FileEntry{Path: "proj/lib/a.jar", Content: []byte("a")})
	save(t, r, repo.FileEntry{Path: "proj/lib/deep/b.jar", Content: []byte("b")})
	save(t, r, repo.FileEntry{Path: "proj/pom.xml", Content: []byte("<project/>")})

	tests := []struct {
		name      string
		prefix    string
		recursive bool
		want      []string
	}{
		{"direct", "proj/lib", false, []string{"proj/lib/a.jar", "proj/lib/deep"}},
		{"recursive", "proj/lib/", true, []string{"proj/lib/a.jar", "proj/lib/deep", "proj/lib/deep/b.jar"}},
		{"root", "", false, []string{"proj"}},
		{"missing", "other", true, nil},
	}
	for _, tt := range tests {
		got, err := r.FindAll(ctx, owner, tt.prefix, repo.LatestRevision, tt.recursive)
		if err != nil {
			t.Fatalf("%s: FindAll() error = %v", tt.name, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("%s: FindAll() returned %d entries, want %v", tt.name, len(got), tt.want)
			continue
		}
		for i := range got {
			if got[i].Path != tt.want[i] {
				t.Errorf("%s: FindAll()[%d] = %q, want %q", tt.name, i, got[i].Path, tt.want[i])
			}
		}
	}
}

func TestRepository_SidecarHiddenFromListings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)
	save(t, r, repo.FileEntry{Path: "a.txt", Description: "with metadata"})

	all, err := r.FindAll(ctx, owner, "", repo.LatestRevision, true)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	for _, e := range all {
		if e.Path == metaDir || filepath.Dir(e.Path) == metaDir {
			t.Errorf("FindAll() exposed bookkeeping entry %q", e.Path)
		}
	}
	if err := r.Save(ctx, owner, repo.FileEntry{Path: metaFile}, ""); err == nil {
		t.Error("Save() of the sidecar path error = nil, want error")
	}
}

func TestRepository_IgnoreList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)
	dir := repo.FileEntry{Path: "proj", FileType: repo.TypeDir}
	dir.SetProperty(repo.PropIgnore, ".project\n.settings\ntarget\n*.log")
	save(t, r, dir)

	tests := []struct {
		path    string
		ignored bool
	}{
		{"proj/target/classes/A.class", true},
		{"proj/.settings", true},
		{"proj/build.log", true},
		{"proj/src/target/x.txt", false},
		{"proj/pom.xml", false},
	}
	for _, tt := range tests {
		err := r.Save(ctx, owner, repo.FileEntry{Path: tt.path}, "")
		if got := errors.Is(err, ErrIgnored); got != tt.ignored {
			t.Errorf("Save(%s) error = %v, ignored = %v, want %v", tt.path, err, got, tt.ignored)
		}
	}
}

func TestRepository_OwnersAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepository(t)
	save(t, r, repo.FileEntry{Path: "proj/pom.xml"})

	if r.HasFileEntry(ctx, "guest", "proj/pom.xml") {
		t.Error("HasFileEntry() for another owner = true")
	}
	if head, _ := r.HeadRevision(ctx, "guest"); head != 0 {
		t.Errorf("HeadRevision(guest) = %d, want 0", head)
	}
	if _, err := os.Stat(filepath.Join(string(r.Root()), string(owner), ".git")); err != nil {
		t.Errorf("owner repository not created: %v", err)
	}
	if err := r.Save(ctx, "../escape", repo.FileEntry{Path: "x"}, ""); !errors.Is(err, types.ErrInvalidUserID) {
		t.Errorf("Save() with path-like owner error = %v, want ErrInvalidUserID", err)
	}
}

func TestRepository_ReopenReadsHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := types.FilesystemPath(t.TempDir())
	first, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := first.Save(ctx, owner, repo.FileEntry{Path: "proj/a.txt", Content: []byte("x")}, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e, err := second.FindOne(ctx, owner, "proj/a.txt", 1)
	if err != nil || string(e.Content) != "x" {
		t.Errorf("FindOne() after reopen = %q, %v", e.Content, err)
	}
}

func TestRepository_CommitsUseClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRepository(t)
	r.now = testutil.NewFakeClock(start).Tick(time.Minute).Now

	save(t, r, repo.FileEntry{Path: "proj/a.txt", Content: []byte("a")})
	save(t, r, repo.FileEntry{Path: "proj/b.txt", Content: []byte("b")})

	g, err := git.PlainOpen(filepath.Join(string(r.Root()), string(owner)))
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	head, err := g.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	commit, err := g.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("CommitObject() error = %v", err)
	}
	if want := start.Add(time.Minute); !commit.Author.When.Equal(want) {
		t.Errorf("head author time = %v, want %v", commit.Author.When, want)
	}
	if commit.Author.Name != string(owner) {
		t.Errorf("head author = %q, want %q", commit.Author.Name, owner)
	}
}

func TestRepository_WorkTree(t *testing.T) {
	t.Parallel()

	r := newTestRepository(t)
	save(t, r, repo.FileEntry{Path: "proj/a.txt", Content: []byte("a")})

	dir, err := r.WorkTree(owner)
	if err != nil {
		t.Fatalf("WorkTree() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "proj", "a.txt"))
	if err != nil || string(data) != "a" {
		t.Errorf("work tree file = %q, %v", data, err)
	}
	if _, err := r.WorkTree("../x"); !errors.Is(err, types.ErrInvalidUserID) {
		t.Errorf("WorkTree(../x) error = %v, want ErrInvalidUserID", err)
	}
}
