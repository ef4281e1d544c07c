// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

type (
	// scriptHandler holds what every strategy shares: identity, the
	// repository, and the template source. Strategies embed it.
	scriptHandler struct {
		key       string
		title     string
		order     int
		repo      repo.Repository
		templates TemplateSource
	}

	// layout is the strategy-specific part of materialization.
	layout interface {
		ProjectRoot(script repo.FileEntry) string
		Collect(ctx context.Context, owner types.UserID, script repo.FileEntry, rev repo.Revision) ([]repo.FileEntry, error)
		Remap(basePath string, entry repo.FileEntry) string
	}

	// postStep runs after all files are written. It reports problems
	// through the bundle only.
	postStep func(ctx context.Context, script repo.FileEntry, b *Bundle)

	scaffoldOptions struct {
		// ignore is stored as svn:ignore on the project directory when set.
		ignore      string
		description string
	}
)

// Key implements Handler.
func (h *scriptHandler) Key() string { return h.key }

// Title implements Handler.
func (h *scriptHandler) Title() string { return h.title }

// Order implements Handler.
func (h *scriptHandler) Order() int { return h.order }

// stripBase is the generic remap: the entry path relative to basePath,
// rooted at "/". Paths outside basePath keep their full path. The result is
// cleaned, so it never climbs above "/".
func stripBase(basePath string, entry repo.FileEntry) string {
	p := repo.Normalize(entry.Path)
	if base := repo.Normalize(basePath); base != "" {
		if rest, ok := strings.CutPrefix(p, base+"/"); ok {
			p = rest
		}
	}
	return path.Clean("/" + p)
}

// materialize runs the shared pipeline: reset the target, collect, write
// every file at its remapped path, write the script, then run post.
func (h *scriptHandler) materialize(ctx context.Context, l layout, req MaterializeRequest, post postStep) (*Bundle, error) {
	if err := req.Owner.Validate(); err != nil {
		return nil, err
	}
	target, err := prepareTargetDir(req.TargetDir)
	if err != nil {
		return nil, err
	}
	b := newBundle(target, req.Output)

	rev := req.Revision
	if rev.IsLatest() {
		if rev, err = h.repo.HeadRevision(ctx, req.Owner); err != nil {
			b.Success = false
			return b, fmt.Errorf("failed to resolve head revision: %w", err)
		}
	}

	script, err := h.repo.FindOne(ctx, req.Owner, req.Script.Path, rev)
	if err != nil {
		b.Success = false
		return b, err
	}
	base := l.ProjectRoot(script)

	entries, err := l.Collect(ctx, req.Owner, script, rev)
	if err != nil {
		b.Success = false
		return b, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		dest := l.Remap(base, e)
		b.Printf("%s is being written.", e.Path)
		if err := writeBundleFile(target, dest, e.Content); err != nil {
			b.Success = false
			return b, err
		}
		b.Copies = append(b.Copies, CopyOp{Source: e.Path, Dest: dest})
	}

	scriptDest := "/" + path.Base(script.Path)
	b.Printf("%s is being written.", script.Path)
	if err := writeBundleFile(target, scriptDest, script.Content); err != nil {
		b.Success = false
		return b, err
	}
	b.ScriptPath = scriptDest
	b.Copies = append(b.Copies, CopyOp{Source: script.Path, Dest: scriptDest})

	if post != nil {
		post(ctx, script, b)
	}

	slog.Info("materialized script",
		"test", req.TestID, "handler", h.key, "owner", req.Owner, "script", script.Path,
		"revision", rev, "files", len(b.Copies), "success", b.Success)
	return b, nil
}

// scaffold creates the project directory, expands every template into it,
// and optionally adds a lib directory. It stops at the first failure.
func (h *scriptHandler) scaffold(ctx context.Context, owner types.UserID, req ProjectRequest, opts scaffoldOptions) (bool, error) {
	if err := owner.Validate(); err != nil {
		return false, err
	}
	projectPath := repo.Join(req.BasePath, req.FileName)
	if projectPath == "" {
		return false, &ScaffoldError{File: req.FileName, Err: errors.New("project path is empty")}
	}

	dir := repo.FileEntry{Path: projectPath, FileType: repo.TypeDir, Description: opts.description}
	if opts.ignore != "" {
		dir.SetProperty(repo.PropIgnore, opts.ignore)
	}
	if err := h.repo.Save(ctx, owner, dir, ""); err != nil {
		return false, &ScaffoldError{File: projectPath, Err: err}
	}

	tree, err := h.templates.Templates(h.key)
	if err != nil {
		return false, &ScaffoldError{File: h.key, Err: err}
	}
	host := hostOf(req.URL)

	err = fs.WalkDir(tree, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &ScaffoldError{File: name, Err: walkErr}
		}
		if d.IsDir() {
			return nil
		}
		raw, err := fs.ReadFile(tree, name)
		if err != nil {
			return &ScaffoldError{File: name, Err: err}
		}
		content := expandPlaceholders(string(raw), owner.String(), req.Name, req.URL)

		entry := repo.FileEntry{
			Path:        repo.Normalize(repo.Join(projectPath, name)),
			Content:     []byte(content),
			Description: opts.description,
		}
		if host != "" && entry.Type().Category() == repo.CategoryScript {
			entry.SetProperty(repo.PropTargetHosts, host)
		}
		if err := h.repo.Save(ctx, owner, entry, repo.EncodingUTF8); err != nil {
			return &ScaffoldError{File: name, Err: err}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if req.IncludeLib {
		lib := repo.FileEntry{Path: repo.Join(projectPath, "lib"), FileType: repo.TypeDir, Description: "put private libraries here"}
		if err := h.repo.Save(ctx, owner, lib, ""); err != nil {
			return false, &ScaffoldError{File: lib.Path, Err: err}
		}
	}

	slog.Info("created project", "handler", h.key, "owner", owner, "path", projectPath)
	return true, nil
}

// collectUnder returns the entries below dir accepted by keep.
func (h *scriptHandler) collectUnder(ctx context.Context, owner types.UserID, dir string, rev repo.Revision, recursive bool, keep func(repo.FileEntry) bool) ([]repo.FileEntry, error) {
	all, err := h.repo.FindAll(ctx, owner, dir, rev, recursive)
	if err != nil {
		return nil, err
	}
	var out []repo.FileEntry
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// hostOf returns the host of rawURL, or "" when it has none or does not
// parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// entryRevision is the revision an entry should be probed at. Entries built
// by callers carry no revision and are checked against the latest one.
func entryRevision(e repo.FileEntry) repo.Revision {
	if e.Revision <= 0 {
		return repo.LatestRevision
	}
	return e.Revision
}

// prepareTargetDir resolves dir and leaves it as an empty bundle directory.
// An existing directory is cleared only when it is empty or was written by an
// earlier materialization, as recorded by BundleMarker. Anything else is
// refused with a TargetDirError.
func prepareTargetDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("target directory must not be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target directory: %w", err)
	}
	if filepath.Dir(abs) == abs {
		return "", &TargetDirError{Dir: abs, Reason: "it is the filesystem root"}
	}

	fi, err := os.Lstat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("failed to inspect target directory: %w", err)
	case !fi.IsDir():
		return "", &TargetDirError{Dir: abs, Reason: "it is not a directory"}
	default:
		entries, err := os.ReadDir(abs)
		if err != nil {
			return "", fmt.Errorf("failed to read target directory: %w", err)
		}
		if len(entries) > 0 {
			if _, err := os.Stat(filepath.Join(abs, BundleMarker)); err != nil {
				return "", &TargetDirError{Dir: abs, Reason: "it is not empty and holds no earlier bundle"}
			}
		}
		if err := os.RemoveAll(abs); err != nil {
			return "", fmt.Errorf("failed to clear target directory: %w", err)
		}
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(abs, BundleMarker), nil, 0o644); err != nil {
		return "", fmt.Errorf("failed to mark target directory: %w", err)
	}
	return abs, nil
}

func writeBundleFile(root, dest string, content []byte) error {
	p := filepath.Join(root, filepath.FromSlash(path.Clean("/"+dest)))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
