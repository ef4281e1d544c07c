// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"io"

	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

type (
	// Handler is one packaging strategy.
	Handler interface {
		// Key identifies the strategy and its template set.
		Key() string
		// Title is a human-readable name.
		Title() string
		// Order ranks the handler in a Registry; lower runs first.
		Order() int
		// CanHandle reports whether the strategy owns the script. It reads
		// the repository at the entry's own revision and caches nothing.
		CanHandle(ctx context.Context, script repo.FileEntry) bool
		// ProjectRoot returns the repository path packaging is relative to.
		ProjectRoot(script repo.FileEntry) string
		// Collect returns the files shipped with the script, in copy order.
		Collect(ctx context.Context, owner types.UserID, script repo.FileEntry, rev repo.Revision) ([]repo.FileEntry, error)
		// Remap maps an entry to its bundle-relative destination. It is a
		// pure function of its arguments.
		Remap(basePath string, entry repo.FileEntry) string
		// Materialize writes the bundle for a script into a target directory.
		Materialize(ctx context.Context, req MaterializeRequest) (*Bundle, error)
		// CreateProject scaffolds a new project from the handler's templates.
		CreateProject(ctx context.Context, owner types.UserID, req ProjectRequest) (bool, error)
		// DefaultScriptPath returns the script a freshly scaffolded project
		// at projectPath is run with.
		DefaultScriptPath(projectPath string) string
	}

	// MaterializeRequest describes one packaging run.
	MaterializeRequest struct {
		// TestID identifies the run in logs.
		TestID int64
		Owner  types.UserID
		// Script is the entry to package; only its path is used.
		Script repo.FileEntry
		// Revision pins every repository read. LatestRevision is resolved
		// to the head revision once, before the first read.
		Revision repo.Revision
		// TargetDir is emptied and filled with the bundle. It must be missing,
		// empty, or an earlier bundle; see BundleMarker.
		TargetDir string
		// Output, when set, receives the bundle log as it is produced.
		Output io.Writer
	}

	// ProjectRequest describes a project to scaffold.
	ProjectRequest struct {
		// BasePath is the repository directory the project is created in.
		BasePath string
		// FileName is the project directory name.
		FileName string
		// Name is substituted for ${name}.
		Name string
		// URL is substituted for ${url}; its host becomes the script's
		// targetHosts property.
		URL string
		// IncludeLib also creates an empty lib directory.
		IncludeLib bool
	}
)
