// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"slices"

	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

// GroovyScriptKey identifies the plain script strategy and its templates.
const GroovyScriptKey = "groovy"

// GroovyScriptHandler packages a standalone Groovy script together with the
// lib/ and resources/ folders next to it.
type GroovyScriptHandler struct {
	scriptHandler
}

var _ Handler = (*GroovyScriptHandler)(nil)

// NewGroovyScriptHandler creates the plain script strategy.
func NewGroovyScriptHandler(r repo.Repository, templates TemplateSource) *GroovyScriptHandler {
	return &GroovyScriptHandler{scriptHandler{
		key:       GroovyScriptKey,
		title:     "Groovy Script",
		order:     300,
		repo:      r,
		templates: templates,
	}}
}

// CanHandle implements Handler.
func (h *GroovyScriptHandler) CanHandle(_ context.Context, script repo.FileEntry) bool {
	return !script.CreatedUser.IsZero() && repo.HasExtension(script.Path, "groovy")
}

// ProjectRoot implements Handler: the script's directory.
func (h *GroovyScriptHandler) ProjectRoot(script repo.FileEntry) string {
	return repo.Dir(script.Path)
}

// Collect implements Handler: libraries under lib/, then resources under
// resources/, both recursive.
func (h *GroovyScriptHandler) Collect(ctx context.Context, owner types.UserID, script repo.FileEntry, rev repo.Revision) ([]repo.FileEntry, error) {
	root := h.ProjectRoot(script)
	libs, err := h.collectUnder(ctx, owner, repo.Join(root, "lib"), rev, true, func(e repo.FileEntry) bool {
		return e.Type().IsLibDistributable()
	})
	if err != nil {
		return nil, err
	}
	resources, err := h.collectUnder(ctx, owner, repo.Join(root, "resources"), rev, true, func(e repo.FileEntry) bool {
		return e.Type().IsResourceDistributable()
	})
	if err != nil {
		return nil, err
	}
	return slices.Concat(libs, resources), nil
}

// Remap implements Handler.
func (h *GroovyScriptHandler) Remap(basePath string, entry repo.FileEntry) string {
	return stripBase(basePath, entry)
}

// Materialize implements Handler. There is no post step; the bundle always
// succeeds once written.
func (h *GroovyScriptHandler) Materialize(ctx context.Context, req MaterializeRequest) (*Bundle, error) {
	return h.materialize(ctx, h, req, nil)
}

// CreateProject implements Handler.
func (h *GroovyScriptHandler) CreateProject(ctx context.Context, owner types.UserID, req ProjectRequest) (bool, error) {
	return h.scaffold(ctx, owner, req, scaffoldOptions{description: "create groovy script"})
}

// DefaultScriptPath implements Handler.
func (h *GroovyScriptHandler) DefaultScriptPath(projectPath string) string {
	return repo.Join(projectPath, "TestRunner.groovy")
}
