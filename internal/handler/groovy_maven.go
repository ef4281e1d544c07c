// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/scriptpack/scriptpack/internal/resolver"
	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

const (
	// GroovyMavenKey identifies the Maven project strategy and its templates.
	GroovyMavenKey = "groovy_maven"

	javaMarker      = "/src/main/java/"
	resourcesMarker = "/src/main/resources/"
	libDir          = "lib"

	mavenProjectIgnore = ".project\n.classpath\n.settings\ntarget"
	copyDependencies   = "dependency:copy-dependencies"
)

var copyDependenciesArgs = []string{"-DoutputDirectory=./lib", "-DexcludeScope=provided"}

// GroovyMavenHandler packages Groovy scripts that live in a Maven project.
type GroovyMavenHandler struct {
	scriptHandler
	invokers resolver.Factory
}

var _ Handler = (*GroovyMavenHandler)(nil)

// NewGroovyMavenHandler creates the Maven project strategy. invokers is
// called once per materialization.
func NewGroovyMavenHandler(r repo.Repository, invokers resolver.Factory, templates TemplateSource) *GroovyMavenHandler {
	return &GroovyMavenHandler{
		scriptHandler: scriptHandler{
			key:       GroovyMavenKey,
			title:     "Groovy Maven Project",
			order:     200,
			repo:      r,
			templates: templates,
		},
		invokers: invokers,
	}
}

// CanHandle implements Handler. The script must be owned, be a .groovy file
// below src/main/java, and have a pom.xml at its project root.
func (h *GroovyMavenHandler) CanHandle(ctx context.Context, script repo.FileEntry) bool {
	if script.CreatedUser.IsZero() {
		return false
	}
	p := "/" + repo.Normalize(script.Path)
	if !strings.Contains(p, javaMarker) || !repo.HasExtension(p, "groovy") {
		return false
	}
	descriptor := repo.Join(h.ProjectRoot(script), repo.DescriptorName)
	return repo.HasFileEntryAt(ctx, h.repo, script.CreatedUser, descriptor, entryRevision(script))
}

// ProjectRoot implements Handler: everything before the last src/main/java.
func (h *GroovyMavenHandler) ProjectRoot(script repo.FileEntry) string {
	p := "/" + repo.Normalize(script.Path)
	if i := strings.LastIndex(p, javaMarker); i >= 0 {
		return repo.Normalize(p[:i])
	}
	return repo.Dir(p)
}

// Collect implements Handler. The order is resources, sources other than
// the script, lib, and finally the descriptor. A missing descriptor fails
// the collection.
func (h *GroovyMavenHandler) Collect(ctx context.Context, owner types.UserID, script repo.FileEntry, rev repo.Revision) ([]repo.FileEntry, error) {
	root := h.ProjectRoot(script)
	scriptPath := repo.Normalize(script.Path)

	resources, err := h.collectUnder(ctx, owner, repo.Join(root, resourcesMarker), rev, true, func(e repo.FileEntry) bool {
		return e.Type().IsResourceDistributable()
	})
	if err != nil {
		return nil, err
	}
	sources, err := h.collectUnder(ctx, owner, repo.Join(root, javaMarker), rev, true, func(e repo.FileEntry) bool {
		return e.Type().IsLibDistributable() && e.Path != scriptPath
	})
	if err != nil {
		return nil, err
	}
	libs, err := h.collectUnder(ctx, owner, repo.Join(root, libDir), rev, false, func(e repo.FileEntry) bool {
		return e.Type().IsLibDistributable()
	})
	if err != nil {
		return nil, err
	}
	descriptor, err := h.repo.FindOne(ctx, owner, repo.Join(root, repo.DescriptorName), rev)
	if err != nil {
		return nil, err
	}

	out := make([]repo.FileEntry, 0, len(resources)+len(sources)+len(libs)+1)
	out = append(out, resources...)
	out = append(out, sources...)
	out = append(out, libs...)
	return append(out, descriptor), nil
}

// Remap implements Handler. Files under src/main/java and
// src/main/resources land at the bundle root; everything else keeps its
// project-relative path.
func (h *GroovyMavenHandler) Remap(basePath string, entry repo.FileEntry) string {
	p := stripBase(basePath, entry)
	for _, marker := range []string{javaMarker, resourcesMarker} {
		if rest, ok := strings.CutPrefix(p, marker); ok {
			return "/" + rest
		}
	}
	return p
}

// Materialize implements Handler. After the files are written the resolver
// copies dependencies into lib/. A resolver failure marks the bundle failed
// but is not an error; pom.xml is removed from the bundle either way.
func (h *GroovyMavenHandler) Materialize(ctx context.Context, req MaterializeRequest) (*Bundle, error) {
	return h.materialize(ctx, h, req, h.copyDependencies)
}

func (h *GroovyMavenHandler) copyDependencies(ctx context.Context, script repo.FileEntry, b *Bundle) {
	descriptor := repo.Join(h.ProjectRoot(script), repo.DescriptorName)
	b.Printf("")
	b.Printf("Copy dependencies by running '%s'", resolver.CommandLine(resolver.DefaultBinary, copyDependencies, copyDependenciesArgs))

	code, err := h.runResolver(ctx, b)
	if err != nil {
		b.Printf("The dependency resolver could not be started: %v", err)
	}
	success := err == nil && code.IsSuccess()

	b.Printf("")
	if success {
		b.Printf("Dependencies in %s were copied.", descriptor)
		slog.Info("dependencies copied", "descriptor", descriptor, "lib", filepath.Join(b.Root, libDir))
	} else {
		b.Printf("Dependency copy in %s failed.", descriptor)
		slog.Info("dependency copy failed", "descriptor", descriptor, "exit_code", code)
	}

	// The descriptor is only needed by the resolver.
	if err := os.Remove(filepath.Join(b.Root, repo.DescriptorName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove descriptor from bundle", "path", b.Root, "error", err)
	}
	b.Success = success
}

// runResolver runs a fresh invoker. The run is not cancelled with ctx once
// started.
func (h *GroovyMavenHandler) runResolver(ctx context.Context, b *Bundle) (types.ExitCode, error) {
	if h.invokers == nil {
		return types.ExitCodeNotStarted, errors.New("no dependency resolver configured")
	}
	inv, err := h.invokers()
	if err != nil {
		return types.ExitCodeNotStarted, fmt.Errorf("failed to create resolver: %w", err)
	}
	return inv.Run(context.WithoutCancel(ctx), copyDependencies, copyDependenciesArgs, b.Root, b, b)
}

// CreateProject implements Handler. It creates the project directory with
// an ignore list for IDE and build output, the templates, and optionally a
// lib directory. It returns true when every entry was saved.
func (h *GroovyMavenHandler) CreateProject(ctx context.Context, owner types.UserID, req ProjectRequest) (bool, error) {
	return h.scaffold(ctx, owner, req, scaffoldOptions{
		ignore:      mavenProjectIgnore,
		description: "create groovy maven project",
	})
}

// DefaultScriptPath implements Handler.
func (h *GroovyMavenHandler) DefaultScriptPath(projectPath string) string {
	return repo.Normalize(projectPath + javaMarker + "TestRunner.groovy")
}
