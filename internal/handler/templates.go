// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Placeholders recognized in template files.
const (
	PlaceholderUserName = "${userName}"
	PlaceholderName     = "${name}"
	PlaceholderURL      = "${url}"
)

//go:embed all:templates
var embeddedTemplates embed.FS

type (
	// TemplateSource provides the template tree for a handler key. Paths in
	// the returned file system are relative to the project directory.
	TemplateSource interface {
		Templates(key string) (fs.FS, error)
	}

	// EmbeddedTemplates serves the templates compiled into the binary.
	EmbeddedTemplates struct{}

	// DirTemplates serves templates from <Root>/<key> on disk.
	DirTemplates struct {
		Root string
	}
)

// Templates implements TemplateSource.
func (EmbeddedTemplates) Templates(key string) (fs.FS, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates/"+key)
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(sub, "."); err != nil {
		return nil, fmt.Errorf("no embedded templates for %q: %w", key, err)
	}
	return sub, nil
}

// Templates implements TemplateSource.
func (d DirTemplates) Templates(key string) (fs.FS, error) {
	dir := filepath.Join(d.Root, key)
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory for %q: %w", key, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("template path %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// NewTemplateSource returns DirTemplates for a non-empty dir and the
// embedded set otherwise.
func NewTemplateSource(dir string) TemplateSource {
	if dir == "" {
		return EmbeddedTemplates{}
	}
	return DirTemplates{Root: dir}
}

// expandPlaceholders substitutes the three template tokens. Replacement is
// literal and applied in order; values are not escaped.
func expandPlaceholders(content, userName, name, url string) string {
	content = strings.ReplaceAll(content, PlaceholderUserName, userName)
	content = strings.ReplaceAll(content, PlaceholderName, name)
	return strings.ReplaceAll(content, PlaceholderURL, url)
}
