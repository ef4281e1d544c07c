// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

// SeedRepository saves files into owner's area of r. Keys ending in "/"
// create directories; every other key is a file with the mapped content.
func SeedRepository(t testing.TB, r repo.Repository, owner types.UserID, files map[string]string) {
	t.Helper()
	for p, content := range files {
		e := repo.FileEntry{Path: p, Content: []byte(content)}
		if strings.HasSuffix(p, "/") {
			e = repo.FileEntry{Path: strings.TrimSuffix(p, "/"), FileType: repo.TypeDir}
		}
		if err := r.Save(context.Background(), owner, e, ""); err != nil {
			t.Fatalf("Save(%s) error = %v", p, err)
		}
	}
}
