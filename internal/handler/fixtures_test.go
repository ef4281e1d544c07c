// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/scriptpack/scriptpack/internal/resolver"
	"github.com/scriptpack/scriptpack/internal/testutil"
	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

const testOwner types.UserID = "alice"

type (
	// fakeInvoker records its single run and exits with code.
	fakeInvoker struct {
		code   types.ExitCode
		err    error
		output string

		mu            sync.Mutex
		goal          string
		args          []string
		workDir       string
		sawDescriptor bool
		runs          int
	}

	// invokerCounter hands out fresh fakeInvokers and counts them.
	invokerCounter struct {
		mu        sync.Mutex
		code      types.ExitCode
		created   []*fakeInvoker
		createErr error
	}
)

func (f *fakeInvoker) Run(_ context.Context, goal string, args []string, workDir string, stdout, _ io.Writer) (types.ExitCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs++
	f.goal = goal
	f.args = append([]string(nil), args...)
	f.workDir = workDir
	if _, err := os.Stat(filepath.Join(workDir, repo.DescriptorName)); err == nil {
		f.sawDescriptor = true
	}
	if f.output != "" {
		_, _ = io.WriteString(stdout, f.output)
	}
	return f.code, f.err
}

func (c *invokerCounter) factory() resolver.Factory {
	return func() (resolver.Invoker, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.createErr != nil {
			return nil, c.createErr
		}
		inv := &fakeInvoker{code: c.code, output: fmt.Sprintf("[INFO] exit %d\n", c.code)}
		c.created = append(c.created, inv)
		return inv, nil
	}
}

func (c *invokerCounter) last(t *testing.T) *fakeInvoker {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.created) == 0 {
		t.Fatal("no resolver invoker was created")
	}
	return c.created[len(c.created)-1]
}

// mavenProject returns a repository holding a complete Maven style project
// under proj/.
func mavenProject(t *testing.T) *repo.MemoryRepository {
	t.Helper()
	r := repo.NewMemoryRepository()
	testutil.SeedRepository(t, r, testOwner, map[string]string{
		"proj/pom.xml":                           "<project/>",
		"proj/src/main/java/TestRunner.groovy":   "class TestRunner {}",
		"proj/src/main/java/util/Helper.groovy":  "class Helper {}",
		"proj/src/main/java/notes.txt":           "not shipped",
		"proj/src/main/resources/data.txt":       "data",
		"proj/src/main/resources/sub/users.json": "[]",
		"proj/lib/driver.jar":                    "jar",
		"proj/lib/nested/skipped.jar":            "jar",
		"proj/lib/readme.txt":                    "not a library",
	})
	return r
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
