// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scriptpack/scriptpack/internal/config"
	"github.com/scriptpack/scriptpack/internal/issue"
	"github.com/scriptpack/scriptpack/internal/testutil"
	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

// staticProvider serves a fixed configuration.
type staticProvider struct {
	cfg *config.Config
	err error
}

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	cfg := *p.cfg
	return &cfg, nil
}

func (p staticProvider) Source(config.LoadOptions) (string, error) { return "", nil }

// testCLI is an App over an in-memory repository with a virtual resolver.
type testCLI struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCLI(t *testing.T, mutate func(*config.Config)) *testCLI {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.User = "alice"
	cfg.Repository.Backend = config.BackendMemory
	cfg.Repository.Root = t.TempDir()
	cfg.Resolver.Mode = config.ResolverVirtual
	cfg.Resolver.Command = `echo "$1" > resolved.txt`
	if mutate != nil {
		mutate(cfg)
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testCLI{
		app: NewApp(Dependencies{
			Config: staticProvider{cfg: cfg},
			Stdout: stdout,
			Stderr: stderr,
		}),
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *testCLI) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	c.stdout.Reset()
	c.stderr.Reset()
	root := NewRootCommand(c.app)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	return root.ExecuteContext(context.Background())
}

func (c *testCLI) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := c.run(t, "", args...); err != nil {
		t.Fatalf("scriptpack %s: %v\nstderr: %s", strings.Join(args, " "), err, c.stderr.String())
	}
	return c.stdout.String()
}

const checkoutScript = "tests/checkout/src/main/java/TestRunner.groovy"

func TestPackageMavenProject(t *testing.T) {
	cli := newTestCLI(t, nil)
	out := filepath.Join(t.TempDir(), "dist")

	created := cli.mustRun(t, "project", "create", "tests", "checkout", "--url", "https://shop.example.com/cart")
	if !strings.Contains(created, checkoutScript) {
		t.Errorf("project create output = %q, want default script path", created)
	}

	checked := cli.mustRun(t, "check", checkoutScript)
	if !strings.Contains(checked, "groovy_maven") || !strings.Contains(checked, "(selected)") {
		t.Errorf("check output = %q", checked)
	}

	files := cli.mustRun(t, "files", checkoutScript)
	for _, want := range []string{
		"tests/checkout/src/main/resources/resource1.txt -> /resource1.txt",
		"tests/checkout/pom.xml -> /pom.xml",
		checkoutScript + " -> /TestRunner.groovy",
	} {
		if !strings.Contains(files, want) {
			t.Errorf("files output missing %q:\n%s", want, files)
		}
	}

	packaged := cli.mustRun(t, "package", checkoutScript, "--out", out)
	if !strings.Contains(packaged, "Dependencies in tests/checkout/pom.xml were copied.") {
		t.Errorf("package output = %q", packaged)
	}
	for _, name := range []string{"TestRunner.groovy", "resource1.txt"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("bundle missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, repo.DescriptorName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("descriptor left in bundle: %v", err)
	}
	goal, err := os.ReadFile(filepath.Join(out, "resolved.txt"))
	if err != nil || strings.TrimSpace(string(goal)) != "dependency:copy-dependencies" {
		t.Errorf("resolver goal = %q, %v", goal, err)
	}
}

func TestPackageResolverFailure(t *testing.T) {
	cli := newTestCLI(t, func(cfg *config.Config) {
		cfg.Resolver.Command = "exit 3"
	})
	cli.mustRun(t, "project", "create", "tests", "checkout")

	err := cli.run(t, "", "package", checkoutScript, "--out", filepath.Join(t.TempDir(), "dist"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("package error = %v, want ExitError code 1", err)
	}
	if !strings.Contains(cli.stdout.String(), "Dependency copy in tests/checkout/pom.xml failed.") {
		t.Errorf("stdout = %q", cli.stdout.String())
	}
	if !strings.Contains(cli.stderr.String(), "dependency resolution failed") {
		t.Errorf("stderr = %q", cli.stderr.String())
	}
}

func TestPackagePinnedRevision(t *testing.T) {
	cli := newTestCLI(t, nil)
	cli.mustRun(t, "project", "create", "tests", "checkout")
	before := strings.Fields(cli.mustRun(t, "repo", "save", "tests/marker.txt", "-m", "marker"))
	rev := before[len(before)-1]

	if err := cli.run(t, "changed", "repo", "save", "tests/checkout/src/main/resources/resource1.txt"); err != nil {
		t.Fatalf("repo save: %v", err)
	}

	out := filepath.Join(t.TempDir(), "dist")
	cli.mustRun(t, "package", checkoutScript, "--out", out, "--revision", rev)
	data, err := os.ReadFile(filepath.Join(out, "resource1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "changed" {
		t.Error("pinned revision packaged content saved after it")
	}
}

func TestPackageErrors(t *testing.T) {
	t.Run("missing script", func(t *testing.T) {
		cli := newTestCLI(t, nil)
		err := cli.run(t, "", "package", "nope/Main.groovy")
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.IssueID != issue.ScriptNotFoundId {
			t.Fatalf("error = %v, want ScriptNotFound actionable error", err)
		}
		if !errors.Is(err, repo.ErrNotFound) {
			t.Errorf("error should wrap repo.ErrNotFound: %v", err)
		}
	})

	t.Run("no strategy", func(t *testing.T) {
		cli := newTestCLI(t, nil)
		if err := cli.run(t, "x", "repo", "save", "notes/readme.txt"); err != nil {
			t.Fatal(err)
		}
		err := cli.run(t, "", "package", "notes/readme.txt")
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.IssueID != issue.NoHandlerId {
			t.Fatalf("error = %v, want NoHandler actionable error", err)
		}
	})

	t.Run("no user", func(t *testing.T) {
		cli := newTestCLI(t, func(cfg *config.Config) { cfg.User = "" })
		if err := cli.run(t, "", "package", checkoutScript); err == nil {
			t.Fatal("package without a user succeeded")
		}
	})

	t.Run("bad revision", func(t *testing.T) {
		cli := newTestCLI(t, nil)
		if err := cli.run(t, "", "package", checkoutScript, "--revision", "yesterday"); !errors.Is(err, repo.ErrInvalidRevision) {
			t.Fatalf("error = %v, want ErrInvalidRevision", err)
		}
	})

	t.Run("foreign output directory", func(t *testing.T) {
		cli := newTestCLI(t, nil)
		cli.mustRun(t, "project", "create", "tests", "checkout")
		out := t.TempDir()
		keep := filepath.Join(out, "keep.txt")
		if err := os.WriteFile(keep, []byte("mine"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := cli.run(t, "", "package", checkoutScript, "--out", out)
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || len(ae.Suggestions) == 0 {
			t.Fatalf("error = %v, want actionable error with a suggestion", err)
		}
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("existing file removed: %v", err)
		}
	})

	t.Run("watch needs git backend", func(t *testing.T) {
		cli := newTestCLI(t, nil)
		cli.mustRun(t, "project", "create", "tests", "checkout")
		err := cli.run(t, "", "package", checkoutScript, "--watch")
		if err == nil || !strings.Contains(err.Error(), "git repository backend") {
			t.Fatalf("error = %v, want git backend requirement", err)
		}
	})
}

func TestUserFlagOverridesConfig(t *testing.T) {
	cli := newTestCLI(t, nil)
	if err := cli.run(t, "bob's", "repo", "save", "--user", "bob", "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := cli.run(t, "", "repo", "cat", "a.txt"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("alice sees bob's file: %v", err)
	}
	if got := cli.mustRun(t, "repo", "cat", "-u", "bob", "a.txt"); got != "bob's" {
		t.Errorf("repo cat = %q", got)
	}
}

func TestRepoCommands(t *testing.T) {
	cli := newTestCLI(t, nil)

	cli.mustRun(t, "repo", "save", "proj", "--dir", "--prop", `svn:ignore=target\n.settings`)
	if err := cli.run(t, "v1", "repo", "save", "proj/data.txt"); err != nil {
		t.Fatal(err)
	}
	if err := cli.run(t, "v2", "repo", "save", "proj/data.txt", "-m", "second"); err != nil {
		t.Fatal(err)
	}

	local := filepath.Join(t.TempDir(), "lib.jar")
	if err := os.WriteFile(local, []byte("jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	cli.mustRun(t, "repo", "save", "proj/lib/lib.jar", "--file", local)

	listing := cli.mustRun(t, "repo", "ls", "proj")
	if !strings.Contains(listing, "proj/data.txt") || !strings.Contains(listing, "proj/lib/") {
		t.Errorf("ls output = %q", listing)
	}
	if strings.Contains(listing, "proj/lib/lib.jar") {
		t.Errorf("non-recursive ls listed nested file: %q", listing)
	}
	if recursive := cli.mustRun(t, "repo", "ls", "proj", "-R"); !strings.Contains(recursive, "proj/lib/lib.jar") {
		t.Errorf("recursive ls output = %q", recursive)
	}

	if got := cli.mustRun(t, "repo", "cat", "proj/data.txt"); got != "v2" {
		t.Errorf("cat latest = %q, want v2", got)
	}
	if got := cli.mustRun(t, "repo", "cat", "proj/data.txt", "-r", "2"); got != "v1" {
		t.Errorf("cat revision 2 = %q, want v1", got)
	}
	if err := cli.run(t, "", "repo", "cat", "proj"); err == nil {
		t.Error("cat of a directory succeeded")
	}
	if err := cli.run(t, "", "repo", "save", "x", "--dir", "--prop", "novalue"); err == nil {
		t.Error("save accepted a property without '='")
	}
}

func TestProjectCreateErrors(t *testing.T) {
	t.Run("unknown strategy", func(t *testing.T) {
		cli := newTestCLI(t, nil)
		err := cli.run(t, "", "project", "create", ".", "p", "--strategy", "jython")
		if err == nil || !strings.Contains(err.Error(), "groovy, groovy_maven") {
			t.Fatalf("error = %v, want available strategies", err)
		}
	})

	t.Run("missing templates", func(t *testing.T) {
		cli := newTestCLI(t, func(cfg *config.Config) { cfg.Templates.Dir = t.TempDir() })
		err := cli.run(t, "", "project", "create", ".", "p")
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.IssueID != issue.TemplateNotFoundId {
			t.Fatalf("error = %v, want TemplateNotFound actionable error", err)
		}
	})
}

func TestProjectCreatePlainScript(t *testing.T) {
	cli := newTestCLI(t, nil)
	out := cli.mustRun(t, "project", "create", ".", "smoke", "--strategy", "groovy", "--lib")
	if !strings.Contains(out, "smoke/TestRunner.groovy") {
		t.Errorf("output = %q", out)
	}
	checked := cli.mustRun(t, "check", "smoke/TestRunner.groovy")
	if !strings.Contains(checked, "(selected)") {
		t.Errorf("check output = %q", checked)
	}
}

func TestConfigCommands(t *testing.T) {
	cli := newTestCLI(t, nil)

	dump := cli.mustRun(t, "config", "dump")
	if !strings.Contains(dump, `backend: "memory"`) || !strings.Contains(dump, `mode: "virtual"`) {
		t.Errorf("config dump = %q", dump)
	}
	show := cli.mustRun(t, "config", "show")
	for _, want := range []string{"repository.backend", "memory", "alice", "(using defaults)"} {
		if !strings.Contains(show, want) {
			t.Errorf("config show missing %q:\n%s", want, show)
		}
	}

	boom := errors.New("boom")
	broken := NewApp(Dependencies{Config: staticProvider{err: boom}, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	root := NewRootCommand(broken)
	root.SetArgs([]string{"config", "show"})
	if err := root.Execute(); !errors.Is(err, boom) {
		t.Errorf("config show error = %v, want %v", err, boom)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
		skip string
	}{
		{name: "plain", err: errors.New("plain failure"), want: "plain failure"},
		{
			name: "actionable",
			err: issue.NewErrorContext().
				WithOperation("package script").
				WithResource("a.groovy").
				WithSuggestion("try again").
				BuildError(),
			want: "try again",
		},
		{name: "reported exit", err: &ExitError{Code: 1}, skip: "exit status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			renderError(&buf, "notty", tt.err, false)
			if tt.want != "" && !strings.Contains(buf.String(), tt.want) {
				t.Errorf("renderError() = %q, want %q", buf.String(), tt.want)
			}
			if tt.skip != "" && strings.Contains(buf.String(), tt.skip) {
				t.Errorf("renderError() = %q, should be silent", buf.String())
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{16 << 30, "16.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestGitBackend(t *testing.T) {
	cli := newTestCLI(t, func(cfg *config.Config) { cfg.Repository.Backend = config.BackendGit })

	cli.mustRun(t, "project", "create", "tests", "checkout")
	listing := cli.mustRun(t, "repo", "ls", "tests/checkout", "-R")
	if !strings.Contains(listing, "tests/checkout/pom.xml") {
		t.Errorf("ls output = %q", listing)
	}

	out := filepath.Join(t.TempDir(), "dist")
	cli.mustRun(t, "package", checkoutScript, "--out", out)
	if _, err := os.Stat(filepath.Join(out, "TestRunner.groovy")); err != nil {
		t.Errorf("bundle missing script: %v", err)
	}
}

func TestHeadTracker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := repo.NewMemoryRepository()
	owner := types.UserID("alice")
	testutil.SeedRepository(t, r, owner, map[string]string{"proj/pom.xml": "<project/>"})

	head, err := newHeadTracker(ctx, r, owner)
	if err != nil {
		t.Fatalf("newHeadTracker() error = %v", err)
	}
	if moved, err := head.moved(ctx); err != nil || moved {
		t.Errorf("moved() without a save = %v, %v; want false", moved, err)
	}

	testutil.SeedRepository(t, r, owner, map[string]string{"proj/pom.xml": "<project><version>2</version></project>"})
	if moved, err := head.moved(ctx); err != nil || !moved {
		t.Errorf("moved() after a save = %v, %v; want true", moved, err)
	}
	if moved, _ := head.moved(ctx); moved {
		t.Error("moved() reported the same save twice")
	}
}
