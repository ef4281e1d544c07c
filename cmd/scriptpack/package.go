// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/internal/gitrepo"
	"github.com/scriptpack/scriptpack/internal/handler"
	"github.com/scriptpack/scriptpack/internal/issue"
	"github.com/scriptpack/scriptpack/internal/watch"
	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

type packageFlagValues struct {
	out      string
	revision string
	testID   int64
	watch    bool
	debounce time.Duration
}

func newPackageCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &packageFlagValues{}
	cmd := &cobra.Command{
		Use:   "package <script>",
		Short: "Write the distribution bundle for a script",
		Long: `Write the distribution bundle for a script.

The target directory must be new, empty, or an earlier bundle; it is
emptied first. The script's packaging strategy collects its resources and
libraries, flattens their paths, and for Maven projects copies the declared
dependencies into lib/.

With --watch (git backend only) the project directory in the owner's work
tree is watched, and the bundle is rebuilt when a change there comes with a
new revision, as written by 'scriptpack repo save'. Edits that are not saved
to the repository are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.watch {
				return runPackageWatch(cmd.Context(), app, rootFlags, flags, args[0])
			}
			return runPackage(cmd.Context(), app, rootFlags, flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.out, "out", "o", "dist", "target directory for the bundle")
	cmd.Flags().StringVarP(&flags.revision, "revision", "r", "latest", "repository revision to package")
	cmd.Flags().Int64Var(&flags.testID, "test-id", 0, "run identifier recorded in logs")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-package whenever a new revision of the project is saved")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-packaging in watch mode")
	return cmd
}

func runPackage(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *packageFlagValues, scriptPath string) error {
	rev, err := repo.ParseRevision(flags.revision)
	if err != nil {
		return err
	}
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	script, h, err := s.findScript(ctx, scriptPath, rev)
	if err != nil {
		return err
	}

	out := app.stdout
	fmt.Fprintf(out, "%s %s with %s\n", TitleStyle.Render("Packaging"), PathStyle.Render(script.Path), h.Title())
	bundle, err := h.Materialize(ctx, handler.MaterializeRequest{
		TestID:    flags.testID,
		Owner:     s.owner,
		Script:    script,
		Revision:  rev,
		TargetDir: flags.out,
		Output:    out,
	})
	if err != nil {
		return packageError(script.Path, flags.out, err)
	}
	if !bundle.Success {
		fmt.Fprintf(app.stderr, "%s bundle written to %s but dependency resolution failed\n",
			WarningStyle.Render("!"), bundle.Root)
		renderError(app.stderr, app.renderStyle(), issue.NewErrorContext().
			WithOperation("copy dependencies").
			WithResource(script.Path).
			WithIssue(issue.DependencyCopyFailedId).
			Build(), rootFlags.verbose)
		return &ExitError{Code: types.ExitCodeFailure}
	}
	fmt.Fprintf(out, "%s %d files in %s (script %s)\n",
		SuccessStyle.Render("✓"), len(bundle.Copies), bundle.Root, bundle.ScriptPath)
	return nil
}

// packageError links materialization failures to the issue catalog.
func packageError(scriptPath, out string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("package script").
		WithResource(scriptPath).
		Wrap(err)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		ctx.WithIssue(issue.DescriptorNotFoundId)
	case errors.Is(err, handler.ErrUnsafeTarget):
		ctx.WithSuggestion(fmt.Sprintf("Pass --out with a new or empty directory; only earlier bundles (marked by %s) are cleared", handler.BundleMarker))
	case errors.Is(err, os.ErrPermission):
		ctx.WithIssue(issue.PermissionDeniedId).
			WithSuggestion(fmt.Sprintf("Check that %s is writable", out))
	}
	return ctx.BuildError()
}

// runPackageWatch packages once, then again after changes below the script's
// project directory in the owner's work tree that moved the head revision.
func runPackageWatch(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *packageFlagValues, scriptPath string) error {
	if rev, err := repo.ParseRevision(flags.revision); err != nil || !rev.IsLatest() {
		return errors.New("--watch always packages the latest revision; drop --revision")
	}
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	g, ok := s.repo.(*gitrepo.Repository)
	if !ok {
		return fmt.Errorf("--watch needs the git repository backend, not %q", s.cfg.Repository.Backend)
	}
	script, h, err := s.findScript(ctx, scriptPath, repo.LatestRevision)
	if err != nil {
		return err
	}
	workTree, err := g.WorkTree(s.owner)
	if err != nil {
		return err
	}
	projectDir := h.ProjectRoot(script)
	ignore := []string{"**/.scriptpack", "**/.scriptpack/**"}
	if dir, err := s.repo.FindOne(ctx, s.owner, projectDir, repo.LatestRevision); err == nil {
		ignore = append(ignore, watch.IgnorePatterns("", dir.Property(repo.PropIgnore))...)
	}

	pkg := func(ctx context.Context) {
		if err := runPackage(ctx, app, rootFlags, flags, scriptPath); err != nil {
			renderError(app.stderr, app.renderStyle(), err, rootFlags.verbose)
		}
	}
	pkg(ctx)
	head, err := newHeadTracker(ctx, s.repo, s.owner)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		BaseDir:  filepath.Join(workTree, filepath.FromSlash(projectDir)),
		Ignore:   ignore,
		Debounce: flags.debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			moved, err := head.moved(ctx)
			if err != nil {
				return err
			}
			if !moved {
				fmt.Fprintf(app.stdout, "\n%s %d unsaved change(s) ignored; save them with 'scriptpack repo save'\n",
					WarningStyle.Render("!"), len(changed))
				return nil
			}
			fmt.Fprintf(app.stdout, "\n%s %d change(s), packaging again\n", PathStyle.Render("→"), len(changed))
			pkg(ctx)
			return nil
		},
		Stderr: app.stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	fmt.Fprintf(app.stdout, "\n%s Watching %s (Ctrl+C to stop)\n", PathStyle.Render("→"), projectDir)
	return w.Run(ctx)
}

// headTracker reports whether the owner's head revision moved since the last
// check. Work tree edits never saved through the repository leave it in place.
type headTracker struct {
	repo  repo.Repository
	owner types.UserID
	last  repo.Revision
}

func newHeadTracker(ctx context.Context, r repo.Repository, owner types.UserID) (*headTracker, error) {
	head, err := r.HeadRevision(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read head revision: %w", err)
	}
	return &headTracker{repo: r, owner: owner, last: head}, nil
}

func (h *headTracker) moved(ctx context.Context) (bool, error) {
	head, err := h.repo.HeadRevision(ctx, h.owner)
	if err != nil {
		return false, fmt.Errorf("failed to read head revision: %w", err)
	}
	if head == h.last {
		return false, nil
	}
	h.last = head
	return true, nil
}
