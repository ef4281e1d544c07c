// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/pkg/repo"
)

func newFilesCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var revision string
	cmd := &cobra.Command{
		Use:   "files <script>",
		Short: "List the files a script's bundle would contain",
		Long: `List the files a script's bundle would contain, with their bundle
destinations, without writing anything. Externally resolved dependencies are
not included.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listBundleFiles(cmd.Context(), app, rootFlags, args[0], revision)
		},
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "latest", "repository revision")
	return cmd
}

func listBundleFiles(ctx context.Context, app *App, rootFlags *rootFlagValues, scriptPath, revision string) error {
	rev, err := repo.ParseRevision(revision)
	if err != nil {
		return err
	}
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	if rev.IsLatest() {
		if rev, err = s.repo.HeadRevision(ctx, s.owner); err != nil {
			return err
		}
	}
	script, h, err := s.findScript(ctx, scriptPath, rev)
	if err != nil {
		return err
	}
	entries, err := h.Collect(ctx, s.owner, script, rev)
	if err != nil {
		return packageError(script.Path, "", err)
	}

	base := h.ProjectRoot(script)
	out := app.stdout
	fmt.Fprintf(out, "%s %s (%s, revision %s)\n", TitleStyle.Render("Bundle for"), PathStyle.Render(script.Path), h.Key(), rev)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fmt.Fprintf(out, "  %s -> %s\n", e.Path, h.Remap(base, e))
	}
	fmt.Fprintf(out, "  %s -> %s\n", script.Path, "/"+path.Base(script.Path))
	return nil
}
