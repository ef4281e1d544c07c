// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

func newCheckCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>",
		Short: "Show which packaging strategies accept a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkScript(cmd.Context(), app, rootFlags, args[0])
		},
	}
}

func checkScript(ctx context.Context, app *App, rootFlags *rootFlagValues, scriptPath string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	script, err := s.repo.FindOne(ctx, s.owner, scriptPath, repo.LatestRevision)
	if err != nil {
		return err
	}

	selected := false
	for _, h := range s.registry.Handlers() {
		mark := SubtitleStyle.Render("-")
		note := ""
		if h.CanHandle(ctx, script) {
			mark = SuccessStyle.Render("✓")
			if !selected {
				note = SuccessStyle.Render(" (selected)")
				selected = true
			}
		}
		fmt.Fprintf(app.stdout, "%s %s%s%s\n", mark, labelStyle.Render(h.Key()), h.Title(), note)
	}
	if !selected {
		return &ExitError{Code: types.ExitCodeFailure, Err: fmt.Errorf("no packaging strategy accepts %s", scriptPath)}
	}
	return nil
}
