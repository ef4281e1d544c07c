// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/internal/handler"
	"github.com/scriptpack/scriptpack/internal/issue"
	"github.com/scriptpack/scriptpack/pkg/repo"
)

type projectFlagValues struct {
	strategy string
	name     string
	url      string
	lib      bool
}

func newProjectCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Scaffold script projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := &projectFlagValues{}
	createCmd := &cobra.Command{
		Use:   "create <base-path> <directory>",
		Short: "Create a script project from templates",
		Long: `Create a script project from templates.

The project directory is created under <base-path> with the strategy's
templates expanded into it. Use "." as <base-path> for the repository root.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return createProject(cmd.Context(), app, rootFlags, flags, args[0], args[1])
		},
	}
	createCmd.Flags().StringVarP(&flags.strategy, "strategy", "s", handler.GroovyMavenKey,
		fmt.Sprintf("packaging strategy (%s or %s)", handler.GroovyMavenKey, handler.GroovyScriptKey))
	createCmd.Flags().StringVar(&flags.name, "name", "", "test name substituted into the templates (default: the directory name)")
	createCmd.Flags().StringVar(&flags.url, "url", "", "target URL; its host is recorded on the script")
	createCmd.Flags().BoolVar(&flags.lib, "lib", false, "also create an empty lib directory")

	projectCmd.AddCommand(createCmd)
	return projectCmd
}

func createProject(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *projectFlagValues, basePath, dir string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	h, ok := s.registry.ByKey(flags.strategy)
	if !ok {
		keys := make([]string, 0, len(s.registry.Handlers()))
		for _, h := range s.registry.Handlers() {
			keys = append(keys, h.Key())
		}
		slices.Sort(keys)
		return fmt.Errorf("unknown strategy %q (available: %s)", flags.strategy, strings.Join(keys, ", "))
	}

	if basePath == "." {
		basePath = ""
	}
	name := flags.name
	if name == "" {
		name = dir
	}
	if _, err := h.CreateProject(ctx, s.owner, handler.ProjectRequest{
		BasePath:   basePath,
		FileName:   dir,
		Name:       name,
		URL:        flags.url,
		IncludeLib: flags.lib,
	}); err != nil {
		return scaffoldError(err)
	}

	projectPath := repo.Join(basePath, dir)
	fmt.Fprintf(app.stdout, "%s Created %s project %s\n", SuccessStyle.Render("✓"), h.Title(), PathStyle.Render(projectPath))
	fmt.Fprintf(app.stdout, "  Package it with: scriptpack package %s\n", h.DefaultScriptPath(projectPath))
	return nil
}

func scaffoldError(err error) error {
	ctx := issue.NewErrorContext().WithOperation("create project").Wrap(err)
	var se *handler.ScaffoldError
	if errors.As(err, &se) {
		ctx.WithResource(se.File)
		if errors.Is(err, fs.ErrNotExist) {
			ctx.WithIssue(issue.TemplateNotFoundId)
		} else {
			ctx.WithIssue(issue.ScaffoldFailedId)
		}
	}
	return ctx.BuildError()
}
