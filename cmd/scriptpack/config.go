// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/internal/config"
)

// newConfigCommand creates the `scriptpack config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scriptpack configuration",
		Long: `Manage scriptpack configuration.

Configuration is stored in:
  - Linux: ~/.config/scriptpack/config.cue
  - macOS: ~/Library/Application Support/scriptpack/config.cue
  - Windows: %APPDATA%\scriptpack\config.cue

Every key can be overridden with SCRIPTPACK_<KEY>, dots replaced by
underscores (for example SCRIPTPACK_RESOLVER_MODE=container).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Configuration file: %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.Config.Source(config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}
			if path == "" {
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	opts := config.LoadOptions{ConfigFilePath: rootFlags.configPath}
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return err
	}
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	source, _ := app.Config.Source(opts)
	if source == "" {
		source = SubtitleStyle.Render("(using defaults)")
	}
	row := func(key string, value any) {
		fmt.Fprintf(out, "%s%v\n", labelStyle.Render(key), value)
	}
	row("config file", source)
	fmt.Fprintln(out)

	user := cfg.User
	if user == "" {
		user = SubtitleStyle.Render("(not set)")
	}
	root, err := cfg.RepositoryRoot()
	if err != nil {
		return err
	}
	row("user", user)
	row("container_engine", cfg.ContainerEngine)
	row("repository.root", root)
	row("repository.backend", cfg.Repository.Backend)
	row("resolver.mode", cfg.Resolver.Mode)
	row("resolver.binary", cfg.Resolver.Binary)
	row("resolver.image", cfg.Resolver.Image)
	if cfg.Resolver.Command != "" {
		row("resolver.command", cfg.Resolver.Command)
	}
	if cfg.Resolver.CacheDir != "" {
		row("resolver.cache_dir", cfg.Resolver.CacheDir)
	}
	templates := cfg.Templates.Dir
	if templates == "" {
		templates = SubtitleStyle.Render("(built-in)")
	}
	row("templates.dir", templates)
	row("ui.color_scheme", cfg.UI.ColorScheme)
	row("ui.verbose", cfg.UI.Verbose)
	return nil
}
