// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every command.
type rootFlagValues struct {
	verbose    bool
	configPath string
	user       string
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "scriptpack",
		Short: "Package versioned test scripts into distributable bundles",
		Long: TitleStyle.Render("scriptpack") + SubtitleStyle.Render(" - script distribution packaging") + `

scriptpack takes a script stored in a versioned repository, decides which
packaging strategy owns it, gathers its resources and libraries, resolves
external dependencies, and writes a flat bundle ready to ship to agents.

` + SubtitleStyle.Render("Examples:") + `
  scriptpack project create tests checkout --url https://shop.example.com
  scriptpack check tests/checkout/src/main/java/TestRunner.groovy
  scriptpack package tests/checkout/src/main/java/TestRunner.groovy --out ./dist
  scriptpack repo ls tests --recursive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(app.stderr, flags.verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is the platform config dir)")
	rootCmd.PersistentFlags().StringVarP(&flags.user, "user", "u", "", "repository user (overrides the 'user' config key)")

	rootCmd.AddCommand(
		newPackageCommand(app, flags),
		newFilesCommand(app, flags),
		newCheckCommand(app, flags),
		newProjectCommand(app, flags),
		newRepoCommand(app, flags),
		newConfigCommand(app, flags),
		newSysinfoCommand(app),
	)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// configureLogging installs a charmbracelet logger as the slog default.
func configureLogging(w io.Writer, verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "scriptpack",
		Level:           level,
		ReportTimestamp: verbose,
	})
	slog.SetDefault(slog.New(logger))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's status.
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, app.renderStyle(), err, verboseFlag(rootCmd))
		}),
	); err != nil {
		os.Exit(int(exitStatus(err)))
	}
}

func verboseFlag(cmd *cobra.Command) bool {
	v, err := cmd.PersistentFlags().GetBool("verbose")
	return err == nil && v
}

// renderError prints err for the user. Actionable errors get their
// suggestions and, when linked, the rendered catalog entry.
func renderError(w io.Writer, style string, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.reported() {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+err.Error())
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(verbose))
	if entry := ae.Issue(); entry != nil {
		rendered, renderErr := entry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", entry.Id(), "error", renderErr)
			return
		}
		fmt.Fprint(w, rendered)
	}
}
