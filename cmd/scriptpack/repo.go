// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/pkg/repo"
)

type repoSaveFlagValues struct {
	dir         bool
	message     string
	encoding    string
	properties  []string
	contentFrom string
}

func newRepoCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	repoCmd := &cobra.Command{
		Use:   "repo",
		Short: "Read and write the script repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	repoCmd.AddCommand(
		newRepoSaveCommand(app, rootFlags),
		newRepoListCommand(app, rootFlags),
		newRepoCatCommand(app, rootFlags),
	)
	return repoCmd
}

func newRepoSaveCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &repoSaveFlagValues{}
	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Save a file or directory as a new revision",
		Long: `Save a file or directory as a new revision.

File content is read from --file, or from standard input when --file is "-"
or omitted. Properties are given as key=value; "\n" in a value stands for a
newline, so an ignore list reads --prop 'svn:ignore=target\n.settings'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveEntry(cmd.Context(), app, rootFlags, flags, cmd.InOrStdin(), args[0])
		},
	}
	cmd.Flags().BoolVarP(&flags.dir, "dir", "d", false, "save a directory entry")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "revision description")
	cmd.Flags().StringVar(&flags.encoding, "encoding", repo.EncodingUTF8, "text encoding recorded for the content")
	cmd.Flags().StringArrayVarP(&flags.properties, "prop", "p", nil, "entry property as key=value (repeatable)")
	cmd.Flags().StringVarP(&flags.contentFrom, "file", "f", "-", "local file holding the content")
	return cmd
}

func saveEntry(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *repoSaveFlagValues, stdin io.Reader, path string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	entry := repo.FileEntry{Path: path, Description: flags.message}
	for _, kv := range flags.properties {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid property %q (want key=value)", kv)
		}
		entry.SetProperty(key, strings.ReplaceAll(value, `\n`, "\n"))
	}

	encoding := ""
	if flags.dir {
		entry.FileType = repo.TypeDir
	} else {
		if entry.Content, err = readContent(stdin, flags.contentFrom); err != nil {
			return err
		}
		encoding = flags.encoding
	}
	if err := s.repo.Save(ctx, s.owner, entry, encoding); err != nil {
		return err
	}
	rev, err := s.repo.HeadRevision(ctx, s.owner)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Saved %s at revision %s\n", SuccessStyle.Render("✓"), PathStyle.Render(repo.Normalize(path)), rev)
	return nil
}

func readContent(stdin io.Reader, from string) ([]byte, error) {
	if from == "" || from == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(from)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", from, err)
	}
	return data, nil
}

func newRepoListCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		revision  string
		recursive bool
	)
	cmd := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List repository entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return listEntries(cmd.Context(), app, rootFlags, prefix, revision, recursive)
		},
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "latest", "repository revision")
	cmd.Flags().BoolVarP(&recursive, "recursive", "R", false, "list the whole subtree")
	return cmd
}

func listEntries(ctx context.Context, app *App, rootFlags *rootFlagValues, prefix, revision string, recursive bool) error {
	rev, err := repo.ParseRevision(revision)
	if err != nil {
		return err
	}
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	entries, err := s.repo.FindAll(ctx, s.owner, prefix, rev, recursive)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Path
		if e.IsDir() {
			name += "/"
		}
		fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render(string(e.Type())), name)
	}
	return nil
}

func newRepoCatCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var revision string
	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := repo.ParseRevision(revision)
			if err != nil {
				return err
			}
			s, err := app.newSession(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			e, err := s.repo.FindOne(cmd.Context(), s.owner, args[0], rev)
			if err != nil {
				return err
			}
			if e.IsDir() {
				return fmt.Errorf("%s is a directory", e.Path)
			}
			_, err = app.stdout.Write(e.Content)
			return err
		},
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "latest", "repository revision")
	return cmd
}
