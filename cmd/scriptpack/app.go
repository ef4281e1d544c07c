// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/scriptpack/scriptpack/internal/config"
	"github.com/scriptpack/scriptpack/internal/container"
	"github.com/scriptpack/scriptpack/internal/gitrepo"
	"github.com/scriptpack/scriptpack/internal/handler"
	"github.com/scriptpack/scriptpack/internal/issue"
	"github.com/scriptpack/scriptpack/internal/resolver"
	"github.com/scriptpack/scriptpack/pkg/repo"
	"github.com/scriptpack/scriptpack/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and resolves configuration, the repository and the
	// handler registry through it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		openRepository func(cfg *config.Config) (repo.Repository, error)

		mu          sync.Mutex
		repos       map[string]repo.Repository
		issueStyle  string
		verboseLogs bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
		// OpenRepository builds the repository for a configuration.
		OpenRepository func(cfg *config.Config) (repo.Repository, error)
	}

	// session is the per-invocation view of the App: loaded configuration,
	// the acting user, the repository and the handler registry.
	session struct {
		cfg      *config.Config
		owner    types.UserID
		repo     repo.Repository
		registry *handler.Registry
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	app := &App{
		Config:         deps.Config,
		stdout:         deps.Stdout,
		stderr:         deps.Stderr,
		openRepository: deps.OpenRepository,
		repos:          make(map[string]repo.Repository),
		issueStyle:     string(config.ColorSchemeDark),
	}
	if app.openRepository == nil {
		app.openRepository = app.defaultRepository
	}
	return app
}

// defaultRepository opens the configured backend. Repositories are cached
// per root so repeated commands in one process (watch mode, tests) share
// state, which is what gives the memory backend any use at all.
func (a *App) defaultRepository(cfg *config.Config) (repo.Repository, error) {
	root, err := cfg.RepositoryRoot()
	if err != nil {
		return nil, err
	}
	key := string(cfg.Repository.Backend) + ":" + root

	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.repos[key]; ok {
		return r, nil
	}

	var r repo.Repository
	switch cfg.Repository.Backend {
	case config.BackendMemory:
		r = repo.NewMemoryRepository()
	default:
		g, err := gitrepo.New(types.FilesystemPath(root))
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("open repository").
				WithResource(root).
				WithIssue(issue.RepositoryOpenFailedId).
				WithSuggestion("Check that the directory is writable").
				WithSuggestion("Set repository.root in the configuration to another location").
				Wrap(err).
				BuildError()
		}
		r = g
	}
	a.repos[key] = r
	return r, nil
}

// newSession loads configuration and builds the repository and registry.
// The --user flag overrides the configured user.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	a.applyUI(cfg, flags)

	owner := types.UserID(cfg.User)
	if flags.user != "" {
		owner = types.UserID(flags.user)
	}
	if owner == "" {
		return nil, issue.NewErrorContext().
			WithOperation("determine the repository user").
			WithSuggestion("Pass --user <name>").
			WithSuggestion("Set 'user' in the configuration file or SCRIPTPACK_USER").
			Wrap(types.ErrInvalidUserID).
			BuildError()
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	r, err := a.openRepository(cfg)
	if err != nil {
		return nil, err
	}
	registry, err := newRegistry(cfg, r)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, owner: owner, repo: r, registry: registry}, nil
}

// applyUI adopts the configured color scheme for rendered issues and turns
// on debug logging when ui.verbose is set.
func (a *App) applyUI(cfg *config.Config, flags *rootFlagValues) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issueStyle = string(cfg.UI.ColorScheme)
	if cfg.UI.Verbose && !flags.verbose && !a.verboseLogs {
		a.verboseLogs = true
		configureLogging(a.stderr, true)
	}
}

func (a *App) renderStyle() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.issueStyle
}

// newRegistry builds every packaging strategy over r.
func newRegistry(cfg *config.Config, r repo.Repository) (*handler.Registry, error) {
	factory, err := resolver.NewFactory(resolverConfig(cfg))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("configure the dependency resolver").
			WithResource(string(cfg.Resolver.Mode)).
			WithIssue(issue.ResolverNotAvailableId).
			Wrap(err).
			BuildError()
	}
	templates := handler.NewTemplateSource(cfg.Templates.Dir)
	return handler.NewRegistry(
		handler.NewGroovyMavenHandler(r, factory, templates),
		handler.NewGroovyScriptHandler(r, templates),
	), nil
}

func resolverConfig(cfg *config.Config) resolver.Config {
	return resolver.Config{
		Mode:     resolver.Mode(cfg.Resolver.Mode),
		Binary:   cfg.Resolver.Binary,
		Image:    cfg.Resolver.Image,
		Engine:   container.EngineType(cfg.ContainerEngine),
		CacheDir: cfg.Resolver.CacheDir,
		Command:  cfg.Resolver.Command,
	}
}

// findScript loads the script entry at rev and the strategy that owns it.
func (s *session) findScript(ctx context.Context, path string, rev repo.Revision) (repo.FileEntry, handler.Handler, error) {
	script, err := s.repo.FindOne(ctx, s.owner, path, rev)
	if err != nil {
		return repo.FileEntry{}, nil, issue.NewErrorContext().
			WithOperation("find script").
			WithResource(path).
			WithIssue(issue.ScriptNotFoundId).
			WithSuggestion(fmt.Sprintf("List the repository with 'scriptpack repo ls %s'", repo.Dir(path))).
			Wrap(err).
			BuildError()
	}
	h, err := s.registry.Find(ctx, script)
	if err != nil {
		return script, nil, issue.NewErrorContext().
			WithOperation("select a packaging strategy").
			WithResource(path).
			WithIssue(issue.NoHandlerId).
			Wrap(err).
			BuildError()
	}
	return script, h, nil
}
