// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/project"
)

type (
	// App wires CLI flags and shared dependencies. Every command handler
	// receives an App and resolves its task environment through it.
	App struct {
		Config      config.Provider
		stdout      io.Writer
		stderr      io.Writer
		logger      *log.Logger
		middlewares []notbash.ExecMiddleware

		verbose bool
		cfgFile string
		rootDir string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
		// ExecMiddlewares wrap every command run by task shells.
		ExecMiddlewares []notbash.ExecMiddleware
	}

	// taskEnv is what a task needs to run: the project root, the effective
	// configuration and a shell rooted at the project.
	taskEnv struct {
		root string
		cfg  *config.Config
		sh   *notbash.Shell
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
	return &App{
		Config:      deps.Config,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		logger:      log.NewWithOptions(deps.Stderr, log.Options{}),
		middlewares: deps.ExecMiddlewares,
	}
}

// Logger returns the CLI logger. Its level follows --verbose.
func (a *App) Logger() *log.Logger {
	return a.logger
}

func (a *App) setVerbose(v bool) {
	a.verbose = v
	if v {
		a.logger.SetLevel(log.DebugLevel)
	} else {
		a.logger.SetLevel(log.InfoLevel)
	}
}

// projectRoot applies --root and resolves the project root.
func (a *App) projectRoot() (string, error) {
	project.SetRootOverride(a.rootDir)
	return project.Root()
}

func (a *App) loadConfig(ctx context.Context, root string) (*config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile, ProjectRoot: root})
	if err != nil {
		return nil, err
	}
	if loaded.UI.Verbose && !a.verbose {
		a.setVerbose(true)
	}
	a.logger.Debug("configuration loaded", "source", loaded.Source(root))
	return loaded, nil
}

func (a *App) shell(dir string) *notbash.Shell {
	return notbash.New(dir,
		notbash.WithOutput(a.stdout, a.stderr),
		notbash.WithLogger(a.logger),
		notbash.WithExecMiddleware(a.middlewares...),
	)
}

// env resolves the project root and configuration for a task.
func (a *App) env(ctx context.Context) (*taskEnv, error) {
	root, err := a.projectRoot()
	if err != nil {
		return nil, err
	}
	loaded, err := a.loadConfig(ctx, root)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("project resolved", "root", root)
	return &taskEnv{root: root, cfg: loaded.Config, sh: a.shell(root)}, nil
}

// runTask adapts a task to a cobra RunE: it resolves the environment and
// maps child process failures to exit codes.
func (a *App) runTask(fn func(ctx context.Context, env *taskEnv, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := a.env(cmd.Context())
		if err != nil {
			return err
		}
		return withExitCode(fn(cmd.Context(), env, cmd, args))
	}
}
