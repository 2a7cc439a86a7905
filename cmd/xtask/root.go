// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/precommit"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xtask",
		Short: "Developer automation for the language server workspace",
		Long: TitleStyle.Render("xtask") + SubtitleStyle.Render(" - developer automation for the language server workspace") + `

xtask drives cargo, rustup, npm, code and git on behalf of contributors:
formatting, linting, code generation, packaging and releases.

` + SubtitleStyle.Render("Examples:") + `
  xtask install --server      Install the language server
  xtask codegen --verify      Check that generated files are fresh
  xtask format --check        Check formatting with stable rustfmt
  xtask config show           Show the effective configuration`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.setVerbose(app.verbose)
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is xtask.cue at the project root)")
	rootCmd.PersistentFlags().StringVar(&app.rootDir, "root", "", "project root (default is the nearest Cargo workspace)")

	rootCmd.AddCommand(
		newInstallCommand(app),
		newCodegenCommand(app),
		newFormatCommand(app),
		newInstallHookCommand(app),
		newLintCommand(app),
		newFuzzCommand(app),
		newPreCacheCommand(app),
		newReleaseCommand(app),
		newDistCommand(app),
		newTidyCommand(app),
		newWorkspaceCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs xtask and exits the process on failure. When the binary was
// installed as a git hook it runs the pre-commit hook instead.
func Execute() {
	app := NewApp(Dependencies{})
	ctx := context.Background()

	if precommit.IsHookInvocation(os.Args[0]) {
		if err := runPreCommitHook(ctx, app); err != nil {
			app.reportError(app.stderr, err)
			os.Exit(exitCode(err))
		}
		return
	}

	if err := fang.Execute(
		ctx,
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			app.reportError(w, err)
		}),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// reportError prints the catalog entry explaining err, if any, then the
// error itself.
func (a *App) reportError(w io.Writer, err error) {
	renderServiceError(w, classifyError(err))
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
}

// formatErrorForDisplay formats an error for user display.
// Suggestions from every ActionableError in the chain are listed.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	return issue.Format(err, verboseMode)
}
