// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/codegen"
	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/tasks"
)

func newFormatCommand(app *App) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format the workspace with the stable rustfmt",
		Args:  cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, _ *cobra.Command, _ []string) error {
			mode := codegen.Overwrite
			if check {
				mode = codegen.Verify
			}
			return tasks.RunRustfmt(ctx, env.sh, mode)
		}),
	}
	cmd.Flags().BoolVar(&check, "check", false, "only check that files are formatted")
	return cmd
}

func newLintCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run clippy on all targets and features",
		Long: `Run clippy on all targets and features.

Lints listed in clippy.allowed_lints of xtask.cue are passed as -A.`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, _ *cobra.Command, _ []string) error {
			return tasks.RunClippy(ctx, env.sh, env.cfg.Clippy)
		}),
	}
}

func newFuzzCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fuzz-tests",
		Short: "Run the parser fuzzer with cargo-fuzz",
		Args:  cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, _ *cobra.Command, _ []string) error {
			return tasks.RunFuzzer(ctx, env.sh, env.cfg.Fuzz)
		}),
	}
}

func newTidyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tidy",
		Short: "Check Rust sources for whitespace, TODO and dbg! leftovers",
		Args:  cobra.NoArgs,
		RunE: app.runTask(func(_ context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			violations, err := tasks.Tidy(env.root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintln(out, WarningStyle.Render(v.String()))
			}
			if len(violations) > 0 {
				return issue.Bail("tidy found %d problem(s)", len(violations))
			}
			fmt.Fprintln(out, SuccessStyle.Render("✓ tidy"))
			return nil
		}),
	}
}

func newPreCacheCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pre-cache",
		Short: "Remove workspace artifacts from target/ before CI caches it",
		Args:  cobra.NoArgs,
		RunE: app.runTask(func(_ context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			report, err := tasks.RunPreCache(env.root, env.cfg.PreCache)
			if err != nil {
				return err
			}
			for _, path := range report.Removed {
				app.Logger().Debug("removed", "path", path)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("✓ removed %d cache entries", len(report.Removed))))
			return nil
		}),
	}
}
