// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/precommit"
)

func newInstallHookCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install-pre-commit-hook",
		Short: "Install xtask as the git pre-commit hook",
		Long: `Copy the running xtask binary to .git/hooks/pre-commit.

The hook formats the workspace with the stable rustfmt and re-stages the
files that were already staged.`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(_ context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			hook, err := precommit.InstallHook(env.root)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ installed git hook ")+CmdStyle.Render(hook))
			return nil
		}),
	}
}

// runPreCommitHook is what the binary does when git runs it as a hook.
func runPreCommitHook(ctx context.Context, app *App) error {
	env, err := app.env(ctx)
	if err != nil {
		return err
	}
	return withExitCode(precommit.RunHook(ctx, env.sh, env.root))
}
