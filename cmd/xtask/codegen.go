// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/codegen"
)

func newCodegenCommand(app *App) *cobra.Command {
	var watch, verify bool
	cmd := &cobra.Command{
		Use:   "codegen",
		Short: "Regenerate syntax kinds, parser tests and documentation",
		Long: `Regenerate every generated file of the workspace.

With --verify nothing is written and stale files are reported instead.
With --watch xtask keeps regenerating while crate sources change.`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			gen := codegen.New(env.root, env.cfg.Codegen, env.sh)
			mode := codegen.Overwrite
			if verify {
				mode = codegen.Verify
			}
			if err := gen.Run(ctx, mode); err != nil {
				return err
			}
			if !watch {
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ generated files are up to date"))
				return nil
			}
			app.Logger().Info("watching crate sources, press Ctrl+C to stop")
			return gen.Watch(ctx)
		}),
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "regenerate when sources change")
	cmd.Flags().BoolVar(&verify, "verify", false, "fail instead of writing stale files")
	cmd.MarkFlagsMutuallyExclusive("watch", "verify")
	return cmd
}
