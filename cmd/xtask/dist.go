// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/dist"
)

func newDistCommand(app *App) *cobra.Command {
	var (
		opts   dist.Options
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "dist",
		Short: "Build release artifacts into dist/",
		Long: `Build the gzipped server binary, and the .vsix extension when --client is
given, into dist/ together with a checksums.txt.

With --verify nothing is built: the files in dist/ are checked against
checksums.txt.`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			dir := dist.Dir(env.root)
			if verify {
				if err := dist.VerifyDir(dir); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ checksums match in ")+CmdStyle.Render(dir))
				return nil
			}
			if err := dist.Run(ctx, env.sh, env.root, env.cfg, opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ artifacts written to ")+CmdStyle.Render(dir))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&opts.Nightly, "nightly", false, "build nightly artifacts")
	cmd.Flags().StringVar(&opts.ClientVersion, "client", "", "also package the extension with this `version`")
	cmd.Flags().BoolVar(&verify, "verify", false, "verify dist/ against checksums.txt")
	cmd.MarkFlagsMutuallyExclusive("verify", "nightly")
	cmd.MarkFlagsMutuallyExclusive("verify", "client")
	return cmd
}
