// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/release"
)

func newReleaseCommand(app *App) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Reset the release branch and write this week's changelog",
		Long: `Reset the release branch to the nightly tag, push it, write the changelog
post into the website checkout and copy the user docs there.

With --dry-run the release branch is left alone.`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			res, err := release.Run(ctx, env.sh, env.root, env.cfg.Release, dryRun)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, SuccessStyle.Render("✓ wrote ")+CmdStyle.Render(res.Changelog))
			fmt.Fprintln(out, SubtitleStyle.Render("Merged since the last release:"))
			fmt.Fprintln(out, "  "+CmdStyle.Render(res.LogCommand()))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not touch the release branch")
	return cmd
}
