// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/issue"
)

// newConfigCommand creates the `xtask config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect xtask configuration",
		Long: `Inspect xtask configuration.

Configuration is read from xtask.cue at the project root (or --config),
then overridden by XTASK_* environment variables, e.g.
XTASK_FUZZ_TOOLCHAIN=nightly-2020-06-01.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Outside a workspace only defaults and the environment apply.
			root, err := app.projectRoot()
			if err != nil {
				app.Logger().Debug("no project root, showing defaults", "error", err)
				root = ""
			}
			loaded, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return newServiceError(err, issue.ConfigLoadFailedId, "")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "// source: %s\n", loaded.Source(root))
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	return cfgCmd
}
