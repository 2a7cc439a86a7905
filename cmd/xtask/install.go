// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/install"
)

type installFlags struct {
	clientCode bool
	server     bool
	jemalloc   bool
}

// installCmd turns the flags into an install selection. Without
// --client-code or --server both parts are installed.
func (f installFlags) installCmd() install.InstallCmd {
	var ic install.InstallCmd
	if !f.server {
		client := install.VSCode
		ic.Client = &client
	}
	if !f.clientCode {
		opt := install.ServerOpt{Malloc: install.System}
		if f.jemalloc {
			opt.Malloc = install.Jemalloc
		}
		ic.Server = &opt
	}
	return ic
}

func newInstallCommand(app *App) *cobra.Command {
	var flags installFlags
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the language server and the VS Code extension",
		Long: `Install the language server with cargo and the VS Code extension with npm.

` + SubtitleStyle.Render("Examples:") + `
  xtask install                  Install both
  xtask install --server         Install only the server
  xtask install --client-code    Install only the extension`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			if err := flags.installCmd().Run(ctx, env.sh, env.root, env.cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ installation complete"))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&flags.clientCode, "client-code", false, "install only the VS Code extension")
	cmd.Flags().BoolVar(&flags.server, "server", false, "install only the language server")
	cmd.Flags().BoolVar(&flags.jemalloc, "jemalloc", false, "build the server with jemalloc")
	cmd.MarkFlagsMutuallyExclusive("client-code", "server")
	cmd.MarkFlagsMutuallyExclusive("client-code", "jemalloc")
	return cmd
}
