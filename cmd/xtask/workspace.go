// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lsptools/xtask/internal/cargo"
	"github.com/lsptools/xtask/internal/project"
)

type workspaceFlags struct {
	topo              bool
	features          []string
	noDefaultFeatures bool
	target            string
	loadOutDirs       bool
}

// cargoConfig maps the flags to a cargo.Config. Naming features or
// disabling the default ones turns off --all-features.
func (f workspaceFlags) cargoConfig() cargo.Config {
	cfg := cargo.DefaultConfig()
	if len(f.features) > 0 || f.noDefaultFeatures {
		cfg.AllFeatures = false
	}
	cfg.Features = f.features
	cfg.NoDefaultFeatures = f.noDefaultFeatures
	cfg.Target = f.target
	cfg.LoadOutDirsFromCheck = f.loadOutDirs
	return cfg
}

func newWorkspaceCommand(app *App) *cobra.Command {
	var flags workspaceFlags
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "List the member packages of the cargo workspace",
		Long: `List the member packages of the cargo workspace as resolved by
cargo metadata, one per line: package flag, edition and manifest directory.

With --topo packages are ordered so that dependencies come first.`,
		Args: cobra.NoArgs,
		RunE: app.runTask(func(ctx context.Context, env *taskEnv, cmd *cobra.Command, _ []string) error {
			manifest := filepath.Join(env.root, project.ManifestName)
			ws, err := cargo.FromMetadata(ctx, env.sh, manifest, flags.cargoConfig())
			if err != nil {
				return err
			}
			pkgs := ws.Packages()
			if flags.topo {
				if pkgs, err = ws.TopologicalOrder(); err != nil {
					return err
				}
			}
			printPackages(cmd.OutOrStdout(), ws, pkgs, flags.loadOutDirs)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&flags.topo, "topo", false, "order packages by dependencies")
	cmd.Flags().StringSliceVar(&flags.features, "features", nil, "comma-separated features to activate")
	cmd.Flags().BoolVar(&flags.noDefaultFeatures, "no-default-features", false, "do not activate the default feature")
	cmd.Flags().StringVar(&flags.target, "target", "", "resolve for this target `triple`")
	cmd.Flags().BoolVar(&flags.loadOutDirs, "load-out-dirs", false, "run cargo check to find OUT_DIRs and proc-macro dylibs")
	return cmd
}

func printPackages(w io.Writer, ws *cargo.Workspace, pkgs []cargo.Package, details bool) {
	root := ws.WorkspaceRoot()
	for _, id := range pkgs {
		pkg := ws.Package(id)
		if !pkg.IsMember {
			continue
		}
		dir := pkg.Root()
		if rel, err := filepath.Rel(root, dir); err == nil {
			dir = rel
		}
		fmt.Fprintf(w, "%s %s %s\n", CmdStyle.Render(ws.PackageFlag(pkg)), VerboseStyle.Render(pkg.Edition.String()), filepath.ToSlash(dir))
		if !details {
			continue
		}
		if pkg.OutDir != "" {
			fmt.Fprintf(w, "  out_dir: %s\n", pkg.OutDir)
		}
		if pkg.ProcMacroDylibPath != "" {
			fmt.Fprintf(w, "  proc_macro: %s\n", pkg.ProcMacroDylibPath)
		}
	}
}
