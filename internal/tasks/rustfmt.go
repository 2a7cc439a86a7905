// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"

	"github.com/lsptools/xtask/internal/codegen"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/toolchain"
)

// RunRustfmt formats the workspace with the stable rustfmt. In Verify mode
// it only checks that the sources are formatted.
func RunRustfmt(ctx context.Context, sh *notbash.Shell, mode codegen.Mode) error {
	defer toolchain.PinStable(sh)()

	if err := toolchain.EnsureRustfmt(ctx, sh); err != nil {
		return err
	}
	if mode == codegen.Verify {
		_, err := sh.Run(ctx, "cargo fmt -- --check")
		return err
	}
	_, err := sh.Run(ctx, "cargo fmt")
	return err
}
