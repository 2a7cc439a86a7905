// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"strings"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/toolchain"
)

// RunClippy lints every target of the workspace, allowing the configured
// lints.
func RunClippy(ctx context.Context, sh *notbash.Shell, cfg config.ClippyConfig) error {
	if err := toolchain.EnsureClippy(ctx, sh); err != nil {
		return err
	}
	_, err := sh.Run(ctx, "cargo clippy --all-features --all-targets --%s", allowFlags(cfg.AllowedLints))
	return err
}

func allowFlags(lints []string) string {
	var sb strings.Builder
	for _, lint := range lints {
		sb.WriteString(" -A ")
		sb.WriteString(notbash.Quote(lint))
	}
	return sb.String()
}
