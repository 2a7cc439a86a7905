// SPDX-License-Identifier: MPL-2.0

// Package toolchain checks the Rust toolchain components xtask depends on.
package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

const (
	// Stable is the toolchain formatting is always pinned to.
	Stable = "stable"

	// stableEnv pins a single command line to the stable toolchain without
	// touching the shell's environment, so concurrent callers do not race.
	stableEnv = "RUSTUP_TOOLCHAIN=" + Stable
)

// PinStable makes subsequent commands of sh use the stable toolchain.
func PinStable(sh *notbash.Shell) func() {
	return sh.Pushenv("RUSTUP_TOOLCHAIN", Stable)
}

// EnsureRustfmt checks that rustfmt comes from the stable toolchain.
func EnsureRustfmt(ctx context.Context, sh *notbash.Shell) error {
	out, err := sh.Capture(ctx, stableEnv+" rustfmt --version")
	if err == nil && strings.Contains(out, Stable) {
		return nil
	}
	cause := err
	if cause == nil {
		cause = fmt.Errorf("unexpected version %q", out)
	}
	return issue.NewErrorContext().
		WithOperation("run rustfmt from toolchain 'stable'").
		WithSuggestion("Run `rustup component add rustfmt --toolchain stable` to install it").
		WithIssue(issue.RustfmtNotInstalledId).
		Wrap(cause).
		BuildError()
}

// EnsureClippy checks that `cargo clippy` is available.
func EnsureClippy(ctx context.Context, sh *notbash.Shell) error {
	if _, err := sh.Capture(ctx, "cargo clippy --version"); err != nil {
		return issue.NewErrorContext().
			WithOperation("run cargo clippy").
			WithSuggestion("Run `rustup component add clippy` to install it").
			WithIssue(issue.ClippyNotInstalledId).
			Wrap(err).
			BuildError()
	}
	return nil
}

// Reformat pipes text through the stable rustfmt using the project's
// rustfmt.toml.
func Reformat(ctx context.Context, sh *notbash.Shell, root, text string) (string, error) {
	if err := EnsureRustfmt(ctx, sh); err != nil {
		return "", err
	}
	return sh.CaptureInput(ctx, text, stableEnv+" rustfmt --config-path %s --config fn_single_line=true",
		notbash.Quote(filepath.Join(root, "rustfmt.toml")))
}
