// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

// RunFuzzer runs the configured cargo-fuzz target, installing cargo-fuzz
// first when it is missing.
func RunFuzzer(ctx context.Context, sh *notbash.Shell, cfg config.FuzzConfig) error {
	defer sh.Pushd(cfg.Dir)()

	if _, err := sh.Capture(ctx, "cargo fuzz --help"); err != nil {
		sh.Logger().Warn("cargo-fuzz not found, installing it")
		if _, err := sh.Run(ctx, "cargo install cargo-fuzz"); err != nil {
			return issue.NewErrorContext().
				WithOperation("install cargo-fuzz").
				WithIssue(issue.CargoFuzzNotInstalledId).
				Wrap(err).
				BuildError()
		}
	}

	_, err := sh.Run(ctx, "rustup run %s -- cargo fuzz run %s",
		notbash.Quote(cfg.Toolchain), notbash.Quote(cfg.Target))
	return err
}
