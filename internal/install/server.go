// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/lsptools/xtask/internal/notbash"
)

// CheckVersion reports whether the `cargo --version` output names a 1.x
// toolchain with at least requiredMinor. Output it cannot parse passes.
func CheckVersion(out string, requiredMinor int) bool {
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return true
	}
	v := "v" + fields[1]
	if !semver.IsValid(v) || semver.Major(v) != "v1" {
		return true
	}
	_, minor, _ := strings.Cut(semver.MajorMinor(v), ".")
	n, err := strconv.Atoi(minor)
	if err != nil {
		return true
	}
	return n >= requiredMinor
}

func (i *installer) installServer(ctx context.Context, opts ServerOpt) error {
	out, err := i.sh.Run(ctx, "cargo --version")
	if err != nil {
		return err
	}
	oldRust := !CheckVersion(out, i.cfg.Server.RequiredRustMinor)
	if oldRust {
		i.sh.Logger().Warn(i.upgradeHint())
	}

	features := ""
	if opts.Malloc == Jemalloc {
		features = " --features jemalloc"
	}
	crateDir := path.Dir(i.cfg.Server.Manifest)
	_, err = i.sh.Run(ctx, "cargo install --path %s --locked --force%s", notbash.Quote(crateDir), features)
	if err != nil && oldRust {
		i.sh.Logger().Error(i.upgradeHint())
	}
	return err
}

func (i *installer) upgradeHint() string {
	return fmt.Sprintf("%s needs Rust 1.%d or newer, run `rustup update stable` to update",
		i.cfg.Server.Package, i.cfg.Server.RequiredRustMinor)
}
