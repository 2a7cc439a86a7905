// SPDX-License-Identifier: MPL-2.0

// Package dist builds the release artifacts: the packaged VS Code extension
// and a gzipped server binary per platform, plus their checksums.
package dist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/klauspost/compress/gzip"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/notbash"
)

const (
	// NightlyTag is the release tag of nightly builds.
	NightlyTag = "nightly"

	devVersion = "0.4.0-dev"
	muslTarget = "x86_64-unknown-linux-musl"
)

// ErrUnsupportedOS is returned when no server artifact name exists for the
// host platform.
var ErrUnsupportedOS = errors.New("unsupported OS")

type (
	// Options selects what Run builds.
	Options struct {
		Nightly bool
		// ClientVersion, when set, also packages the extension with this version.
		ClientVersion string
	}

	builder struct {
		sh   *notbash.Shell
		root string
		cfg  *config.Config
		goos string
	}
)

// Dir returns the artifact directory of the project at root.
func Dir(root string) string {
	return filepath.Join(root, "dist")
}

// Run recreates dist/ and fills it with the artifacts selected by opts.
func Run(ctx context.Context, sh *notbash.Shell, root string, cfg *config.Config, opts Options) error {
	b := &builder{sh: sh, root: root, cfg: cfg, goos: runtime.GOOS}
	return b.run(ctx, opts)
}

func (b *builder) run(ctx context.Context, opts Options) error {
	dir := Dir(b.root)
	if err := notbash.RmRf(dir); err != nil {
		return err
	}
	if err := notbash.MkdirP(dir); err != nil {
		return err
	}

	if opts.ClientVersion != "" {
		tag := NightlyTag
		if !opts.Nightly {
			var err error
			if tag, err = b.sh.Run(ctx, "git describe --tags"); err != nil {
				return err
			}
		}
		if err := b.distClient(ctx, opts.ClientVersion, tag, opts.Nightly); err != nil {
			return err
		}
	}
	if err := b.distServer(ctx, opts.Nightly); err != nil {
		return err
	}
	return WriteChecksums(dir)
}

func (b *builder) distClient(ctx context.Context, version, tag string, nightly bool) (err error) {
	defer b.sh.Pushd(filepath.Join(b.root, filepath.FromSlash(b.cfg.Client.Dir)))()

	patch, err := NewPatch(filepath.Join(b.sh.Dir(), "package.json"))
	if err != nil {
		return err
	}
	patch.
		Replace(fmt.Sprintf(`"version": %q`, devVersion), fmt.Sprintf(`"version": %q`, version)).
		Replace(`"releaseTag": null`, fmt.Sprintf(`"releaseTag": %q`, tag))
	if nightly {
		name := b.cfg.Client.ExtensionID
		patch.Replace(fmt.Sprintf(`"displayName": %q`, name), fmt.Sprintf(`"displayName": %q`, name+" (nightly)"))
	} else {
		patch.Replace(`"enableProposedApi": true,`, "")
	}
	if err := patch.Commit(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, patch.Restore())
	}()

	if _, err := b.sh.Run(ctx, "npm ci"); err != nil {
		return err
	}
	_, err = b.sh.Run(ctx, "npx vsce package -o %s", notbash.Quote(filepath.Join(Dir(b.root), b.cfg.Client.Vsix)))
	return err
}

func (b *builder) distServer(ctx context.Context, nightly bool) error {
	bin := b.cfg.Server.Bin
	manifest := "./" + b.cfg.Server.Manifest

	var src, platform string
	switch b.goos {
	case "linux":
		restore := b.sh.Pushenv("CC", "clang")
		defer restore()
		if _, err := b.sh.Run(ctx, "cargo build --manifest-path %s --bin %s --target %s --release",
			notbash.Quote(manifest), notbash.Quote(bin), muslTarget); err != nil {
			return err
		}
		src = path.Join("target", muslTarget, "release", bin)
		if !nightly {
			if _, err := b.sh.Run(ctx, "strip %s", notbash.Quote("./"+src)); err != nil {
				return err
			}
		}
		platform = "linux"
	case "darwin", "windows":
		if _, err := b.sh.Run(ctx, "cargo build --manifest-path %s --bin %s --release",
			notbash.Quote(manifest), notbash.Quote(bin)); err != nil {
			return err
		}
		src, platform = path.Join("target", "release", bin), "mac"
		if b.goos == "windows" {
			src, platform = src+".exe", "windows.exe"
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOS, b.goos)
	}

	dst := filepath.Join(Dir(b.root), fmt.Sprintf("%s-%s.gz", bin, platform))
	return gzipFile(filepath.Join(b.root, filepath.FromSlash(src)), dst)
}

func gzipFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
	}()

	zw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		return err
	}
	zw.Name = filepath.Base(src)
	if _, err := io.Copy(zw, in); err != nil {
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	return zw.Close()
}
