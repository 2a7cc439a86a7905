// SPDX-License-Identifier: MPL-2.0

// Package install builds the language server and the VS Code extension from
// source and installs them for the current user.
package install

import (
	"context"
	"errors"
	"runtime"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

// Malloc selects the allocator the server is built with.
type Malloc int

const (
	System Malloc = iota
	Jemalloc
)

// ClientOpt selects the editor client to install.
type ClientOpt int

// VSCode is the only supported client.
const VSCode ClientOpt = iota

type (
	// ServerOpt configures the server build.
	ServerOpt struct {
		Malloc Malloc
	}

	// InstallCmd selects what to install. A nil field skips that part.
	InstallCmd struct {
		Client *ClientOpt
		Server *ServerOpt
	}

	installer struct {
		sh   *notbash.Shell
		root string
		cfg  *config.Config
		goos string
		// fsRoot prefixes the system-wide paths checked on macOS.
		fsRoot string
	}
)

// ErrExtensionNotInstalled means VS Code did not list the extension after
// installing it.
var ErrExtensionNotInstalled = errors.New("could not install the Visual Studio Code extension")

// Run installs the selected parts, the server first.
func (c InstallCmd) Run(ctx context.Context, sh *notbash.Shell, root string, cfg *config.Config) error {
	i := &installer{sh: sh, root: root, cfg: cfg, goos: runtime.GOOS, fsRoot: "/"}
	return i.run(ctx, c)
}

func (i *installer) run(ctx context.Context, c InstallCmd) error {
	if i.goos == "darwin" {
		if err := fixPathForMac(i.sh, i.fsRoot); err != nil {
			return issue.Context(err, "fix path for mac")
		}
	}
	if c.Server != nil {
		if err := i.installServer(ctx, *c.Server); err != nil {
			return issue.Context(err, "install server")
		}
	}
	if c.Client != nil {
		if err := i.installClient(ctx, *c.Client); err != nil {
			return issue.Context(err, "install client")
		}
	}
	return nil
}

// command wraps cmd for tools that are batch scripts on Windows.
func (i *installer) command(cmd string) string {
	if i.goos == "windows" {
		return "cmd.exe /c " + cmd
	}
	return cmd
}
