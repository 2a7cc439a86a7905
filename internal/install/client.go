// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

func (i *installer) installClient(ctx context.Context, _ ClientOpt) error {
	clientDir := filepath.Join(i.root, filepath.FromSlash(i.cfg.Client.Dir))
	defer i.sh.Pushd(clientDir)()

	if _, err := i.sh.Capture(ctx, i.command("npm --version")); err != nil {
		return issue.NewErrorContext().
			WithOperation("run npm").
			WithSuggestion("Install NodeJS 12.x or newer").
			WithIssue(issue.NpmNotFoundId).
			Wrap(err).
			BuildError()
	}

	if _, err := i.sh.Run(ctx, i.command("npm install")); err != nil {
		return err
	}
	if _, err := i.sh.Run(ctx, i.command("npm run package --scripts-prepend-node-path")); err != nil {
		return err
	}

	code, err := i.findEditor(ctx)
	if err != nil {
		return err
	}

	if _, err := i.sh.Run(ctx, i.command("%s --install-extension %s --force"), code, notbash.Quote(i.cfg.Client.Vsix)); err != nil {
		return err
	}
	installed, err := i.sh.Capture(ctx, i.command("%s --list-extensions"), code)
	if err != nil {
		return err
	}
	if !strings.Contains(installed, i.cfg.Client.ExtensionID) {
		return issue.NewErrorContext().
			WithOperation("verify the installed extension").
			WithResource(i.cfg.Client.ExtensionID).
			WithSuggestions(
				"Make sure NodeJS 12.x and the latest VS Code are installed, then try again",
				fmt.Sprintf("xtask install does not work for VS Code Remote: install %s manually", i.cfg.Client.Vsix),
			).
			Wrap(ErrExtensionNotInstalled).
			BuildError()
	}
	return nil
}

// findEditor returns the first configured editor binary that runs.
func (i *installer) findEditor(ctx context.Context) (string, error) {
	for _, bin := range i.cfg.Client.Editors {
		if _, err := i.sh.Capture(ctx, i.command("%s --version"), bin); err == nil {
			return bin, nil
		}
	}
	return "", issue.NewErrorContext().
		WithOperation("find VS Code").
		WithResource(strings.Join(i.cfg.Client.Editors, ", ")).
		WithSuggestion("Put the editor's bin directory on your PATH").
		WithIssue(issue.VSCodeNotFoundId).
		Wrap(fmt.Errorf("none of %s could be run", strings.Join(i.cfg.Client.Editors, ", "))).
		BuildError()
}
