// SPDX-License-Identifier: MPL-2.0

// Package precommit implements the git pre-commit hook: xtask copies itself
// into .git/hooks and, when run under that name, formats staged sources.
package precommit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lsptools/xtask/internal/codegen"
	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/tasks"
	"github.com/lsptools/xtask/internal/vcs"
)

const hookName = "pre-commit"

// ErrHookExists is returned by InstallHook when a hook is already in place.
var ErrHookExists = errors.New("git hook already created")

// IsHookInvocation reports whether argv0 names the installed hook.
func IsHookInvocation(argv0 string) bool {
	name := strings.TrimSuffix(filepath.Base(argv0), ".exe")
	return strings.HasSuffix(name, hookName)
}

// RunHook formats the workspace and re-stages the files that were already
// staged, so the commit contains the formatted version.
func RunHook(ctx context.Context, sh *notbash.Shell, root string) error {
	if err := tasks.RunRustfmt(ctx, sh, codegen.Overwrite); err != nil {
		return err
	}

	diff, err := sh.Run(ctx, "git diff --diff-filter=MAR --name-only --cached")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(diff, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(line))
		if _, err := sh.Run(ctx, "git update-index --add %s", notbash.Quote(path)); err != nil {
			return err
		}
	}
	return nil
}

// InstallHook copies the running executable into the repository's hooks
// directory and returns the hook path.
func InstallHook(root string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate the xtask executable: %w", err)
	}
	return installHook(root, exe)
}

func installHook(root, exe string) (string, error) {
	repo, err := vcs.Open(root)
	if err != nil {
		return "", err
	}
	hooksDir, err := repo.HooksDir()
	if err != nil {
		return "", err
	}

	name := hookName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	hook := filepath.Join(hooksDir, name)
	if notbash.Exists(hook) {
		return "", issue.NewErrorContext().
			WithOperation("install the pre-commit hook").
			WithResource(hook).
			WithIssue(issue.HookAlreadyInstalledId).
			Wrap(ErrHookExists).
			BuildError()
	}

	if err := notbash.MkdirP(filepath.Dir(hook)); err != nil {
		return "", err
	}
	if err := notbash.Copy(exe, hook); err != nil {
		return "", err
	}
	if err := os.Chmod(hook, 0o755); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", hook, err)
	}
	return hook, nil
}
