// SPDX-License-Identifier: MPL-2.0

package precommit

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/testutil"
)

func TestIsHookInvocation(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"/repo/.git/hooks/pre-commit":       true,
		`C:\repo\.git\hooks\pre-commit.exe`: true,
		"pre-commit.exe":                    true,
		"/usr/local/bin/xtask":              false,
		"xtask.exe":                         false,
	}
	for argv0, want := range tests {
		if got := IsHookInvocation(argv0); got != want {
			t.Errorf("IsHookInvocation(%q) = %v, want %v", argv0, got, want)
		}
	}
}

func TestRunHook(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fake := testutil.NewFakeExec().
		On("rustfmt --version", testutil.FakeResult{Stdout: "rustfmt 1.4.12-stable"}).
		On("git diff", testutil.FakeResult{Stdout: "crates/ra_syntax/src/lib.rs\nxtask/src/main.rs\n"})
	sh := notbash.New(root,
		notbash.WithOutput(io.Discard, io.Discard),
		notbash.WithLogger(log.New(io.Discard)),
		notbash.WithExecMiddleware(fake.Middleware),
	)

	if err := RunHook(context.Background(), sh, root); err != nil {
		t.Fatalf("RunHook() error: %v", err)
	}
	want := []string{
		"rustfmt --version",
		"cargo fmt",
		"git diff --diff-filter=MAR --name-only --cached",
		"git update-index --add " + filepath.Join(root, "crates", "ra_syntax", "src", "lib.rs"),
		"git update-index --add " + filepath.Join(root, "xtask", "src", "main.rs"),
	}
	if got := fake.Commands(); !slices.Equal(got, want) {
		t.Errorf("commands =\n%q\nwant\n%q", got, want)
	}
}

func TestInstallHook(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	exe := filepath.Join(t.TempDir(), "xtask")
	testutil.MustWriteFile(t, exe, "#!/bin/sh\n")

	hook, err := installHook(root, exe)
	if err != nil {
		t.Fatalf("installHook() error: %v", err)
	}
	if filepath.Dir(hook) != filepath.Join(root, ".git", "hooks") {
		t.Errorf("hook installed at %s", hook)
	}
	if got := testutil.MustReadFile(t, hook); got != "#!/bin/sh\n" {
		t.Errorf("hook contents = %q", got)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(hook)
		if err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if info.Mode().Perm() != 0o755 {
			t.Errorf("hook mode = %v, want 0755", info.Mode())
		}
	}

	_, err = installHook(root, exe)
	if !errors.Is(err, ErrHookExists) || issue.IssueOf(err) != issue.HookAlreadyInstalledId {
		t.Errorf("second install = %v, want ErrHookExists", err)
	}
}

func TestInstallHook_LinkedWorktree(t *testing.T) {
	t.Parallel()

	mainRoot := t.TempDir()
	if _, err := git.PlainInit(mainRoot, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wtRoot := filepath.Join(t.TempDir(), "feature")
	testutil.LinkWorktree(t, mainRoot, wtRoot)
	exe := filepath.Join(t.TempDir(), "xtask")
	testutil.MustWriteFile(t, exe, "#!/bin/sh\n")

	hook, err := installHook(wtRoot, exe)
	if err != nil {
		t.Fatalf("installHook() error: %v", err)
	}
	if filepath.Dir(hook) != filepath.Join(mainRoot, ".git", "hooks") {
		t.Errorf("hook installed at %s, want the main repository's hooks directory", hook)
	}
	testutil.AssertNotExists(t, filepath.Join(mainRoot, ".git", "worktrees", "feature", "hooks"))
}
