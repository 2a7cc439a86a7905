// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/project"
	"github.com/lsptools/xtask/internal/testutil"
)

// Tests in this file are not parallel: --root sets the process-wide
// project root override.

func executeCommand(t *testing.T, fake *testutil.FakeExec, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Cleanup(func() { project.SetRootOverride("") })

	var outBuf, errBuf bytes.Buffer
	deps := Dependencies{Stdout: &outBuf, Stderr: &errBuf}
	if fake != nil {
		deps.ExecMiddlewares = []notbash.ExecMiddleware{fake.Middleware}
	}
	rootCmd := newRootCommand(NewApp(deps))
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

func TestConfigShow(t *testing.T) {
	root := testutil.NewWorkspace(t, map[string]string{
		"xtask.cue": "fuzz: toolchain: \"nightly-2020-06-01\"\n",
	})

	stdout, _, err := executeCommand(t, nil, "config", "show", "--root", root)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{`toolchain: "nightly-2020-06-01"`, `target: "parser"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output does not contain %q:\n%s", want, stdout)
		}
	}
}

func TestConfigShow_InvalidFile(t *testing.T) {
	root := testutil.NewWorkspace(t, map[string]string{"xtask.cue": "fuzz: toolchain: 42\n"})

	_, _, err := executeCommand(t, nil, "config", "show", "--root", root)
	if err == nil {
		t.Fatal("expected an error for a schema violation")
	}
	if svcErr := classifyError(err); svcErr == nil {
		t.Error("config errors should carry an issue")
	}
}

func TestLint(t *testing.T) {
	root := testutil.NewWorkspace(t, nil)
	fake := testutil.NewFakeExec()

	_, stderr, err := executeCommand(t, fake, "lint", "--root", root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	want := "cargo clippy --all-features --all-targets -- -A clippy::collapsible_if"
	if !fake.Ran(want) {
		t.Errorf("commands = %q, want one starting with %q", fake.Commands(), want)
	}
	if !strings.Contains(stderr, "> "+want) {
		t.Errorf("command was not echoed, stderr:\n%s", stderr)
	}
}

func TestLint_ClippyFailureExitCode(t *testing.T) {
	root := testutil.NewWorkspace(t, nil)
	fake := testutil.NewFakeExec().
		On("cargo clippy --all-features", testutil.FakeResult{Stderr: "error: aborting", ExitCode: 101})

	_, _, err := executeCommand(t, fake, "lint", "--root", root)
	if got := exitCode(err); got != 101 {
		t.Errorf("exit code = %d, want 101 (err: %v)", got, err)
	}
}

func TestTidy(t *testing.T) {
	root := testutil.NewWorkspace(t, map[string]string{
		"crates/foo/src/lib.rs": "//! Foo.\nfn f() { dbg!(1); }\n",
		"crates/bar/src/lib.rs": "//! Bar.\n",
	})

	stdout, _, err := executeCommand(t, nil, "tidy", "--root", root)
	if err == nil || !strings.Contains(err.Error(), "tidy found 1 problem") {
		t.Fatalf("tidy error = %v", err)
	}
	if !strings.Contains(stdout, "crates/foo/src/lib.rs:2: dbg! macro call left in code") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestPreCache(t *testing.T) {
	root := testutil.NewWorkspace(t, map[string]string{
		"target/.slow_tests_cookie":         "",
		"target/debug/xtask":                "",
		"target/debug/libra_syntax.rlib":    "",
		"target/debug/deps/ra_syntax-1.d":   "",
		"target/debug/deps/serde-1.rlib":    "",
		"target/debug/.fingerprint/ra_hir-": "",
	})

	stdout, _, err := executeCommand(t, nil, "pre-cache", "--root", root)
	if err != nil {
		t.Fatalf("pre-cache: %v", err)
	}
	if !strings.Contains(stdout, "removed 4 cache entries") {
		t.Errorf("unexpected output: %q", stdout)
	}
	testutil.AssertExists(t, filepath.Join(root, "target", "debug", "xtask"))
	testutil.AssertExists(t, filepath.Join(root, "target", "debug", "deps", "serde-1.rlib"))
	testutil.AssertNotExists(t, filepath.Join(root, "target", "debug", "deps", "ra_syntax-1.d"))
}

func TestWorkspace_Topo(t *testing.T) {
	root := testutil.NewWorkspace(t, nil)
	pkg := func(name string) string {
		return fmt.Sprintf(`{"id": "%[1]s 0.1.0 (path+file://%[2]s/crates/%[1]s)", "name": "%[1]s", "version": "0.1.0",
			"edition": "2018", "manifest_path": "%[2]s/crates/%[1]s/Cargo.toml",
			"targets": [{"name": "%[1]s", "kind": ["lib"], "src_path": "%[2]s/crates/%[1]s/src/lib.rs"}]}`, name, root)
	}
	id := func(name string) string {
		return fmt.Sprintf("%s 0.1.0 (path+file://%s/crates/%s)", name, root, name)
	}
	metadata := fmt.Sprintf(`{
		"packages": [%s, %s],
		"workspace_members": [%q, %q],
		"resolve": {"nodes": [
			{"id": %q, "deps": [{"name": "b", "pkg": %q}], "features": []},
			{"id": %q, "deps": [], "features": []}
		]},
		"workspace_root": %q
	}`, pkg("a"), pkg("b"), id("a"), id("b"), id("a"), id("b"), id("b"), root)
	fake := testutil.NewFakeExec().On("cargo metadata", testutil.FakeResult{Stdout: metadata})

	stdout, _, err := executeCommand(t, fake, "workspace", "--topo", "--features", "x,y", "--root", root)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if want := "b 2018 crates/b\na 2018 crates/a\n"; stdout != want {
		t.Errorf("output = %q, want %q", stdout, want)
	}
	if !fake.Ran("cargo metadata --format-version 1 --manifest-path " + filepath.Join(root, "Cargo.toml") + " --features x,y") {
		t.Errorf("commands = %q", fake.Commands())
	}
}

func TestInstall_FlagsAreExclusive(t *testing.T) {
	root := testutil.NewWorkspace(t, nil)
	fake := testutil.NewFakeExec()

	_, _, err := executeCommand(t, fake, "install", "--client-code", "--server", "--root", root)
	if err == nil {
		t.Fatal("expected an error for --client-code with --server")
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("no command should run, got %q", fake.Commands())
	}
}

func TestRootNotFound(t *testing.T) {
	t.Setenv(project.RootEnvVar, "")
	dir := t.TempDir()
	defer testutil.MustChdir(t, dir)()

	_, _, err := executeCommand(t, nil, "lint")
	if err == nil {
		t.Fatal("expected an error outside a workspace")
	}
	if svcErr := classifyError(err); svcErr == nil {
		t.Error("a missing root should carry an issue")
	}
}

func TestInstallClient_ReportsRemoteLimitation(t *testing.T) {
	root := testutil.NewWorkspace(t, nil)
	testutil.MustMkdirAll(t, filepath.Join(root, "editors", "code"))
	fake := testutil.NewFakeExec()

	_, _, err := executeCommand(t, fake, "install", "--client-code", "--root", root)
	if err == nil {
		t.Fatal("expected an error when the extension is not listed")
	}

	var stderr bytes.Buffer
	NewApp(Dependencies{}).reportError(&stderr, err)
	for _, want := range []string{
		"install client: verify the installed extension",
		"does not work for VS Code Remote: install rust-analyzer.vsix manually",
	} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr does not contain %q:\n%s", want, stderr.String())
		}
	}
}

func TestInstallClient_ReportsMissingNode(t *testing.T) {
	root := testutil.NewWorkspace(t, nil)
	testutil.MustMkdirAll(t, filepath.Join(root, "editors", "code"))
	fake := testutil.NewFakeExec().Fail("npm --version", "npm: not found")

	_, _, err := executeCommand(t, fake, "install", "--client-code", "--root", root)
	if err == nil {
		t.Fatal("expected an error without npm")
	}
	if got := formatErrorForDisplay(err, false); !strings.Contains(got, "• Install NodeJS 12.x or newer") {
		t.Errorf("formatErrorForDisplay() = %q", got)
	}
}
