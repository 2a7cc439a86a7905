// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/testutil"
)

func newShell(t *testing.T, fake *testutil.FakeExec) *notbash.Shell {
	t.Helper()
	return notbash.New(t.TempDir(),
		notbash.WithOutput(io.Discard, io.Discard),
		notbash.WithLogger(log.New(io.Discard)),
		notbash.WithExecMiddleware(fake.Middleware),
	)
}

func TestEnsureRustfmt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fake    *testutil.FakeExec
		wantErr bool
	}{
		{
			name: "stable",
			fake: testutil.NewFakeExec().On("rustfmt --version", testutil.FakeResult{Stdout: "rustfmt 1.4.12-stable (a828ffe 2020-03-11)\n"}),
		},
		{
			name:    "nightly",
			fake:    testutil.NewFakeExec().On("rustfmt --version", testutil.FakeResult{Stdout: "rustfmt 1.4.14-nightly (a5cb31c 2020-04-29)\n"}),
			wantErr: true,
		},
		{
			name:    "missing",
			fake:    testutil.NewFakeExec().Fail("rustfmt", "error: 'rustfmt' is not installed"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := EnsureRustfmt(context.Background(), newShell(t, tt.fake))
			if (err != nil) != tt.wantErr {
				t.Fatalf("EnsureRustfmt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && issue.IssueOf(err) != issue.RustfmtNotInstalledId {
				t.Errorf("error should carry RustfmtNotInstalledId: %v", err)
			}
		})
	}
}

func TestEnsureClippy(t *testing.T) {
	t.Parallel()

	err := EnsureClippy(context.Background(), newShell(t, testutil.NewFakeExec().Fail("cargo clippy", "no such subcommand")))
	if issue.IssueOf(err) != issue.ClippyNotInstalledId {
		t.Fatalf("EnsureClippy() = %v, want clippy issue", err)
	}
	if err := EnsureClippy(context.Background(), newShell(t, testutil.NewFakeExec())); err != nil {
		t.Errorf("EnsureClippy() with clippy = %v", err)
	}
}

func TestReformat_RestoresToolchain(t *testing.T) {
	t.Setenv("RUSTUP_TOOLCHAIN", "nightly")

	fake := testutil.NewFakeExec().
		On("rustfmt --version", testutil.FakeResult{Stdout: "rustfmt 1.4.12-stable\n"}).
		On("rustfmt --config-path", testutil.FakeResult{Stdout: "fn f() {}\n"})
	sh := newShell(t, fake)

	out, err := Reformat(context.Background(), sh, "/repo", "fn   f(){}")
	if err != nil {
		t.Fatalf("Reformat() error: %v", err)
	}
	if out != "fn f() {}" {
		t.Errorf("Reformat() = %q", out)
	}
	if got := sh.Getenv("RUSTUP_TOOLCHAIN"); got != "nightly" {
		t.Errorf("RUSTUP_TOOLCHAIN after Reformat = %q, want nightly", got)
	}
	if !fake.Ran("rustfmt --config-path /repo/rustfmt.toml --config fn_single_line=true") {
		t.Errorf("commands = %v", fake.Commands())
	}
}
