// SPDX-License-Identifier: MPL-2.0

package notbash

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lsptools/xtask/internal/testutil"
)

func newTestShell(t *testing.T, opts ...Option) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, logs bytes.Buffer
	opts = append([]Option{
		WithOutput(&out, &out),
		WithLogger(log.NewWithOptions(&logs, log.Options{})),
	}, opts...)
	return New(t.TempDir(), opts...), &out, &logs
}

func TestRun_EchoesAndStreams(t *testing.T) {
	t.Parallel()

	sh, out, logs := newTestShell(t)
	got, err := sh.Run(context.Background(), "echo %s", Quote("hello world"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Run() = %q, want %q", got, "hello world")
	}
	if !strings.Contains(out.String(), "hello world\n") {
		t.Errorf("stdout not streamed: %q", out.String())
	}
	if !strings.Contains(logs.String(), "> echo 'hello world'") {
		t.Errorf("command not echoed: %q", logs.String())
	}
}

func TestCapture_IsSilent(t *testing.T) {
	t.Parallel()

	sh, out, logs := newTestShell(t)
	got, err := sh.Capture(context.Background(), "echo captured")
	if err != nil || got != "captured" {
		t.Fatalf("Capture() = (%q, %v)", got, err)
	}
	if out.Len() != 0 || logs.Len() != 0 {
		t.Errorf("Capture should not write: out=%q logs=%q", out.String(), logs.String())
	}
}

func TestRun_CommandError(t *testing.T) {
	t.Parallel()

	sh, _, _ := newTestShell(t)
	_, err := sh.Capture(context.Background(), "echo boom >&2; exit 3")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T: %v", err, err)
	}
	if cmdErr.ExitCode != 3 || ExitCodeOf(err) != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should include stderr: %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	sh, _, _ := newTestShell(t)
	_, err := sh.Capture(context.Background(), "xtask-definitely-missing-tool --version")
	if ExitCodeOf(err) != 127 {
		t.Fatalf("expected exit 127, got %v", err)
	}
	if !strings.Contains(err.Error(), "command not found") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	sh, _, _ := newTestShell(t)
	if _, err := sh.Run(context.Background(), "echo 'unterminated"); err == nil || ExitCodeOf(err) != -1 {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestPushdPopd(t *testing.T) {
	t.Parallel()

	sh, _, _ := newTestShell(t)
	base := sh.Dir()
	testutil.MustMkdirAll(t, filepath.Join(base, "editors", "code"))

	pop := sh.Pushd("editors/code")
	got, err := sh.Capture(context.Background(), "pwd")
	if err != nil {
		t.Fatalf("pwd: %v", err)
	}
	if got != filepath.Join(base, "editors", "code") {
		t.Errorf("pwd = %q", got)
	}

	pop()
	if sh.Dir() != base {
		t.Errorf("Dir() after pop = %q, want %q", sh.Dir(), base)
	}
	if err := sh.Popd(); !errors.Is(err, ErrDirStackEmpty) {
		t.Errorf("Popd() on last entry = %v, want ErrDirStackEmpty", err)
	}
}

func TestPushenv(t *testing.T) {
	t.Setenv("XTASK_TEST_VAR", "outer")

	sh, _, _ := newTestShell(t)
	restore := sh.Pushenv("XTASK_TEST_VAR", "inner")

	got, err := sh.Capture(context.Background(), "echo $XTASK_TEST_VAR")
	if err != nil || got != "inner" {
		t.Fatalf("overlay not applied: (%q, %v)", got, err)
	}
	if sh.Getenv("XTASK_TEST_VAR") != "inner" {
		t.Errorf("Getenv() = %q", sh.Getenv("XTASK_TEST_VAR"))
	}

	restore()
	got, _ = sh.Capture(context.Background(), "echo $XTASK_TEST_VAR")
	if got != "outer" {
		t.Errorf("after restore = %q, want outer", got)
	}
}

func TestExecMiddleware(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExec().On("cargo --version", testutil.FakeResult{Stdout: "cargo 1.44.0 (abc 2020-05-01)\n"})
	sh, _, _ := newTestShell(t, WithExecMiddleware(fake.Middleware))

	got, err := sh.Capture(context.Background(), "cargo --version")
	if err != nil || got != "cargo 1.44.0 (abc 2020-05-01)" {
		t.Fatalf("Capture() = (%q, %v)", got, err)
	}
	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Dir != sh.Dir() {
		t.Errorf("calls = %+v", calls)
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"with space", "'with space'"},
		{"", "''"},
		{"it's", `"it's"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFsHelpers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "file.txt")
	if err := WriteFile(nested, "content"); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if got, err := ReadFile(nested); err != nil || got != "content" {
		t.Fatalf("ReadFile() = (%q, %v)", got, err)
	}

	if err := Copy(nested, dir); err != nil {
		t.Fatalf("Copy() into dir error: %v", err)
	}
	testutil.AssertExists(t, filepath.Join(dir, "file.txt"))

	paths, err := Ls(dir)
	if err != nil || len(paths) != 2 || paths[0] != filepath.Join(dir, "a") {
		t.Errorf("Ls() = (%v, %v)", paths, err)
	}

	if err := RmRf(filepath.Join(dir, "a")); err != nil {
		t.Fatalf("RmRf() error: %v", err)
	}
	if err := RmRf(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("RmRf() on missing path: %v", err)
	}
	if Exists(filepath.Join(dir, "a")) {
		t.Error("directory still present")
	}

	_, err = ReadFile(filepath.Join(dir, "nope"))
	if !errors.Is(err, os.ErrNotExist) || !strings.Contains(err.Error(), "nope") {
		t.Errorf("ReadFile error should wrap ErrNotExist and name the path: %v", err)
	}
}

func TestCaptureInput(t *testing.T) {
	t.Parallel()

	sh, _, _ := newTestShell(t)
	got, err := sh.CaptureInput(context.Background(), "fn main() {}\n", "read line; echo \"$line\"")
	if err != nil || got != "fn main() {}" {
		t.Errorf("CaptureInput() = (%q, %v)", got, err)
	}
}
