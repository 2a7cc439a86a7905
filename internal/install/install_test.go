// SPDX-License-Identifier: MPL-2.0

package install

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/testutil"
)

func newInstaller(t *testing.T, fake *testutil.FakeExec, goos string) (*installer, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	var logs bytes.Buffer
	sh := notbash.New(root,
		notbash.WithOutput(io.Discard, io.Discard),
		notbash.WithLogger(log.New(&logs)),
		notbash.WithExecMiddleware(fake.Middleware),
	)
	return &installer{sh: sh, root: root, cfg: config.DefaultConfig(), goos: goos, fsRoot: t.TempDir()}, &logs
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		out  string
		want bool
	}{
		{"cargo 1.39.0-beta (1c6ec66d5 2019-09-25)", false},
		{"cargo 1.43.0 (3532cf738 2020-03-17)", true},
		{"cargo 1.44.0-nightly (390e8f245 2020-04-07)", true},
		{"cargo 2.0.0", true},
		{"cargo", true},
		{"cargo version unknown", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := CheckVersion(tt.out, 43); got != tt.want {
			t.Errorf("CheckVersion(%q, 43) = %v, want %v", tt.out, got, tt.want)
		}
	}
}

func TestInstallServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		version  string
		malloc   Malloc
		fail     bool
		wantCmd  string
		wantHint int
	}{
		{"system", "cargo 1.43.0", System, false, "cargo install --path crates/rust-analyzer --locked --force", 0},
		{"jemalloc", "cargo 1.43.0", Jemalloc, false, "cargo install --path crates/rust-analyzer --locked --force --features jemalloc", 0},
		{"old toolchain", "cargo 1.39.0-beta", System, false, "cargo install --path crates/rust-analyzer --locked --force", 1},
		{"old toolchain fails", "cargo 1.39.0-beta", System, true, "cargo install --path crates/rust-analyzer --locked --force", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := testutil.NewFakeExec().On("cargo --version", testutil.FakeResult{Stdout: tt.version})
			if tt.fail {
				fake.Fail("cargo install", "error: could not compile")
			}
			i, logs := newInstaller(t, fake, "linux")

			err := i.run(context.Background(), InstallCmd{Server: &ServerOpt{Malloc: tt.malloc}})
			if (err != nil) != tt.fail {
				t.Fatalf("run() error = %v, want failure %v", err, tt.fail)
			}
			if tt.fail && !strings.HasPrefix(err.Error(), "install server") {
				t.Errorf("error not wrapped: %v", err)
			}
			if !fake.Ran(tt.wantCmd) {
				t.Errorf("commands = %q, want %q", fake.Commands(), tt.wantCmd)
			}
			if got := strings.Count(logs.String(), "rustup update stable"); got != tt.wantHint {
				t.Errorf("upgrade hint printed %d times, want %d", got, tt.wantHint)
			}
		})
	}
}

func TestInstallClient(t *testing.T) {
	t.Parallel()

	listed := testutil.FakeResult{Stdout: "rust-analyzer\nvscodevim.vim\n"}

	t.Run("picks first working editor", func(t *testing.T) {
		t.Parallel()

		fake := testutil.NewFakeExec().
			Fail("code --version", "code: not found").
			On("code-insiders --list-extensions", listed)
		i, _ := newInstaller(t, fake, "linux")
		client := VSCode

		if err := i.run(context.Background(), InstallCmd{Client: &client}); err != nil {
			t.Fatalf("run() error: %v", err)
		}
		want := []string{
			"npm --version",
			"npm install",
			"npm run package --scripts-prepend-node-path",
			"code --version",
			"code-insiders --version",
			"code-insiders --install-extension rust-analyzer.vsix --force",
			"code-insiders --list-extensions",
		}
		if got := fake.Commands(); !slices.Equal(got, want) {
			t.Errorf("commands =\n%q\nwant\n%q", got, want)
		}
		if dir := fake.Calls()[0].Dir; dir != filepath.Join(i.root, "editors", "code") {
			t.Errorf("npm ran in %s", dir)
		}
	})

	t.Run("windows goes through cmd.exe", func(t *testing.T) {
		t.Parallel()

		fake := testutil.NewFakeExec().On("cmd.exe /c code --list-extensions", listed)
		i, _ := newInstaller(t, fake, "windows")
		client := VSCode

		if err := i.run(context.Background(), InstallCmd{Client: &client}); err != nil {
			t.Fatalf("run() error: %v", err)
		}
		for _, cmd := range fake.Commands() {
			if !strings.HasPrefix(cmd, "cmd.exe /c ") {
				t.Errorf("command %q not run through cmd.exe", cmd)
			}
		}
	})

	failures := []struct {
		name      string
		fake      *testutil.FakeExec
		wantIssue issue.Id
		wantErr   error
	}{
		{"npm missing", testutil.NewFakeExec().Fail("npm --version", ""), issue.NpmNotFoundId, nil},
		{
			"no editor",
			testutil.NewFakeExec().Fail("code", "").Fail("codium", "").Fail("code-oss", "").Fail("code-insiders", ""),
			issue.VSCodeNotFoundId, nil,
		},
		{"extension missing", testutil.NewFakeExec().On("code --list-extensions", testutil.FakeResult{Stdout: "vscodevim.vim\n"}), 0, ErrExtensionNotInstalled},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			i, _ := newInstaller(t, tt.fake, "linux")
			client := VSCode
			err := i.run(context.Background(), InstallCmd{Client: &client})
			if err == nil || !strings.HasPrefix(err.Error(), "install client") {
				t.Fatalf("run() = %v, want install client error", err)
			}
			if tt.wantIssue != 0 && issue.IssueOf(err) != tt.wantIssue {
				t.Errorf("issue = %d, want %d", issue.IssueOf(err), tt.wantIssue)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFixPathForMac(t *testing.T) {
	fsRoot := t.TempDir()
	home := t.TempDir()
	systemBin := filepath.Join(fsRoot, filepath.FromSlash(vscodeBinDirs[0]))
	homeBin := filepath.Join(home, filepath.FromSlash(vscodeBinDirs[1]))
	testutil.MustMkdirAll(t, systemBin)
	testutil.MustMkdirAll(t, homeBin)

	defer testutil.MustSetenv(t, "HOME", home)()
	defer testutil.MustSetenv(t, "PATH", "/usr/bin")()
	sh := notbash.New(t.TempDir(), notbash.WithLogger(log.New(io.Discard)))

	if err := fixPathForMac(sh, fsRoot); err != nil {
		t.Fatalf("fixPathForMac() error: %v", err)
	}
	want := strings.Join([]string{"/usr/bin", systemBin, homeBin}, string(os.PathListSeparator))
	if got := sh.Getenv("PATH"); got != want {
		t.Errorf("PATH = %q, want %q", got, want)
	}

	defer testutil.MustSetenv(t, "HOME", "")()
	if err := fixPathForMac(notbash.New(t.TempDir()), fsRoot); !errors.Is(err, errHomeNotSet) {
		t.Errorf("without HOME = %v, want errHomeNotSet", err)
	}
}
