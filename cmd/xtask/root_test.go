// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lsptools/xtask/internal/notbash"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version, Commit, BuildDate = "v1.2.3", "abc1234", "2020-06-01T10:00:00Z"
		want := "v1.2.3 (commit: abc1234, built: 2020-06-01T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestExitCodes(t *testing.T) {
	t.Parallel()

	cmdErr := &notbash.CommandError{Cmd: "cargo clippy", ExitCode: 101}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"child process failure", withExitCode(fmt.Errorf("lint: %w", cmdErr)), 101},
		{"plain error", withExitCode(errors.New("boom")), 1},
		{"explicit exit error", &ExitError{Code: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}

	if withExitCode(nil) != nil {
		t.Error("withExitCode(nil) != nil")
	}
	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("ExitError.Error() = %q", got)
	}
	if !errors.Is(withExitCode(cmdErr), cmdErr) {
		t.Error("ExitError should unwrap to the command error")
	}
}
