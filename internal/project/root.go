// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lsptools/xtask/internal/issue"
)

// RootEnvVar overrides root discovery when set.
const RootEnvVar = "XTASK_ROOT"

var (
	overrideMu   sync.RWMutex
	rootOverride string

	// ErrRootNotFound is returned when no workspace manifest encloses the
	// starting directory.
	ErrRootNotFound = errors.New("no Cargo.toml with a [workspace] table found")
)

// SetRootOverride pins the project root (the --root flag). An empty dir
// clears the override.
func SetRootOverride(dir string) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	rootOverride = dir
}

// Root returns the absolute project root. The --root override wins, then
// $XTASK_ROOT, then the nearest ancestor of the working directory whose
// Cargo.toml declares a [workspace].
func Root() (string, error) {
	overrideMu.RLock()
	override := rootOverride
	overrideMu.RUnlock()

	if override != "" {
		return filepath.Abs(override)
	}
	if env := os.Getenv(RootEnvVar); env != "" {
		return filepath.Abs(env)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindRoot(wd)
}

// FindRoot walks up from start to the first workspace manifest.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		manifestPath := filepath.Join(dir, ManifestName)
		if m, err := ReadManifest(manifestPath); err == nil && m.IsWorkspace() {
			return dir, nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", issue.NewErrorContext().
				WithOperation("find project root").
				WithResource(start).
				WithSuggestion("Run xtask from inside the repository").
				WithSuggestion("Pass --root or set " + RootEnvVar).
				WithIssue(issue.ProjectRootNotFoundId).
				Wrap(ErrRootNotFound).
				BuildError()
		}
		dir = parent
	}
}
