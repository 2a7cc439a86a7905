// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// WorkspaceManifest is the Cargo.toml written by NewWorkspace.
const WorkspaceManifest = `[workspace]
members = ["xtask/", "crates/*"]
`

// NewWorkspace creates a Cargo workspace in a temporary directory and
// populates it with files (slash-separated relative path -> content).
// It returns the workspace root.
func NewWorkspace(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	MustWriteFile(t, filepath.Join(root, "Cargo.toml"), WorkspaceManifest)
	WriteFiles(t, root, files)
	return root
}

// WriteFiles writes each entry of files below root.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		MustWriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

// LinkWorktree lays out dir as a linked worktree of the repository at
// mainRoot, the way `git worktree add` does, sharing the main HEAD.
func LinkWorktree(t testing.TB, mainRoot, dir string) {
	t.Helper()
	gitDir := filepath.Join(mainRoot, ".git", "worktrees", filepath.Base(dir))
	MustWriteFile(t, filepath.Join(gitDir, "HEAD"), MustReadFile(t, filepath.Join(mainRoot, ".git", "HEAD")))
	MustWriteFile(t, filepath.Join(gitDir, "commondir"), "../..\n")
	MustWriteFile(t, filepath.Join(gitDir, "gitdir"), filepath.Join(dir, ".git")+"\n")
	MustWriteFile(t, filepath.Join(dir, ".git"), "gitdir: "+gitDir+"\n")
}
