// SPDX-License-Identifier: MPL-2.0

// Package vcs reads the state of the project's git repository in-process.
package vcs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// ErrNoGitDir is returned by GitDir for repositories not stored on disk.
var ErrNoGitDir = errors.New("repository has no .git directory")

// Repo is an opened git repository.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository containing dir, looking in parent directories
// for the .git directory.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}
	return &Repo{repo: repo}, nil
}

// Head returns the hash of the commit HEAD points to.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// Tags returns the tag names sorted by name, like `git tag --list`.
func (r *Repo) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	slices.Sort(tags)
	return tags, nil
}

// GitDir returns the path of the .git directory. For a linked worktree this
// is the worktree's own directory below .git/worktrees.
func (r *Repo) GitDir() (string, error) {
	storage, ok := r.repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", ErrNoGitDir
	}
	return storage.Filesystem().Root(), nil
}

// HooksDir returns the directory git runs hooks from. Linked worktrees share
// the hooks of the main repository, found through the commondir file.
func (r *Repo) HooksDir() (string, error) {
	gitDir, err := r.GitDir()
	if err != nil {
		return "", err
	}
	common := gitDir
	data, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	switch {
	case err == nil:
		common = filepath.FromSlash(strings.TrimSpace(string(data)))
		if !filepath.IsAbs(common) {
			common = filepath.Join(gitDir, common)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to read commondir: %w", err)
	}
	return filepath.Join(filepath.Clean(common), "hooks"), nil
}
