// SPDX-License-Identifier: MPL-2.0

// Package release cuts the weekly release: it resets the release branch to
// the nightly tag, drafts the website changelog and publishes the manual.
package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/vcs"
)

const changelogTemplate = `= Changelog #%d
:sectanchors:
:page-layout: post

Commit: commit:%s[] +
Release: release:%s[]

== New Features

* pr:[] .

== Fixes

== Internal Improvements
`

// ErrNoReleaseTag means no tag looks like a release date.
var ErrNoReleaseTag = errors.New("no release tag found")

// Now returns the release time. Tests replace it.
var Now = time.Now

// Result describes what Run produced.
type Result struct {
	Changelog string
	PrevTag   string
}

// LogCommand is the git invocation listing the merges since the previous
// release.
func (r *Result) LogCommand() string {
	return fmt.Sprintf("git log %s..HEAD --merges --reverse", r.PrevTag)
}

// IsReleaseTag reports whether tag names a weekly release, e.g. 2020-02-24.
func IsReleaseTag(tag string) bool {
	return len(tag) == len("2020-02-24") && unicode.IsDigit(rune(tag[0]))
}

// Run performs the release. With dryRun the git branch is left alone.
func Run(ctx context.Context, sh *notbash.Shell, root string, cfg config.ReleaseConfig, dryRun bool) (*Result, error) {
	if !dryRun {
		if err := resetBranch(ctx, sh, cfg); err != nil {
			return nil, err
		}
	}

	repo, err := vcs.Open(root)
	if err != nil {
		return nil, err
	}
	commit, err := repo.Head()
	if err != nil {
		return nil, err
	}

	prev, err := previousRelease(repo)
	if err != nil {
		return nil, err
	}

	website := resolve(root, cfg.WebsiteRoot)
	changelog, err := writeChangelog(filepath.Join(website, filepath.FromSlash(cfg.ChangelogDir)), commit)
	if err != nil {
		return nil, err
	}

	docsDir := filepath.Join(root, filepath.FromSlash(cfg.DocsDir))
	for _, doc := range cfg.Docs {
		if err := notbash.Copy(filepath.Join(docsDir, doc), filepath.Join(website, doc)); err != nil {
			return nil, err
		}
	}

	return &Result{Changelog: changelog, PrevTag: prev}, nil
}

// previousRelease returns the newest tag naming a release date. Repo.Tags
// is sorted, so that is the last match.
func previousRelease(repo *vcs.Repo) (string, error) {
	tags, err := repo.Tags()
	if err != nil {
		return "", err
	}
	prev := ""
	for _, tag := range tags {
		if IsReleaseTag(tag) {
			prev = tag
		}
	}
	if prev == "" {
		return "", ErrNoReleaseTag
	}
	return prev, nil
}

// resetBranch points the release branch at the tag and pushes it.
func resetBranch(ctx context.Context, sh *notbash.Shell, cfg config.ReleaseConfig) error {
	for _, cmd := range []string{
		"git switch " + notbash.Quote(cfg.Branch),
		"git fetch " + notbash.Quote(cfg.Remote) + " --tags --force",
		"git reset --hard " + notbash.Quote("tags/"+cfg.Tag),
		"git push",
	} {
		if _, err := sh.Run(ctx, "%s", cmd); err != nil {
			return err
		}
	}
	return nil
}

func writeChangelog(dir, commit string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read dir %s: %w", dir, err)
	}
	n := len(entries)
	today := Now().UTC().Format(time.DateOnly)

	path := filepath.Join(dir, fmt.Sprintf("%s-changelog-%d.adoc", today, n))
	if err := notbash.WriteFile(path, fmt.Sprintf(changelogTemplate, n, commit, today)); err != nil {
		return "", err
	}
	return path, nil
}

func resolve(root, path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
