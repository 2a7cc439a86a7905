// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

const slowTestsCookie = ".slow_tests_cookie"

// ErrSlowTestsSkipped means the slow test suite did not run on this build.
var ErrSlowTestsSkipped = errors.New("slow tests were skipped on CI")

// PreCacheReport lists what RunPreCache removed.
type PreCacheReport struct {
	Removed []string
}

// RunPreCache trims target/ before CI caches it. Workspace artifacts change
// on every commit, so only third-party build outputs are kept.
func RunPreCache(root string, cfg config.PreCacheConfig) (*PreCacheReport, error) {
	target := filepath.Join(root, "target")
	report := &PreCacheReport{}

	cookie := filepath.Join(target, slowTestsCookie)
	if !notbash.Exists(cookie) {
		return nil, issue.NewErrorContext().
			WithOperation("trim the build cache").
			WithResource(cookie).
			WithIssue(issue.SlowTestsSkippedId).
			Wrap(ErrSlowTestsSkipped).
			BuildError()
	}
	if err := report.remove(cookie); err != nil {
		return nil, err
	}

	debug := filepath.Join(target, "debug")
	entries, err := notbash.ReadDir(debug)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || isRunningBinary(e.Name()) {
			continue
		}
		if err := report.remove(filepath.Join(debug, e.Name())); err != nil {
			return nil, err
		}
	}

	rustcInfo := filepath.Join(target, ".rustc_info.json")
	if notbash.Exists(rustcInfo) {
		if err := report.remove(rustcInfo); err != nil {
			return nil, err
		}
	}

	for _, dir := range []string{filepath.Join(debug, "deps"), filepath.Join(debug, ".fingerprint")} {
		entries, err := notbash.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Name() == "xtask.exe" || !containsAny(e.Name(), cfg.Delete) {
				continue
			}
			if err := report.remove(filepath.Join(dir, e.Name())); err != nil {
				return nil, err
			}
		}
	}
	return report, nil
}

func (r *PreCacheReport) remove(path string) error {
	if err := notbash.RmRf(path); err != nil {
		return err
	}
	r.Removed = append(r.Removed, path)
	return nil
}

// isRunningBinary reports whether name is the xtask binary, which cannot
// delete itself on Windows.
func isRunningBinary(name string) bool {
	return name == "xtask" || name == "xtask.exe"
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			return true
		}
	}
	return false
}
