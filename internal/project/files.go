// SPDX-License-Identifier: MPL-2.0

package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const rustFilePattern = "**/*.rs"

// skippedDirs are never descended into when collecting sources.
var skippedDirs = []string{"target", "node_modules"}

// RustFiles returns every .rs file below root/sub..., sorted. Build output,
// node_modules and hidden directories are skipped.
func RustFiles(root string, sub ...string) ([]string, error) {
	return Files(filepath.Join(append([]string{root}, sub...)...), rustFilePattern)
}

// Files returns the files below dir whose slash-separated path relative to
// dir matches the doublestar pattern, joined onto dir and sorted.
func Files(dir, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	var files []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if matched, _ := doublestar.Match(pattern, path); matched {
			files = append(files, filepath.Join(dir, filepath.FromSlash(path)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(skippedDirs, name)
}
