// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lsptools/xtask/internal/codegen"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/project"
)

const crateRootPattern = "crates/*/src/lib.rs"

// Violation is one source hygiene problem.
type Violation struct {
	// Path is slash-separated and relative to the project root.
	Path    string
	Line    int
	Message string
}

func (v Violation) String() string {
	if v.Line == 0 {
		return fmt.Sprintf("%s: %s", v.Path, v.Message)
	}
	return fmt.Sprintf("%s:%d: %s", v.Path, v.Line, v.Message)
}

// Tidy checks every Rust source of the project and returns the violations
// sorted by path and line. Test data and generated files are skipped.
func Tidy(root string) ([]Violation, error) {
	files, err := project.RustFiles(root)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		if strings.Contains(rel, "/test_data/") {
			continue
		}
		text, err := notbash.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if strings.Contains(firstLine(text), codegen.Preamble) {
			continue
		}
		violations = append(violations, checkFile(rel, text)...)
	}

	slices.SortFunc(violations, func(a, b Violation) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(a.Line, b.Line))
	})
	return violations, nil
}

func checkFile(rel, text string) []Violation {
	var (
		res     []Violation
		hasDocs bool
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		at := func(msg string) {
			res = append(res, Violation{Path: rel, Line: i + 1, Message: msg})
		}
		if strings.HasPrefix(line, "//!") {
			hasDocs = true
		}
		if strings.TrimRight(line, " \t") != line {
			at("trailing whitespace")
		}
		if strings.Contains(line, "TODO") || strings.Contains(line, "todo!(") {
			at("TODO markers or todo! macros should not be committed, use FIXME instead")
		}
		if strings.Contains(line, "dbg!(") {
			at("dbg! macro call left in code")
		}
	}

	if ok, _ := doublestar.Match(crateRootPattern, rel); ok && !hasDocs {
		res = append(res, Violation{Path: rel, Message: "crate root is missing module docs (//!)"})
	}
	return res
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}
