// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/project"
)

type (
	// InlineTest is a parser test embedded in the grammar sources as a
	// "// test name" or "// test_err name" comment block.
	InlineTest struct {
		Name string
		Text string
		OK   bool
	}

	inlineTests struct {
		ok  map[string]InlineTest
		err map[string]InlineTest
	}
)

// CollectInlineTests returns the inline tests found in text.
func CollectInlineTests(text string) []InlineTest {
	var tests []InlineTest
	for _, block := range ExtractCommentBlocks(text) {
		var (
			name string
			ok   bool
		)
		if rest, found := strings.CutPrefix(block[0], "test "); found {
			name, ok = rest, true
		} else if rest, found := strings.CutPrefix(block[0], "test_err "); found {
			name = rest
		} else {
			continue
		}
		body := strings.Join(append(slices.Clone(block[1:]), ""), "\n")
		if strings.TrimSpace(body) == "" {
			continue
		}
		tests = append(tests, InlineTest{Name: name, Text: body, OK: ok})
	}
	return tests
}

// GenerateParserTests writes the inline tests of the grammar to the ok/ and
// err/ test data directories. Existing files keep their number; new tests
// get the next free one.
func (g *Generator) GenerateParserTests(_ context.Context, mode Mode) error {
	tests, err := g.testsFromGrammar()
	if err != nil {
		return err
	}
	inlineDir := g.path(g.cfg.InlineTestsDir)
	if err := g.installTests(tests.ok, filepath.Join(inlineDir, "ok"), mode); err != nil {
		return err
	}
	return g.installTests(tests.err, filepath.Join(inlineDir, "err"), mode)
}

func (g *Generator) testsFromGrammar() (*inlineTests, error) {
	res := &inlineTests{ok: map[string]InlineTest{}, err: map[string]InlineTest{}}
	grammarDir := g.path(g.cfg.GrammarDir)

	files, err := project.RustFiles(grammarDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list grammar sources: %w", err)
	}
	// The grammar module root sits next to its directory.
	if grammarRs := grammarDir + ".rs"; notbash.Exists(grammarRs) {
		files = append(files, grammarRs)
	}

	for _, path := range files {
		text, err := notbash.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, test := range CollectInlineTests(text) {
			bucket := res.err
			if test.OK {
				bucket = res.ok
			}
			if _, dup := bucket[test.Name]; dup {
				return nil, fmt.Errorf("duplicate test: %s", test.Name)
			}
			bucket[test.Name] = test
		}
	}
	return res, nil
}

func (g *Generator) installTests(tests map[string]InlineTest, dir string, mode Mode) error {
	existing, err := existingTests(dir)
	if err != nil {
		return err
	}
	for name := range existing {
		if _, ok := tests[name]; !ok {
			return fmt.Errorf("test is deleted: %s (remove %s)", name, g.rel(existing[name]))
		}
	}

	names := make([]string, 0, len(tests))
	for name := range tests {
		names = append(names, name)
	}
	slices.Sort(names)

	nextIdx := len(existing) + 1
	for _, name := range names {
		path, ok := existing[name]
		if !ok {
			path = filepath.Join(dir, fmt.Sprintf("%04d_%s.rs", nextIdx, name))
			nextIdx++
		}
		if err := g.update(path, tests[name].Text, mode); err != nil {
			return err
		}
	}
	return nil
}

// existingTests indexes the NNNN_<name>.rs files of dir by name.
func existingTests(dir string) (map[string]string, error) {
	res := map[string]string{}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		fileName := e.Name()
		if e.IsDir() || filepath.Ext(fileName) != ".rs" || len(fileName) < len("0000_.rs") {
			continue
		}
		res[strings.TrimSuffix(fileName[5:], ".rs")] = filepath.Join(dir, fileName)
	}
	return res, nil
}
