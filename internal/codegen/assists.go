// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/project"
)

const (
	fence = "```"
	// cursor marks the caret position in assist examples.
	cursor = "<|>"
)

// Assist is the documentation of one code assist, taken from an
// "// Assist: <id>" comment block.
type Assist struct {
	ID       string
	Location Location
	Doc      string
	Before   string
	After    string
}

// CollectAssists returns the documented assists of the handler sources,
// sorted by id.
func (g *Generator) CollectAssists() ([]Assist, error) {
	files, err := project.RustFiles(g.path(g.cfg.AssistsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list assist handlers: %w", err)
	}

	var assists []Assist
	for _, path := range files {
		text, err := notbash.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, block := range ExtractCommentBlocksWithEmptyLines("Assist", text) {
			a, err := parseAssist(block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", g.rel(path), err)
			}
			a.Location = Location{Root: g.root, File: path, Line: block.Line}
			assists = append(assists, a)
		}
	}
	slices.SortFunc(assists, func(a, b Assist) int { return strings.Compare(a.ID, b.ID) })
	return assists, nil
}

func parseAssist(block CommentBlock) (Assist, error) {
	a := Assist{ID: block.ID}
	if a.ID == "" || strings.IndexFunc(a.ID, func(r rune) bool { return r != '_' && !unicode.IsLower(r) }) >= 0 {
		return a, fmt.Errorf("invalid assist id: %q", a.ID)
	}

	lines := block.Contents
	var ok bool
	if a.Doc, lines, ok = takeUntil(lines, fence); !ok {
		return a, fmt.Errorf("assist %s: missing before example", a.ID)
	}
	a.Doc = strings.TrimSpace(a.Doc)
	if !unicode.IsUpper(firstRune(a.Doc)) || !strings.HasSuffix(a.Doc, ".") {
		return a, fmt.Errorf("assist %s: docs should be proper sentences, with capitalization and a full stop at the end", a.ID)
	}
	if a.Before, lines, ok = takeUntil(lines, fence); !ok {
		return a, fmt.Errorf("assist %s: unterminated before example", a.ID)
	}
	if len(lines) < 2 || lines[0] != "->" || lines[1] != fence {
		return a, fmt.Errorf("assist %s: expected \"->\" and an after example", a.ID)
	}
	if a.After, _, ok = takeUntil(lines[2:], fence); !ok {
		return a, fmt.Errorf("assist %s: unterminated after example", a.ID)
	}
	return a, nil
}

// takeUntil joins lines up to marker and returns the lines after it.
func takeUntil(lines []string, marker string) (string, []string, bool) {
	i := slices.Index(lines, marker)
	if i < 0 {
		return strings.Join(lines, "\n"), nil, false
	}
	return strings.Join(lines[:i], "\n"), lines[i+1:], true
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// Render formats the assist as an AsciiDoc section.
func (a Assist) Render() string {
	before := strings.ReplaceAll(a.Before, cursor, "┃")
	after := strings.ReplaceAll(a.After, cursor, "┃")
	return fmt.Sprintf("[discrete]\n=== `%s`\n**Source:** %s\n\n%s\n\n.Before\n```rust\n%s```\n\n.After\n```rust\n%s```",
		a.ID, a.Location, a.Doc, hideHashComments(before), hideHashComments(after))
}

// GenerateAssistsDocs regenerates the assist doctests and the user manual
// section listing all assists.
func (g *Generator) GenerateAssistsDocs(ctx context.Context, mode Mode) error {
	assists, err := g.CollectAssists()
	if err != nil {
		return err
	}

	tests, err := g.reformat(ctx, renderAssistTests(assists), mode)
	if err != nil {
		return err
	}
	if err := g.update(g.path(g.cfg.AssistsTests), tests, mode); err != nil {
		return err
	}

	sections := make([]string, len(assists))
	for i, a := range assists {
		sections[i] = a.Render()
	}
	docs := strings.TrimSpace(strings.Join(sections, "\n\n")) + "\n"
	return g.update(g.path(g.cfg.AssistsDocs), docs, mode)
}

func renderAssistTests(assists []Assist) string {
	var sb strings.Builder
	sb.WriteString("use super::check_doc_test;\n")
	for _, a := range assists {
		fmt.Fprintf(&sb, `
#[test]
fn doctest_%s() {
    check_doc_test(
        %q,
r#####"
%s"#####, r#####"
%s"#####)
}
`, a.ID, a.ID, revealHashComments(a.Before), revealHashComments(a.After))
	}
	return sb.String()
}

// hideHashComments drops "# " lines, which only exist to make examples
// compile. Every line keeps a trailing newline.
func hideHashComments(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "# ") || line == "#" {
			continue
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// revealHashComments strips the "# " marker so hidden lines compile in
// doctests.
func revealHashComments(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if line == "#" {
			line = ""
		}
		sb.WriteString(strings.TrimPrefix(line, "# ") + "\n")
	}
	return sb.String()
}
