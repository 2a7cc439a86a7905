// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	commentPrefix = "// "
	sourceURL     = "https://github.com/rust-analyzer/rust-analyzer/blob/master/"
)

type (
	// CommentBlock is a run of line comments whose first line is "<Tag>: <ID>".
	CommentBlock struct {
		ID string
		// Line is the 1-based line of the tag line.
		Line     int
		Contents []string
	}

	// Location points at a line of a source file in the upstream repository.
	Location struct {
		Root string
		File string
		Line int
	}

	rawBlock struct {
		line  int
		lines []string
	}
)

// ExtractCommentBlocks returns the groups of consecutive "// " comments in
// text, with the prefix stripped. A bare "//" ends the group.
func ExtractCommentBlocks(text string) [][]string {
	raw := extractCommentBlocks(text, false)
	blocks := make([][]string, len(raw))
	for i, b := range raw {
		blocks[i] = b.lines
	}
	return blocks
}

// ExtractCommentBlocksWithEmptyLines returns the comment blocks tagged with
// tag. A bare "//" is kept as an empty line, so tagged blocks can contain
// paragraphs.
func ExtractCommentBlocksWithEmptyLines(tag, text string) []CommentBlock {
	prefix := tag + ":"
	var blocks []CommentBlock
	for _, b := range extractCommentBlocks(text, true) {
		id, ok := strings.CutPrefix(b.lines[0], prefix)
		if !ok {
			continue
		}
		blocks = append(blocks, CommentBlock{ID: strings.TrimSpace(id), Line: b.line, Contents: b.lines[1:]})
	}
	return blocks
}

func extractCommentBlocks(text string, allowEmptyLines bool) []rawBlock {
	var (
		res   []rawBlock
		block = rawBlock{line: 1}
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSuffix(line, "\r"), " \t")
		if line == "//" && allowEmptyLines {
			block.lines = append(block.lines, "")
			continue
		}
		if rest, ok := strings.CutPrefix(line, commentPrefix); ok {
			block.lines = append(block.lines, rest)
			continue
		}
		if len(block.lines) > 0 {
			res = append(res, block)
		}
		block = rawBlock{line: i + 2}
	}
	if len(block.lines) > 0 {
		res = append(res, block)
	}
	return res
}

func (l Location) String() string {
	rel, err := filepath.Rel(l.Root, l.File)
	if err != nil {
		rel = l.File
	}
	return fmt.Sprintf("%s%s#L%d[%s]", sourceURL, filepath.ToSlash(rel), l.Line, filepath.Base(l.File))
}
