// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/project"
)

// Feature is a user-visible feature documented by a
// "// Feature: <Name>" comment block.
type Feature struct {
	ID       string
	Location Location
	Doc      string
}

// CollectFeatures returns the documented features of all crates, sorted
// by name.
func (g *Generator) CollectFeatures() ([]Feature, error) {
	files, err := project.RustFiles(g.path(g.cfg.CratesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list crate sources: %w", err)
	}

	var features []Feature
	for _, path := range files {
		text, err := notbash.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, block := range ExtractCommentBlocksWithEmptyLines("Feature", text) {
			if !isValidFeatureName(block.ID) {
				return nil, fmt.Errorf("%s:%d: invalid feature name: %q", g.rel(path), block.Line, block.ID)
			}
			features = append(features, Feature{
				ID:       block.ID,
				Location: Location{Root: g.root, File: path, Line: block.Line},
				Doc:      strings.Join(block.Contents, "\n"),
			})
		}
	}
	slices.SortFunc(features, func(a, b Feature) int { return strings.Compare(a.ID, b.ID) })
	return features, nil
}

// isValidFeatureName requires title case; "to" and "and" stay lower case.
func isValidFeatureName(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		switch word {
		case "to", "and":
			continue
		case "To", "And":
			return false
		}
		if !unicode.IsUpper(firstRune(word)) {
			return false
		}
	}
	return true
}

// Render formats the feature as an AsciiDoc section.
func (f Feature) Render() string {
	return fmt.Sprintf("=== %s\n**Source:** %s\n%s", f.ID, f.Location, f.Doc)
}

// GenerateFeatureDocs regenerates the features section of the user manual.
func (g *Generator) GenerateFeatureDocs(_ context.Context, mode Mode) error {
	features, err := g.CollectFeatures()
	if err != nil {
		return err
	}
	sections := make([]string, len(features))
	for i, f := range features {
		sections[i] = f.Render()
	}
	contents := strings.TrimSpace(strings.Join(sections, "\n\n")) + "\n"
	return g.update(g.path(g.cfg.FeatureDocs), contents, mode)
}
