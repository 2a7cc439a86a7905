// SPDX-License-Identifier: MPL-2.0

package dist

import (
	"strings"

	"github.com/lsptools/xtask/internal/notbash"
)

// Patch is a temporary textual edit of a file. Restore puts the original
// contents back.
type Patch struct {
	Path     string
	original string
	contents string
}

// NewPatch reads path.
func NewPatch(path string) (*Patch, error) {
	text, err := notbash.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Patch{Path: path, original: text, contents: text}, nil
}

// Replace substitutes every occurrence of from with to.
func (p *Patch) Replace(from, to string) *Patch {
	p.contents = strings.ReplaceAll(p.contents, from, to)
	return p
}

// Commit writes the patched contents.
func (p *Patch) Commit() error {
	return notbash.WriteFile(p.Path, p.contents)
}

// Restore writes the original contents back.
func (p *Patch) Restore() error {
	return notbash.WriteFile(p.Path, p.original)
}
