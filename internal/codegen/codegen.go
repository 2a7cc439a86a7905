// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lsptools/xtask/internal/config"
	"github.com/lsptools/xtask/internal/notbash"
	"github.com/lsptools/xtask/internal/toolchain"
)

// Preamble heads every generated Rust file.
const Preamble = "Generated file, do not edit by hand, see `xtask codegen`"

// Mode selects whether generators rewrite files or only check them.
type Mode int

const (
	Overwrite Mode = iota
	Verify
)

func (m Mode) String() string {
	if m == Verify {
		return "verify"
	}
	return "overwrite"
}

// OutOfDateError is returned in Verify mode when a generated file differs
// from what its sources describe.
type OutOfDateError struct {
	Path string
}

func (e *OutOfDateError) Error() string {
	return fmt.Sprintf("%q is not up-to-date, run \"xtask codegen\"", e.Path)
}

// Update brings path in line with contents. Line endings are normalized to
// \n first. It reports whether the file was written.
func Update(path, contents string, mode Mode) (bool, error) {
	contents = normalizeNewlines(contents)
	if old, err := os.ReadFile(path); err == nil && normalizeNewlines(string(old)) == contents {
		return false, nil
	}
	if mode == Verify {
		return false, &OutOfDateError{Path: path}
	}
	if err := notbash.WriteFile(path, contents); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Generator runs the code generators of one project.
type Generator struct {
	root   string
	cfg    config.CodegenConfig
	sh     *notbash.Shell
	logger *log.Logger

	// debounce is the quiet period Watch waits for; zero means the
	// watcher's default.
	debounce time.Duration
}

// New returns a Generator for the project at root. sh is used to run rustfmt
// over generated Rust code.
func New(root string, cfg config.CodegenConfig, sh *notbash.Shell) *Generator {
	return &Generator{root: root, cfg: cfg, sh: sh, logger: sh.Logger()}
}

// Run executes every generator concurrently and joins their errors.
func (g *Generator) Run(ctx context.Context, mode Mode) error {
	generators := []func(context.Context, Mode) error{
		g.GenerateSyntax,
		g.GenerateParserTests,
		g.GenerateAssistsDocs,
		g.GenerateFeatureDocs,
	}

	var (
		mu   sync.Mutex
		errs []error
		eg   errgroup.Group
	)
	for _, gen := range generators {
		eg.Go(func() error {
			if err := gen(ctx, mode); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}

func (g *Generator) path(rel string) string {
	return filepath.Join(g.root, filepath.FromSlash(rel))
}

func (g *Generator) update(path, contents string, mode Mode) error {
	changed, err := Update(path, contents, mode)
	if err != nil {
		return err
	}
	if changed {
		g.logger.Info("updating " + g.rel(path))
	}
	return nil
}

func (g *Generator) rel(path string) string {
	rel, err := filepath.Rel(g.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// reformat runs rustfmt over generated Rust code and adds the preamble.
// Without a stable rustfmt, Overwrite mode keeps the unformatted text;
// Verify mode cannot compare reliably and fails.
func (g *Generator) reformat(ctx context.Context, text string, mode Mode) (string, error) {
	formatted, err := toolchain.Reformat(ctx, g.sh, g.root, text)
	if err != nil {
		if mode == Verify {
			return "", err
		}
		g.logger.Warn("rustfmt unavailable, writing unformatted code", "err", err)
		formatted = strings.TrimSpace(text)
	}
	return fmt.Sprintf("//! %s\n\n%s\n", Preamble, formatted), nil
}
