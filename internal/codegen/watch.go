// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	"path"
	"strings"

	"github.com/lsptools/xtask/internal/watch"
)

// Watch regenerates everything in Overwrite mode whenever a Rust source
// below the crates directory changes, until ctx is done. Generated outputs
// are ignored so a regeneration does not trigger itself.
func (g *Generator) Watch(ctx context.Context) error {
	crates := strings.TrimSuffix(g.cfg.CratesDir, "/")
	w, err := watch.New(watch.Config{
		Root:     g.root,
		Patterns: []string{path.Join(crates, "**", "*.rs")},
		Ignore: []string{
			g.cfg.SyntaxKinds,
			g.cfg.AssistsTests,
			path.Join(g.cfg.InlineTestsDir, "**"),
		},
		Debounce: g.debounce,
		Logger:   g.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			g.logger.Info("sources changed, regenerating", "files", len(changed))
			return g.Run(ctx, Overwrite)
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
