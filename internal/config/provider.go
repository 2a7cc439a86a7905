// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"strings"
)

type (
	// Provider resolves the effective configuration of a project.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
	}

	// Loaded is a resolved configuration together with the file it came from.
	Loaded struct {
		*Config

		// Path is the xtask.cue that was read, "" when only defaults and the
		// environment applied.
		Path string
	}

	fileProvider struct{}
)

// NewProvider creates a Provider reading xtask.cue and XTASK_* variables.
func NewProvider() Provider {
	return &fileProvider{}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}

// Source names where the configuration came from: the file relative to root
// when it lies inside it, or "defaults".
func (l *Loaded) Source(root string) string {
	if l.Path == "" {
		return "defaults"
	}
	if root != "" {
		if rel, err := filepath.Rel(root, l.Path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return l.Path
}
