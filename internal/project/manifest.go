// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the file name of a Cargo manifest.
const ManifestName = "Cargo.toml"

type (
	// Manifest is the subset of Cargo.toml xtask reads.
	Manifest struct {
		Package   *PackageSection   `toml:"package"`
		Workspace *WorkspaceSection `toml:"workspace"`
	}

	PackageSection struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Edition string `toml:"edition"`
	}

	WorkspaceSection struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	}
)

// IsWorkspace reports whether the manifest declares a [workspace] table.
func (m *Manifest) IsWorkspace() bool {
	return m.Workspace != nil
}

// ReadManifest decodes the Cargo.toml at path. A missing file yields an
// error that matches os.ErrNotExist.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}
