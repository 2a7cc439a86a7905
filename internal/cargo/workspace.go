// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

type (
	// Workspace is a resolved cargo workspace. Packages and targets are
	// addressed by index.
	Workspace struct {
		packages []PackageData
		targets  []TargetData
		root     string
	}

	metadata struct {
		Packages         []metadataPackage `json:"packages"`
		WorkspaceMembers []string          `json:"workspace_members"`
		Resolve          *metadataResolve  `json:"resolve"`
		WorkspaceRoot    string            `json:"workspace_root"`
	}

	metadataPackage struct {
		ID           string           `json:"id"`
		Name         string           `json:"name"`
		Version      string           `json:"version"`
		Edition      string           `json:"edition"`
		ManifestPath string           `json:"manifest_path"`
		Targets      []metadataTarget `json:"targets"`
	}

	metadataTarget struct {
		Name    string   `json:"name"`
		Kind    []string `json:"kind"`
		SrcPath string   `json:"src_path"`
	}

	metadataResolve struct {
		Nodes []metadataNode `json:"nodes"`
	}

	metadataNode struct {
		ID       string        `json:"id"`
		Deps     []metadataDep `json:"deps"`
		Features []string      `json:"features"`
	}

	metadataDep struct {
		Name string `json:"name"`
		Pkg  string `json:"pkg"`
	}
)

// FromMetadata runs `cargo metadata` for manifest in its directory and
// builds the workspace model.
func FromMetadata(ctx context.Context, sh *notbash.Shell, manifest string, cfg Config) (*Workspace, error) {
	cmd := "cargo metadata --format-version 1 --manifest-path " + notbash.Quote(manifest) + featureFlags(cfg)
	if cfg.Target != "" {
		cmd += " --filter-platform " + notbash.Quote(cfg.Target)
	}

	out, err := func() (string, error) {
		defer sh.Pushd(filepath.Dir(manifest))()
		return sh.Capture(ctx, "%s", cmd)
	}()
	if err != nil {
		return nil, issue.Contextf(err, "run `cargo metadata --manifest-path %s`", manifest)
	}

	var meta metadata
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return nil, issue.Contextf(err, "decode `cargo metadata --manifest-path %s`", manifest)
	}

	var res *ExternResources
	if cfg.LoadOutDirsFromCheck {
		if res, err = LoadExternResources(ctx, sh, manifest, cfg); err != nil {
			return nil, err
		}
	}
	return newWorkspace(sh, &meta, res)
}

func featureFlags(cfg Config) string {
	switch {
	case cfg.AllFeatures:
		return " --all-features"
	case cfg.NoDefaultFeatures:
		return " --no-default-features"
	case len(cfg.Features) > 0:
		return " --features " + notbash.Quote(strings.Join(cfg.Features, ","))
	}
	return ""
}

func newWorkspace(sh *notbash.Shell, meta *metadata, res *ExternResources) (*Workspace, error) {
	if res == nil {
		res = &ExternResources{}
	}
	ws := &Workspace{root: meta.WorkspaceRoot}
	byID := make(map[string]Package, len(meta.Packages))

	for _, mp := range meta.Packages {
		edition, err := ParseEdition(mp.Edition)
		if err != nil {
			return nil, issue.Contextf(err, "parse edition of %s", mp.Name)
		}
		pkg := Package(len(ws.packages))
		byID[mp.ID] = pkg
		data := PackageData{
			Name:               mp.Name,
			Version:            mp.Version,
			Manifest:           mp.ManifestPath,
			IsMember:           slices.Contains(meta.WorkspaceMembers, mp.ID),
			Edition:            edition,
			Cfgs:               slices.Clone(res.Cfgs[mp.ID]),
			OutDir:             res.OutDirs[mp.ID],
			ProcMacroDylibPath: res.ProcMacroDylibPaths[mp.ID],
		}
		for _, mt := range mp.Targets {
			tgt := Target(len(ws.targets))
			ws.targets = append(ws.targets, TargetData{
				Package:     pkg,
				Name:        mt.Name,
				Root:        mt.SrcPath,
				Kind:        NewTargetKind(mt.Kind),
				IsProcMacro: slices.Equal(mt.Kind, []string{"proc-macro"}),
			})
			data.Targets = append(data.Targets, tgt)
		}
		ws.packages = append(ws.packages, data)
	}

	if meta.Resolve == nil {
		return ws, nil
	}
	logger := sh.Logger()
	for _, node := range meta.Resolve.Nodes {
		src, ok := byID[node.ID]
		if !ok {
			logger.Error("node id does not match in cargo metadata, ignoring", "id", node.ID)
			continue
		}
		for _, dep := range node.Deps {
			pkg, ok := byID[dep.Pkg]
			if !ok {
				logger.Error("dep node id does not match in cargo metadata, ignoring", "id", dep.Pkg)
				continue
			}
			ws.packages[src].Dependencies = append(ws.packages[src].Dependencies, PackageDependency{Pkg: pkg, Name: dep.Name})
		}
		ws.packages[src].Features = append(ws.packages[src].Features, node.Features...)
	}
	return ws, nil
}

// Package returns the data of pkg.
func (w *Workspace) Package(pkg Package) *PackageData {
	return &w.packages[pkg]
}

// Target returns the data of tgt.
func (w *Workspace) Target(tgt Target) *TargetData {
	return &w.targets[tgt]
}

// Packages returns every package, in metadata order.
func (w *Workspace) Packages() []Package {
	pkgs := make([]Package, len(w.packages))
	for i := range pkgs {
		pkgs[i] = Package(i)
	}
	return pkgs
}

// TargetByRoot finds the target whose crate root is root.
func (w *Workspace) TargetByRoot(root string) (Target, bool) {
	for _, pkg := range w.packages {
		for _, tgt := range pkg.Targets {
			if w.targets[tgt].Root == root {
				return tgt, true
			}
		}
	}
	return 0, false
}

func (w *Workspace) WorkspaceRoot() string {
	return w.root
}

// PackageFlag returns the `-p` spec of pkg: its name, qualified with the
// version when several packages share the name.
func (w *Workspace) PackageFlag(pkg *PackageData) string {
	n := 0
	for i := range w.packages {
		if w.packages[i].Name == pkg.Name {
			n++
		}
	}
	if n == 1 {
		return pkg.Name
	}
	return pkg.Name + ":" + pkg.Version
}
