// SPDX-License-Identifier: MPL-2.0

package cargo

import "github.com/lsptools/xtask/internal/dag"

// TopologicalOrder returns the member packages ordered so that every
// package comes after the members it depends on.
func (w *Workspace) TopologicalOrder() ([]Package, error) {
	g := dag.New[string]()
	byFlag := map[string]Package{}
	for _, pkg := range w.Packages() {
		data := w.Package(pkg)
		if !data.IsMember {
			continue
		}
		flag := w.PackageFlag(data)
		byFlag[flag] = pkg
		g.AddNode(flag)
	}
	for _, pkg := range w.Packages() {
		data := w.Package(pkg)
		if !data.IsMember {
			continue
		}
		for _, dep := range data.Dependencies {
			depData := w.Package(dep.Pkg)
			if depData.IsMember {
				g.AddEdge(w.PackageFlag(depData), w.PackageFlag(data))
			}
		}
	}

	flags, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	order := make([]Package, len(flags))
	for i, flag := range flags {
		order[i] = byFlag[flag]
	}
	return order, nil
}
