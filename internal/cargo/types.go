// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"fmt"
	"path/filepath"
	"strings"
)

type (
	// Config selects the features and target cargo resolves the workspace for.
	Config struct {
		// NoDefaultFeatures disables the `default` feature.
		NoDefaultFeatures bool
		// AllFeatures activates every feature; Features is then ignored.
		AllFeatures bool
		Features    []string
		// LoadOutDirsFromCheck runs `cargo check` to find OUT_DIR, cfgs and
		// proc-macro dylibs.
		LoadOutDirsFromCheck bool
		// Target is a rustc target triple, empty for the host.
		Target string
	}

	// Package addresses a PackageData in a Workspace.
	Package int

	// Target addresses a TargetData in a Workspace.
	Target int

	// PackageData is one package of the resolved graph.
	PackageData struct {
		Name               string
		Version            string
		Manifest           string
		Targets            []Target
		IsMember           bool
		Dependencies       []PackageDependency
		Edition            Edition
		Features           []string
		Cfgs               []string
		OutDir             string
		ProcMacroDylibPath string
	}

	PackageDependency struct {
		Pkg  Package
		Name string
	}

	TargetData struct {
		Package     Package
		Name        string
		Root        string
		Kind        TargetKind
		IsProcMacro bool
	}

	// TargetKind classifies a cargo target.
	TargetKind int

	// Edition is a Rust edition.
	Edition int
)

const (
	Bin TargetKind = iota
	// Lib is any library crate type (lib, rlib, dylib, proc-macro, ...).
	Lib
	Example
	Test
	Bench
	Other
)

const (
	Edition2015 Edition = iota
	Edition2018
	Edition2021
)

// DefaultConfig activates all features for the host target.
func DefaultConfig() Config {
	return Config{AllFeatures: true}
}

// NewTargetKind classifies a target by its cargo kinds. The first kind
// that is recognized wins.
func NewTargetKind(kinds []string) TargetKind {
	for _, kind := range kinds {
		switch {
		case kind == "bin":
			return Bin
		case kind == "test":
			return Test
		case kind == "bench":
			return Bench
		case kind == "example":
			return Example
		case kind == "proc-macro", strings.Contains(kind, "lib"):
			return Lib
		}
	}
	return Other
}

func (k TargetKind) String() string {
	switch k {
	case Bin:
		return "bin"
	case Lib:
		return "lib"
	case Example:
		return "example"
	case Test:
		return "test"
	case Bench:
		return "bench"
	default:
		return "other"
	}
}

// ParseEdition parses "2015", "2018" or "2021".
func ParseEdition(s string) (Edition, error) {
	switch s {
	case "2015":
		return Edition2015, nil
	case "2018":
		return Edition2018, nil
	case "2021":
		return Edition2021, nil
	}
	return 0, fmt.Errorf("invalid edition: %q", s)
}

func (e Edition) String() string {
	switch e {
	case Edition2018:
		return "2018"
	case Edition2021:
		return "2021"
	default:
		return "2015"
	}
}

// Root returns the directory of the package manifest.
func (p *PackageData) Root() string {
	return filepath.Dir(p.Manifest)
}
