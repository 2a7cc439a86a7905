// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// InvalidConfigError collects field-level validation failures.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// ServerConfig describes the language server crate.
	ServerConfig struct {
		// Package is the cargo package name of the server.
		Package string `json:"package" mapstructure:"package"`
		// Bin is the binary target built for distribution.
		Bin string `json:"bin" mapstructure:"bin"`
		// Manifest is the server's Cargo.toml, relative to the project root.
		Manifest string `json:"manifest" mapstructure:"manifest"`
		// RequiredRustMinor is the minimum 1.x toolchain that compiles the server.
		RequiredRustMinor int `json:"required_rust_minor" mapstructure:"required_rust_minor"`
	}

	// ClientConfig describes the VS Code extension.
	ClientConfig struct {
		Dir         string   `json:"dir" mapstructure:"dir"`
		Vsix        string   `json:"vsix" mapstructure:"vsix"`
		ExtensionID string   `json:"extension_id" mapstructure:"extension_id"`
		Editors     []string `json:"editors" mapstructure:"editors"`
	}

	ClippyConfig struct {
		AllowedLints []string `json:"allowed_lints" mapstructure:"allowed_lints"`
	}

	FuzzConfig struct {
		Dir       string `json:"dir" mapstructure:"dir"`
		Target    string `json:"target" mapstructure:"target"`
		Toolchain string `json:"toolchain" mapstructure:"toolchain"`
	}

	// ReleaseConfig drives the weekly release: branch reset and the website changelog.
	ReleaseConfig struct {
		WebsiteRoot  string   `json:"website_root" mapstructure:"website_root"`
		ChangelogDir string   `json:"changelog_dir" mapstructure:"changelog_dir"`
		DocsDir      string   `json:"docs_dir" mapstructure:"docs_dir"`
		Docs         []string `json:"docs" mapstructure:"docs"`
		Remote       string   `json:"remote" mapstructure:"remote"`
		Branch       string   `json:"branch" mapstructure:"branch"`
		Tag          string   `json:"tag" mapstructure:"tag"`
	}

	// PreCacheConfig lists path fragments of workspace artifacts that must not
	// be cached on CI.
	PreCacheConfig struct {
		Delete []string `json:"delete" mapstructure:"delete"`
	}

	// CodegenConfig locates generator inputs and outputs, relative to the
	// project root.
	CodegenConfig struct {
		GrammarDir     string `json:"grammar_dir" mapstructure:"grammar_dir"`
		SyntaxKinds    string `json:"syntax_kinds" mapstructure:"syntax_kinds"`
		InlineTestsDir string `json:"inline_tests_dir" mapstructure:"inline_tests_dir"`
		AssistsDir     string `json:"assists_dir" mapstructure:"assists_dir"`
		AssistsTests   string `json:"assists_tests" mapstructure:"assists_tests"`
		AssistsDocs    string `json:"assists_docs" mapstructure:"assists_docs"`
		FeatureDocs    string `json:"feature_docs" mapstructure:"feature_docs"`
		CratesDir      string `json:"crates_dir" mapstructure:"crates_dir"`
	}

	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the xtask configuration.
	Config struct {
		Server   ServerConfig   `json:"server" mapstructure:"server"`
		Client   ClientConfig   `json:"client" mapstructure:"client"`
		Clippy   ClippyConfig   `json:"clippy" mapstructure:"clippy"`
		Fuzz     FuzzConfig     `json:"fuzz" mapstructure:"fuzz"`
		Release  ReleaseConfig  `json:"release" mapstructure:"release"`
		PreCache PreCacheConfig `json:"precache" mapstructure:"precache"`
		Codegen  CodegenConfig  `json:"codegen" mapstructure:"codegen"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
	}
)

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the configuration used when xtask.cue is absent.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Package:           "rust-analyzer",
			Bin:               "rust-analyzer",
			Manifest:          "crates/rust-analyzer/Cargo.toml",
			RequiredRustMinor: 43,
		},
		Client: ClientConfig{
			Dir:         "editors/code",
			Vsix:        "rust-analyzer.vsix",
			ExtensionID: "rust-analyzer",
			Editors:     []string{"code", "code-insiders", "codium", "code-oss"},
		},
		Clippy: ClippyConfig{
			AllowedLints: []string{
				"clippy::collapsible_if",
				"clippy::needless_pass_by_value",
				"clippy::nonminimal_bool",
				"clippy::redundant_pattern_matching",
			},
		},
		Fuzz: FuzzConfig{
			Dir:       "crates/ra_syntax",
			Target:    "parser",
			Toolchain: "nightly",
		},
		Release: ReleaseConfig{
			WebsiteRoot:  "../rust-analyzer.github.io",
			ChangelogDir: "thisweek/_posts",
			DocsDir:      "docs/user",
			Docs:         []string{"manual.adoc", "generated_features.adoc", "generated_assists.adoc"},
			Remote:       "upstream",
			Branch:       "release",
			Tag:          "nightly",
		},
		PreCache: PreCacheConfig{
			Delete: []string{"ra_", "heavy_test", "xtask"},
		},
		Codegen: CodegenConfig{
			GrammarDir:     "crates/ra_parser/src/grammar",
			SyntaxKinds:    "crates/ra_parser/src/syntax_kind/generated.rs",
			InlineTestsDir: "crates/ra_syntax/test_data/parser/inline",
			AssistsDir:     "crates/ra_assists/src/handlers",
			AssistsTests:   "crates/ra_assists/src/tests/generated.rs",
			AssistsDocs:    "docs/user/generated_assists.adoc",
			FeatureDocs:    "docs/user/generated_features.adoc",
			CratesDir:      "crates",
		},
	}
}

// Validate checks constraints viper merging can break (environment overrides
// bypass the CUE schema).
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"server.package":     c.Server.Package,
		"server.bin":         c.Server.Bin,
		"server.manifest":    c.Server.Manifest,
		"client.dir":         c.Client.Dir,
		"client.vsix":        c.Client.Vsix,
		"fuzz.dir":           c.Fuzz.Dir,
		"fuzz.target":        c.Fuzz.Target,
		"fuzz.toolchain":     c.Fuzz.Toolchain,
		"release.remote":     c.Release.Remote,
		"release.branch":     c.Release.Branch,
		"release.tag":        c.Release.Tag,
		"codegen.crates_dir": c.Codegen.CratesDir,
	}
	for _, key := range sortedKeys(required) {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}
	if c.Server.RequiredRustMinor <= 0 {
		errs = append(errs, fmt.Errorf("server.required_rust_minor must be positive, got %d", c.Server.RequiredRustMinor))
	}
	if len(c.Client.Editors) == 0 {
		errs = append(errs, errors.New("client.editors must list at least one editor binary"))
	}
	for i, lint := range c.Clippy.AllowedLints {
		if !strings.HasPrefix(lint, "clippy::") {
			errs = append(errs, fmt.Errorf("clippy.allowed_lints[%d]: %q is not a clippy lint", i, lint))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
