// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lsptools/xtask/internal/cueutil"
	"github.com/lsptools/xtask/internal/issue"

	"github.com/spf13/viper"
)

const (
	// FileName is the per-project configuration file, looked up at the project root.
	FileName = "xtask.cue"
	// EnvPrefix prefixes environment overrides (XTASK_CLIPPY_ALLOWED_LINTS, ...).
	EnvPrefix = "XTASK"
)

//go:embed config_schema.cue
var configSchema []byte

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ProjectRoot is searched for xtask.cue when ConfigFilePath is empty.
	ProjectRoot string
}

// Load resolves the configuration: built-in defaults, then xtask.cue, then
// XTASK_* environment variables. It returns the path of the file that was
// read, or "" when only defaults and environment applied.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := opts.ConfigFilePath
	if resolvedPath == "" && opts.ProjectRoot != "" {
		candidate := filepath.Join(opts.ProjectRoot, FileName)
		if fileExists(candidate) {
			resolvedPath = candidate
		}
	} else if resolvedPath != "" && !fileExists(resolvedPath) {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(resolvedPath).
			WithSuggestion("Verify the --config path is correct").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found")).
			BuildError()
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check XTASK_* environment variables for empty values").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every leaf of the default config so that
// AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.package", d.Server.Package)
	v.SetDefault("server.bin", d.Server.Bin)
	v.SetDefault("server.manifest", d.Server.Manifest)
	v.SetDefault("server.required_rust_minor", d.Server.RequiredRustMinor)
	v.SetDefault("client.dir", d.Client.Dir)
	v.SetDefault("client.vsix", d.Client.Vsix)
	v.SetDefault("client.extension_id", d.Client.ExtensionID)
	v.SetDefault("client.editors", d.Client.Editors)
	v.SetDefault("clippy.allowed_lints", d.Clippy.AllowedLints)
	v.SetDefault("fuzz.dir", d.Fuzz.Dir)
	v.SetDefault("fuzz.target", d.Fuzz.Target)
	v.SetDefault("fuzz.toolchain", d.Fuzz.Toolchain)
	v.SetDefault("release.website_root", d.Release.WebsiteRoot)
	v.SetDefault("release.changelog_dir", d.Release.ChangelogDir)
	v.SetDefault("release.docs_dir", d.Release.DocsDir)
	v.SetDefault("release.docs", d.Release.Docs)
	v.SetDefault("release.remote", d.Release.Remote)
	v.SetDefault("release.branch", d.Release.Branch)
	v.SetDefault("release.tag", d.Release.Tag)
	v.SetDefault("precache.delete", d.PreCache.Delete)
	v.SetDefault("codegen.grammar_dir", d.Codegen.GrammarDir)
	v.SetDefault("codegen.syntax_kinds", d.Codegen.SyntaxKinds)
	v.SetDefault("codegen.inline_tests_dir", d.Codegen.InlineTestsDir)
	v.SetDefault("codegen.assists_dir", d.Codegen.AssistsDir)
	v.SetDefault("codegen.assists_tests", d.Codegen.AssistsTests)
	v.SetDefault("codegen.assists_docs", d.Codegen.AssistsDocs)
	v.SetDefault("codegen.feature_docs", d.Codegen.FeatureDocs)
	v.SetDefault("codegen.crates_dir", d.Codegen.CratesDir)
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// viper. Fields are optional, so the document is not required to be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithPartial(),
	)
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// GenerateCUE renders cfg as an xtask.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// xtask configuration\n\n")

	sb.WriteString("server: {\n")
	fmt.Fprintf(&sb, "\tpackage: %q\n", cfg.Server.Package)
	fmt.Fprintf(&sb, "\tbin: %q\n", cfg.Server.Bin)
	fmt.Fprintf(&sb, "\tmanifest: %q\n", cfg.Server.Manifest)
	fmt.Fprintf(&sb, "\trequired_rust_minor: %d\n", cfg.Server.RequiredRustMinor)
	sb.WriteString("}\n")

	sb.WriteString("\nclient: {\n")
	fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Client.Dir)
	fmt.Fprintf(&sb, "\tvsix: %q\n", cfg.Client.Vsix)
	fmt.Fprintf(&sb, "\textension_id: %q\n", cfg.Client.ExtensionID)
	fmt.Fprintf(&sb, "\teditors: %s\n", cueList(cfg.Client.Editors))
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nclippy: allowed_lints: %s\n", cueList(cfg.Clippy.AllowedLints))

	sb.WriteString("\nfuzz: {\n")
	fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Fuzz.Dir)
	fmt.Fprintf(&sb, "\ttarget: %q\n", cfg.Fuzz.Target)
	fmt.Fprintf(&sb, "\ttoolchain: %q\n", cfg.Fuzz.Toolchain)
	sb.WriteString("}\n")

	sb.WriteString("\nrelease: {\n")
	fmt.Fprintf(&sb, "\twebsite_root: %q\n", cfg.Release.WebsiteRoot)
	fmt.Fprintf(&sb, "\tchangelog_dir: %q\n", cfg.Release.ChangelogDir)
	fmt.Fprintf(&sb, "\tdocs_dir: %q\n", cfg.Release.DocsDir)
	fmt.Fprintf(&sb, "\tdocs: %s\n", cueList(cfg.Release.Docs))
	fmt.Fprintf(&sb, "\tremote: %q\n", cfg.Release.Remote)
	fmt.Fprintf(&sb, "\tbranch: %q\n", cfg.Release.Branch)
	fmt.Fprintf(&sb, "\ttag: %q\n", cfg.Release.Tag)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nprecache: delete: %s\n", cueList(cfg.PreCache.Delete))

	sb.WriteString("\ncodegen: {\n")
	fmt.Fprintf(&sb, "\tgrammar_dir: %q\n", cfg.Codegen.GrammarDir)
	fmt.Fprintf(&sb, "\tsyntax_kinds: %q\n", cfg.Codegen.SyntaxKinds)
	fmt.Fprintf(&sb, "\tinline_tests_dir: %q\n", cfg.Codegen.InlineTestsDir)
	fmt.Fprintf(&sb, "\tassists_dir: %q\n", cfg.Codegen.AssistsDir)
	fmt.Fprintf(&sb, "\tassists_tests: %q\n", cfg.Codegen.AssistsTests)
	fmt.Fprintf(&sb, "\tassists_docs: %q\n", cfg.Codegen.AssistsDocs)
	fmt.Fprintf(&sb, "\tfeature_docs: %q\n", cfg.Codegen.FeatureDocs)
	fmt.Fprintf(&sb, "\tcrates_dir: %q\n", cfg.Codegen.CratesDir)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nui: verbose: %v\n", cfg.UI.Verbose)

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
