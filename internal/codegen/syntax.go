// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/lsptools/xtask/internal/cueutil"
)

var (
	//go:embed syntax_kinds_schema.cue
	kindsSchema []byte
	//go:embed syntax_kinds.cue
	kindsSource []byte
)

type (
	// Punct is a punctuation token and the name of its kind.
	Punct struct {
		Token string `json:"token"`
		Name  string `json:"name"`
	}

	// KindsSrc describes every SyntaxKind of the grammar.
	KindsSrc struct {
		Punct              []Punct  `json:"punct"`
		Keywords           []string `json:"keywords"`
		ContextualKeywords []string `json:"contextual_keywords"`
		Literals           []string `json:"literals"`
		Tokens             []string `json:"tokens"`
		Nodes              []string `json:"nodes"`
	}
)

// LoadKinds decodes the embedded grammar description.
func LoadKinds() (*KindsSrc, error) {
	return cueutil.ParseAndDecode[KindsSrc](kindsSchema, kindsSource, "#KindsSrc",
		cueutil.WithFilename("syntax_kinds.cue"))
}

// GenerateSyntax regenerates the SyntaxKind enum.
func (g *Generator) GenerateSyntax(ctx context.Context, mode Mode) error {
	kinds, err := LoadKinds()
	if err != nil {
		return fmt.Errorf("failed to load syntax kinds: %w", err)
	}
	text, err := g.reformat(ctx, RenderSyntaxKinds(kinds), mode)
	if err != nil {
		return err
	}
	return g.update(g.path(g.cfg.SyntaxKinds), text, mode)
}

func keywordKind(kw string) string {
	return strings.ToUpper(kw) + "_KW"
}

// macroToken renders a token the way it must appear inside T![...].
func macroToken(token string) string {
	switch token {
	case "{", "}", "[", "]", "(", ")":
		return "'" + token + "'"
	}
	return token
}

// RenderSyntaxKinds renders the Rust source of the SyntaxKind enum, its
// classification helpers and the T! macro.
func RenderSyntaxKinds(k *KindsSrc) string {
	var (
		sb          strings.Builder
		allKeywords = append(append([]string(nil), k.Keywords...), k.ContextualKeywords...)
		punctNames  = make([]string, len(k.Punct))
		kwNames     = make([]string, len(allKeywords))
	)
	for i, p := range k.Punct {
		punctNames[i] = p.Name
	}
	for i, kw := range allKeywords {
		kwNames[i] = keywordKind(kw)
	}

	sb.WriteString("#![allow(bad_style, missing_docs, unreachable_pub)]\n")
	sb.WriteString("#[doc = r\" The kind of syntax node, e.g. `IDENT`, `USE_KW`, or `STRUCT_DEF`.\"]\n")
	sb.WriteString("#[derive(Debug, Clone, Copy, PartialEq, Eq, PartialOrd, Ord, Hash)]\n")
	sb.WriteString("#[repr(u16)]\n")
	sb.WriteString("pub enum SyntaxKind {\n")
	sb.WriteString("    #[doc(hidden)]\n    TOMBSTONE,\n")
	sb.WriteString("    #[doc(hidden)]\n    EOF,\n")
	for _, group := range [][]string{punctNames, kwNames, k.Literals, k.Tokens, k.Nodes} {
		for _, name := range group {
			fmt.Fprintf(&sb, "    %s,\n", name)
		}
	}
	sb.WriteString("    #[doc(hidden)]\n    __LAST,\n")
	sb.WriteString("}\n")
	sb.WriteString("use self::SyntaxKind::*;\n")

	sb.WriteString("impl SyntaxKind {\n")
	writeMatchesFn(&sb, "is_keyword", kwNames)
	writeMatchesFn(&sb, "is_punct", punctNames)
	writeMatchesFn(&sb, "is_literal", k.Literals)

	sb.WriteString("    pub fn from_keyword(ident: &str) -> Option<SyntaxKind> {\n")
	sb.WriteString("        let kw = match ident {\n")
	for _, kw := range k.Keywords {
		fmt.Fprintf(&sb, "            %q => %s,\n", kw, keywordKind(kw))
	}
	sb.WriteString("            _ => return None,\n        };\n        Some(kw)\n    }\n")

	sb.WriteString("    pub fn from_char(c: char) -> Option<SyntaxKind> {\n")
	sb.WriteString("        let tok = match c {\n")
	for _, p := range k.Punct {
		if len(p.Token) != 1 {
			continue
		}
		fmt.Fprintf(&sb, "            %s => %s,\n", rustChar(p.Token), p.Name)
	}
	sb.WriteString("            _ => return None,\n        };\n        Some(tok)\n    }\n")
	sb.WriteString("}\n")

	sb.WriteString("#[macro_export]\n")
	sb.WriteString("macro_rules! T {\n")
	for _, p := range k.Punct {
		fmt.Fprintf(&sb, "    [%s] => { $crate::SyntaxKind::%s };\n", macroToken(p.Token), p.Name)
	}
	for _, kw := range allKeywords {
		fmt.Fprintf(&sb, "    [%s] => { $crate::SyntaxKind::%s };\n", kw, keywordKind(kw))
	}
	sb.WriteString("    [lifetime] => { $crate::SyntaxKind::LIFETIME };\n")
	sb.WriteString("    [ident] => { $crate::SyntaxKind::IDENT };\n")
	sb.WriteString("    [shebang] => { $crate::SyntaxKind::SHEBANG };\n")
	sb.WriteString("}\n")
	return sb.String()
}

func writeMatchesFn(sb *strings.Builder, name string, kinds []string) {
	fmt.Fprintf(sb, "    pub fn %s(self) -> bool {\n", name)
	if len(kinds) == 0 {
		sb.WriteString("        false\n    }\n")
		return
	}
	fmt.Fprintf(sb, "        match self {\n            %s => true,\n            _ => false,\n        }\n    }\n",
		strings.Join(kinds, " | "))
}

func rustChar(token string) string {
	switch token {
	case "'", "\\":
		return "'\\" + token + "'"
	}
	return "'" + token + "'"
}
