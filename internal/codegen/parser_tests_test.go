// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lsptools/xtask/internal/testutil"
)

func TestCollectInlineTests(t *testing.T) {
	t.Parallel()

	text := `
// test let_stmt
// fn f() { let x = 92; }
fn let_stmt() {}

// test_err let_no_semi
// fn f() { let x = 92 }

// Regular comment
// spanning lines
`
	got := CollectInlineTests(text)
	want := []InlineTest{
		{Name: "let_stmt", Text: "fn f() { let x = 92; }\n", OK: true},
		{Name: "let_no_semi", Text: "fn f() { let x = 92 }\n", OK: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectInlineTests() = %+v, want %+v", got, want)
	}
}

func TestGenerateParserTests_Numbering(t *testing.T) {
	t.Parallel()

	root := testutil.NewWorkspace(t, map[string]string{
		"crates/ra_parser/src/grammar/expr.rs":                     "// test zeta\n// zeta;\n\n// test alpha\n// alpha;\n",
		"crates/ra_parser/src/grammar.rs":                          "// test beta\n// beta;\n",
		"crates/ra_syntax/test_data/parser/inline/ok/0001_zeta.rs": "old zeta;\n",
	})
	gen := newGenerator(t, root, stableRustfmt())

	if err := gen.GenerateParserTests(context.Background(), Overwrite); err != nil {
		t.Fatalf("GenerateParserTests() error: %v", err)
	}

	okDir := filepath.Join(root, "crates", "ra_syntax", "test_data", "parser", "inline", "ok")
	if got := testutil.MustReadFile(t, filepath.Join(okDir, "0001_zeta.rs")); got != "zeta;\n" {
		t.Errorf("existing test not updated in place: %q", got)
	}
	if got := testutil.MustReadFile(t, filepath.Join(okDir, "0002_alpha.rs")); got != "alpha;\n" {
		t.Errorf("0002_alpha.rs = %q", got)
	}
	if got := testutil.MustReadFile(t, filepath.Join(okDir, "0003_beta.rs")); got != "beta;\n" {
		t.Errorf("0003_beta.rs = %q", got)
	}
}

func TestGenerateParserTests_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "duplicate",
			files: map[string]string{
				"crates/ra_parser/src/grammar/a.rs": "// test same\n// a;\n",
				"crates/ra_parser/src/grammar/b.rs": "// test same\n// b;\n",
			},
			wantErr: "duplicate test: same",
		},
		{
			name: "deleted",
			files: map[string]string{
				"crates/ra_parser/src/grammar/a.rs":                        "// test kept\n// a;\n",
				"crates/ra_syntax/test_data/parser/inline/ok/0001_gone.rs": "gone;\n",
			},
			wantErr: "test is deleted: gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := newGenerator(t, testutil.NewWorkspace(t, tt.files), stableRustfmt())
			err := gen.GenerateParserTests(context.Background(), Overwrite)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
