// SPDX-License-Identifier: MPL-2.0

package dist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lsptools/xtask/internal/testutil"
)

// sha256 of "hello\n".
const helloHash = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

func TestParseChecksums(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []ChecksumEntry
		wantErr bool
	}{
		{
			name:  "valid",
			input: helloHash + "  rust-analyzer-linux.gz\n" + strings.ToUpper(helloHash) + "  rust-analyzer.vsix\n",
			want: []ChecksumEntry{
				{Hash: helloHash, Filename: "rust-analyzer-linux.gz"},
				{Hash: helloHash, Filename: "rust-analyzer.vsix"},
			},
		},
		{
			name:  "skips malformed lines",
			input: "\nnot a checksum\n" + helloHash[:10] + "  short.gz\n" + helloHash + " single-space.gz\n" + helloHash + "  ok.gz\n",
			want:  []ChecksumEntry{{Hash: helloHash, Filename: "ok.gz"}},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "nothing valid", input: "garbage\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseChecksums(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChecksums() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChecksums() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseChecksums() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindChecksum(t *testing.T) {
	t.Parallel()

	entries := []ChecksumEntry{{Hash: helloHash, Filename: "rust-analyzer-mac.gz"}}
	if got, err := FindChecksum(entries, "rust-analyzer-mac.gz"); err != nil || got != helloHash {
		t.Errorf("FindChecksum() = (%s, %v)", got, err)
	}
	if _, err := FindChecksum(entries, "rust-analyzer-windows.exe.gz"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("FindChecksum() missing = %v, want ErrArtifactNotFound", err)
	}
}

func TestVerifyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "artifact")
	testutil.MustWriteFile(t, path, "hello\n")

	if err := VerifyFile(path, strings.ToUpper(helloHash)); err != nil {
		t.Errorf("VerifyFile() with upper-case hash: %v", err)
	}

	wrong := strings.Repeat("0", 64)
	err := VerifyFile(path, wrong)
	var ce *ChecksumError
	if !errors.As(err, &ce) || !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("VerifyFile() = %v, want ChecksumError", err)
	}
	if ce.Expected != wrong || ce.Got != helloHash {
		t.Errorf("ChecksumError = %+v", ce)
	}

	if err := VerifyFile(filepath.Join(t.TempDir(), "missing"), helloHash); err == nil {
		t.Error("VerifyFile() on a missing file should fail")
	}
}

func TestWriteChecksumsAndVerifyDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "b.gz"), "hello\n")
	testutil.MustWriteFile(t, filepath.Join(dir, "a.vsix"), "vsix")
	testutil.MustMkdirAll(t, filepath.Join(dir, "subdir"))

	if err := WriteChecksums(dir); err != nil {
		t.Fatalf("WriteChecksums() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(testutil.MustReadFile(t, filepath.Join(dir, ChecksumsFile))), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "  a.vsix") || lines[1] != helloHash+"  b.gz" {
		t.Fatalf("checksums.txt = %q", lines)
	}

	if err := VerifyDir(dir); err != nil {
		t.Errorf("VerifyDir() error: %v", err)
	}

	testutil.MustWriteFile(t, filepath.Join(dir, "b.gz"), "tampered\n")
	if err := VerifyDir(dir); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("VerifyDir() after tampering = %v, want ErrChecksumMismatch", err)
	}
}

func TestVerifyDir_UnlistedAndMissingArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "rust-analyzer-linux.gz"), "hello\n")
	testutil.MustWriteFile(t, filepath.Join(dir, "rust-analyzer-mac.gz"), "hello\n")
	if err := WriteChecksums(dir); err != nil {
		t.Fatalf("WriteChecksums() error: %v", err)
	}

	testutil.MustWriteFile(t, filepath.Join(dir, "rust-analyzer-windows.exe.gz"), "stale\n")
	err := VerifyDir(dir)
	if !errors.Is(err, ErrArtifactNotFound) || !strings.Contains(err.Error(), "rust-analyzer-windows.exe.gz") {
		t.Errorf("VerifyDir() with an unlisted artifact = %v, want ErrArtifactNotFound", err)
	}

	if err := os.Remove(filepath.Join(dir, "rust-analyzer-windows.exe.gz")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "rust-analyzer-mac.gz")); err != nil {
		t.Fatal(err)
	}
	err = VerifyDir(dir)
	if err == nil || !strings.Contains(err.Error(), "rust-analyzer-mac.gz: listed in checksums.txt but missing") {
		t.Errorf("VerifyDir() with a missing artifact = %v", err)
	}
}
