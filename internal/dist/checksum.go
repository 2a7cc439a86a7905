// SPDX-License-Identifier: MPL-2.0

package dist

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lsptools/xtask/internal/notbash"
)

// ChecksumsFile is written next to the artifacts in dist/.
const ChecksumsFile = "checksums.txt"

var (
	// ErrChecksumMismatch means an artifact does not hash to its recorded value.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrArtifactNotFound means checksums.txt has no line for an artifact.
	ErrArtifactNotFound = errors.New("artifact not found in checksums")

	errNoChecksums = errors.New("no valid checksum entries found")
)

type (
	// ChecksumEntry is one line of checksums.txt.
	ChecksumEntry struct {
		Hash     string
		Filename string
	}

	// ChecksumError reports an artifact rebuilt or modified after
	// checksums.txt was written. It wraps ErrChecksumMismatch.
	ChecksumError struct {
		Filename string
		Expected string
		Got      string
	}
)

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: sha256 is %s but %s records %s", e.Filename, e.Got, ChecksumsFile, e.Expected)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// ParseChecksums reads checksums.txt, which uses the `sha256sum` format
// "<hex>  <artifact>". Lines that do not fit are skipped, but at least one
// must.
func ParseChecksums(r io.Reader) ([]ChecksumEntry, error) {
	var entries []ChecksumEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		hash, name, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "  ")
		name = strings.TrimSpace(name)
		if !ok || name == "" || !isSHA256Hex(hash) {
			continue
		}
		entries = append(entries, ChecksumEntry{Hash: strings.ToLower(hash), Filename: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	if len(entries) == 0 {
		return nil, errNoChecksums
	}
	return entries, nil
}

// FindChecksum returns the hash recorded for the artifact named filename.
func FindChecksum(entries []ChecksumEntry, filename string) (string, error) {
	for _, e := range entries {
		if e.Filename == filename {
			return e.Hash, nil
		}
	}
	return "", fmt.Errorf("%s: %w", filename, ErrArtifactNotFound)
}

// VerifyFile hashes path and compares it with expected, ignoring case.
func VerifyFile(path, expected string) error {
	got, err := ComputeFileHash(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, expected) {
		return &ChecksumError{Filename: path, Expected: strings.ToLower(expected), Got: got}
	}
	return nil
}

// ComputeFileHash returns the lowercase hex SHA256 of the file at path.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksums records the hash of every artifact in dir to
// dir/checksums.txt, in file name order.
func WriteChecksums(dir string) error {
	artifacts, err := listArtifacts(dir)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, path := range artifacts {
		hash, err := ComputeFileHash(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "%s  %s\n", hash, filepath.Base(path))
	}
	return notbash.WriteFile(filepath.Join(dir, ChecksumsFile), sb.String())
}

// VerifyDir checks every artifact in dir against dir/checksums.txt. Listed
// files that are missing and artifacts that are not listed both fail.
func VerifyDir(dir string) error {
	f, err := os.Open(filepath.Join(dir, ChecksumsFile))
	if err != nil {
		return fmt.Errorf("failed to open checksums: %w", err)
	}
	defer f.Close()

	entries, err := ParseChecksums(f)
	if err != nil {
		return err
	}
	artifacts, err := listArtifacts(dir)
	if err != nil {
		return err
	}

	var errs []error
	seen := make(map[string]bool, len(artifacts))
	for _, path := range artifacts {
		name := filepath.Base(path)
		seen[name] = true
		hash, err := FindChecksum(entries, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, VerifyFile(path, hash))
	}
	for _, e := range entries {
		if !seen[e.Filename] {
			errs = append(errs, fmt.Errorf("%s: listed in %s but missing", e.Filename, ChecksumsFile))
		}
	}
	return errors.Join(errs...)
}

// listArtifacts returns the regular files of dir except checksums.txt.
func listArtifacts(dir string) ([]string, error) {
	paths, err := notbash.Ls(dir)
	if err != nil {
		return nil, err
	}
	var artifacts []string
	for _, path := range paths {
		if filepath.Base(path) == ChecksumsFile {
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		artifacts = append(artifacts, path)
	}
	return artifacts, nil
}

func isSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
