// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func startWatcher(t *testing.T, cfg Config) context.CancelFunc {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	})
	return cancel
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DebouncesMatchingChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "crates", "ra_parser"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	startWatcher(t, Config{
		Root:     root,
		Patterns: []string{"crates/**/*.rs"},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
	})

	writeFile(t, filepath.Join(root, "crates", "ra_parser", "a.rs"))
	writeFile(t, filepath.Join(root, "crates", "ra_parser", "b.rs"))
	writeFile(t, filepath.Join(root, "crates", "ra_parser", "notes.md"))

	select {
	case <-rec.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback did not fire")
	}

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected one coalesced callback, got %v", calls)
	}
	want := []string{"crates/ra_parser/a.rs", "crates/ra_parser/b.rs"}
	if !slices.Equal(calls[0], want) {
		t.Errorf("changed = %v, want %v", calls[0], want)
	}
}

func TestWatcher_IgnoresTargetDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "target", "debug"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	startWatcher(t, Config{
		Root:     root,
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})

	writeFile(t, filepath.Join(root, "target", "debug", "build.rs"))

	select {
	case <-rec.fired:
		t.Fatalf("ignored path triggered callback: %v", rec.snapshot())
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Root: t.TempDir(), Patterns: []string{"crates/[*.rs"}}); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() = %v", err)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Run() = %v, want ErrAlreadyStarted", err)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"target/debug/deps/foo.rs", true},
		{"crates/ra_syntax/target/x.rs", true},
		{".git/HEAD", true},
		{"editors/code/node_modules/a.js", true},
		{"crates/ra_parser/src/grammar.rs~", true},
		{"crates/ra_parser/src/grammar.rs", false},
	}
	ignores := DefaultIgnores()
	for _, tt := range tests {
		if got := matchAny(ignores, tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
