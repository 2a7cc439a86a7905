// SPDX-License-Identifier: MPL-2.0

package notbash

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/interp"
)

// ErrDirStackEmpty is returned by Popd when only the initial directory is left.
var ErrDirStackEmpty = errors.New("cannot pop the last directory")

type (
	// ExecMiddleware wraps the handler that executes simple commands.
	ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

	// Shell tracks a working directory stack and environment overrides that
	// apply to every command it runs. A Shell is safe for concurrent use, but
	// Pushd and Pushenv affect all goroutines sharing it.
	Shell struct {
		mu          sync.Mutex
		dirs        []string
		env         map[string]string
		envOrder    []string
		stdout      io.Writer
		stderr      io.Writer
		logger      *log.Logger
		middlewares []ExecMiddleware
	}

	// Option configures a Shell.
	Option func(*Shell)
)

// WithOutput sets where streamed command output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithLogger sets the logger used to echo commands.
func WithLogger(l *log.Logger) Option {
	return func(s *Shell) {
		s.logger = l
	}
}

// WithExecMiddleware installs exec handler middlewares, outermost first.
func WithExecMiddleware(mw ...ExecMiddleware) Option {
	return func(s *Shell) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// New returns a Shell rooted at dir.
func New(dir string, opts ...Option) *Shell {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	s := &Shell{
		dirs:   []string{dir},
		env:    make(map[string]string),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(s.stderr, log.Options{})
	}
	return s
}

// Logger returns the logger commands are echoed to.
func (s *Shell) Logger() *log.Logger {
	return s.logger
}

// Dir returns the current working directory of the shell.
func (s *Shell) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[len(s.dirs)-1]
}

// Pushd makes dir the working directory. Relative paths resolve against the
// current directory. The returned func pops it again and is meant for defer.
func (s *Shell) Pushd(dir string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.dirs[len(s.dirs)-1], dir)
	}
	s.dirs = append(s.dirs, filepath.Clean(dir))
	return func() { _ = s.Popd() }
}

// Popd drops the current directory.
func (s *Shell) Popd() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dirs) == 1 {
		return ErrDirStackEmpty
	}
	s.dirs = s.dirs[:len(s.dirs)-1]
	return nil
}

// Pushenv sets key=value for subsequent commands and returns a func restoring
// the previous override (or removing it).
func (s *Shell) Pushenv(key, value string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.env[key]
	if !had {
		s.envOrder = append(s.envOrder, key)
	}
	s.env[key] = value
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if had {
			s.env[key] = prev
			return
		}
		delete(s.env, key)
		s.envOrder = slices.DeleteFunc(s.envOrder, func(k string) bool { return k == key })
	}
}

// Environ returns the process environment with the overlay applied, in
// KEY=value form.
func (s *Shell) Environ() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := make([]string, 0, len(os.Environ())+len(s.env))
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if _, overridden := s.env[name]; overridden {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range s.envOrder {
		env = append(env, key+"="+s.env[key])
	}
	return env
}

// Getenv returns the value of key as seen by commands run by s.
func (s *Shell) Getenv(key string) string {
	s.mu.Lock()
	v, ok := s.env[key]
	s.mu.Unlock()
	if ok {
		return v
	}
	return os.Getenv(key)
}

func (s *Shell) execMiddlewares() []ExecMiddleware {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.middlewares)
}
