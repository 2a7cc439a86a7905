// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/interp"
)

type (
	// FakeResult is the canned outcome of a faked command.
	FakeResult struct {
		Stdout   string
		Stderr   string
		ExitCode uint8
		// EchoStdin copies the command's stdin to its stdout after Stdout.
		EchoStdin bool
	}

	// Call records one command seen by FakeExec.
	Call struct {
		Dir  string
		Args []string
	}

	// FakeExec is an exec handler middleware that answers commands from a
	// table of canned results instead of spawning processes. Commands with no
	// matching rule succeed silently.
	FakeExec struct {
		mu    sync.Mutex
		rules []fakeRule
		calls []Call
	}

	fakeRule struct {
		prefix string
		result FakeResult
	}
)

// NewFakeExec returns an empty FakeExec.
func NewFakeExec() *FakeExec {
	return &FakeExec{}
}

// On registers result for every command line starting with prefix. Later
// rules take precedence over earlier ones.
func (f *FakeExec) On(prefix string, result FakeResult) *FakeExec {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{prefix: prefix, result: result})
	return f
}

// Fail registers a failing command with the given stderr.
func (f *FakeExec) Fail(prefix, stderr string) *FakeExec {
	return f.On(prefix, FakeResult{Stderr: stderr, ExitCode: 1})
}

// Middleware plugs the fake into an interp runner.
func (f *FakeExec) Middleware(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		line := strings.Join(args, " ")

		f.mu.Lock()
		f.calls = append(f.calls, Call{Dir: hc.Dir, Args: append([]string(nil), args...)})
		result, found := f.match(line)
		f.mu.Unlock()

		if !found {
			return nil
		}
		fmt.Fprint(hc.Stdout, result.Stdout)
		if result.EchoStdin && hc.Stdin != nil {
			if _, err := io.Copy(hc.Stdout, hc.Stdin); err != nil {
				return err
			}
		}
		fmt.Fprint(hc.Stderr, result.Stderr)
		if result.ExitCode != 0 {
			return interp.ExitStatus(result.ExitCode)
		}
		return nil
	}
}

func (f *FakeExec) match(line string) (FakeResult, bool) {
	for i := len(f.rules) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, f.rules[i].prefix) {
			return f.rules[i].result, true
		}
	}
	return FakeResult{}, false
}

// Calls returns the recorded calls in order.
func (f *FakeExec) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Commands returns the recorded command lines in order.
func (f *FakeExec) Commands() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = strings.Join(c.Args, " ")
	}
	return lines
}

// Ran reports whether a command line starting with prefix was executed.
func (f *FakeExec) Ran(prefix string) bool {
	for _, line := range f.Commands() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
