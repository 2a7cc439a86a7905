// SPDX-License-Identifier: MPL-2.0

package notbash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Cmd      string
	Dir      string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command `%s` failed with exit code %d", e.Cmd, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + lastLine(stderr)
	}
	return msg
}

// ExitCodeOf returns the exit code carried by err, or -1 when err is not a
// CommandError.
func ExitCodeOf(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

type runOpts struct {
	echo   bool
	stream bool
	stdin  io.Reader
}

// Run formats a command line, echoes it as "> cmd" and runs it in the
// current directory. Output streams to the shell's writers; the trimmed
// stdout is returned as well. Arguments are inserted verbatim, so callers
// Quote anything that may contain spaces or shell metacharacters.
func (s *Shell) Run(ctx context.Context, format string, args ...any) (string, error) {
	return s.run(ctx, runOpts{echo: true, stream: true}, fmt.Sprintf(format, args...))
}

// Capture runs a command line like Run but neither echoes it nor streams
// its stdout.
func (s *Shell) Capture(ctx context.Context, format string, args ...any) (string, error) {
	return s.run(ctx, runOpts{}, fmt.Sprintf(format, args...))
}

// CaptureInput is Capture with input fed to the command's stdin.
func (s *Shell) CaptureInput(ctx context.Context, input string, format string, args ...any) (string, error) {
	return s.run(ctx, runOpts{stdin: strings.NewReader(input)}, fmt.Sprintf(format, args...))
}

func (s *Shell) run(ctx context.Context, opts runOpts, cmdline string) (string, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(cmdline), "")
	if err != nil {
		return "", fmt.Errorf("failed to parse command `%s`: %w", cmdline, err)
	}

	if opts.echo {
		s.logger.Info("> " + cmdline)
	}

	dir := s.Dir()
	var stdout, stderr bytes.Buffer
	outW, errW := io.Writer(&stdout), io.Writer(&stderr)
	if opts.stream {
		outW = io.MultiWriter(&stdout, s.stdout)
		errW = io.MultiWriter(&stderr, s.stderr)
	}

	handlers := append(s.execMiddlewares(), lookPathMiddleware)
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(s.Environ()...)),
		interp.StdIO(opts.stdin, outW, errW),
		interp.ExecHandlers(handlers...),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create interpreter: %w", err)
	}

	err = runner.Run(ctx, prog)
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return out, &CommandError{Cmd: cmdline, Dir: dir, ExitCode: int(exitStatus), Stderr: stderr.String()}
		}
		return out, fmt.Errorf("command `%s` failed: %w", cmdline, err)
	}
	return out, nil
}

// lookPathMiddleware reports unknown programs by name before the default
// handler prints its generic message.
func lookPathMiddleware(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		if _, err := interp.LookPathDir(hc.Dir, hc.Env, args[0]); err != nil {
			fmt.Fprintf(hc.Stderr, "%s: command not found\n", args[0])
			return interp.ExitStatus(127)
		}
		return next(ctx, args)
	}
}

// Quote returns s quoted for use as a single shell word.
func Quote(s string) string {
	q, err := syntax.Quote(strings.ReplaceAll(s, "\x00", ""), syntax.LangBash)
	if err != nil {
		return "''"
	}
	return q
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
