// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/lsptools/xtask/internal/notbash"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// withExitCode attaches the exit code of a failed child process to err so
// that xtask exits with it. Other errors are returned unchanged.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	if code := notbash.ExitCodeOf(err); code > 0 {
		return &ExitError{Code: code, Err: err}
	}
	return err
}
