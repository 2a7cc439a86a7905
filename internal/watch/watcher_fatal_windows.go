// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes after which ReadDirectoryChangesW cannot continue.
const (
	errnoTooManyOpenFiles = syscall.Errno(4) // ERROR_TOO_MANY_OPEN_FILES
	errnoInvalidHandle    = syscall.Errno(6) // ERROR_INVALID_HANDLE, e.g. the checkout was removed
	errnoNotEnoughMemory  = syscall.Errno(8) // ERROR_NOT_ENOUGH_MEMORY
)

var fatalErrnos = map[syscall.Errno]string{
	errnoTooManyOpenFiles: "Close other programs watching the checkout, then restart `xtask codegen --watch`",
	errnoInvalidHandle:    "The watched directory went away; restart `xtask codegen --watch` from the project root",
	errnoNotEnoughMemory:  "Free some memory, then restart `xtask codegen --watch`",
}

// fatalHint reports whether err stops the watcher and what can be done
// about it.
func fatalHint(err error) (string, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return "", false
	}
	hint, ok := fatalErrnos[errno]
	return hint, ok
}
