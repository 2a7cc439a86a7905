// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// fatalErrnos exhaust a kernel resource. The hint tells the user which limit
// to raise; a large checkout with many crates can hit
// fs.inotify.max_user_watches.
var fatalErrnos = map[syscall.Errno]string{
	syscall.ENOSPC: "Raise the inotify watch limit, e.g. `sudo sysctl fs.inotify.max_user_watches=524288`",
	syscall.EMFILE: "Raise the open file limit of this shell, e.g. `ulimit -n 4096`",
	syscall.ENFILE: "The system ran out of file handles: close other programs or raise fs.file-max",
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
