// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/lsptools/xtask/internal/notbash"
)

var (
	errHomeNotSet = errors.New("HOME is not set")
	errPathNotSet = errors.New("PATH is not set")

	vscodeBinDirs = []string{
		"Applications/Visual Studio Code.app/Contents/Resources/app/bin",
		"Applications/Visual Studio Code - Insiders.app/Contents/Resources/app/bin",
	}
)

// FixPathForMac appends the bin directories of VS Code app bundles to the
// shell's PATH. Bundles are looked up under / and $HOME.
func FixPathForMac(sh *notbash.Shell) error {
	return fixPathForMac(sh, "/")
}

func fixPathForMac(sh *notbash.Shell, fsRoot string) error {
	home := sh.Getenv("HOME")
	if home == "" {
		return errHomeNotSet
	}
	path := sh.Getenv("PATH")
	if path == "" {
		return errPathNotSet
	}

	var extra []string
	for _, base := range []string{fsRoot, home} {
		for _, dir := range vscodeBinDirs {
			bin := filepath.Join(base, filepath.FromSlash(dir))
			if notbash.Exists(bin) {
				extra = append(extra, bin)
			}
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sh.Pushenv("PATH", strings.Join(append([]string{path}, extra...), string(os.PathListSeparator)))
	return nil
}
