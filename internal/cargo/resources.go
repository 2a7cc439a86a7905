// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"bufio"
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lsptools/xtask/internal/issue"
	"github.com/lsptools/xtask/internal/notbash"
)

// ExternResources holds what `cargo check` reveals about packages, keyed by
// package id.
type ExternResources struct {
	OutDirs             map[string]string
	ProcMacroDylibPaths map[string]string
	Cfgs                map[string][]string
}

type checkMessage struct {
	Reason    string   `json:"reason"`
	PackageID string   `json:"package_id"`
	OutDir    string   `json:"out_dir"`
	Cfgs      []string `json:"cfgs"`
	Target    struct {
		Kind []string `json:"kind"`
	} `json:"target"`
	Filenames []string `json:"filenames"`
}

// LoadExternResources runs `cargo check --message-format=json` and collects
// build script outputs and proc-macro dylibs. A failing build still yields
// whatever was reported before the failure.
func LoadExternResources(ctx context.Context, sh *notbash.Shell, manifest string, cfg Config) (*ExternResources, error) {
	out, err := sh.Capture(ctx, "cargo check --message-format=json --manifest-path %s%s",
		notbash.Quote(manifest), featureFlags(cfg))
	if code := notbash.ExitCodeOf(err); err != nil && (code < 0 || code == 127) {
		return nil, issue.Contextf(err, "run `cargo check --manifest-path %s`", manifest)
	}
	return parseCheckMessages(out), nil
}

func parseCheckMessages(stream string) *ExternResources {
	res := &ExternResources{
		OutDirs:             map[string]string{},
		ProcMacroDylibPaths: map[string]string{},
		Cfgs:                map[string][]string{},
	}
	scanner := bufio.NewScanner(strings.NewReader(stream))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var msg checkMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		switch msg.Reason {
		case "build-script-executed":
			res.OutDirs[msg.PackageID] = msg.OutDir
			res.Cfgs[msg.PackageID] = msg.Cfgs
		case "compiler-artifact":
			if !slices.Contains(msg.Target.Kind, "proc-macro") {
				continue
			}
			// The first dylib skips the .rmeta next to it.
			if i := slices.IndexFunc(msg.Filenames, isDylib); i >= 0 {
				res.ProcMacroDylibPaths[msg.PackageID] = msg.Filenames[i]
			}
		}
	}
	return res
}

func isDylib(path string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "dll", "dylib", "so":
		return true
	}
	return false
}
