// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/lsptools/xtask/cmd/xtask"

func main() {
	cmd.Execute()
}
