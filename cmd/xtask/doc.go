// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the xtask command tree.
//
// Every subcommand resolves the project root and configuration through App,
// then delegates to a package under internal/. The same binary runs the git
// pre-commit hook when it is invoked under a name ending in "pre-commit".
package cmd
