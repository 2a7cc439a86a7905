// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* helpers it builds throwaway Cargo workspaces
// (NewWorkspace) and fakes the external toolchain at the shell level
// (FakeExec), so task tests never spawn cargo, npm or git.
package testutil
