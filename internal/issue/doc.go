// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Context and Contextf wrap an error with the operation
// that was running, the same way every xtask step reports failures. A small
// catalog of Markdown help pages covers the environment problems contributors
// hit most often (missing clippy, rustfmt, npm, VS Code, stale codegen).
package issue
