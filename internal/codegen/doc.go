// SPDX-License-Identifier: MPL-2.0

// Package codegen keeps the generated parts of the repository in sync with
// their sources: syntax kinds from the embedded grammar description, inline
// parser tests and assist/feature documentation from specially tagged
// comments in the Rust sources.
//
// Every generator runs in one of two modes. Overwrite rewrites stale files;
// Verify fails with an OutOfDateError instead, which is what CI uses.
package codegen
