// SPDX-License-Identifier: MPL-2.0

// Package project locates the Cargo workspace xtask operates on and
// enumerates its Rust sources.
package project
