// SPDX-License-Identifier: MPL-2.0

// Package cargo models the logical structure of a Cargo workspace, as
// reported by `cargo metadata`: packages, their targets and the resolved
// dependency graph. Build script outputs and proc-macro dylibs can be
// loaded on top from `cargo check`.
package cargo
