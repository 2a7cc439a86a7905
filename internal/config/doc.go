// SPDX-License-Identifier: MPL-2.0

// Package config handles xtask configuration using Viper with CUE as the file format.
//
// Configuration is optional. Defaults describe the standard layout of the
// language server repository; an xtask.cue file at the project root (or a file
// passed with --config) overrides them after validation against the embedded
// #Config schema, and XTASK_* environment variables override both
// (e.g. XTASK_FUZZ_TOOLCHAIN=nightly-2020-05-01).
package config
