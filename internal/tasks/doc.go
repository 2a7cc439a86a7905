// SPDX-License-Identifier: MPL-2.0

// Package tasks implements the small xtask commands that drive cargo
// directly: formatting, linting, fuzzing, CI cache trimming and source
// hygiene checks.
package tasks
