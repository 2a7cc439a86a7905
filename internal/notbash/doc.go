// SPDX-License-Identifier: MPL-2.0

// Package notbash is a small scripting toolkit for xtask: a Shell with a
// directory stack and environment overlay that runs command lines through an
// embedded POSIX interpreter, plus filesystem helpers whose errors always
// name the path involved.
package notbash
