// SPDX-License-Identifier: MPL-2.0

package issue

import "fmt"

// Context wraps err with a short description of the operation that failed.
// A nil err is passed through, so call sites can wrap unconditionally:
//
//	return issue.Context(installServer(opts), "install server")
func Context(err error, operation string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// Contextf is Context with a formatted operation.
func Contextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: fmt.Sprintf(format, args...), Cause: err}
}

// Bail returns a plain error built from a format string.
func Bail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// IssueOf returns the catalog id attached to the first ActionableError in
// err's tree that carries one, or 0. Branches of joined errors are searched
// in order.
func IssueOf(err error) Id {
	var id Id
	walk(err, func(ae *ActionableError) bool {
		id = ae.Issue
		return id == 0
	})
	return id
}
