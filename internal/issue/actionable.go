// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a failed xtask step together with what the user can
	// try next. Build one with ErrorContext:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("install client").
	//		WithResource("./editors/code").
	//		WithSuggestion("Install NodeJS 12.x or newer").
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Operation is the step that failed, e.g. "install server".
		Operation string
		// Resource is the file, directory or binary involved, if any.
		Resource string
		// Suggestions are printed as bullets below the message.
		Suggestions []string
		Cause       error
		// Issue selects a catalog entry rendered above the message.
		Issue Id
	}

	// ErrorContext builds an ActionableError field by field.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
		issue       Id
	}
)

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "operation[: resource][: cause]".
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}

	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap returns Cause.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders e for the terminal:
//
//	install client: verify the installed extension: rust-analyzer: ...
//
//	  • <suggestion>
//
// Suggestions of nested ActionableErrors follow e's own. verbose appends the
// numbered chain of causes.
func (e *ActionableError) Format(verbose bool) string {
	return format(e, e.Cause, verbose)
}

// Format renders err like ActionableError.Format. Any error is accepted, so
// suggestions nested under fmt wrapping or errors.Join still reach the user.
func Format(err error, verbose bool) string {
	if ae, ok := err.(*ActionableError); ok {
		return ae.Format(verbose)
	}
	return format(err, errors.Unwrap(err), verbose)
}

func format(err, cause error, verbose bool) string {
	var msg strings.Builder

	msg.WriteString(err.Error())

	if suggestions := SuggestionsOf(err); len(suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	// In verbose mode, include the full error chain
	if verbose && cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for cause != nil {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, cause.Error())
			cause = errors.Unwrap(cause)
			depth++
		}
	}

	return msg.String()
}

// SuggestionsOf returns the suggestions of every ActionableError in err's
// tree, outermost first, without duplicates. Joined errors are searched too.
func SuggestionsOf(err error) []string {
	var out []string
	seen := make(map[string]bool)
	walk(err, func(ae *ActionableError) bool {
		for _, s := range ae.Suggestions {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		return true
	})
	return out
}

// walk visits the ActionableErrors of err's tree depth first and stops as
// soon as visit returns false. It reports whether the walk ran to the end.
func walk(err error, visit func(*ActionableError) bool) bool {
	if err == nil {
		return true
	}
	if ae, ok := err.(*ActionableError); ok && !visit(ae) {
		return false
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if !walk(inner, visit) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), visit)
	}
	return true
}

// WithOperation names the failed step with a verb phrase like "install client".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource names the file, directory or binary involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends one suggestion.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, sugs...)
	return c
}

// WithIssue links the error to a catalog entry rendered by the CLI.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.issue = id
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns the ActionableError, or nil without an operation.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}

	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
		Issue:       c.issue,
	}
}

// BuildError is Build typed as error, keeping a missing operation a true nil.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
