// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is an error with context for user-facing messages: the
	// operation that failed, the resource involved, suggestions, and an
	// optional catalog issue with longer guidance.
	//
	// Use the ErrorContext builder:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("package script").
	//		WithResource("perf/proj/src/main/java/TestRunner.groovy").
	//		WithIssue(issue.NoHandlerId).
	//		WithSuggestion("Run 'scriptpack check' to see which layout applies").
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "package script".
		Operation string
		// Resource identifies the file, path, or entity involved (optional).
		Resource string
		// Suggestions are short hints shown under the message (optional).
		Suggestions []string
		// IssueID links to the catalog entry; zero means none.
		IssueID Id
		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext is a builder for ActionableError.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		issueID     Id
		cause       error
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error implements the error interface.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
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

// Unwrap returns the underlying cause.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Issue returns the linked catalog entry, or nil.
func (e *ActionableError) Issue() *Issue {
	if e.IssueID == 0 {
		return nil
	}
	return Get(e.IssueID)
}

// Format returns the message followed by suggestions. With verbose set the
// full error chain is appended.
//
//	failed to <operation>: <resource>: <cause message>
//
//	  • <suggestion 1>
//	  • <suggestion 2>
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())
	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		err := e.Cause
		for depth := 1; err != nil; depth++ {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			err = errors.Unwrap(err)
		}
	}
	return msg.String()
}

// HasSuggestions returns true if the error has any suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the operation being performed.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion adds a suggestion. Can be called multiple times.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// WithIssue links a catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.issueID = id
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build creates an ActionableError. It returns nil when no operation is set.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		IssueID:     c.issueID,
		Cause:       c.cause,
	}
}

// BuildError is Build for return statements. A nil result is returned as
// an untyped nil error.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
