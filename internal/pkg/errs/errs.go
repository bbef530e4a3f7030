// Package errs is the single entry point to the cockroachdb/errors
// primitives this codebase relies on (stacked wrapping and markers).
package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// Mark attaches markErr so Is(err, markErr) holds without changing
// the message. Marks live outside the Unwrap chain, so the stdlib
// errors.Is cannot see them; match marked errors with Is below.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

// Is reports whether err matches target, honoring both %w wrapping
// and marks attached via Mark.
func Is(err, target error) bool {
	return cr.Is(err, target)
}

// As finds the first error in err's chain assignable to target.
func As(err error, target any) bool {
	return cr.As(err, target)
}

// ExtractStackLines renders the error with its stack and returns at
// most maxLines lines, for structured log fields.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
