// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"errors"
	"fmt"
)

// Error kinds reported by a *SyntaxError. Use errors.Is to test which kind of
// failure a parse reported.
var (
	// ErrLexical indicates a value that matches none of the recognized
	// literal, number, or string shapes.
	ErrLexical = errors.New("lexical error")

	// ErrStructure indicates an opener without a matching closer, or tokens
	// that do not form a well-shaped object or array.
	ErrStructure = errors.New("structural error")

	// ErrUnbalanced indicates scopes left open (or closed without being
	// opened) at the end of tokenization.
	ErrUnbalanced = errors.New("unbalanced scope")
)

// Errors reported by the node store.
var (
	ErrNotContainer = errors.New("node is not an object or array")
	ErrMemberName   = errors.New("object members must be named and array elements must not")
	ErrCycle        = errors.New("node cannot be its own descendant")
	ErrInvalidNode  = errors.New("node is nil or has been freed")
)

// SyntaxError is the concrete type of errors reported by a failed parse.
type SyntaxError struct {
	Kind     error    // one of ErrLexical, ErrStructure, ErrUnbalanced
	Location Location // the location of the offending token
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %v: %s", s.Location.First, s.Kind, s.Message)
}

// Unwrap supports error wrapping. A SyntaxError matches its Kind and its
// underlying cause, if any.
func (s *SyntaxError) Unwrap() []error {
	if s.err == nil {
		return []error{s.Kind}
	}
	return []error{s.Kind, s.err}
}

func syntaxError(kind error, input []byte, span Span, cause error, msg string, args ...any) *SyntaxError {
	return &SyntaxError{
		Kind:     kind,
		Location: locate(input, span),
		Message:  fmt.Sprintf(msg, args...),
		err:      cause,
	}
}
