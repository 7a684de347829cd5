// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package divider implements a bounded stack of scope markers.
//
// A divider stack tracks the currently-open "{", "[", and `"` scopes of a
// JSON text. The tokenizer uses it to tell string contents from structure,
// and the tree builder uses it to find the closer matching an opener.
package divider

import (
	"errors"

	"github.com/creachadair/jsonlib/alloc"
)

// Scope markers.
const (
	Object byte = '{'
	Array  byte = '['
	Quote  byte = '"'
)

const initialCap = 4

// ErrTooDeep is reported by Push when the stack is at its maximum depth.
var ErrTooDeep = errors.New("nesting too deep")

// A Stack is a stack of scope markers whose storage is charged to an
// allocator. The storage starts small and doubles when full.
type Stack struct {
	a   alloc.Allocator
	max int
	buf []byte
}

// New constructs an empty stack charged to a, holding at most max markers.
// If max <= 0 the stack is unbounded.
func New(a alloc.Allocator, max int) (*Stack, error) {
	if err := a.Alloc(alloc.Stack, initialCap); err != nil {
		return nil, err
	}
	return &Stack{a: a, max: max, buf: make([]byte, 0, initialCap)}, nil
}

// Push adds a marker to the top of s. It reports ErrTooDeep if s is full, or
// an allocation error if the storage could not grow.
func (s *Stack) Push(c byte) error {
	if s.max > 0 && len(s.buf) >= s.max {
		return ErrTooDeep
	}
	if len(s.buf) == cap(s.buf) {
		old := cap(s.buf)
		if err := s.a.Alloc(alloc.Stack, 2*old); err != nil {
			return err
		}
		grown := make([]byte, len(s.buf), 2*old)
		copy(grown, s.buf)
		s.buf = grown
		s.a.Free(alloc.Stack, old)
	}
	s.buf = append(s.buf, c)
	return nil
}

// Pop removes and returns the top marker of s. It reports false if s is
// empty.
func (s *Stack) Pop() (byte, bool) {
	n := len(s.buf)
	if n == 0 {
		return 0, false
	}
	top := s.buf[n-1]
	s.buf = s.buf[:n-1]
	return top, true
}

// Top returns the top marker of s, or 0 if s is empty.
func (s *Stack) Top() byte { return s.Peek(0) }

// Peek returns the marker n positions below the top of s, or 0 if there is
// no such marker. Peek(0) is equivalent to Top.
func (s *Stack) Peek(n int) byte {
	i := len(s.buf) - 1 - n
	if n < 0 || i < 0 {
		return 0
	}
	return s.buf[i]
}

// Len reports the number of markers on s.
func (s *Stack) Len() int { return len(s.buf) }

// Reset discards all the markers on s, retaining its storage.
func (s *Stack) Reset() { s.buf = s.buf[:0] }

// Release returns the storage of s to its allocator. The stack must not be
// used after it is released.
func (s *Stack) Release() {
	if s.buf != nil {
		s.a.Free(alloc.Stack, cap(s.buf))
		s.buf = nil
	}
}
