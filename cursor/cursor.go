// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over a tree of JSON nodes.
package cursor

import (
	"fmt"
	"slices"

	"github.com/creachadair/jsonlib"
)

// Leaf is the set of Go types Path can extract from a leaf node.
type Leaf interface {
	string | int32 | float32 | bool
}

// Path traverses a sequential path into the structure of n where path
// elements are as documented for the Cursor.Down method, and returns the
// value of the leaf reached. This is a convenience wrapper for creating a
// cursor, applying path, and retrieving its value.
func Path[T Leaf](n *jsonlib.Node, path ...any) (T, error) {
	var zero T
	c := New(n).Down(path...)
	if err := c.Err(); err != nil {
		return zero, err
	}
	v := c.Node()
	var out any
	switch any(zero).(type) {
	case string:
		if v.Kind() == jsonlib.KindString {
			out = v.Text()
		}
	case int32:
		if v.Kind() == jsonlib.KindInteger {
			out = v.Int()
		}
	case float32:
		if v.Kind() == jsonlib.KindDecimal {
			out = v.Decimal()
		}
	case bool:
		if v.Kind() == jsonlib.KindBoolean {
			out = v.Bool()
		}
	}
	if out == nil {
		return zero, fmt.Errorf("wrong value type %v for %T", v.Kind(), zero)
	}
	return out.(T), nil
}

// Find traverses a sequential path into the structure of n and returns the
// node reached.
func Find(n *jsonlib.Node, path ...any) (*jsonlib.Node, error) {
	c := New(n).Down(path...)
	return c.Node(), c.Err()
}

// A Cursor is a pointer that navigates into the structure of a node tree.
// Moving down follows child slots; moving up follows parent links, but never
// above the origin.
type Cursor struct {
	org *jsonlib.Node
	cur *jsonlib.Node
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin *jsonlib.Node) *Cursor { return &Cursor{org: origin, cur: origin} }

// Origin returns the origin node of c.
func (c *Cursor) Origin() *jsonlib.Node { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return c.cur == c.org }

// Node reports the current node under the cursor.
func (c *Cursor) Node() *jsonlib.Node { return c.cur }

// Path reports the complete sequence of nodes from the origin to the current
// location in c.
func (c *Cursor) Path() []*jsonlib.Node {
	var out []*jsonlib.Node
	for n := c.cur; n != nil; n = n.Parent() {
		out = append(out, n)
		if n == c.org {
			break
		}
	}
	slices.Reverse(out)
	return out
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor to the parent of the current node, unless it is at its
// origin or the current node has no parent. It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if !c.AtOrigin() {
		if p := c.cur.Parent(); p != nil {
			c.cur = p
		}
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.cur = c.org; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current node, where path elements are either strings (denoting object
// member names), integers (denoting offsets into arrays or objects), or
// functions. If the path cannot be completely consumed, traversal stops at
// the last node reached and an error is recorded. Use Err to recover the
// error.
//
// A string element requires an object, and resolves to the first member
// with exactly that name.
//
// An integer element requires an array or object and resolves to its child
// at that offset, ignoring freed slots. Negative offsets count backward from
// the end (-1 is last, -2 second last).
//
// A function element must have the signature
//
//	func(*jsonlib.Node) (*jsonlib.Node, error)
//
// Its result becomes the next node in the sequence. If the function reports
// an error, or returns a node that is not the origin or one of its
// descendants, traversal stops and an error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil
	for _, elt := range path {
		cur := c.cur
		switch t := elt.(type) {
		case string:
			if cur.Kind() != jsonlib.KindObject {
				return c.setErrorf("cannot traverse %v with %q", cur.Kind(), t)
			}
			m := cur.Child(t)
			if m == nil {
				return c.setErrorf("member %q not found", t)
			}
			c.cur = m

		case int:
			if !cur.Kind().IsContainer() {
				return c.setErrorf("cannot traverse %v with %d", cur.Kind(), t)
			}
			kids := cur.Children()
			i, ok := fixArrayBound(len(kids), t)
			if !ok {
				return c.setErrorf("%v index %d out of bounds (n=%d)", cur.Kind(), t, len(kids))
			}
			c.cur = kids[i]

		case func(*jsonlib.Node) (*jsonlib.Node, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			} else if !c.within(next) {
				return c.setErrorf("function result (%v) is outside the origin", next.Kind())
			}
			c.cur = next

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

// within reports whether n is the origin of c or one of its descendants.
func (c *Cursor) within(n *jsonlib.Node) bool {
	for ; n != nil; n = n.Parent() {
		if n == c.org {
			return true
		}
	}
	return false
}

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
