// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"github.com/creachadair/jsonlib/alloc"
	"github.com/go-kit/log"
)

// DefaultMaxDepth is the nesting bound used by a Store whose MaxDepth is zero.
const DefaultMaxDepth = 1000

// A Store creates, serializes, and destroys JSON trees. Every reservation a
// store makes is charged to its Allocator, and a tree must be freed by the
// same store (or one sharing its allocator) that created it.
//
// The zero value is ready for use and charges nothing. A nil *Store behaves
// as a zero Store. A Store is safe for concurrent use provided that no tree is
// modified by more than one goroutine at a time and the allocator is itself
// safe for concurrent use.
type Store struct {
	// Allocator accounts for the memory held by tokens, trees, and output
	// buffers. If nil, alloc.Heap is used.
	Allocator alloc.Allocator

	// MaxDepth bounds the nesting of scopes (including open strings) that
	// Parse will accept. If zero, DefaultMaxDepth is used; if negative,
	// nesting is unbounded.
	MaxDepth int

	// Logger receives debug logs about failed operations. If nil, logs are
	// discarded.
	Logger log.Logger
}

func (s *Store) alloc() alloc.Allocator {
	if s == nil || s.Allocator == nil {
		return alloc.Heap
	}
	return s.Allocator
}

func (s *Store) maxDepth() int {
	if s == nil || s.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return max(s.MaxDepth, 0)
}

func (s *Store) logger() log.Logger {
	if s == nil || s.Logger == nil {
		return log.NewNopLogger()
	}
	return s.Logger
}

// NewObject creates an empty object node. If parent != nil, the new node is
// added as the last child of parent. A node added to an object is a member
// named by name; a node added to an array must have an empty name.
func (s *Store) NewObject(parent *Node, name string) (*Node, error) {
	return s.newNode(parent, name, new(objectValue))
}

// NewArray creates an empty array node. The parent and name are handled as
// for NewObject.
func (s *Store) NewArray(parent *Node, name string) (*Node, error) {
	return s.newNode(parent, name, new(arrayValue))
}

// NewString creates a string node with the given text. The parent and name
// are handled as for NewObject.
func (s *Store) NewString(parent *Node, name, text string) (*Node, error) {
	return s.newNode(parent, name, stringValue(text))
}

// NewInteger creates an integer node. The parent and name are handled as for
// NewObject.
func (s *Store) NewInteger(parent *Node, name string, v int32) (*Node, error) {
	return s.newNode(parent, name, integerValue(v))
}

// NewDecimal creates a decimal node. The parent and name are handled as for
// NewObject.
func (s *Store) NewDecimal(parent *Node, name string, v float32) (*Node, error) {
	return s.newNode(parent, name, decimalValue(v))
}

// NewBool creates a Boolean node. The parent and name are handled as for
// NewObject.
func (s *Store) NewBool(parent *Node, name string, v bool) (*Node, error) {
	return s.newNode(parent, name, boolValue(v))
}

// NewNull creates a null node. The parent and name are handled as for
// NewObject.
func (s *Store) NewNull(parent *Node, name string) (*Node, error) {
	return s.newNode(parent, name, nullValue{})
}

func (s *Store) newNode(parent *Node, name string, v value) (*Node, error) {
	named := name != ""
	if parent != nil {
		switch parent.Kind() {
		case KindObject:
			named = true
		case KindArray:
			if named {
				return nil, ErrMemberName
			}
		default:
			return nil, ErrNotContainer
		}
	}

	n, err := s.allocNode()
	if err != nil {
		return nil, err
	}
	a := s.alloc()
	if named {
		if err := a.Alloc(alloc.Text, len(name)); err != nil {
			s.Free(n)
			return nil, err
		}
		n.name, n.named = name, true
	}
	if t, ok := v.(stringValue); ok {
		if err := a.Alloc(alloc.Text, len(t)); err != nil {
			s.Free(n)
			return nil, err
		}
	}
	n.value = v
	if parent != nil {
		if err := s.attach(parent, n); err != nil {
			s.Free(n)
			return nil, err
		}
	}
	return n, nil
}

// allocNode reserves and returns an unattached node with no name or value.
func (s *Store) allocNode() (*Node, error) {
	if err := s.alloc().Alloc(alloc.Node, nodeSize); err != nil {
		return nil, err
	}
	return new(Node), nil
}

// AddChild adds child as the last child of parent. If child already belongs
// to a container it is moved, leaving its former slot empty. A named child
// may be added only to an object, and an unnamed child only to an array.
// AddChild reports ErrCycle if child is parent or one of its ancestors, and
// ErrInvalidNode if child is nil or has been freed.
func (s *Store) AddChild(parent, child *Node) error {
	if child.Kind() == KindNone {
		return ErrInvalidNode
	}
	switch parent.Kind() {
	case KindObject:
		if !child.named {
			return ErrMemberName
		}
	case KindArray:
		if child.named {
			return ErrMemberName
		}
	default:
		return ErrNotContainer
	}
	for p := parent; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}

	old := child.parent
	if err := s.attach(parent, child); err != nil {
		return err
	}
	if old != nil {
		unlink(old, child)
	}
	return nil
}

// attach appends child to the child slots of parent. The slot storage grows
// by one for each child added.
func (s *Store) attach(parent, child *Node) error {
	sl := parent.slots()
	if sl == nil {
		return ErrNotContainer
	}
	a := s.alloc()
	n := len(sl.kids)
	if err := a.Alloc(alloc.Children, (n+1)*slotSize); err != nil {
		return err
	}
	kids := make([]*Node, n+1)
	copy(kids, sl.kids)
	kids[n] = child
	if n > 0 {
		a.Free(alloc.Children, n*slotSize)
	}
	sl.kids = kids
	child.parent = parent
	return nil
}

// unlink clears the first slot of parent that holds child.
func unlink(parent, child *Node) {
	if sl := parent.slots(); sl != nil {
		for i, k := range sl.kids {
			if k == child {
				sl.kids[i] = nil
				return
			}
		}
	}
}

// Free releases n and all its descendants. If n belongs to a container, its
// slot in the container is left empty; the container and its other children
// are not affected. Free is a no-op if n is nil or has already been freed.
func (s *Store) Free(n *Node) {
	if n == nil {
		return
	} else if _, ok := n.value.(freedValue); ok {
		return
	}
	if n.parent != nil {
		unlink(n.parent, n)
	}
	s.release(s.alloc(), n)
}

func (s *Store) release(a alloc.Allocator, n *Node) {
	n.parent = nil
	if sl := n.slots(); sl != nil {
		for i, k := range sl.kids {
			if k != nil {
				sl.kids[i] = nil
				s.release(a, k)
			}
		}
		if len(sl.kids) != 0 {
			a.Free(alloc.Children, len(sl.kids)*slotSize)
		}
		sl.kids = nil
	}
	if n.named {
		a.Free(alloc.Text, len(n.name))
	}
	if t, ok := n.value.(stringValue); ok {
		a.Free(alloc.Text, len(t))
	}
	a.Free(alloc.Node, nodeSize)
	*n = Node{value: freedValue{}}
}
