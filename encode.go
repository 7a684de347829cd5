// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/creachadair/jsonlib/alloc"
	"github.com/go-kit/log/level"
	"go4.org/mem"
)

const initialBuffer = 64

// Serialize renders the tree rooted at n as JSON text. If n is named, the
// output begins with its name. In compact form (human == false) no
// whitespace is emitted; otherwise a newline follows each element of an
// object or array. Decimals are written with six digits after the point.
// String contents are copied as-is, without escaping.
//
// The buffer is charged to the allocator of s, and the caller must return it
// with Release when it is no longer needed.
func (s *Store) Serialize(n *Node, human bool) ([]byte, error) {
	if n == nil {
		return nil, errors.New("cannot serialize a nil node")
	}
	e := &encoder{a: s.alloc(), human: human}
	if err := e.a.Alloc(alloc.Buffer, initialBuffer); err != nil {
		return nil, err
	}
	e.buf = make([]byte, 0, initialBuffer)
	if err := e.encode(n); err != nil {
		e.a.Free(alloc.Buffer, cap(e.buf))
		level.Debug(s.logger()).Log("msg", "serialize failed", "error", err)
		return nil, err
	}
	return e.buf, nil
}

// Release returns a buffer produced by Serialize.
func (s *Store) Release(buf []byte) {
	if buf != nil {
		s.alloc().Free(alloc.Buffer, cap(buf))
	}
}

type encoder struct {
	a     alloc.Allocator
	buf   []byte
	human bool
	tmp   [32]byte
}

// grow ensures there is room for n more bytes in the buffer, doubling its
// capacity as often as needed.
func (e *encoder) grow(n int) error {
	need := len(e.buf) + n
	old := cap(e.buf)
	if need <= old {
		return nil
	}
	size := old
	for size < need {
		size *= 2
	}
	if err := e.a.Alloc(alloc.Buffer, size); err != nil {
		return err
	}
	grown := make([]byte, len(e.buf), size)
	copy(grown, e.buf)
	e.buf = grown
	e.a.Free(alloc.Buffer, old)
	return nil
}

func (e *encoder) str(s string) error {
	if err := e.grow(len(s)); err != nil {
		return err
	}
	e.buf = mem.Append(e.buf, mem.S(s))
	return nil
}

func (e *encoder) raw(p []byte) error {
	if err := e.grow(len(p)); err != nil {
		return err
	}
	e.buf = append(e.buf, p...)
	return nil
}

func (e *encoder) quoted(s string) error {
	if err := e.grow(len(s) + 2); err != nil {
		return err
	}
	e.buf = append(e.buf, '"')
	e.buf = mem.Append(e.buf, mem.S(s))
	e.buf = append(e.buf, '"')
	return nil
}

func (e *encoder) encode(n *Node) error {
	if n.named {
		if err := e.quoted(n.name); err != nil {
			return err
		}
		if err := e.str(":"); err != nil {
			return err
		}
	}
	switch v := n.value.(type) {
	case *objectValue:
		return e.container("{", "}", v.kids)
	case *arrayValue:
		return e.container("[", "]", v.kids)
	case stringValue:
		return e.quoted(string(v))
	case integerValue:
		return e.raw(strconv.AppendInt(e.tmp[:0], int64(v), 10))
	case decimalValue:
		return e.raw(strconv.AppendFloat(e.tmp[:0], float64(v), 'f', 6, 32))
	case boolValue:
		return e.str(strconv.FormatBool(bool(v)))
	case nullValue:
		return e.str("null")
	default:
		return fmt.Errorf("cannot serialize %v node", n.Kind())
	}
}

func (e *encoder) container(open, end string, kids []*Node) error {
	if err := e.str(open); err != nil {
		return err
	}
	last := -1
	for i, k := range kids {
		if k != nil {
			last = i
		}
	}
	for i, k := range kids {
		if k == nil {
			continue
		}
		if err := e.encode(k); err != nil {
			return err
		}
		if i != last {
			if err := e.str(","); err != nil {
				return err
			}
		}
		if e.human {
			if err := e.str("\n"); err != nil {
				return err
			}
		}
	}
	return e.str(end)
}

// Serialize renders n using a zero Store. See Store.Serialize.
func Serialize(n *Node, human bool) ([]byte, error) { return std.Serialize(n, human) }

// Release returns a buffer produced by Serialize. See Store.Release.
func Release(buf []byte) { std.Release(buf) }
