// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"fmt"
	"unsafe"
)

// Kind identifies which kind of JSON value a node holds.
type Kind byte

// Constants defining the valid Kind values.
const (
	KindNone    Kind = iota // a node that has been freed
	KindString              // quoted string
	KindInteger             // 32-bit signed integer
	KindDecimal             // 32-bit floating point
	KindArray               // [ ... ]
	KindObject              // { ... }
	KindBoolean             // true or false
	KindNull                // null
)

var kindStr = [...]string{
	KindNone:    "none",
	KindString:  "string",
	KindInteger: "integer",
	KindDecimal: "decimal",
	KindArray:   "array",
	KindObject:  "object",
	KindBoolean: "boolean",
	KindNull:    "null",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[KindNone]
	}
	return kindStr[k]
}

// IsContainer reports whether k is KindArray or KindObject.
func (k Kind) IsContainer() bool { return k == KindArray || k == KindObject }

// A Node is a single value in a JSON tree. The value held by a node selects
// its kind: there is no separate tag that could disagree with the payload.
//
// A container node (array or object) owns its children. Every node except the
// root of a tree records its parent, but the parent link does not own
// anything. Nodes are created by a Store, either by parsing or by calling
// one of its constructors, and destroyed by Store.Free.
type Node struct {
	parent *Node
	name   string
	named  bool
	value  value
}

var (
	nodeSize = int(unsafe.Sizeof(Node{}))
	slotSize = int(unsafe.Sizeof((*Node)(nil)))
)

// value is the payload of a node. The concrete type determines the kind.
type value interface{ kind() Kind }

type (
	stringValue  string
	integerValue int32
	decimalValue float32
	boolValue    bool
	nullValue    struct{}
	arrayValue   struct{ slots }
	objectValue  struct{ slots }
	freedValue   struct{}
)

// slots is the ordered child sequence of a container. A slot is nil if the
// child it held was freed.
type slots struct{ kids []*Node }

func (stringValue) kind() Kind  { return KindString }
func (integerValue) kind() Kind { return KindInteger }
func (decimalValue) kind() Kind { return KindDecimal }
func (boolValue) kind() Kind    { return KindBoolean }
func (nullValue) kind() Kind    { return KindNull }
func (*arrayValue) kind() Kind  { return KindArray }
func (*objectValue) kind() Kind { return KindObject }
func (freedValue) kind() Kind   { return KindNone }

// Kind reports the kind of value held by n.
func (n *Node) Kind() Kind {
	if n == nil || n.value == nil {
		return KindNone
	}
	return n.value.kind()
}

// Name reports the member name of n, or "" if n is unnamed.
func (n *Node) Name() string { return n.name }

// HasName reports whether n has a member name. Object members are named,
// array elements and roots are not. The name of a named node may be empty.
func (n *Node) HasName() bool { return n.named }

// Parent returns the container holding n, or nil if n is a root.
func (n *Node) Parent() *Node { return n.parent }

// Len reports the number of child slots of a container node, including the
// slots of children that have been freed. It returns 0 for a leaf.
func (n *Node) Len() int {
	if s := n.slots(); s != nil {
		return len(s.kids)
	}
	return 0
}

// Index returns the child of n in slot i, or nil if i is out of range, the
// child was freed, or n is not a container.
func (n *Node) Index(i int) *Node {
	if s := n.slots(); s != nil && i >= 0 && i < len(s.kids) {
		return s.kids[i]
	}
	return nil
}

// Children returns the live children of n in order. It returns nil if n is
// not a container. Modifying the returned slice does not affect n.
func (n *Node) Children() []*Node {
	s := n.slots()
	if s == nil {
		return nil
	}
	out := make([]*Node, 0, len(s.kids))
	for _, k := range s.kids {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

// Child returns the first direct child of n whose name is exactly name, or
// nil if there is no such child. The comparison is case-sensitive.
func (n *Node) Child(name string) *Node {
	s := n.slots()
	if s == nil {
		return nil
	}
	for _, k := range s.kids {
		if k != nil && k.named && k.name == name {
			return k
		}
	}
	return nil
}

// Text returns the string value of n. It panics if n is not a string.
func (n *Node) Text() string { return string(mustBe[stringValue](n)) }

// Int returns the integer value of n. It panics if n is not an integer.
func (n *Node) Int() int32 { return int32(mustBe[integerValue](n)) }

// Decimal returns the decimal value of n. It panics if n is not a decimal.
func (n *Node) Decimal() float32 { return float32(mustBe[decimalValue](n)) }

// Bool returns the Boolean value of n. It panics if n is not a Boolean.
func (n *Node) Bool() bool { return bool(mustBe[boolValue](n)) }

// IsNull reports whether n is a null value.
func (n *Node) IsNull() bool { return n.Kind() == KindNull }

func (n *Node) String() string {
	switch v := n.value.(type) {
	case *arrayValue:
		return fmt.Sprintf("Array(len=%d)", len(v.kids))
	case *objectValue:
		return fmt.Sprintf("Object(len=%d)", len(v.kids))
	case stringValue:
		return fmt.Sprintf("String(%q)", string(v))
	case integerValue:
		return fmt.Sprintf("Integer(%d)", v)
	case decimalValue:
		return fmt.Sprintf("Decimal(%v)", float32(v))
	case boolValue:
		return fmt.Sprintf("Boolean(%v)", bool(v))
	case nullValue:
		return "Null"
	default:
		return "None"
	}
}

func (n *Node) slots() *slots {
	if n == nil {
		return nil
	}
	switch v := n.value.(type) {
	case *arrayValue:
		return &v.slots
	case *objectValue:
		return &v.slots
	}
	return nil
}

func mustBe[T value](n *Node) T {
	v, ok := n.value.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("node is %v, not %v", n.Kind(), zero.kind()))
	}
	return v
}
