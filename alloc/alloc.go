// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package alloc defines the allocation strategy used to account for the
// memory held by tokens, trees, and output buffers.
//
// The Go runtime owns the actual memory. An Allocator decides whether each
// reservation may proceed and keeps whatever books it needs, so a caller can
// count outstanding reservations in a test or cap the memory a single
// document may consume:
//
//	c := alloc.NewCounter()
//	st := &jsonlib.Store{Allocator: c}
//	root, err := st.Parse(input)
//	...
//	st.Free(root)
//	if n := c.Outstanding(); n != 0 {
//	   log.Fatalf("Leaked %d reservations", n)
//	}
//
// Every successful Alloc must eventually be matched by a Free of the same
// class and size.
package alloc

import (
	"errors"
	"fmt"
	"sync"
)

// Class identifies the kind of object a reservation is for.
type Class byte

// Constants defining the valid Class values.
const (
	Node     Class = iota // a tree node
	Text                  // a member name, string payload, or token text
	Children              // the child slots of a container node
	Tokens                // the token sequence of a parse
	Stack                 // the storage of a divider stack
	Buffer                // a serializer output buffer

	numClasses
)

var classStr = [...]string{
	Node:     "node",
	Text:     "text",
	Children: "children",
	Tokens:   "tokens",
	Stack:    "stack",
	Buffer:   "buffer",
}

func (c Class) String() string {
	if int(c) >= len(classStr) {
		return fmt.Sprintf("class(%d)", c)
	}
	return classStr[c]
}

// Classes returns all the valid Class values in order.
func Classes() []Class {
	out := make([]Class, numClasses)
	for i := range out {
		out[i] = Class(i)
	}
	return out
}

// ErrExhausted is reported (possibly wrapped) when an Allocator refuses a
// reservation.
var ErrExhausted = errors.New("allocation refused")

// An Allocator accounts for memory reservations.
//
// Alloc reserves n bytes for an object of class c, or reports an error if the
// reservation cannot be satisfied. Free returns a reservation previously
// granted by Alloc.
type Allocator interface {
	Alloc(c Class, n int) error
	Free(c Class, n int)
}

// Heap is an Allocator that grants every reservation and keeps no records.
// It is the default when no allocator is configured.
var Heap Allocator = heap{}

type heap struct{}

func (heap) Alloc(Class, int) error { return nil }
func (heap) Free(Class, int)        {}

// Usage records the reservations of a single class.
type Usage struct {
	Allocs int // number of successful reservations
	Frees  int // number of reservations returned
	Bytes  int // bytes currently reserved
	Peak   int // largest value of Bytes observed
}

// Live reports the number of reservations not yet returned.
func (u Usage) Live() int { return u.Allocs - u.Frees }

// A Counter is an Allocator that grants every reservation and records the
// number and size of reservations per class. A Counter is safe for
// concurrent use by multiple goroutines.
type Counter struct {
	mu    sync.Mutex
	usage [numClasses]Usage
}

// NewCounter constructs a new empty Counter.
func NewCounter() *Counter { return new(Counter) }

// Alloc implements the Allocator interface. It never fails.
func (c *Counter) Alloc(cls Class, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := &c.usage[cls]
	u.Allocs++
	u.Bytes += n
	u.Peak = max(u.Peak, u.Bytes)
	return nil
}

// Free implements the Allocator interface.
func (c *Counter) Free(cls Class, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := &c.usage[cls]
	u.Frees++
	u.Bytes -= n
}

// Usage reports the current usage for the given class.
func (c *Counter) Usage(cls Class) Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage[cls]
}

// Report returns a snapshot of the usage of every class.
func (c *Counter) Report() map[Class]Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Class]Usage, len(c.usage))
	for i, u := range c.usage {
		out[Class(i)] = u
	}
	return out
}

// Outstanding reports the total number of reservations, across all classes,
// that have not been returned.
func (c *Counter) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, u := range c.usage {
		n += u.Live()
	}
	return n
}

// Bytes reports the total number of bytes currently reserved.
func (c *Counter) Bytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, u := range c.usage {
		n += u.Bytes
	}
	return n
}

// Reset discards all the records of c.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = [numClasses]Usage{}
}

// A Limit is an Allocator that enforces a budget on the total number of bytes
// reserved at one time. Reservations within the budget are passed to an
// underlying allocator. A Limit is safe for concurrent use if its underlying
// allocator is.
type Limit struct {
	base Allocator
	max  int

	mu   sync.Mutex
	used int
}

// NewLimit constructs a Limit that grants at most max bytes at a time and
// forwards reservations to base. If base == nil, Heap is used.
func NewLimit(max int, base Allocator) *Limit {
	if base == nil {
		base = Heap
	}
	return &Limit{base: base, max: max}
}

// Alloc implements the Allocator interface. It reports an error wrapping
// ErrExhausted if the reservation would exceed the budget.
func (l *Limit) Alloc(c Class, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used+n > l.max {
		return fmt.Errorf("%w: %d bytes of %v (%d of %d in use)", ErrExhausted, n, c, l.used, l.max)
	}
	if err := l.base.Alloc(c, n); err != nil {
		return err
	}
	l.used += n
	return nil
}

// Free implements the Allocator interface.
func (l *Limit) Free(c Class, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used -= n
	l.base.Free(c, n)
}

// Used reports the number of bytes currently reserved through l.
func (l *Limit) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}
