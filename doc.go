// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jsonlib implements a small JSON parser and serializer whose memory
// use is accounted through a pluggable allocation strategy.
//
// # Parsing
//
// Parse reads a complete object or array and returns the root of a tree of
// *Node values. The caller owns the tree and releases it with Free:
//
//	root, err := jsonlib.Parse([]byte(`{"array":[12,17,94]}`))
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	defer jsonlib.Free(root)
//
// Parsing runs in three passes. The tokenizer splits the input into lexemes,
// using a stack of open scopes to tell member names from string values. A
// correction pass then reclassifies names that turn out to be string
// elements of an array. Finally the builder assembles the tree, finding the
// closer of each container with the same scope stack.
//
// A malformed input is reported as a *SyntaxError, whose Kind is one of
// ErrLexical, ErrStructure, or ErrUnbalanced and whose Location gives the
// line and column of the offending token:
//
//	var serr *jsonlib.SyntaxError
//	if errors.As(err, &serr) {
//	   log.Printf("Bad input at %s: %s", serr.Location, serr.Message)
//	}
//
// # Trees
//
// A Node holds exactly one kind of value: a string, a 32-bit integer, a
// 32-bit decimal, a Boolean, null, an array, or an object. Object members
// are named; array elements are not. Use Child to find a member by name and
// Index or Children to visit elements. Trees may also be built directly with
// the constructors of a Store:
//
//	var st jsonlib.Store
//	obj, _ := st.NewObject(nil, "")
//	st.NewInteger(obj, "count", 3)
//	st.NewBool(obj, "ok", true)
//
// # Serialization
//
// Serialize renders a tree as compact text, or with a newline after each
// element when human is true. Strings are emitted exactly as stored, without
// escapes, and decimals are written with six digits after the point. The
// returned buffer is released with Release.
//
// # Allocation
//
// A Store charges every reservation it makes (nodes, text, child slots,
// tokens, scope stacks, and output buffers) to its Allocator. The default
// allocator grants everything and keeps no records. Use an alloc.Counter to
// check that every reservation is returned, or an alloc.Limit to bound the
// memory a document may consume. A refused reservation makes the operation
// fail cleanly, with everything it had reserved returned.
package jsonlib
