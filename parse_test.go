// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib_test

import (
	"errors"
	"os"
	"testing"

	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
	"github.com/creachadair/jsonlib/internal/divider"
	"github.com/google/go-cmp/cmp"
)

// shape is a comparable rendering of a tree.
type shape struct {
	Kind  jsonlib.Kind
	Name  string
	Named bool
	Value any
	Kids  []shape
}

func shapeOf(n *jsonlib.Node) shape {
	s := shape{Kind: n.Kind(), Name: n.Name(), Named: n.HasName()}
	switch n.Kind() {
	case jsonlib.KindString:
		s.Value = n.Text()
	case jsonlib.KindInteger:
		s.Value = n.Int()
	case jsonlib.KindDecimal:
		s.Value = n.Decimal()
	case jsonlib.KindBoolean:
		s.Value = n.Bool()
	case jsonlib.KindArray, jsonlib.KindObject:
		for _, k := range n.Children() {
			s.Kids = append(s.Kids, shapeOf(k))
		}
	}
	return s
}

func obj(name string, kids ...shape) shape {
	return shape{Kind: jsonlib.KindObject, Name: name, Named: name != "", Kids: kids}
}

func arr(name string, kids ...shape) shape {
	return shape{Kind: jsonlib.KindArray, Name: name, Named: name != "", Kids: kids}
}

func leaf(kind jsonlib.Kind, name string, v any) shape {
	return shape{Kind: kind, Name: name, Named: name != "", Value: v}
}

func mustParse(t *testing.T, st *jsonlib.Store, input string) *jsonlib.Node {
	t.Helper()
	root, err := st.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse %#q: unexpected error: %v", input, err)
	}
	return root
}

func mustSerialize(t *testing.T, st *jsonlib.Store, n *jsonlib.Node, human bool) string {
	t.Helper()
	buf, err := st.Serialize(n, human)
	if err != nil {
		t.Fatalf("Serialize: unexpected error: %v", err)
	}
	defer st.Release(buf)
	return string(buf)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  shape
	}{
		{`{}`, obj("")},
		{`[]`, arr("")},
		{`{"boolean":false}`, obj("",
			leaf(jsonlib.KindBoolean, "boolean", false),
		)},
		{`{"array":[12,17,94]}`, obj("",
			arr("array",
				leaf(jsonlib.KindInteger, "", int32(12)),
				leaf(jsonlib.KindInteger, "", int32(17)),
				leaf(jsonlib.KindInteger, "", int32(94)),
			),
		)},
		{`{"object":{"value":12}}`, obj("",
			obj("object", leaf(jsonlib.KindInteger, "value", int32(12))),
		)},
		{`{"s":"hello world","n":null,"t":true,"i":-7,"d":0.5}`, obj("",
			leaf(jsonlib.KindString, "s", "hello world"),
			leaf(jsonlib.KindNull, "n", nil),
			leaf(jsonlib.KindBoolean, "t", true),
			leaf(jsonlib.KindInteger, "i", int32(-7)),
			leaf(jsonlib.KindDecimal, "d", float32(0.5)),
		)},
		{`[1,"two",[3],{"four":4},true,null,-5]`, arr("",
			leaf(jsonlib.KindInteger, "", int32(1)),
			leaf(jsonlib.KindString, "", "two"),
			arr("", leaf(jsonlib.KindInteger, "", int32(3))),
			obj("", leaf(jsonlib.KindInteger, "four", int32(4))),
			leaf(jsonlib.KindBoolean, "", true),
			leaf(jsonlib.KindNull, "", nil),
			leaf(jsonlib.KindInteger, "", int32(-5)),
		)},
		{"{\n  \"list\": [ \"a\", \"\" ],\n  \"e\": 2e3\n}\n", obj("",
			arr("list",
				leaf(jsonlib.KindString, "", "a"),
				leaf(jsonlib.KindString, "", ""),
			),
			leaf(jsonlib.KindDecimal, "e", float32(2000)),
		)},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			c := alloc.NewCounter()
			st := &jsonlib.Store{Allocator: c}
			root := mustParse(t, st, test.input)
			if diff := cmp.Diff(test.want, shapeOf(root)); diff != "" {
				t.Errorf("Parse %#q: (-want, +got)\n%s", test.input, diff)
			}
			st.Free(root)
			if n := c.Outstanding(); n != 0 {
				t.Errorf("After Free: %d reservations outstanding: %+v", n, c.Report())
			}
		})
	}
}

func TestParse_emptyName(t *testing.T) {
	root := mustParse(t, nil, `{"":1}`)
	defer jsonlib.Free(root)

	kid := root.Child("")
	if kid == nil {
		t.Fatal(`Child(""): got nil, want member`)
	}
	if !kid.HasName() || kid.Name() != "" {
		t.Errorf("Member: got name %q (named=%v), want empty named member", kid.Name(), kid.HasName())
	}
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		input string
		kind  error
	}{
		{``, jsonlib.ErrStructure},
		{`   `, jsonlib.ErrStructure},
		{`{"a"}`, jsonlib.ErrStructure},
		{`{"a":1,"b":}`, jsonlib.ErrStructure},
		{`{"a","b":1}`, jsonlib.ErrStructure},
		{`{1}`, jsonlib.ErrStructure},
		{`{"a":1,2}`, jsonlib.ErrStructure},
		{`{"a":1,[]}`, jsonlib.ErrStructure},
		{`["a":1]`, jsonlib.ErrStructure},
		{`{},1`, jsonlib.ErrStructure},
		{`[1:2]`, jsonlib.ErrStructure},
		{`{"a"::1}`, jsonlib.ErrStructure},
		{`{:1}`, jsonlib.ErrStructure},
		{`{"a":1:2}`, jsonlib.ErrStructure},
		{`{"a":[1,2]:3}`, jsonlib.ErrStructure},

		{`{"a":1`, jsonlib.ErrUnbalanced},
		{`{"a":[1,2}`, jsonlib.ErrUnbalanced},
		{`{"a":"b`, jsonlib.ErrUnbalanced},

		{`"a"`, jsonlib.ErrLexical},
		{`1`, jsonlib.ErrLexical},
		{`{} []`, jsonlib.ErrLexical},
		{`{"a":tru}`, jsonlib.ErrLexical},
		{`{"a":-}`, jsonlib.ErrLexical},
		{`{"a":1.2.3}`, jsonlib.ErrLexical},
		{`{"a":99999999999}`, jsonlib.ErrLexical},
		{`{"a":1e999}`, jsonlib.ErrLexical},
		{`{"a":1 "b":2}`, jsonlib.ErrLexical},
	}
	for _, test := range tests {
		c := alloc.NewCounter()
		st := &jsonlib.Store{Allocator: c}
		root, err := st.Parse([]byte(test.input))
		if err == nil {
			t.Errorf("Parse %#q: got %v, want error", test.input, root)
			continue
		}
		if root != nil {
			t.Errorf("Parse %#q: got partial tree %v, want nil", test.input, root)
		}
		var serr *jsonlib.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse %#q: got %T, want *SyntaxError", test.input, err)
		} else if !errors.Is(err, test.kind) {
			t.Errorf("Parse %#q: got %v, want %v", test.input, err, test.kind)
		} else {
			t.Logf("Got expected error: %v", err)
		}
		if n := c.Outstanding(); n != 0 {
			t.Errorf("Parse %#q: %d reservations outstanding: %+v", test.input, n, c.Report())
		}
	}
}

func TestParse_depth(t *testing.T) {
	st := &jsonlib.Store{MaxDepth: 3}
	if root, err := st.Parse([]byte(`[[[1]]]`)); err != nil {
		t.Errorf("Parse at depth 3: unexpected error: %v", err)
	} else {
		st.Free(root)
	}
	_, err := st.Parse([]byte(`[[[[1]]]]`))
	if !errors.Is(err, jsonlib.ErrStructure) || !errors.Is(err, divider.ErrTooDeep) {
		t.Errorf("Parse at depth 4: got %v, want %v", err, divider.ErrTooDeep)
	}

	// An open string occupies a scope while it is scanned.
	if root, err := st.Parse([]byte(`[["a"]]`)); err != nil {
		t.Errorf("Parse string at depth 3: unexpected error: %v", err)
	} else {
		st.Free(root)
	}
	_, err = st.Parse([]byte(`[[["a"]]]`))
	if !errors.Is(err, jsonlib.ErrStructure) || !errors.Is(err, divider.ErrTooDeep) {
		t.Errorf("Parse string at depth 4: got %v, want %v", err, divider.ErrTooDeep)
	}

	// A negative bound permits any depth.
	st.MaxDepth = -1
	deep := make([]byte, 0, 4002)
	for range 2000 {
		deep = append(deep, '[')
	}
	for range 2000 {
		deep = append(deep, ']')
	}
	root, err := st.Parse(deep)
	if err != nil {
		t.Fatalf("Parse unbounded: unexpected error: %v", err)
	}
	st.Free(root)
}

func TestParse_limit(t *testing.T) {
	const input = `{"name":"widget","tags":["a","b",""],"size":{"w":3,"h":4.5},"ok":true}`

	// Find how much a successful parse needs at its peak.
	c := alloc.NewCounter()
	st := &jsonlib.Store{Allocator: c}
	root := mustParse(t, st, input)
	st.Free(root)

	var peak int
	for _, u := range c.Report() {
		peak += u.Peak
	}

	// Every smaller budget fails cleanly or succeeds; none leaks.
	var failed int
	for budget := 0; budget <= peak; budget += 7 {
		c := alloc.NewCounter()
		lim := alloc.NewLimit(budget, c)
		st := &jsonlib.Store{Allocator: lim}
		root, err := st.Parse([]byte(input))
		if err != nil {
			if !errors.Is(err, alloc.ErrExhausted) {
				t.Errorf("Budget %d: got %v, want %v", budget, err, alloc.ErrExhausted)
			}
			failed++
		} else {
			st.Free(root)
		}
		if n := c.Outstanding(); n != 0 {
			t.Errorf("Budget %d: %d reservations outstanding: %+v", budget, n, c.Report())
		}
		if u := lim.Used(); u != 0 {
			t.Errorf("Budget %d: %d bytes still in use", budget, u)
		}
	}
	if failed == 0 {
		t.Error("No budget caused a failure")
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		`{}`,
		`[]`,
		`{"boolean":false}`,
		`{"array":[12,17,94]}`,
		`{"object":{"value":12}}`,
		`{"s":"hello world","n":null,"t":true,"i":-7,"e":""}`,
		`[1,"two",[3],{"four":4},[],{}]`,
		`{"":1,"a":{"b":{"c":[null,false,"x"]}}}`,
	}
	for _, input := range tests {
		c := alloc.NewCounter()
		st := &jsonlib.Store{Allocator: c}

		root := mustParse(t, st, input)
		got := mustSerialize(t, st, root, false)
		if got != input {
			t.Errorf("Serialize: got %#q, want %#q", got, input)
		}
		again := mustParse(t, st, got)
		if diff := cmp.Diff(shapeOf(root), shapeOf(again)); diff != "" {
			t.Errorf("Reparse %#q: (-want, +got)\n%s", got, diff)
		}
		st.Free(root)
		st.Free(again)
		if n := c.Outstanding(); n != 0 {
			t.Errorf("Input %#q: %d reservations outstanding: %+v", input, n, c.Report())
		}
	}
}

func TestRoundTrip_decimals(t *testing.T) {
	const input = `{"pi":3.14159,"e":-2.5e-3,"big":1e10,"list":[0.1,1.0]}`
	st := new(jsonlib.Store)

	root := mustParse(t, st, input)
	defer st.Free(root)
	first := mustSerialize(t, st, root, false)

	again := mustParse(t, st, first)
	defer st.Free(again)
	if second := mustSerialize(t, st, again, false); second != first {
		t.Errorf("Second round trip: got %#q, want %#q", second, first)
	}

	if got, want := mustSerialize(t, st, root.Child("list"), false), `"list":[0.100000,1.000000]`; got != want {
		t.Errorf("Serialize list: got %#q, want %#q", got, want)
	}
}

func TestSerialize_human(t *testing.T) {
	root := mustParse(t, nil, `{"a":1,"b":[true,null],"c":{}}`)
	defer jsonlib.Free(root)

	buf, err := jsonlib.Serialize(root, true)
	if err != nil {
		t.Fatalf("Serialize: unexpected error: %v", err)
	}
	defer jsonlib.Release(buf)

	const want = "{\"a\":1,\n\"b\":[true,\nnull\n],\n\"c\":{}\n}"
	if got := string(buf); got != want {
		t.Errorf("Serialize human:\ngot  %#q\nwant %#q", got, want)
	}
}

func TestSerialize_growth(t *testing.T) {
	c := alloc.NewCounter()
	st := &jsonlib.Store{Allocator: c}
	root, err := st.NewArray(nil, "")
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	for i := range 100 {
		if _, err := st.NewInteger(root, "", int32(i)); err != nil {
			t.Fatalf("NewInteger: %v", err)
		}
	}
	buf, err := st.Serialize(root, false)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	// 100 elements need 291 bytes, so the buffer doubled from 64 to 512.
	if got, want := len(buf), 291; got != want {
		t.Errorf("Length: got %d, want %d", got, want)
	}
	if u := c.Usage(alloc.Buffer); u.Bytes != 512 || u.Live() != 1 {
		t.Errorf("Buffer usage: got %+v, want 512 bytes in 1 reservation", u)
	}
	st.Release(buf)
	st.Free(root)
	if n := c.Outstanding(); n != 0 {
		t.Errorf("Outstanding: got %d, want 0: %+v", n, c.Report())
	}
}

func TestSerialize_limit(t *testing.T) {
	root := mustParse(t, nil, `{"text":"this value is long enough to need more than one buffer"}`)
	defer jsonlib.Free(root)

	c := alloc.NewCounter()
	st := &jsonlib.Store{Allocator: alloc.NewLimit(100, c)}
	if buf, err := st.Serialize(root, false); !errors.Is(err, alloc.ErrExhausted) {
		t.Errorf("Serialize: got %q, %v; want %v", buf, err, alloc.ErrExhausted)
	}
	if n := c.Outstanding(); n != 0 {
		t.Errorf("Outstanding: got %d, want 0", n)
	}
}

func TestSampleFile(t *testing.T) {
	input, err := os.ReadFile("testdata/sample.json")
	if err != nil {
		t.Fatalf("Reading test input: %v", err)
	}
	c := alloc.NewCounter()
	st := &jsonlib.Store{Allocator: c}
	root := mustParse(t, st, string(input))

	compact := mustSerialize(t, st, root, false)
	again := mustParse(t, st, compact)
	if got := mustSerialize(t, st, again, false); got != compact {
		t.Errorf("Round trip of sample differs:\ngot  %s\nwant %s", got, compact)
	}
	if diff := cmp.Diff(shapeOf(root), shapeOf(again)); diff != "" {
		t.Errorf("Reparse of sample: (-want, +got)\n%s", diff)
	}
	st.Free(root)
	st.Free(again)
	if n := c.Outstanding(); n != 0 {
		t.Errorf("Outstanding: got %d, want 0: %+v", n, c.Report())
	}
}
