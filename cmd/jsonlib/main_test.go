// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"
)

func parse(t *testing.T, input string) *jsonlib.Node {
	t.Helper()
	root, err := jsonlib.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	t.Cleanup(func() { jsonlib.Free(root) })
	return root
}

func TestToYAML(t *testing.T) {
	root := parse(t, `{"name":"x","list":[1,true,null],"sub":{"d":0.5}}`)

	got, err := yaml.Marshal(toYAML(root))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := yaml.MapSlice{
		{Key: "name", Value: "x"},
		{Key: "list", Value: []any{int32(1), true, nil}},
		{Key: "sub", Value: yaml.MapSlice{{Key: "d", Value: float32(0.5)}}},
	}
	if diff := cmp.Diff(want, toYAML(root)); diff != "" {
		t.Errorf("toYAML: (-want, +got)\n%s", diff)
	}
	if !strings.HasPrefix(string(got), "name: x\n") {
		t.Errorf("YAML output: got %q, want name first", got)
	}

	named := toYAML(root.Child("sub"))
	if diff := cmp.Diff(yaml.MapSlice{{Key: "sub", Value: yaml.MapSlice{{Key: "d", Value: float32(0.5)}}}}, named); diff != "" {
		t.Errorf("toYAML named: (-want, +got)\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	c := alloc.NewCounter()
	st := &jsonlib.Store{Allocator: c}
	if err := roundTrip(st, []byte(`{"a": [1, 2.5, "x"], "b": {}}`)); err != nil {
		t.Errorf("roundTrip: unexpected error: %v", err)
	}
	if n := c.Outstanding(); n != 0 {
		t.Errorf("Outstanding: got %d, want 0", n)
	}

	err := roundTrip(st, []byte("{\n  \"a\": tru\n}"))
	if err == nil {
		t.Fatal("roundTrip: got nil error, want error")
	}
	if got, want := describe("in.json", err), "in.json:2:7: lexical error: invalid value \"tru\""; got != want {
		t.Errorf("describe: got %q, want %q", got, want)
	}
	if got, want := describe("", errors.New("boom")), "-: boom"; got != want {
		t.Errorf("describe: got %q, want %q", got, want)
	}
}

func TestJWCC(t *testing.T) {
	const input = `{
  // A comment.
  "a": 1, /* another */
  "b": [true, false,],
}`
	std, err := hujson.Standardize([]byte(input))
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	root := parse(t, string(std))
	var buf bytes.Buffer
	if err := writeNode(&buf, new(jsonlib.Store), root, false, false); err != nil {
		t.Fatalf("writeNode: %v", err)
	}
	if got, want := buf.String(), `{"a":1,"b":[true,false]}`+"\n"; got != want {
		t.Errorf("Output: got %q, want %q", got, want)
	}
}

func TestSelectNodes(t *testing.T) {
	root := parse(t, `{"a":{"b":[10,20,30]},"c":{"b":[40]}}`)

	tests := []struct {
		path string
		want []int32
	}{
		{"a.b[1]", []int32{20}},
		{"a.b[-1]", []int32{30}},
		{"$..b[0]", []int32{10, 40}},
		{"$.a.b[1:]", []int32{20, 30}},
	}
	for _, test := range tests {
		found, err := selectNodes(root, test.path)
		if err != nil {
			t.Errorf("selectNodes %q: unexpected error: %v", test.path, err)
			continue
		}
		var got []int32
		for _, n := range found {
			got = append(got, n.Int())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("selectNodes %q: (-want, +got)\n%s", test.path, diff)
		}
	}

	for _, bad := range []string{"a.nonesuch", "a..b", "$.[", "a.b[9]"} {
		if got, err := selectNodes(root, bad); err == nil {
			t.Errorf("selectNodes %q: got %v, want error", bad, got)
		}
	}
}

func TestMeasure(t *testing.T) {
	root := parse(t, `{"a":[1,2,{"b":null}],"c":"x"}`)
	got := measure(root, 1)
	want := treeShape{
		Nodes: 7,
		Depth: 4,
		ByKind: map[jsonlib.Kind]int{
			jsonlib.KindObject:  2,
			jsonlib.KindArray:   1,
			jsonlib.KindInteger: 2,
			jsonlib.KindNull:    1,
			jsonlib.KindString:  1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("measure: (-want, +got)\n%s", diff)
	}

	var buf bytes.Buffer
	printStats(&buf, 30, 28, got, map[alloc.Class]alloc.Usage{
		alloc.Node: {Allocs: 7, Frees: 7, Peak: 336},
	})
	if out := buf.String(); !strings.Contains(out, "nodes: 7, depth: 4") || !strings.Contains(out, "node") {
		t.Errorf("printStats output missing fields:\n%s", out)
	}
}
