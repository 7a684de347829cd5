// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
)

func loadBenchInput(b *testing.B) []byte {
	b.Helper()
	input, err := os.ReadFile("testdata/sample.json")
	if err != nil {
		b.Fatalf("Reading test input: %v", err)
	}
	b.Logf("Benchmark input: %d bytes", len(input))
	return input
}

func BenchmarkTokenize(b *testing.B) {
	input := loadBenchInput(b)

	b.Run("Decoder", func(b *testing.B) {
		for b.Loop() {
			dec := json.NewDecoder(bytes.NewReader(input))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	b.Run("Tokenize", func(b *testing.B) {
		for b.Loop() {
			if _, err := jsonlib.Tokenize(input); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}

func BenchmarkParse(b *testing.B) {
	input := loadBenchInput(b)

	b.Run("Unmarshal", func(b *testing.B) {
		for b.Loop() {
			var v any
			if err := json.Unmarshal(input, &v); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})

	for _, tc := range []struct {
		name string
		a    alloc.Allocator
	}{
		{"Heap", alloc.Heap},
		{"Counter", alloc.NewCounter()},
	} {
		st := &jsonlib.Store{Allocator: tc.a}
		b.Run(tc.name, func(b *testing.B) {
			for b.Loop() {
				root, err := st.Parse(input)
				if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
				st.Free(root)
			}
		})
	}
}

func BenchmarkSerialize(b *testing.B) {
	input := loadBenchInput(b)
	root, err := jsonlib.Parse(input)
	if err != nil {
		b.Fatalf("Parse: %v", err)
	}
	defer jsonlib.Free(root)

	for _, human := range []bool{false, true} {
		name := "Compact"
		if human {
			name = "Human"
		}
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				buf, err := jsonlib.Serialize(root, human)
				if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
				jsonlib.Release(buf)
			}
		})
	}
}
