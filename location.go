// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"bytes"
	"fmt"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

func (loc Location) String() string {
	if loc.First.Line == loc.Last.Line {
		return fmt.Sprintf("%s-%d", loc.First, loc.Last.Column)
	}
	return fmt.Sprintf("%s-%s", loc.First, loc.Last)
}

// locate returns the complete location of span within input.
func locate(input []byte, span Span) Location {
	return Location{
		Span:  span,
		First: lineCol(input, span.Pos),
		Last:  lineCol(input, span.End),
	}
}

func lineCol(input []byte, pos int) LineCol {
	pos = min(max(pos, 0), len(input))
	head := input[:pos]
	lc := LineCol{Line: bytes.Count(head, []byte("\n")) + 1, Column: pos}
	if i := bytes.LastIndexByte(head, '\n'); i >= 0 {
		lc.Column = pos - i - 1
	}
	return lc
}
