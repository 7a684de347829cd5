// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jpath implements a subset of JSONPath over JSON node trees.
//
// An expression begins with the root marker "$" followed by member, index,
// slice, wildcard, and recursive-descent steps:
//
//	$.store.book[0].title
//	$..author
//	$.list[-2:]
//	$['key with spaces'].*
//
// Filter and script expressions are not supported.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/cursor"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = ".." name
  step = "[" value "]"
  step = "[" slice "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX {"," INDEX}
 slice = [INDEX] ":" [INDEX]

  WORD = RE `\w+`
 QTEXT = RE `[^']*`
 INDEX = RE `-?\d+`
*/

// An Expr is a parsed JSONPath expression.
type Expr []Step

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	t, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var steps Expr
	for t != "" {
		step, rest, err := parseStep(t)
		if err != nil {
			return nil, fmt.Errorf("at %q: %w", t, err)
		}
		steps = append(steps, step)
		t = rest
	}
	return steps, nil
}

// MustParse parses s as a JSONPath expression, and panics if it is invalid.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		switch s.Op {
		case Member, Recur:
			buf.WriteString(s.Op.String())
			if s.Quoted {
				fmt.Fprintf(&buf, "'%s'", s.Name)
			} else {
				buf.WriteString(s.Name)
			}
		case Index:
			fmt.Fprintf(&buf, "[%s]", joinInts(s.Indices))
		case Slice:
			buf.WriteString("[")
			if s.Lo != nil {
				fmt.Fprint(&buf, *s.Lo)
			}
			buf.WriteString(":")
			if s.Hi != nil {
				fmt.Fprint(&buf, *s.Hi)
			}
			buf.WriteString("]")
		case Select:
			if s.Quoted {
				fmt.Fprintf(&buf, "['%s']", s.Name)
			} else {
				fmt.Fprintf(&buf, "[%s]", s.Name)
			}
		}
	}
	return buf.String()
}

// Eval evaluates e starting from root, and returns the nodes selected in
// document order. Steps that do not apply to a node (for example, a member
// step on an array) select nothing from it.
func (e Expr) Eval(root *jsonlib.Node) []*jsonlib.Node {
	cur := []*jsonlib.Node{root}
	for _, s := range e {
		var next []*jsonlib.Node
		for _, n := range cur {
			next = s.apply(n, next)
		}
		cur = next
	}
	return cur
}

// An Op is a path operator.
type Op byte

const (
	Invalid Op = iota // invalid operator
	Member            // member lookup (.name)
	Recur             // recursive descent (..name)
	Select            // bracketed member lookup (['name'])
	Index             // array index lookup ([i,j,...])
	Slice             // array slice ([lo:hi])
)

var opText = [...]string{
	Invalid: "invalid",
	Member:  ".",
	Recur:   "..",
	Select:  "select",
	Index:   "index",
	Slice:   "slice",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return opText[Invalid]
}

// A Step is a single step of a JSONPath expression.
type Step struct {
	Op      Op
	Name    string // for Member, Recur, Select; "*" is a wildcard
	Quoted  bool   // Name was written in quotes
	Indices []int  // for Index
	Lo, Hi  *int   // for Slice; nil means open
}

func (s Step) wildcard() bool { return s.Name == "*" && !s.Quoted }

func (s Step) apply(n *jsonlib.Node, out []*jsonlib.Node) []*jsonlib.Node {
	switch s.Op {
	case Member, Select:
		return s.member(n, out)
	case Recur:
		return s.recur(n, out)
	case Index:
		if n.Kind() != jsonlib.KindArray {
			break
		}
		for _, i := range s.Indices {
			if v, err := cursor.Find(n, i); err == nil {
				out = append(out, v)
			}
		}
	case Slice:
		if n.Kind() == jsonlib.KindArray {
			kids := n.Children()
			lo, hi := bound(s.Lo, 0, len(kids)), bound(s.Hi, len(kids), len(kids))
			if lo < hi {
				out = append(out, kids[lo:hi]...)
			}
		}
	}
	return out
}

func (s Step) member(n *jsonlib.Node, out []*jsonlib.Node) []*jsonlib.Node {
	if s.wildcard() {
		return append(out, n.Children()...)
	}
	if v, err := cursor.Find(n, s.Name); err == nil {
		out = append(out, v)
	}
	return out
}

func (s Step) recur(n *jsonlib.Node, out []*jsonlib.Node) []*jsonlib.Node {
	out = s.member(n, out)
	for _, kid := range n.Children() {
		out = s.recur(kid, out)
	}
	return out
}

func bound(p *int, dflt, n int) int {
	if p == nil {
		return dflt
	}
	i := *p
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, ".."); ok {
		name, quoted, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid ..name: %w", err)
		}
		return Step{Op: Recur, Name: name, Quoted: quoted}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		name, quoted, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		}
		return Step{Op: Member, Name: name, Quoted: quoted}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		step, u, err := parseValue(t)
		if err != nil {
			return Step{}, t, err
		}
		u, ok := strings.CutPrefix(u, "]")
		if !ok {
			return Step{}, u, errors.New("missing close bracket")
		}
		return step, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (name string, quoted bool, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "*"); ok {
		return "*", false, t, nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return m[1], false, s[len(m[0]):], nil
	}
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		return m[1], true, s[len(m[0]):], nil
	}
	return "", false, s, errors.New("invalid name")
}

func parseValue(s string) (Step, string, error) {
	if strings.HasPrefix(s, "?(") || strings.HasPrefix(s, "(") {
		return Step{}, s, errors.New("filter and script expressions are not supported")
	}
	if lo, rest, ok := parseIndex(s); ok {
		if u, ok := strings.CutPrefix(rest, ":"); ok {
			hi, v, _ := parseIndex(u)
			return Step{Op: Slice, Lo: lo, Hi: hi}, v, nil
		}
		idx := []int{*lo}
		for {
			u, ok := strings.CutPrefix(rest, ",")
			if !ok {
				break
			}
			next, v, ok := parseIndex(u)
			if !ok {
				return Step{}, u, errors.New("invalid index list")
			}
			idx = append(idx, *next)
			rest = v
		}
		return Step{Op: Index, Indices: idx}, rest, nil
	}
	if u, ok := strings.CutPrefix(s, ":"); ok {
		hi, v, _ := parseIndex(u)
		return Step{Op: Slice, Hi: hi}, v, nil
	}
	if name, quoted, rest, err := parseName(s); err == nil {
		return Step{Op: Select, Name: name, Quoted: quoted}, rest, nil
	}
	return Step{}, s, fmt.Errorf("invalid value: %q", s)
}

// parseIndex parses a single integer index from the front of s. It reports
// false, and returns s unchanged, if s does not begin with an index.
func parseIndex(s string) (*int, string, bool) {
	m := indexRE.FindString(s)
	if m == "" {
		return nil, s, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil, s, false
	}
	return &v, s[len(m):], true
}

func joinInts(vs []int) string {
	ss := make([]string, len(vs))
	for i, v := range vs {
		ss[i] = strconv.Itoa(v)
	}
	return strings.Join(ss, ",")
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	indexRE = regexp.MustCompile(`^-?\d+`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
)
