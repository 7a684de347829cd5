// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cursor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
Grammar:

  path = [name] {step}
  step = "." name
  step = "[" INDEX "]"
  step = "[" "'" QTEXT "'" "]"
  name = WORD

  WORD = RE `[\w-]+`
 INDEX = RE `-?\d+`
 QTEXT = RE `[^']*`
*/

// ParsePath parses a dotted path expression such as
//
//	config.servers[0].name
//	list[-1]['member with spaces']
//
// into path elements suitable for Down. Names become strings and indices
// become integers. An empty expression yields an empty path.
func ParsePath(s string) ([]any, error) {
	var out []any
	if m := wordRE.FindString(s); m != "" {
		out = append(out, m)
		s = s[len(m):]
	}
	for s != "" {
		if t, ok := strings.CutPrefix(s, "."); ok {
			m := wordRE.FindString(t)
			if m == "" {
				return nil, fmt.Errorf("invalid name at %q", t)
			}
			out = append(out, m)
			s = t[len(m):]
			continue
		}
		t, ok := strings.CutPrefix(s, "[")
		if !ok {
			return nil, fmt.Errorf("invalid path step at %q", s)
		}
		if m := quoteRE.FindStringSubmatch(t); m != nil {
			out = append(out, m[1])
			t = t[len(m[0]):]
		} else if m := indexRE.FindString(t); m != "" {
			v, err := strconv.Atoi(m)
			if err != nil {
				return nil, fmt.Errorf("invalid index %q: %w", m, err)
			}
			out = append(out, v)
			t = t[len(m):]
		} else {
			return nil, fmt.Errorf("invalid index at %q", t)
		}
		s, ok = strings.CutPrefix(t, "]")
		if !ok {
			return nil, errors.New("missing close bracket")
		}
	}
	return out, nil
}

var (
	wordRE  = regexp.MustCompile(`^[\w-]+`)
	indexRE = regexp.MustCompile(`^-?\d+`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
)
