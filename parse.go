// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"errors"

	"github.com/creachadair/jsonlib/internal/divider"
	"github.com/go-kit/log/level"
	"go4.org/mem"
)

// Parse parses input as a JSON object or array and returns the root of the
// resulting tree. The caller owns the tree and must release it with Free.
//
// If input is not well-formed, Parse reports a *SyntaxError; if an allocation
// is refused, Parse reports the allocator's error. In either case no
// reservations remain outstanding.
func (s *Store) Parse(input []byte) (*Node, error) {
	root, err := s.parse(input)
	if err != nil {
		level.Debug(s.logger()).Log("msg", "parse failed", "bytes", len(input), "error", err)
		return nil, err
	}
	return root, nil
}

func (s *Store) parse(input []byte) (*Node, error) {
	a := s.alloc()
	stk, err := divider.New(a, s.maxDepth())
	if err != nil {
		return nil, err
	}
	defer stk.Release()
	toks, err := newTokenList(a)
	if err != nil {
		return nil, err
	}
	defer toks.release()

	if err := tokenize(input, stk, toks); err != nil {
		return nil, err
	} else if err := correct(input, stk, toks.list); err != nil {
		return nil, err
	}
	b := &builder{st: s, input: input, toks: toks, stk: stk}
	return b.build()
}

// A builder assembles a tree from a corrected token sequence.
type builder struct {
	st    *Store
	input []byte
	toks  *tokenList
	stk   *divider.Stack
}

func (b *builder) build() (*Node, error) {
	toks := b.toks.list
	if len(toks) == 0 {
		return nil, b.fail(ErrStructure, Span{Pos: 0, End: len(b.input)}, nil, "no value found")
	}
	first := toks[0]
	if first.Token != LBrace && first.Token != LSquare {
		return nil, b.fail(ErrStructure, first.Span, nil, "unexpected %v at top level", first.Token)
	}
	end, err := b.closer(0, len(toks))
	if err != nil {
		return nil, err
	}
	if end != len(toks)-1 {
		extra := toks[end+1]
		return nil, b.fail(ErrStructure, extra.Span, nil, "unexpected %v after top-level value", extra.Token)
	}

	root, err := b.st.allocNode()
	if err != nil {
		return nil, err
	}
	root.value = newContainer(first.Token)
	if err := b.fill(root, 0, end+1); err != nil {
		b.st.Free(root)
		return nil, err
	}
	return root, nil
}

// closer returns the index of the token in toks[lo:hi] that closes the scope
// opened by toks[lo].
func (b *builder) closer(lo, hi int) (int, error) {
	toks := b.toks.list
	b.stk.Reset()
	for i := lo; i < hi; i++ {
		var err error
		switch toks[i].Token {
		case LBrace:
			err = b.stk.Push(divider.Object)
		case LSquare:
			err = b.stk.Push(divider.Array)
		case RBrace, RSquare:
			b.stk.Pop()
		}
		if errors.Is(err, divider.ErrTooDeep) {
			return 0, b.fail(ErrStructure, toks[i].Span, err, "nesting too deep")
		} else if err != nil {
			return 0, err
		}
		if b.stk.Len() == 0 {
			if !closes(toks[lo].Token, toks[i].Token) {
				return 0, b.fail(ErrStructure, toks[i].Span, nil, "%v does not close %v", toks[i].Token, toks[lo].Token)
			}
			return i, nil
		}
	}
	return 0, b.fail(ErrStructure, toks[lo].Span, nil, "no matching closer for %v", toks[lo].Token)
}

// fill populates the container n from the tokens toks[lo:hi], where toks[lo]
// is the opener and toks[hi-1] the matching closer.
func (b *builder) fill(n *Node, lo, hi int) error {
	toks := b.toks.list
	inArray := n.Kind() == KindArray
	var member *Node // an object member waiting for its value

	for i := lo + 1; i < hi-1; i++ {
		lx := &toks[i]
		switch lx.Token {
		case Colon:
			// Only a member name may precede a colon.
			if member == nil || toks[i-1].Token != Identifier {
				return b.fail(ErrStructure, lx.Span, nil, "unexpected %v", lx.Token)
			}

		case Comma:
			if member != nil {
				return b.fail(ErrStructure, lx.Span, nil, "member %q has no value", member.name)
			}

		case Identifier:
			if inArray {
				return b.fail(ErrStructure, lx.Span, nil, "unexpected member name %q in array", lx.Text)
			} else if member != nil {
				return b.fail(ErrStructure, lx.Span, nil, "member %q has no value", member.name)
			}
			m, err := b.member(n, i)
			if err != nil {
				return err
			}
			member = m

		case LBrace, LSquare:
			end, err := b.closer(i, hi-1)
			if err != nil {
				return err
			}
			target, err := b.target(n, &member, lx)
			if err != nil {
				return err
			}
			target.value = newContainer(lx.Token)
			if err := b.fill(target, i, end+1); err != nil {
				return err
			}
			i = end

		case Integer, Decimal, String, True, False, Null:
			if !inArray && member == nil {
				return b.fail(ErrStructure, lx.Span, nil, "%v value without a member name", lx.Token)
			}
			v, err := b.convert(lx)
			if err != nil {
				return err
			}
			target, err := b.target(n, &member, lx)
			if err != nil {
				return err
			}
			target.value = v
			if lx.Token == String {
				b.toks.take(i)
			} else {
				b.toks.drop(i)
			}

		default:
			return b.fail(ErrStructure, lx.Span, nil, "unexpected %v", lx.Token)
		}
	}
	if member != nil {
		return b.fail(ErrStructure, toks[hi-1].Span, nil, "member %q has no value", member.name)
	}
	return nil
}

// member creates a named, valueless child of n for the identifier at i. The
// reservation for its name passes from the token to the node.
func (b *builder) member(n *Node, i int) (*Node, error) {
	m, err := b.st.allocNode()
	if err != nil {
		return nil, err
	}
	m.name, m.named = string(b.toks.take(i)), true
	if err := b.st.attach(n, m); err != nil {
		b.st.Free(m)
		return nil, err
	}
	return m, nil
}

// target returns the node that should receive the value starting at lx: the
// pending member of an object, or a new element of an array.
func (b *builder) target(n *Node, member **Node, lx *Lexeme) (*Node, error) {
	if n.Kind() == KindArray {
		elt, err := b.st.allocNode()
		if err != nil {
			return nil, err
		}
		if err := b.st.attach(n, elt); err != nil {
			b.st.Free(elt)
			return nil, err
		}
		return elt, nil
	}
	if *member == nil {
		return nil, b.fail(ErrStructure, lx.Span, nil, "%v value without a member name", lx.Token)
	}
	m := *member
	*member = nil
	return m, nil
}

// convert returns the value denoted by a leaf token.
func (b *builder) convert(lx *Lexeme) (value, error) {
	switch lx.Token {
	case Integer:
		v, err := mem.ParseInt(mem.B(lx.Text), 10, 32)
		if err != nil {
			return nil, b.fail(ErrLexical, lx.Span, err, "invalid integer %q", lx.Text)
		}
		return integerValue(v), nil
	case Decimal:
		v, err := mem.ParseFloat(mem.B(lx.Text), 32)
		if err != nil {
			return nil, b.fail(ErrLexical, lx.Span, err, "invalid decimal %q", lx.Text)
		}
		return decimalValue(v), nil
	case String:
		return stringValue(lx.Text), nil
	case True, False:
		return boolValue(lx.Token == True), nil
	case Null:
		return nullValue{}, nil
	}
	return nil, b.fail(ErrLexical, lx.Span, nil, "unexpected %v", lx.Token)
}

func (b *builder) fail(kind error, span Span, cause error, msg string, args ...any) error {
	return syntaxError(kind, b.input, span, cause, msg, args...)
}

func newContainer(open Token) value {
	if open == LSquare {
		return new(arrayValue)
	}
	return new(objectValue)
}

func closes(open, end Token) bool {
	return (open == LBrace && end == RBrace) || (open == LSquare && end == RSquare)
}

var std Store

// Parse parses input using a zero Store. See Store.Parse.
func Parse(input []byte) (*Node, error) { return std.Parse(input) }

// Free releases a tree created by Parse. See Store.Free.
func Free(n *Node) { std.Free(n) }
