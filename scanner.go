// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import (
	"errors"
	"slices"
	"unsafe"

	"github.com/creachadair/jsonlib/alloc"
	"github.com/creachadair/jsonlib/internal/divider"
	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid    Token = iota // invalid token
	LBrace                  // left brace "{"
	RBrace                  // right brace "}"
	LSquare                 // left square bracket "["
	RSquare                 // right square bracket "]"
	Comma                   // comma ","
	Colon                   // colon ":"
	Identifier              // quoted member name
	Integer                 // number: integer with no fraction or exponent
	Decimal                 // number with fraction and/or exponent
	String                  // quoted string value
	True                    // constant: true
	False                   // constant: false
	Null                    // constant: null
)

var tokenStr = [...]string{
	Invalid:    "invalid token",
	LBrace:     `"{"`,
	RBrace:     `"}"`,
	LSquare:    `"["`,
	RSquare:    `"]"`,
	Comma:      `","`,
	Colon:      `":"`,
	Identifier: "identifier",
	Integer:    "integer",
	Decimal:    "decimal",
	String:     "string",
	True:       "true",
	False:      "false",
	Null:       "null",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// IsValue reports whether t is a token that denotes a leaf value.
func (t Token) IsValue() bool { return t >= Integer && t <= Null }

// A Lexeme is a single token of the input along with its location.
type Lexeme struct {
	Token Token
	Text  []byte // the contents of a name, string, or number; otherwise nil
	Span  Span   // the location of the token, including quotes

	held bool // Text is reserved and has not been handed off to a node
}

// Tokenize splits input into a sequence of lexemes, with string values in
// arrays already distinguished from member names. It reports a *SyntaxError
// if the input contains a malformed value or unbalanced scopes.
//
// Tokenize does not build a tree; all the reservations it makes are returned
// before it returns.
func (s *Store) Tokenize(input []byte) ([]Lexeme, error) {
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
	out := slices.Clone(toks.list)
	for i := range out {
		out[i].held = false
	}
	return out, nil
}

// Tokenize splits input using a zero Store. See Store.Tokenize.
func Tokenize(input []byte) ([]Lexeme, error) { return std.Tokenize(input) }

var lexemeSize = int(unsafe.Sizeof(Lexeme{}))

const initialTokens = 32

// A tokenList is a growable sequence of lexemes whose storage, and the text
// of whose names, strings, and numbers, is charged to an allocator.
type tokenList struct {
	a    alloc.Allocator
	list []Lexeme
}

func newTokenList(a alloc.Allocator) (*tokenList, error) {
	if err := a.Alloc(alloc.Tokens, initialTokens*lexemeSize); err != nil {
		return nil, err
	}
	return &tokenList{a: a, list: make([]Lexeme, 0, initialTokens)}, nil
}

// add appends a lexeme with no text.
func (t *tokenList) add(tok Token, span Span) error {
	return t.push(Lexeme{Token: tok, Span: span})
}

// addText appends a lexeme holding a copy of text.
func (t *tokenList) addText(tok Token, text []byte, span Span) error {
	if err := t.a.Alloc(alloc.Text, len(text)); err != nil {
		return err
	}
	lx := Lexeme{Token: tok, Text: slices.Clone(text), Span: span, held: true}
	if lx.Text == nil {
		lx.Text = []byte{}
	}
	if err := t.push(lx); err != nil {
		t.a.Free(alloc.Text, len(text))
		return err
	}
	return nil
}

func (t *tokenList) push(lx Lexeme) error {
	if len(t.list) == cap(t.list) {
		old := cap(t.list)
		if err := t.a.Alloc(alloc.Tokens, 2*old*lexemeSize); err != nil {
			return err
		}
		grown := make([]Lexeme, len(t.list), 2*old)
		copy(grown, t.list)
		t.list = grown
		t.a.Free(alloc.Tokens, old*lexemeSize)
	}
	t.list = append(t.list, lx)
	return nil
}

// take transfers the reservation for the text of lexeme i to the caller.
func (t *tokenList) take(i int) []byte {
	lx := &t.list[i]
	lx.held = false
	return lx.Text
}

// drop returns the reservation for the text of lexeme i, if it is held.
func (t *tokenList) drop(i int) {
	if lx := &t.list[i]; lx.held {
		t.a.Free(alloc.Text, len(lx.Text))
		lx.held = false
	}
}

// release returns all outstanding reservations of t. The list must not be
// used after it is released.
func (t *tokenList) release() {
	if t.list == nil {
		return
	}
	for i := range t.list {
		t.drop(i)
	}
	t.a.Free(alloc.Tokens, cap(t.list)*lexemeSize)
	t.list = nil
}

var (
	litTrue  = mem.S("true")
	litFalse = mem.S("false")
	litNull  = mem.S("null")
)

// tokenize scans input into toks, using stk to track open scopes.
func tokenize(input []byte, stk *divider.Stack, toks *tokenList) error {
	lx := &lexer{input: input, stk: stk, toks: toks}
	for lx.pos < len(input) {
		if err := lx.next(); err != nil {
			return err
		}
	}
	if n := stk.Len(); n != 0 {
		end := len(input)
		return syntaxError(ErrUnbalanced, input, Span{Pos: end, End: end}, nil,
			"%d scope(s) not closed at end of input", n)
	}
	return nil
}

type lexer struct {
	input []byte
	stk   *divider.Stack
	toks  *tokenList
	pos   int
}

// atValue reports whether the next token begins a value, that is, whether
// the previous token was a colon, comma, or opener.
func (lx *lexer) atValue() bool {
	n := len(lx.toks.list)
	if n == 0 {
		return false
	}
	switch lx.toks.list[n-1].Token {
	case Colon, Comma, LBrace, LSquare:
		return true
	}
	return false
}

func (lx *lexer) next() error {
	in, i := lx.input, lx.pos
	ch := in[i]
	span := Span{Pos: i, End: i + 1}
	switch ch {
	case ' ', '\t', '\r', '\n':
		lx.pos++
		return nil

	case '{', '[':
		if len(lx.toks.list) != 0 && !lx.atValue() {
			return lx.fail(ErrLexical, span, nil, "unexpected %q", ch)
		}
		if err := lx.push(ch, span); err != nil {
			return err
		}
		lx.pos++
		return lx.toks.add(openToken(ch), span)

	case '}', ']':
		want := divider.Object
		if ch == ']' {
			want = divider.Array
		}
		if top, ok := lx.stk.Pop(); !ok {
			return lx.fail(ErrUnbalanced, span, nil, "unexpected %q with no open scope", ch)
		} else if top != want {
			return lx.fail(ErrUnbalanced, span, nil, "unexpected %q in %q scope", ch, top)
		}
		lx.pos++
		return lx.toks.add(closeToken(ch), span)

	case ':', ',':
		tok := Colon
		if ch == ',' {
			tok = Comma
		}
		lx.pos++
		return lx.toks.add(tok, span)

	case '"':
		if !lx.atValue() {
			return lx.fail(ErrLexical, span, nil, "unexpected string")
		}
		if err := lx.push(divider.Quote, span); err != nil {
			return err
		}
		end := mem.IndexByte(mem.B(in[i+1:]), '"')
		if end < 0 {
			return lx.fail(ErrUnbalanced, Span{Pos: i, End: len(in)}, nil, "unterminated string")
		}
		j := i + 1 + end
		lx.stk.Pop()

		// A string following a colon is a member value; anything else is
		// taken to be a name until the correction pass says otherwise.
		tok := Identifier
		if prev := lx.toks.list[len(lx.toks.list)-1]; prev.Token == Colon {
			tok = String
		}
		lx.pos = j + 1
		return lx.toks.addText(tok, in[i+1:j], Span{Pos: i, End: j + 1})

	default:
		if !lx.atValue() {
			return lx.fail(ErrLexical, span, nil, "unexpected %q", ch)
		}
		j := i
		for j < len(in) && !isValueEnd(in[j]) {
			j++
		}
		span.End = j
		text := mem.B(in[i:j])
		tok := classify(text)
		lx.pos = j
		switch tok {
		case Invalid:
			return lx.fail(ErrLexical, span, nil, "invalid value %q", text.StringCopy())
		case Integer, Decimal:
			return lx.toks.addText(tok, in[i:j], span)
		default:
			return lx.toks.add(tok, span)
		}
	}
}

// push opens a scope, translating a depth overflow into a syntax error.
func (lx *lexer) push(marker byte, span Span) error {
	err := lx.stk.Push(marker)
	if errors.Is(err, divider.ErrTooDeep) {
		return lx.fail(ErrStructure, span, err, "more than %d nested scopes", lx.stk.Len())
	}
	return err
}

func (lx *lexer) fail(kind error, span Span, cause error, msg string, args ...any) error {
	return syntaxError(kind, lx.input, span, cause, msg, args...)
}

// classify reports the token denoted by the unquoted value text.
func classify(text mem.RO) Token {
	if text.Len() == 0 {
		return Invalid
	}
	if c := text.At(0); c == '-' || isDigit(c) {
		if mem.IndexByte(text, '.') >= 0 || mem.IndexByte(text, 'e') >= 0 || mem.IndexByte(text, 'E') >= 0 {
			return Decimal
		}
		return Integer
	}
	switch {
	case text.Equal(litTrue):
		return True
	case text.Equal(litFalse):
		return False
	case text.Equal(litNull):
		return Null
	}
	return Invalid
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isValueEnd(c byte) bool {
	switch c {
	case ',', '}', ']', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func openToken(ch byte) Token {
	if ch == '[' {
		return LSquare
	}
	return LBrace
}

func closeToken(ch byte) Token {
	if ch == ']' {
		return RSquare
	}
	return RBrace
}
