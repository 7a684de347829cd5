// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonlib

import "github.com/creachadair/jsonlib/internal/divider"

// correct reclassifies the quoted lexemes the tokenizer could not place. An
// identifier inside an array that is not followed by a colon is a string
// element, not a member name. An invalid token aborts the pass.
func correct(input []byte, stk *divider.Stack, toks []Lexeme) error {
	stk.Reset()
	defer stk.Reset()
	for i := range toks {
		lx := &toks[i]
		switch lx.Token {
		case LBrace, LSquare:
			marker := divider.Object
			if lx.Token == LSquare {
				marker = divider.Array
			}
			if err := stk.Push(marker); err != nil {
				return syntaxError(ErrStructure, input, lx.Span, err, "cannot open %v", lx.Token)
			}
		case RBrace, RSquare:
			stk.Pop()
		case Invalid:
			return syntaxError(ErrLexical, input, lx.Span, nil, "invalid value %q", input[lx.Span.Pos:lx.Span.End])
		case Identifier:
			if stk.Top() == divider.Array && (i+1 == len(toks) || toks[i+1].Token != Colon) {
				lx.Token = String
			}
		}
	}
	return nil
}
