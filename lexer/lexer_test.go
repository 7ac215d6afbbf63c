// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/lexer"
	"github.com/tomlkit/tomlkit/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func kindsEqual(t *testing.T, got []token.Kind, want ...token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

func TestLexBasic(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex(`key = "value"` + "\n", bag)
	kindsEqual(t, kinds(toks), token.IDENT, token.EQUALS, token.STRING, token.NEWLINE, token.EOF)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}
	if toks[2].Lit != `"value"` {
		t.Errorf("Lit = %q, want %q", toks[2].Lit, `"value"`)
	}
}

func TestLexNumbers(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex("1_000 3.14 1e10 inf -nan 0x1A 0o17 0b101\n", bag)
	kindsEqual(t, kinds(toks),
		token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.FLOAT,
		token.INT, token.INT, token.INT, token.NEWLINE, token.EOF)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}
}

func TestLexLeadingZero(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex("01\n", bag)
	kindsEqual(t, kinds(toks), token.INT, token.NEWLINE, token.EOF)
	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.LeadingZero {
		t.Fatalf("errors = %v, want one LeadingZero", errs)
	}
}

func TestLexDateTimeShapes(t *testing.T) {
	bag := errors.NewBag()
	src := "1979-05-27T07:32:00Z 1979-05-27T07:32:00 07:32:00 1979-05-27\n"
	toks := lexer.Lex(src, bag)
	kindsEqual(t, kinds(toks),
		token.DATETIME_OFFSET, token.DATETIME_LOCAL, token.TIME_LOCAL, token.DATE_LOCAL,
		token.NEWLINE, token.EOF)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}
}

func TestLexDateLikeBareKeyNotDateTime(t *testing.T) {
	// A hyphenated run that continues past a date shape with more bare-key
	// characters is a bare key, not a date (spec.md §4.1 ambiguity note).
	bag := errors.NewBag()
	toks := lexer.Lex("1979-05-27x = 1\n", bag)
	kindsEqual(t, kinds(toks), token.IDENT, token.EQUALS, token.INT, token.NEWLINE, token.EOF)
	if toks[0].Lit != "1979-05-27x" {
		t.Errorf("Lit = %q, want %q", toks[0].Lit, "1979-05-27x")
	}
}

func TestLexBoolAndBareKey(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex("true false my-key_1\n", bag)
	kindsEqual(t, kinds(toks), token.BOOL, token.BOOL, token.IDENT, token.NEWLINE, token.EOF)
}

func TestLexStrings(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex(`"a" 'b' """c""" '''d'''`+"\n", bag)
	kindsEqual(t, kinds(toks),
		token.STRING, token.STRING_LIT, token.STRING_MULTI, token.STRING_LIT_MULTI,
		token.NEWLINE, token.EOF)
}

func TestLexPunctuation(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex("[[a]] [b] {c} , .\n", bag)
	kindsEqual(t, kinds(toks),
		token.LDBRACK, token.IDENT, token.RDBRACK,
		token.LBRACK, token.IDENT, token.RBRACK,
		token.LBRACE, token.IDENT, token.RBRACE,
		token.COMMA, token.DOT, token.NEWLINE, token.EOF)
}

func TestLexComment(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex("key = 1 # trailing note\n", bag)
	kindsEqual(t, kinds(toks), token.IDENT, token.EQUALS, token.INT, token.COMMENT, token.NEWLINE, token.EOF)
	if toks[3].Lit != "# trailing note" {
		t.Errorf("Lit = %q, want %q", toks[3].Lit, "# trailing note")
	}
}

func TestLexInvalidCharRecovers(t *testing.T) {
	bag := errors.NewBag()
	toks := lexer.Lex("key = ?\n", bag)
	// The illegal character is skipped without emitting a token, but
	// scanning continues: the newline is still produced.
	kindsEqual(t, kinds(toks), token.IDENT, token.EQUALS, token.NEWLINE, token.EOF)
	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.InvalidChar {
		t.Fatalf("errors = %v, want one InvalidChar", errs)
	}
}

func TestLexAlwaysTerminatesWithEOF(t *testing.T) {
	for _, src := range []string{"", "\n", "key = 1", "   \t  "} {
		bag := errors.NewBag()
		toks := lexer.Lex(src, bag)
		if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
			t.Errorf("Lex(%q) did not end in EOF: %v", src, kinds(toks))
		}
	}
}

// TestLexFullTokenShape checks kind, span and literal together with one
// cmp.Diff per case instead of separate field-by-field assertions,
// following cue/scanner_test.go's structural-diff style.
func TestLexFullTokenShape(t *testing.T) {
	bag := errors.NewBag()
	got := lexer.Lex("x = 1\n", bag)
	want := []token.Token{
		{Kind: token.IDENT, Lit: "x", Span: token.Span{Start: token.Position{Line: 0, Char: 0}, End: token.Position{Line: 0, Char: 1}}},
		{Kind: token.EQUALS, Lit: "=", Span: token.Span{Start: token.Position{Line: 0, Char: 2}, End: token.Position{Line: 0, Char: 3}}},
		{Kind: token.INT, Lit: "1", Span: token.Span{Start: token.Position{Line: 0, Char: 4}, End: token.Position{Line: 0, Char: 5}}},
		{Kind: token.NEWLINE, Lit: "\n", Span: token.Span{Start: token.Position{Line: 0, Char: 5}, End: token.Position{Line: 1, Char: 0}}},
		{Kind: token.EOF, Lit: "", Span: token.Span{Start: token.Position{Line: 1, Char: 0}, End: token.Position{Line: 1, Char: 0}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lex() mismatch (-want +got):\n%s", diff)
	}
}

func TestLexSpanCoverage(t *testing.T) {
	// Every non-EOF token's Lit must equal the exact source slice its span
	// covers in byte terms, modulo the \r\n normalization the lexer performs
	// (spec.md §8 "Span coverage"). We check this on CRLF-free input, where
	// span columns and byte offsets coincide for ASCII source.
	bag := errors.NewBag()
	src := "a = 1\nb = 2\n"
	toks := lexer.Lex(src, bag)
	lineStart := []int{0}
	for i, c := range src {
		if c == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	offset := func(p token.Position) int { return lineStart[p.Line] + p.Char }
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		if !tok.Span.IsValid() {
			t.Errorf("token %v has invalid span", tok)
			continue
		}
		if got := src[offset(tok.Span.Start):offset(tok.Span.End)]; got != tok.Lit {
			t.Errorf("token %v covers %q, want its Lit %q", tok, got, tok.Lit)
		}
	}
}
