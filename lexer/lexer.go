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

// Package lexer implements byte-accurate tokenization of TOML source text
// into a flat token list with spans (spec.md §4.1). It is modeled on
// cuelang.org/go/cue/scanner's rune-reading loop, adapted from CUE's
// expression grammar to TOML's string/number/date-time/key grammar, with
// date-time shape recognition grounded on the regexp-based approach of
// other_examples' gxed-go-toml parser.
package lexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/token"
)

// Lexer holds scanning state over a single source string. Zero value is
// not usable; use New.
type Lexer struct {
	src string
	bag *errors.Bag

	offset   int // byte offset of ch
	rdOffset int // byte offset just past ch
	ch       rune

	line int
	char int // rune column within the current line

	tokens []token.Token
}

// New returns a Lexer ready to tokenize src, recording diagnostics on bag.
func New(src string, bag *errors.Bag) *Lexer {
	l := &Lexer{src: src, bag: bag, line: 0, char: 0}
	l.next()
	return l
}

const eof = -1

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Char: l.char}
}

func (l *Lexer) next() {
	if l.ch == '\n' {
		l.line++
		l.char = 0
	} else if l.rdOffset > 0 {
		l.char++
	}
	if l.rdOffset < len(l.src) {
		l.offset = l.rdOffset
		r, w := rune(l.src[l.rdOffset]), 1
		if r >= utf8.RuneSelf {
			r, w = utf8.DecodeRuneInString(l.src[l.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				l.error(l.pos(), errors.InvalidChar, "invalid UTF-8 encoding")
			}
		}
		// Normalize \r\n to a single logical '\n'; a lone '\r' outside of
		// a string is treated as an ordinary (invalid-looking) character
		// so the scanner always makes progress.
		if r == '\r' && l.rdOffset+1 < len(l.src) && l.src[l.rdOffset+1] == '\n' {
			w++
		}
		l.rdOffset += w
		if r == '\r' && w == 2 {
			r = '\n'
		}
		l.ch = r
	} else {
		l.offset = len(l.src)
		l.ch = eof
	}
}

func (l *Lexer) peekByte() byte {
	if l.rdOffset < len(l.src) {
		return l.src[l.rdOffset]
	}
	return 0
}

func (l *Lexer) error(at token.Position, kind errors.Kind, msg string) {
	l.bag.Error(errors.Diagnostic{
		Kind:    kind,
		Span:    token.Span{Start: at, End: token.Position{Line: at.Line, Char: at.Char + 1}},
		Message: msg,
	})
}

func (l *Lexer) emit(kind token.Kind, start token.Position, lit string) {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Span: token.Span{Start: start, End: l.pos()},
		Lit:  lit,
	})
}

// Lex tokenizes the whole source and returns the flat token list, always
// terminated by an EOF token (spec.md §3).
func Lex(src string, bag *errors.Bag) []token.Token {
	l := New(src, bag)
	return l.Lex()
}

// Lex runs the scan loop to completion.
func (l *Lexer) Lex() []token.Token {
	for {
		if !l.scanOne() {
			break
		}
	}
	l.emit(token.EOF, l.pos(), "")
	return l.tokens
}

// scanOne scans and emits exactly one token (or recovers from one error
// without emitting), returning false once EOF has been reached.
func (l *Lexer) scanOne() bool {
	l.skipSpacesAndTabs()

	start := l.pos()
	ch := l.ch

	switch {
	case ch == eof:
		return false
	case ch == '\n':
		l.next()
		l.emit(token.NEWLINE, start, "\n")
		return true
	case ch == '#':
		l.scanComment(start)
		return true
	case ch == '"':
		l.scanBasicString(start)
		return true
	case ch == '\'':
		l.scanLiteralString(start)
		return true
	case isBareKeyStart(ch):
		l.scanBareOrLiteral(start)
		return true
	case ch == '+' || ch == '-':
		l.scanSignedNumber(start)
		return true
	}

	l.next()
	switch ch {
	case '.':
		l.emit(token.DOT, start, ".")
	case '=':
		l.emit(token.EQUALS, start, "=")
	case ',':
		l.emit(token.COMMA, start, ",")
	case '{':
		l.emit(token.LBRACE, start, "{")
	case '}':
		l.emit(token.RBRACE, start, "}")
	case '[':
		if l.ch == '[' {
			l.next()
			l.emit(token.LDBRACK, start, "[[")
		} else {
			l.emit(token.LBRACK, start, "[")
		}
	case ']':
		if l.ch == ']' {
			l.next()
			l.emit(token.RDBRACK, start, "]]")
		} else {
			l.emit(token.RBRACK, start, "]")
		}
	default:
		l.error(start, errors.InvalidChar, "invalid character "+string(ch))
	}
	return true
}

func (l *Lexer) skipSpacesAndTabs() {
	for l.ch == ' ' || l.ch == '\t' {
		l.next()
	}
}

func isBareKeyStart(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_'
}

func isBareKeyChar(ch rune) bool {
	return isBareKeyStart(ch) || ch == '-'
}

// scanComment consumes from '#' to end of line, not including the
// terminating newline.
func (l *Lexer) scanComment(start token.Position) {
	startOff := l.offset
	for l.ch != '\n' && l.ch != eof {
		l.next()
	}
	l.emit(token.COMMENT, start, l.src[startOff:l.offset])
}

var (
	dateRE     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	timeRE     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?`)
	offsetRE   = regexp.MustCompile(`^(Z|z|[+-]\d{2}:\d{2})`)
	intDecRE   = regexp.MustCompile(`^[+-]?(0|[1-9](_?\d)*)$`)
	intHexRE   = regexp.MustCompile(`^0x[0-9A-Fa-f](_?[0-9A-Fa-f])*$`)
	intOctRE   = regexp.MustCompile(`^0o[0-7](_?[0-7])*$`)
	intBinRE   = regexp.MustCompile(`^0b[01](_?[01])*$`)
	intLeadingZeroRE = regexp.MustCompile(`^[+-]?0\d`)
	floatRE    = regexp.MustCompile(`^[+-]?(0|[1-9](_?\d)*)(\.\d(_?\d)*)?([eE][+-]?\d(_?\d)*)?$`)
	floatNeedsFracOrExp = regexp.MustCompile(`\.|[eE]`)
)

// isPrefixedInt reports whether lit is a 0x/0o/0b-prefixed integer literal.
// TOML never allows a sign on these (unlike decimal literals).
func isPrefixedInt(lit string) bool {
	return intHexRE.MatchString(lit) || intOctRE.MatchString(lit) || intBinRE.MatchString(lit)
}

// scanBareOrLiteral handles anything starting with a letter, digit, or
// underscore: bare keys, booleans, inf/nan, numbers, and the four
// date-time shapes. A TOML lexer cannot always tell these apart without
// parser context (e.g. a bare key may itself look like "2021"), so the
// lexer classifies by shape and lets the parser treat any key-shaped
// literal as a usable key regardless of the Kind assigned here.
func (l *Lexer) scanBareOrLiteral(start token.Position) {
	if l.ch >= '0' && l.ch <= '9' && l.tryScanDateTime(start) {
		return
	}

	startOff := l.offset
	if l.ch >= '0' && l.ch <= '9' {
		// A digit run followed by an exponent ("1e10") is a float; the
		// bare-key loop below would otherwise swallow the 'e'.
		for l.ch >= '0' && l.ch <= '9' || l.ch == '_' {
			l.next()
		}
		if (l.ch == 'e' || l.ch == 'E') && l.tryExtendNumber(start, startOff) {
			return
		}
	}
	for isBareKeyChar(l.ch) {
		l.next()
	}
	lit := l.src[startOff:l.offset]

	switch lit {
	case "true", "false":
		l.emit(token.BOOL, start, lit)
		return
	case "inf", "nan":
		l.emit(token.FLOAT, start, lit)
		return
	}

	if isPrefixedInt(lit) {
		l.emit(token.INT, start, lit)
		return
	}

	if l.ch == '.' || l.ch == 'e' || l.ch == 'E' {
		if l.tryExtendNumber(start, startOff) {
			return
		}
	}

	if intDecRE.MatchString(lit) || intLeadingZeroRE.MatchString(lit) && strings.Trim(lit, "0123456789_") == "" {
		if intLeadingZeroRE.MatchString(lit) {
			l.error(start, errors.LeadingZero, "leading zero in integer literal")
		}
		l.emit(token.INT, start, lit)
		return
	}

	l.emit(token.IDENT, start, lit)
}

// tryExtendNumber is called when a bare run of digits is immediately
// followed by '.' or an exponent letter, meaning it is actually the
// integer part of a float.
func (l *Lexer) tryExtendNumber(start token.Position, startOff int) bool {
	savedOffset, savedRd, savedCh, savedLine, savedChar := l.offset, l.rdOffset, l.ch, l.line, l.char
	ok := l.consumeFloatTail()
	lit := l.src[startOff:l.offset]
	if ok && floatRE.MatchString(lit) && floatNeedsFracOrExp.MatchString(lit) {
		l.emit(token.FLOAT, start, lit)
		return true
	}
	l.offset, l.rdOffset, l.ch, l.line, l.char = savedOffset, savedRd, savedCh, savedLine, savedChar
	return false
}

// consumeFloatTail consumes an optional ".digits" and an optional
// "[eE][+-]digits" suffix. It reports whether anything was consumed.
func (l *Lexer) consumeFloatTail() bool {
	consumed := false
	if l.ch == '.' && l.peekByte() >= '0' && l.peekByte() <= '9' {
		consumed = true
		l.next()
		for l.ch >= '0' && l.ch <= '9' || l.ch == '_' {
			l.next()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := *l
		l.next()
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		if l.ch >= '0' && l.ch <= '9' {
			consumed = true
			for l.ch >= '0' && l.ch <= '9' || l.ch == '_' {
				l.next()
			}
		} else {
			*l = save
		}
	}
	return consumed
}

// scanSignedNumber handles a leading '+' or '-', which can only start a
// number or a signed inf/nan (bare keys never start with a sign).
func (l *Lexer) scanSignedNumber(start token.Position) {
	startOff := l.offset
	l.next() // consume sign
	if strings.HasPrefix(l.src[l.offset:], "inf") {
		for range "inf" {
			l.next()
		}
		l.emit(token.FLOAT, start, l.src[startOff:l.offset])
		return
	}
	if strings.HasPrefix(l.src[l.offset:], "nan") {
		for range "nan" {
			l.next()
		}
		l.emit(token.FLOAT, start, l.src[startOff:l.offset])
		return
	}
	for l.ch >= '0' && l.ch <= '9' || l.ch == '_' {
		l.next()
	}
	l.consumeFloatTail()
	lit := l.src[startOff:l.offset]
	switch {
	case len(lit) <= 1:
		l.error(start, errors.ExpectedValue, "incomplete numeric literal")
		l.emit(token.ILLEGAL, start, lit)
	case floatRE.MatchString(lit) && floatNeedsFracOrExp.MatchString(lit):
		l.emit(token.FLOAT, start, lit)
	case intDecRE.MatchString(lit) || intLeadingZeroRE.MatchString(lit) && strings.Trim(lit[1:], "0123456789_") == "":
		if intLeadingZeroRE.MatchString(lit) {
			l.error(start, errors.LeadingZero, "leading zero in integer literal")
		}
		l.emit(token.INT, start, lit)
	default:
		l.error(start, errors.ExpectedValue, "malformed numeric literal "+lit)
		l.emit(token.ILLEGAL, start, lit)
	}
}

// tryScanDateTime attempts to recognize one of the four date-time shapes
// starting at the current digit. It only commits (advancing the lexer and
// emitting a token) when the structural shape matches; range validation
// of the individual fields (month 1-12, etc.) is left to the parser's
// scalar construction step (parser.buildDateTime) per spec.md §4.1, §6.
func (l *Lexer) tryScanDateTime(start token.Position) bool {
	rest := l.src[l.offset:]

	if loc := dateRE.FindString(rest); loc != "" {
		afterDate := rest[len(loc):]
		if len(afterDate) > 0 && (afterDate[0] == 'T' || afterDate[0] == 't' || afterDate[0] == ' ') {
			timeAndBeyond := afterDate[1:]
			if tloc := timeRE.FindString(timeAndBeyond); tloc != "" {
				whole := loc + afterDate[:1] + tloc
				remainder := timeAndBeyond[len(tloc):]
				shape := token.DATETIME_LOCAL
				if oloc := offsetRE.FindString(remainder); oloc != "" {
					whole += oloc
					shape = token.DATETIME_OFFSET
				}
				l.advanceBy(len(whole))
				l.emit(shape, start, whole)
				return true
			}
			// "date-only followed by space/T but no valid time" - not a
			// datetime; fall through to treat just the date part.
		}
		// bare local date, e.g. 1979-05-27, only if not immediately
		// followed by more bare-key characters (which would mean this is
		// actually a hyphenated bare key like "1979-05-27x").
		if len(afterDate) == 0 || !isBareKeyChar(rune(afterDate[0])) {
			l.advanceBy(len(loc))
			l.emit(token.DATE_LOCAL, start, loc)
			return true
		}
		return false
	}

	if loc := timeRE.FindString(rest); loc != "" {
		if len(rest) == len(loc) || !isBareKeyChar(rune(rest[len(loc)])) {
			l.advanceBy(len(loc))
			l.emit(token.TIME_LOCAL, start, loc)
			return true
		}
	}

	return false
}

// advanceBy steps the lexer forward n bytes of already-validated ASCII
// content (dates/times are ASCII-only by grammar).
func (l *Lexer) advanceBy(n int) {
	for i := 0; i < n; i++ {
		l.next()
	}
}
