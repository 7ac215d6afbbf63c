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

package lexer

import "github.com/tomlkit/tomlkit/errors"
import "github.com/tomlkit/tomlkit/token"

// scanBasicString scans a `"..."` or `"""..."""` literal. The emitted
// Token.Lit is always the raw source slice including the quotes, per the
// span-coverage invariant of spec.md §8; escape decoding happens later in
// the literal package.
func (l *Lexer) scanBasicString(start token.Position) {
	startOff := l.offset
	multiline := false
	l.next() // consume first '"'
	if l.ch == '"' && l.peekByte() == '"' {
		multiline = true
		l.next()
		l.next()
		// a single immediate leading newline is discarded from the
		// *value*, not from the token span (spec.md §4.1); the lexer
		// only needs to keep scanning correctly past it here.
		if l.ch == '\n' {
			l.next()
		}
	}

	kind := token.STRING
	if multiline {
		kind = token.STRING_MULTI
	}

	for {
		switch l.ch {
		case eof:
			l.error(start, errors.UnterminatedString, "unterminated string")
			l.emitRawSpan(kind, start, startOff)
			return
		case '\\':
			l.next()
			if multiline && l.ch == '\n' {
				// line-ending backslash: swallow the newline and all
				// leading whitespace on the following line(s).
				for l.ch == '\n' || l.ch == ' ' || l.ch == '\t' {
					l.next()
				}
				continue
			}
			l.scanEscape(multiline)
		case '"':
			if !multiline {
				l.next()
				l.emitRawSpan(kind, start, startOff)
				return
			}
			if l.peekByte() == '"' {
				// look ahead for the closing triple-quote; up to two
				// extra quotes may belong to the string content itself.
				save := *l
				l.next()
				if l.ch == '"' && l.peekByte() == '"' {
					l.next()
					l.next()
					l.emitRawSpan(kind, start, startOff)
					return
				}
				*l = save
				l.next()
			} else {
				l.next()
			}
		case '\n':
			l.next()
		default:
			l.next()
		}
	}
}

// scanLiteralString scans a `'...'` or `'''...'''` literal. Literal
// strings have no escape processing at all.
func (l *Lexer) scanLiteralString(start token.Position) {
	startOff := l.offset
	multiline := false
	l.next() // consume first '\''
	if l.ch == '\'' && l.peekByte() == '\'' {
		multiline = true
		l.next()
		l.next()
		if l.ch == '\n' {
			l.next()
		}
	}

	kind := token.STRING_LIT
	if multiline {
		kind = token.STRING_LIT_MULTI
	}

	for {
		switch l.ch {
		case eof:
			l.error(start, errors.UnterminatedString, "unterminated string")
			l.emitRawSpan(kind, start, startOff)
			return
		case '\'':
			if !multiline {
				l.next()
				l.emitRawSpan(kind, start, startOff)
				return
			}
			if l.peekByte() == '\'' {
				save := *l
				l.next()
				if l.ch == '\'' && l.peekByte() == '\'' {
					l.next()
					l.next()
					l.emitRawSpan(kind, start, startOff)
					return
				}
				*l = save
				l.next()
			} else {
				l.next()
			}
		case '\n':
			l.next()
		default:
			l.next()
		}
	}
}

// scanEscape validates one escape sequence after a backslash has already
// been consumed. Unknown escapes are errors but recovery continues: the
// scanner still advances past whatever characters were there (spec.md
// §4.1).
func (l *Lexer) scanEscape(multiline bool) {
	switch l.ch {
	case 'b', 't', 'n', 'f', 'r', '"', '\\':
		l.next()
	case 'u':
		l.next()
		l.expectHexDigits(4)
	case 'U':
		l.next()
		l.expectHexDigits(8)
	default:
		pos := l.pos()
		l.error(pos, errors.InvalidEscape, "invalid escape sequence")
		if l.ch != eof {
			l.next()
		}
	}
}

func (l *Lexer) expectHexDigits(n int) {
	for i := 0; i < n; i++ {
		if !isHexDigit(l.ch) {
			l.error(l.pos(), errors.InvalidEscape, "short unicode escape sequence")
			return
		}
		l.next()
	}
}

func isHexDigit(ch rune) bool {
	return ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

func (l *Lexer) emitRawSpan(kind token.Kind, start token.Position, startOff int) {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Span: token.Span{Start: start, End: l.pos()},
		Lit:  l.src[startOff:l.offset],
	})
}
