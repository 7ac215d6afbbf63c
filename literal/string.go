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

// Package literal decodes the raw token text of string literals into their
// value form. It is kept separate from package lexer because a Token's Lit
// must always equal the exact source slice it spans (spec.md §8 "Span
// coverage"); decoding (stripping quotes, resolving escapes, discarding a
// leading multiline newline) only matters once the parser builds an
// ast.StringVal, so it lives here, named and shaped after
// cuelang.org/go/cue/literal's Unquote.
package literal

import (
	"fmt"
	"strings"

	"github.com/tomlkit/tomlkit/token"
)

// Unquote strips the delimiting quotes from lit (the raw token text,
// including quotes) and decodes it according to kind. Basic strings have
// their backslash escapes resolved; literal strings are returned verbatim
// between their quotes. A malformed escape that the lexer already flagged
// is decoded as best-effort (the offending bytes are copied through
// literally), matching the lexer's own recovery behavior.
func Unquote(lit string, kind token.Kind) (string, error) {
	quote, n := quoteRune(kind)
	if len(lit) < 2*n {
		return "", fmt.Errorf("literal.Unquote: literal too short for its kind")
	}
	body := lit[n : len(lit)-n]

	if kind.IsMultilineString() {
		body = strings.TrimPrefix(body, "\n")
	}

	if kind == token.STRING_LIT || kind == token.STRING_LIT_MULTI {
		return body, nil
	}

	return unescapeBasic(body, quote)
}

func quoteRune(kind token.Kind) (rune, int) {
	switch kind {
	case token.STRING:
		return '"', 1
	case token.STRING_MULTI:
		return '"', 3
	case token.STRING_LIT:
		return '\'', 1
	case token.STRING_LIT_MULTI:
		return '\'', 3
	}
	return 0, 0
}

func unescapeBasic(body string, quote rune) (string, error) {
	var b strings.Builder
	b.Grow(len(body))

	i := 0
	for i < len(body) {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		switch body[i] {
		case 'b':
			b.WriteByte('\b')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case '"':
			b.WriteByte('"')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		case '\n':
			// line-ending backslash: swallow newline and leading
			// whitespace on the next line.
			i++
			for i < len(body) && (body[i] == '\n' || body[i] == ' ' || body[i] == '\t') {
				i++
			}
		case 'u', 'U':
			n := 4
			if body[i] == 'U' {
				n = 8
			}
			i++
			if i+n > len(body) {
				b.WriteString(body[i-2:])
				i = len(body)
				break
			}
			var r rune
			ok := true
			for j := 0; j < n; j++ {
				d := hexVal(body[i+j])
				if d < 0 {
					ok = false
					break
				}
				r = r*16 + rune(d)
			}
			if ok {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteString(body[i-2 : i])
			}
		default:
			// Unknown escape: the lexer already emitted InvalidEscape;
			// recover by emitting the literal bytes (spec.md §4.1).
			b.WriteByte('\\')
			b.WriteByte(body[i])
			i++
		}
	}
	return b.String(), nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
