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

package ast

import "github.com/tomlkit/tomlkit/token"

// Value is implemented by every value-position node: a scalar, an inline
// array, or an inline table (spec.md §3).
type Value interface {
	Node
	valueNode()
}

// StringVal is a string literal of any of the four flavors. Text is the
// slice between the quotes, after escape processing; Lit is the raw
// source text including quotes.
type StringVal struct {
	Text    string
	Lit     string
	LitSpan token.Span
	Kind    token.Kind // STRING, STRING_LIT, STRING_MULTI, or STRING_LIT_MULTI
}

func (s *StringVal) Span() token.Span { return s.LitSpan }
func (*StringVal) valueNode()         {}

// IntVal is an integer literal. Value is the parsed value; it is nil if
// the literal overflowed (an IntOverflow diagnostic was already emitted).
type IntVal struct {
	Value   *int64
	Lit     string
	LitSpan token.Span
}

func (i *IntVal) Span() token.Span { return i.LitSpan }
func (*IntVal) valueNode()         {}

// FloatVal is a float literal, including inf/nan.
type FloatVal struct {
	Value   float64
	Lit     string
	LitSpan token.Span
}

func (f *FloatVal) Span() token.Span { return f.LitSpan }
func (*FloatVal) valueNode()         {}

// BoolVal is `true` or `false`.
type BoolVal struct {
	Value   bool
	LitSpan token.Span
}

func (b *BoolVal) Span() token.Span { return b.LitSpan }
func (*BoolVal) valueNode()         {}

// DateTimeShape distinguishes the four date-time literal shapes of
// spec.md §6.
type DateTimeShape int

const (
	OffsetDateTime DateTimeShape = iota
	LocalDateTime
	LocalDate
	LocalTime
)

// DateTimeVal is one of the four TOML date-time shapes. Date and Time are
// populated according to Shape; fields not present in the literal are
// zero. NanosecondTruncated records whether source precision beyond
// nanoseconds was silently dropped (spec.md §6, §9).
type DateTimeVal struct {
	Shape   DateTimeShape
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Nanosec int
	// OffsetMinutes is the UTC offset in minutes for OffsetDateTime; zero
	// (and OffsetKnown true) represents 'Z'.
	OffsetMinutes int
	OffsetKnown   bool

	NanosecondTruncated bool

	Lit     string
	LitSpan token.Span
}

func (d *DateTimeVal) Span() token.Span { return d.LitSpan }
func (*DateTimeVal) valueNode()         {}

// InvalidVal is a token sequence that started in a value position but did
// not form a recognized value. It carries the attempted literal and span
// so downstream offsets stay usable (spec.md §4.2).
type InvalidVal struct {
	Lit     string
	LitSpan token.Span
}

func (i *InvalidVal) Span() token.Span { return i.LitSpan }
func (*InvalidVal) valueNode()         {}

// InlineArrayValue is one element of an inline array, plus the position of
// its trailing comma, if any.
type InlineArrayValue struct {
	Value     Value
	CommaSpan token.Span
	HasComma  bool
}

// InlineArray is `'[' (value (',' value)* ','?)? ']'`. Frozen at RBrack
// (spec.md Glossary: "Inline collection").
type InlineArray struct {
	LBrackSpan token.Span
	Values     []InlineArrayValue
	RBrackSpan token.Span // zero if HasRBrack is false
	HasRBrack  bool
	Sp         token.Span
}

func (a *InlineArray) Span() token.Span { return a.Sp }
func (*InlineArray) valueNode()         {}

// InlineTableAssignment is one `key = value` pair inside an inline table,
// plus its trailing comma position, if any.
type InlineTableAssignment struct {
	Assignment Assignment
	CommaSpan  token.Span
	HasComma   bool
}

// InlineTable is `'{' (assignment (',' assignment)* ','?)? '}'`. Frozen at
// RBrace.
type InlineTable struct {
	LBraceSpan  token.Span
	Assignments []InlineTableAssignment
	RBraceSpan  token.Span
	HasRBrace   bool
	Sp          token.Span
}

func (t *InlineTable) Span() token.Span { return t.Sp }
func (*InlineTable) valueNode()         {}
