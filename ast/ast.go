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

// Package ast holds the syntactic tree produced by the parser: a flat list
// of top-level items (assignments, table blocks, array-of-table blocks,
// comments), each carrying nested value trees (inline tables, inline
// arrays, scalars) with every delimiter position preserved (spec.md §3,
// §4.2). Node shapes are modeled on cuelang.org/go/cue/ast, adapted from a
// CUE expression tree to TOML's narrower grammar.
//
// Every node's Span is the convex hull of its children, per spec.md §3.
// Optional positions (Comma, RBrack, RBrace, ...) are the zero token.Span
// only when the source lacked that token; in that case the parser has
// already recorded a recovery diagnostic.
package ast

import "github.com/tomlkit/tomlkit/token"

// Node is implemented by every syntax-tree element.
type Node interface {
	Span() token.Span
}

// Ident is a single key segment, bare or quoted. Lit is the raw source
// text including any quotes; Name is the resolved text used for lookups
// (the content between quotes for a quoted key, or Lit itself for a bare
// key).
type Ident struct {
	Name string
	Lit  string
	Sp   token.Span
}

func (i *Ident) Span() token.Span { return i.Sp }

// DottedIdent is one segment of a dotted key plus the position of the
// trailing '.' that follows it, if the key continues.
type DottedIdent struct {
	Ident    Ident
	DotSpan  token.Span // zero if this was the last segment
	HasDot   bool
}

// Key is either a single Ident or a non-empty dotted list (spec.md §3).
type Key struct {
	// One is set when this is a single, undotted key.
	One *Ident
	// Dotted is set, with len >= 2, when this is a dotted key.
	Dotted []DottedIdent
}

// IsDotted reports whether the key has more than one segment.
func (k Key) IsDotted() bool { return k.One == nil }

// Idents returns every segment of the key, whether dotted or not.
func (k Key) Idents() []*Ident {
	if k.One != nil {
		return []*Ident{k.One}
	}
	out := make([]*Ident, len(k.Dotted))
	for i := range k.Dotted {
		out[i] = &k.Dotted[i].Ident
	}
	return out
}

func (k Key) Span() token.Span {
	if k.One != nil {
		return k.One.Sp
	}
	if len(k.Dotted) == 0 {
		return token.NoSpan
	}
	return token.Cover(k.Dotted[0].Ident.Sp, k.Dotted[len(k.Dotted)-1].Ident.Sp)
}

// Comment is a '#'-to-end-of-line comment, attached by the parser to the
// nearest following top-level item as a leading comment, or to a
// same-line preceding value as a trailing comment (spec.md §4.2). Comments
// on their own lines inside a [table] or [[array]] block are not attached
// to anything.
type Comment struct {
	Text string // text after '#', not including the '#' itself
	Sp   token.Span
}

func (c *Comment) Span() token.Span { return c.Sp }

// Item is a top-level syntactic element: an assignment, a table block, an
// array-of-tables block, or a standalone comment.
type Item interface {
	Node
	itemNode()
}

// AssignmentItem is a top-level `key = value` line.
type AssignmentItem struct {
	Assignment      *Assignment
	LeadingComments []*Comment
}

func (a *AssignmentItem) Span() token.Span { return a.Assignment.Span() }
func (*AssignmentItem) itemNode()          {}

// TableItem is a `[table]` header plus the assignments that follow it,
// until the next header or end of input.
type TableItem struct {
	Table           *Table
	LeadingComments []*Comment
}

func (t *TableItem) Span() token.Span { return t.Table.Span() }
func (*TableItem) itemNode()          {}

// ArrayEntryItem is a `[[array]]` header plus its assignments.
type ArrayEntryItem struct {
	ArrayEntry      *ArrayEntry
	LeadingComments []*Comment
}

func (a *ArrayEntryItem) Span() token.Span { return a.ArrayEntry.Span() }
func (*ArrayEntryItem) itemNode()          {}

// CommentItem is a comment that is not attached to any other item, e.g.
// one on its own line at the very end of a file.
type CommentItem struct {
	Comment *Comment
}

func (c *CommentItem) Span() token.Span { return c.Comment.Span() }
func (*CommentItem) itemNode()          {}

// File is the root of the syntax tree: the ordered list of top-level
// items (spec.md §3, top-level Ast).
type File struct {
	Items []Item
}

// Assignment is `key '=' value`.
type Assignment struct {
	Key    Key
	EqSpan token.Span
	Value  Value
	// TrailingComment is a same-line comment following the value, if any
	// (spec.md §4.2 "trailing same-line comments after a value attach to
	// that value").
	TrailingComment *Comment
	Sp              token.Span
}

func (a *Assignment) Span() token.Span { return a.Sp }

// TableHeader is `'[' key ']'`. Key is nil for the malformed `[]` form; the
// parser has already emitted a diagnostic in that case (spec.md §4.2).
type TableHeader struct {
	LBrackSpan token.Span
	Key        *Key
	RBrackSpan token.Span // zero if missing
	HasRBrack  bool
	Sp         token.Span
}

func (h *TableHeader) Span() token.Span { return h.Sp }

// Table is a `[table]` header and the assignments declared under it.
type Table struct {
	Header      TableHeader
	Assignments []*Assignment
	Sp          token.Span
}

func (t *Table) Span() token.Span { return t.Sp }

// ArrayEntryHeader is `'[[' key ']]'`.
type ArrayEntryHeader struct {
	LDBrackSpan token.Span
	Key         *Key
	RDBrackSpan token.Span
	HasRDBrack  bool
	Sp          token.Span
}

func (h *ArrayEntryHeader) Span() token.Span { return h.Sp }

// ArrayEntry is a `[[array]]` header and the assignments declared under
// this particular element.
type ArrayEntry struct {
	Header      ArrayEntryHeader
	Assignments []*Assignment
	Sp          token.Span
}

func (a *ArrayEntry) Span() token.Span { return a.Sp }
