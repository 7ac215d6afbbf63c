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

// Package tomlkit is the root façade over the lexer/parser/mapper
// pipeline (spec.md §4.5). It plays the same role cuelang.org/go plays
// over cue/{scanner,parser}: a single entry point that a caller reaches
// for instead of wiring the stages by hand.
package tomlkit

import (
	"github.com/tomlkit/tomlkit/ast"
	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/lexer"
	"github.com/tomlkit/tomlkit/mapper"
	"github.com/tomlkit/tomlkit/parser"
	"github.com/tomlkit/tomlkit/token"
)

// Document bundles every artifact the pipeline produces for one source
// string: the token stream, the syntax tree, the semantic map, and the
// diagnostics accumulated along the way. Unlike the original's borrowed
// views tied to an arena's lifetime (spec.md §4.5, §9), a Document simply
// owns its trees; Go's garbage collector plays the role the arena would
// play in a language without one.
type Document struct {
	Source string
	Tokens []token.Token
	File   *ast.File
	Root   *mapper.MapTable
	Bag    *errors.Bag
}

// Parse runs the full pipeline — lex, parse, map — over source and
// returns the resulting Document. It never fails outright: malformed
// input still yields a best-effort Document plus diagnostics on
// Document.Bag (spec.md §7).
func Parse(source string) *Document {
	bag := errors.NewBag()
	tokens := lexer.Lex(source, bag)
	file := parser.Parse(tokens, bag)
	root := mapper.Map(file, bag)
	bag.Sort()

	return &Document{
		Source: source,
		Tokens: tokens,
		File:   file,
		Root:   root,
		Bag:    bag,
	}
}

// HasErrors reports whether the pipeline produced any error-severity
// diagnostic. A caller that wants strict TOML validation should treat
// this, not a non-nil Document, as its failure signal (spec.md §7).
func (d *Document) HasErrors() bool { return d.Bag.HasErrors() }

// Get looks up a path given as separate segments (Get("a", "b", "c") for
// a.b.c) against the root semantic map, returning the entry at that path if
// every segment before the last resolves to a table.
func (d *Document) Get(path ...string) (*mapper.MapTableEntry, bool) {
	if len(path) == 0 {
		return nil, false
	}
	table := d.Root
	for i, seg := range path {
		entry, ok := table.Get(seg)
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return entry, true
		}
		tn, ok := entry.Node.(*mapper.TableNode)
		if !ok {
			return nil, false
		}
		table = tn.Table
	}
	return nil, false
}
