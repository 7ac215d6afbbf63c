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

// Package mapper folds a syntax tree into the semantic map: a tree of
// tables, arrays and scalars that knows, for every entry, every syntactic
// representation that contributed to it (spec.md §4.3). It is the part of
// the pipeline where TOML's composition rules — dotted keys creating
// implicit super-tables, array-of-tables extension, inline-collection
// freezing — actually get enforced.
//
// The algorithm is ported from original_source/crates-toml/src/map.rs: a
// Mapper context threading a '.'-joined path for diagnostics, a
// vacant/occupied insertion at each dotted-key segment, and a
// get_table_to_extend gate guarding what an existing entry may still
// absorb. Rust's borrowed '&'a Table/ArrayEntry/...' enum payload
// (MapTableEntryReprKind) becomes a small interface with one concrete type
// per payload, switched on structurally instead of by tag; Rust's HashMap
// keyed by borrowed &str becomes a Go map keyed by string.
package mapper

import (
	"strconv"

	"github.com/tomlkit/tomlkit/ast"
	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/token"
)

// MapTable is an ordered-by-insertion-irrelevant set of named entries. Key
// iteration order is unspecified, matching spec.md §5's "same semantic map
// up to the order of key iteration" determinism clause.
type MapTable struct {
	Entries map[string]*MapTableEntry
}

func newMapTable() *MapTable {
	return &MapTable{Entries: map[string]*MapTableEntry{}}
}

// Get looks up a direct child by name.
func (t *MapTable) Get(key string) (*MapTableEntry, bool) {
	e, ok := t.Entries[key]
	return e, ok
}

// MapTableEntry is one named slot in a MapTable: the folded node plus
// every syntactic declaration that contributed to it.
type MapTableEntry struct {
	Node  MapNode
	Reprs []MapTableEntryRepr
}

func newEntry(node MapNode, repr MapTableEntryRepr) *MapTableEntry {
	return &MapTableEntry{Node: node, Reprs: []MapTableEntryRepr{repr}}
}

// MapTableEntryRepr names which key segment and which syntactic construct
// produced a given contribution to an entry.
type MapTableEntryRepr struct {
	Key  MapTableKeyRepr
	Kind ReprKind
}

func (r MapTableEntryRepr) Span() token.Span { return r.Kind.Span() }

// ReprKind identifies the syntactic origin of a MapTableEntryRepr: a
// [table] block, a [[array]] block, a top-level assignment, or an
// assignment inside an inline table.
type ReprKind interface {
	Span() token.Span
	reprKind()
}

type TableRepr struct{ Table *ast.Table }

func (r TableRepr) Span() token.Span { return r.Table.Span() }
func (TableRepr) reprKind()          {}

type ArrayEntryRepr struct{ ArrayEntry *ast.ArrayEntry }

func (r ArrayEntryRepr) Span() token.Span { return r.ArrayEntry.Span() }
func (ArrayEntryRepr) reprKind()          {}

type ToplevelAssignmentRepr struct{ Assignment *ast.Assignment }

func (r ToplevelAssignmentRepr) Span() token.Span { return r.Assignment.Span() }
func (ToplevelAssignmentRepr) reprKind()          {}

type InlineTableAssignmentRepr struct{ Assignment *ast.InlineTableAssignment }

func (r InlineTableAssignmentRepr) Span() token.Span { return r.Assignment.Assignment.Span() }
func (InlineTableAssignmentRepr) reprKind()          {}

// isPlainAssignment reports whether a repr kind is a dotted-key
// assignment (as opposed to a [table]/[[array]] header). The distinction
// matters for CannotExtendArrayWithDottedKey/CannotExtendTableWithDottedKey:
// a header may always extend a super-table or the last element of an
// array-of-tables; a bare dotted-key assignment may not (spec.md §4.3.2).
func isPlainAssignment(k ReprKind) bool {
	switch k.(type) {
	case ToplevelAssignmentRepr, InlineTableAssignmentRepr:
		return true
	default:
		return false
	}
}

// MapTableKeyRepr identifies which segment of a (possibly dotted) key is
// responsible for one repr. Idents has length 1 for an undotted key.
type MapTableKeyRepr struct {
	Idents []*ast.Ident
	Index  int
}

func (k MapTableKeyRepr) ReprIdent() *ast.Ident { return k.Idents[k.Index] }
func (k MapTableKeyRepr) IsLastIdent() bool     { return k.Index == len(k.Idents)-1 }

// MapNode is the folded value at one MapTable slot: a table, an array, or
// a scalar.
type MapNode interface {
	mapNode()
}

type TableNode struct{ Table *MapTable }

func (*TableNode) mapNode() {}

type ArrayNode struct{ Array MapArray }

func (*ArrayNode) mapNode() {}

// ScalarNode wraps a scalar ast.Value (StringVal, IntVal, FloatVal,
// BoolVal, DateTimeVal, or InvalidVal) directly rather than re-declaring a
// parallel Scalar enum, since ast.Value already carries exactly these
// variants with their spans.
type ScalarNode struct{ Value ast.Value }

func (*ScalarNode) mapNode() {}

// MapArray is either a toplevel array-of-tables or a frozen inline array.
type MapArray interface {
	mapArray()
}

type ToplevelArray struct {
	Entries []*ToplevelArrayEntry
}

func (*ToplevelArray) mapArray() {}

type ToplevelArrayEntry struct {
	Node *MapTable
	Repr *ast.ArrayEntry
}

type InlineArrayMap struct {
	Repr    *ast.InlineArray
	Entries []InlineArrayMapEntry
}

func (*InlineArrayMap) mapArray() {}

type InlineArrayMapEntry struct {
	Node MapNode
	Repr *ast.InlineArrayValue
}

// mapper threads the current dotted/indexed path through a fold, purely
// for diagnostic messages (spec.md §4.3.4).
type mapper struct {
	bag  *errors.Bag
	path []byte
}

func (m *mapper) mark() int        { return len(m.path) }
func (m *mapper) truncate(mark int) { m.path = m.path[:mark] }

func (m *mapper) pushKey(lit string) {
	if len(m.path) > 0 {
		m.path = append(m.path, '.')
	}
	m.path = append(m.path, lit...)
}

func (m *mapper) pushIndex(i int) {
	m.path = append(m.path, '[')
	m.path = strconv.AppendInt(m.path, int64(i), 10)
	m.path = append(m.path, ']')
}

func (m *mapper) currentPath() string {
	if len(m.path) == 0 {
		return ""
	}
	return string(m.path)
}

func (m *mapper) joinedPath(key string) string {
	if len(m.path) == 0 {
		return key
	}
	return string(m.path) + "." + key
}

func (m *mapper) withKey(key string, f func()) {
	mark := m.mark()
	m.pushKey(key)
	f()
	m.truncate(mark)
}

func (m *mapper) withIndex(i int, f func()) {
	mark := m.mark()
	m.pushIndex(i)
	f()
	m.truncate(mark)
}

// Map folds a parsed file into a root MapTable, recording every
// composition-rule violation on bag (spec.md §4.3 driver loop).
func Map(file *ast.File, bag *errors.Bag) *MapTable {
	m := &mapper{bag: bag}
	root := newMapTable()
	for _, item := range file.Items {
		switch it := item.(type) {
		case *ast.AssignmentItem:
			m.insertNodeAtPath(root, it.Assignment.Key, it.Assignment.Value, nil, ToplevelAssignmentRepr{Assignment: it.Assignment})
		case *ast.TableItem:
			if it.Table.Header.Key == nil {
				continue
			}
			m.insertNodeAtPath(root, *it.Table.Header.Key, nil, it.Table.Assignments, TableRepr{Table: it.Table})
		case *ast.ArrayEntryItem:
			if it.ArrayEntry.Header.Key == nil {
				continue
			}
			m.insertArrayEntryAtPath(root, *it.ArrayEntry.Header.Key, it.ArrayEntry)
		case *ast.CommentItem:
			// comments carry no semantic content
		}
	}
	return root
}

// insertNodeAtPath walks a (possibly dotted) key, creating implicit
// super-tables as needed, and inserts value (a scalar/inline-collection
// Value) or, when assignments is non-nil, a folded table of assignments,
// at the final segment (spec.md §4.3.1).
func (m *mapper) insertNodeAtPath(table *MapTable, key ast.Key, value ast.Value, assignments []*ast.Assignment, kind ReprKind) {
	mark := m.mark()
	defer m.truncate(mark)

	idents := key.Idents()
	if len(idents) == 1 {
		keyRepr := MapTableKeyRepr{Idents: idents, Index: 0}
		repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}
		if err := m.insertNode(table, idents[0].Name, idents[0].Lit, value, assignments, repr); err != nil {
			m.bag.Error(*err)
		}
		return
	}

	last := len(idents) - 1
	current := table
	firstIdent := idents[0]
	firstPath := m.joinedPath(firstIdent.Lit)
	for i := 0; i < last; i++ {
		o := idents[i]
		entry, ok := current.Entries[o.Name]
		if !ok {
			m.createChain(current, idents, i, value, assignments, kind)
			return
		}

		next, err := m.getTableToExtend(entry, o, kind, firstIdent, firstPath)
		if err != nil {
			m.bag.Error(*err)
			return
		}

		keyRepr := MapTableKeyRepr{Idents: idents, Index: i}
		entry.Reprs = append(entry.Reprs, MapTableEntryRepr{Key: keyRepr, Kind: kind})
		current = next
		m.pushKey(o.Lit)
	}

	lastIdent := idents[last]
	keyRepr := MapTableKeyRepr{Idents: idents, Index: last}
	repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}
	if err := m.insertNode(current, lastIdent.Name, lastIdent.Lit, value, assignments, repr); err != nil {
		m.bag.Error(*err)
	}
}

// createChain builds a fresh run of intermediate tables for idents[i:],
// inserting the terminal value at the deepest level, when the first
// missing segment (idents[i]) has no existing entry (spec.md §4.3.1 case
// 1).
func (m *mapper) createChain(table *MapTable, idents []*ast.Ident, i int, value ast.Value, assignments []*ast.Assignment, kind ReprKind) {
	last := len(idents) - 1
	for _, seg := range idents[i+1:] {
		m.pushKey(seg.Lit)
	}

	node := m.mapInsertValue(value, assignments)

	for j := last; j > i; j-- {
		keyRepr := MapTableKeyRepr{Idents: idents, Index: j}
		repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}
		inner := newMapTable()
		inner.Entries[idents[j].Name] = newEntry(node, repr)
		node = &TableNode{Table: inner}
	}

	keyRepr := MapTableKeyRepr{Idents: idents, Index: i}
	repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}
	table.Entries[idents[i].Name] = newEntry(node, repr)
}

// mapInsertValue folds either a scalar/inline Value or a block's
// assignment list into a MapNode.
func (m *mapper) mapInsertValue(value ast.Value, assignments []*ast.Assignment) MapNode {
	if assignments != nil || value == nil {
		inner := newMapTable()
		m.insertTopLevelAssignments(inner, assignments)
		return &TableNode{Table: inner}
	}
	return m.mapValue(value)
}

func (m *mapper) mapValue(value ast.Value) MapNode {
	switch v := value.(type) {
	case *ast.InlineTable:
		inner := newMapTable()
		for i := range v.Assignments {
			a := &v.Assignments[i]
			m.insertNodeAtPath(inner, a.Assignment.Key, a.Assignment.Value, nil, InlineTableAssignmentRepr{Assignment: a})
		}
		return &TableNode{Table: inner}
	case *ast.InlineArray:
		entries := make([]InlineArrayMapEntry, len(v.Values))
		for i := range v.Values {
			elem := &v.Values[i]
			var node MapNode
			m.withIndex(i, func() {
				node = m.mapValue(elem.Value)
			})
			entries[i] = InlineArrayMapEntry{Node: node, Repr: elem}
		}
		return &ArrayNode{Array: &InlineArrayMap{Repr: v, Entries: entries}}
	default:
		// StringVal, IntVal, FloatVal, BoolVal, DateTimeVal, InvalidVal all
		// stand for themselves as scalars.
		return &ScalarNode{Value: value}
	}
}

// insertNode inserts or merges a single, final key segment into table
// (spec.md §4.3.1's vacancy/collision cases).
func (m *mapper) insertNode(table *MapTable, name, lit string, value ast.Value, assignments []*ast.Assignment, repr MapTableEntryRepr) *errors.Diagnostic {
	existing, ok := table.Entries[name]
	if !ok {
		var node MapNode
		m.withKey(name, func() {
			node = m.mapInsertValue(value, assignments)
		})
		table.Entries[name] = newEntry(node, repr)
		return nil
	}

	if assignments == nil && value != nil {
		d := duplicateKeyError(m, repr.Key.ReprIdent(), existing, repr.Key)
		return &d
	}

	existingTable, ok := existing.Node.(*TableNode)
	if !ok {
		d := duplicateKeyError(m, repr.Key.ReprIdent(), existing, repr.Key)
		return &d
	}

	for _, er := range existing.Reprs {
		switch er.Kind.(type) {
		case TableRepr:
			if er.Key.IsLastIdent() {
				d := duplicateKeyError(m, repr.Key.ReprIdent(), existing, repr.Key)
				return &d
			}
			// a super-table declared out of order: allowed
		case ArrayEntryRepr:
			// the table hosts an array-of-tables child: allowed, we are
			// adding sibling keys alongside it
		default:
			d := duplicateKeyError(m, repr.Key.ReprIdent(), existing, repr.Key)
			return &d
		}
	}

	m.withKey(name, func() {
		m.insertTopLevelAssignments(existingTable.Table, assignments)
		existing.Reprs = append(existing.Reprs, repr)
	})
	return nil
}

// getTableToExtend decides whether an already-existing entry may serve as
// the super-table for the next path segment (spec.md §4.3.2). ident is the
// segment being extended through; kind is the repr kind of the
// declaration doing the extending. firstIdent/firstPath identify the head
// of the whole dotted key currently being walked (idents[0] and its
// joined path, captured once before the walk's loop starts): a violation
// discovered while descending through a later segment is still a
// property of the key as a whole — a [table] header sealed some
// descendant of firstIdent, so the diagnostic must point at where the new
// key starts, not at whichever segment happened to equal the sealing
// header's own last index.
func (m *mapper) getTableToExtend(entry *MapTableEntry, ident *ast.Ident, kind ReprKind, firstIdent *ast.Ident, firstPath string) (*MapTable, *errors.Diagnostic) {
	switch n := entry.Node.(type) {
	case *TableNode:
		for _, er := range entry.Reprs {
			switch er.Kind.(type) {
			case ToplevelAssignmentRepr:
				if er.Key.IsLastIdent() {
					d := cannotExtendInlineTableError(m, ident, er)
					return nil, &d
				}
			case InlineTableAssignmentRepr:
				if er.Key.IsLastIdent() {
					d := cannotExtendInlineTableError(m, ident, er)
					return nil, &d
				}
				// an intermediate segment of a dotted key declared within
				// the same inline table literal: extending through it to
				// merge a sibling dotted key (spec.md §4.3.2, "dotted keys
				// inside an inline table obey the same rules as at the top
				// level") is allowed.
			case TableRepr:
				if er.Key.IsLastIdent() && isPlainAssignment(kind) {
					d := cannotExtendTableWithDottedKeyError(firstIdent, firstPath, er)
					return nil, &d
				}
			}
		}
		return n.Table, nil

	case *ArrayNode:
		switch arr := n.Array.(type) {
		case *ToplevelArray:
			if isPlainAssignment(kind) {
				d := cannotExtendArrayWithDottedKeyError(m, ident, entry)
				return nil, &d
			}
			last := arr.Entries[len(arr.Entries)-1]
			return last.Node, nil
		case *InlineArrayMap:
			d := errors.Diagnostic{
				Kind:     errors.CannotExtendInlineArrayAsTable,
				Severity: errors.SeverityError,
				Span:     ident.Sp,
				Message:  "cannot extend inline array '" + m.joinedPath(ident.Lit) + "' with a table",
				Hints:    []errors.Hint{{Span: entry.Reprs[0].Span(), Message: "inline array declared here"}},
			}
			return nil, &d
		}
	}

	d := errors.Diagnostic{
		Kind:     errors.DuplicateKey,
		Severity: errors.SeverityError,
		Span:     ident.Sp,
		Message:  "key '" + m.joinedPath(ident.Lit) + "' already has a scalar value",
		Hints:    []errors.Hint{{Span: entry.Reprs[0].Span(), Message: "original declaration here"}},
	}
	return nil, &d
}

// insertArrayEntryAtPath is insertNodeAtPath's counterpart for
// [[array]] headers (spec.md §4.3.3).
func (m *mapper) insertArrayEntryAtPath(table *MapTable, key ast.Key, entry *ast.ArrayEntry) {
	mark := m.mark()
	defer m.truncate(mark)

	idents := key.Idents()
	kind := ArrayEntryRepr{ArrayEntry: entry}
	if len(idents) == 1 {
		keyRepr := MapTableKeyRepr{Idents: idents, Index: 0}
		if err := m.insertArrayEntry(table, idents[0].Name, keyRepr, entry); err != nil {
			m.bag.Error(*err)
		}
		return
	}

	last := len(idents) - 1
	current := table
	firstIdent := idents[0]
	firstPath := m.joinedPath(firstIdent.Lit)
	for i := 0; i < last; i++ {
		o := idents[i]
		ex, ok := current.Entries[o.Name]
		if !ok {
			m.createArrayChain(current, idents, i, entry)
			return
		}

		next, err := m.getTableToExtend(ex, o, kind, firstIdent, firstPath)
		if err != nil {
			m.bag.Error(*err)
			return
		}

		keyRepr := MapTableKeyRepr{Idents: idents, Index: i}
		ex.Reprs = append(ex.Reprs, MapTableEntryRepr{Key: keyRepr, Kind: kind})
		current = next
		m.pushKey(o.Lit)
	}

	keyRepr := MapTableKeyRepr{Idents: idents, Index: last}
	if err := m.insertArrayEntry(current, idents[last].Name, keyRepr, entry); err != nil {
		m.bag.Error(*err)
	}
}

func (m *mapper) createArrayChain(table *MapTable, idents []*ast.Ident, i int, entry *ast.ArrayEntry) {
	last := len(idents) - 1
	kind := ArrayEntryRepr{ArrayEntry: entry}

	for _, seg := range idents[i+1:] {
		m.pushKey(seg.Lit)
	}
	m.pushIndex(0)

	inner := newMapTable()
	m.insertTopLevelAssignments(inner, entry.Assignments)
	var node MapNode = &ArrayNode{Array: &ToplevelArray{Entries: []*ToplevelArrayEntry{{Node: inner, Repr: entry}}}}

	for j := last; j > i; j-- {
		keyRepr := MapTableKeyRepr{Idents: idents, Index: j}
		repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}
		wrap := newMapTable()
		wrap.Entries[idents[j].Name] = newEntry(node, repr)
		node = &TableNode{Table: wrap}
	}

	keyRepr := MapTableKeyRepr{Idents: idents, Index: i}
	repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}
	table.Entries[idents[i].Name] = newEntry(node, repr)
}

// insertArrayEntry inserts or appends a single array-of-tables element at
// the final key segment (spec.md §4.3.3).
func (m *mapper) insertArrayEntry(table *MapTable, name string, keyRepr MapTableKeyRepr, entry *ast.ArrayEntry) *errors.Diagnostic {
	kind := ArrayEntryRepr{ArrayEntry: entry}
	repr := MapTableEntryRepr{Key: keyRepr, Kind: kind}

	existing, ok := table.Entries[name]
	if !ok {
		var inner *MapTable
		m.withKey(name, func() {
			m.withIndex(0, func() {
				inner = newMapTable()
				m.insertTopLevelAssignments(inner, entry.Assignments)
			})
		})
		node := &ArrayNode{Array: &ToplevelArray{Entries: []*ToplevelArrayEntry{{Node: inner, Repr: entry}}}}
		table.Entries[name] = newEntry(node, repr)
		return nil
	}

	switch n := existing.Node.(type) {
	case *ArrayNode:
		arr, ok := n.Array.(*ToplevelArray)
		if !ok {
			d := errors.Diagnostic{
				Kind:     errors.CannotExtendInlineArray,
				Severity: errors.SeverityError,
				Span:     keyRepr.ReprIdent().Sp,
				Message:  "cannot append to inline array '" + m.joinedPath(name) + "'",
				Hints:    []errors.Hint{{Span: existing.Reprs[0].Span(), Message: "inline array declared here"}},
			}
			return &d
		}
		idx := len(arr.Entries)
		var inner *MapTable
		m.withKey(name, func() {
			m.withIndex(idx, func() {
				inner = newMapTable()
				m.insertTopLevelAssignments(inner, entry.Assignments)
			})
		})
		arr.Entries = append(arr.Entries, &ToplevelArrayEntry{Node: inner, Repr: entry})
		existing.Reprs = append(existing.Reprs, repr)
		return nil
	default:
		d := duplicateKeyError(m, keyRepr.ReprIdent(), existing, keyRepr)
		return &d
	}
}

func (m *mapper) insertTopLevelAssignments(table *MapTable, assignments []*ast.Assignment) {
	for _, a := range assignments {
		m.insertNodeAtPath(table, a.Key, a.Value, nil, ToplevelAssignmentRepr{Assignment: a})
	}
}

func duplicateKeyError(m *mapper, ident *ast.Ident, existing *MapTableEntry, dup MapTableKeyRepr) errors.Diagnostic {
	path := m.currentPath()
	msg := "duplicate key '" + ident.Lit + "'"
	if path != "" {
		msg = "duplicate key '" + ident.Lit + "' in '" + path + "'"
	}
	return errors.Diagnostic{
		Kind:     errors.DuplicateKey,
		Severity: errors.SeverityError,
		Span:     dup.ReprIdent().Sp,
		Message:  msg,
		Hints:    []errors.Hint{{Span: existing.Reprs[0].Span(), Message: "first declared here"}},
	}
}

func cannotExtendInlineTableError(m *mapper, ident *ast.Ident, orig MapTableEntryRepr) errors.Diagnostic {
	return errors.Diagnostic{
		Kind:     errors.CannotExtendInlineTable,
		Severity: errors.SeverityError,
		Span:     ident.Sp,
		Message:  "cannot extend inline table '" + m.joinedPath(ident.Lit) + "'",
		Hints:    []errors.Hint{{Span: orig.Span(), Message: "inline table declared here"}},
	}
}

// cannotExtendTableWithDottedKeyError builds the diagnostic for a dotted
// key that tries to reach through an already-sealed [table]. ident and
// path identify the head of the offending key (see getTableToExtend),
// not the particular segment whose table turned out to be sealed.
func cannotExtendTableWithDottedKeyError(ident *ast.Ident, path string, orig MapTableEntryRepr) errors.Diagnostic {
	return errors.Diagnostic{
		Kind:     errors.CannotExtendTableWithDottedKey,
		Severity: errors.SeverityError,
		Span:     ident.Sp,
		Message:  "cannot extend table '" + path + "' with a dotted key; use a header instead",
		Hints:    []errors.Hint{{Span: orig.Span(), Message: "table declared here"}},
	}
}

func cannotExtendArrayWithDottedKeyError(m *mapper, ident *ast.Ident, existing *MapTableEntry) errors.Diagnostic {
	return errors.Diagnostic{
		Kind:     errors.CannotExtendArrayWithDottedKey,
		Severity: errors.SeverityError,
		Span:     ident.Sp,
		Message:  "cannot extend array-of-tables '" + m.joinedPath(ident.Lit) + "' with a dotted key; use a header instead",
		Hints:    []errors.Hint{{Span: existing.Reprs[0].Span(), Message: "array-of-tables declared here"}},
	}
}
