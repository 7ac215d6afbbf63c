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

package mapper_test

import (
	"strings"
	"testing"

	"github.com/tomlkit/tomlkit/ast"
	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/lexer"
	"github.com/tomlkit/tomlkit/mapper"
	"github.com/tomlkit/tomlkit/parser"
	"github.com/tomlkit/tomlkit/token"
)

func mustMap(t *testing.T, src string) (*mapper.MapTable, *errors.Bag) {
	t.Helper()
	bag := errors.NewBag()
	toks := lexer.Lex(src, bag)
	file := parser.Parse(toks, bag)
	root := mapper.Map(file, bag)
	return root, bag
}

func scalarInt(t *testing.T, table *mapper.MapTable, key string) int64 {
	t.Helper()
	entry, ok := table.Get(key)
	if !ok {
		t.Fatalf("no entry for %q", key)
	}
	sn, ok := entry.Node.(*mapper.ScalarNode)
	if !ok {
		t.Fatalf("entry %q is %T, not a scalar", key, entry.Node)
	}
	iv, ok := sn.Value.(*ast.IntVal)
	if !ok || iv.Value == nil {
		t.Fatalf("entry %q is not an int", key)
	}
	return *iv.Value
}

func childTable(t *testing.T, table *mapper.MapTable, key string) *mapper.MapTable {
	t.Helper()
	entry, ok := table.Get(key)
	if !ok {
		t.Fatalf("no entry for %q", key)
	}
	tn, ok := entry.Node.(*mapper.TableNode)
	if !ok {
		t.Fatalf("entry %q is %T, not a table", key, entry.Node)
	}
	return tn.Table
}

// Scenario 1 (spec.md §8): `a.b.c = 1` builds nested implicit super-tables
// with one Dotted repr per segment and no diagnostics.
func TestMapDottedKeyBuildsImplicitTables(t *testing.T) {
	root, bag := mustMap(t, "a.b.c = 1\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}

	b := childTable(t, root, "a")
	c := childTable(t, b, "b")
	if got := scalarInt(t, c, "c"); got != 1 {
		t.Errorf("a.b.c = %d, want 1", got)
	}

	aEntry, _ := root.Get("a")
	if len(aEntry.Reprs) != 1 || aEntry.Reprs[0].Key.Index != 0 {
		t.Errorf("a reprs = %+v, want one repr at index 0", aEntry.Reprs)
	}
}

// Scenario 2 (spec.md §8): repeated dotted-key assignments under the same
// prefix extend the same implicit table and accumulate reprs on each shared
// segment.
func TestMapRepeatedDottedKeyExtendsSameTable(t *testing.T) {
	root, bag := mustMap(t, "a.b.c = 1\na.b.d = 2\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}

	b := childTable(t, childTable(t, root, "a"), "b")
	if got := scalarInt(t, b, "c"); got != 1 {
		t.Errorf("c = %d, want 1", got)
	}
	if got := scalarInt(t, b, "d"); got != 2 {
		t.Errorf("d = %d, want 2", got)
	}

	aEntry, _ := root.Get("a")
	if len(aEntry.Reprs) != 2 {
		t.Fatalf("a reprs = %d, want 2", len(aEntry.Reprs))
	}
	bEntry, _ := childTable(t, root, "a").Get("b")
	if len(bEntry.Reprs) != 2 {
		t.Fatalf("b reprs = %d, want 2", len(bEntry.Reprs))
	}
}

// Scenario 3 (spec.md §8): repeated [[array]] headers collect into an
// ordered Toplevel array, each with its own table.
func TestMapArrayOfTablesCollectsEntries(t *testing.T) {
	root, bag := mustMap(t, "[[currencies]]\nname = 'Euro'\n[[currencies]]\nname = 'Dollar'\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}

	entry, ok := root.Get("currencies")
	if !ok {
		t.Fatal("no 'currencies' entry")
	}
	an, ok := entry.Node.(*mapper.ArrayNode)
	if !ok {
		t.Fatalf("currencies is %T, want *ArrayNode", entry.Node)
	}
	arr, ok := an.Array.(*mapper.ToplevelArray)
	if !ok {
		t.Fatalf("currencies array is %T, want *ToplevelArray", an.Array)
	}
	if len(arr.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(arr.Entries))
	}

	nameOf := func(tbl *mapper.MapTable) string {
		e, ok := tbl.Get("name")
		if !ok {
			t.Fatal("no 'name' entry")
		}
		sn := e.Node.(*mapper.ScalarNode)
		return sn.Value.(*ast.StringVal).Text
	}
	if got := nameOf(arr.Entries[0].Node); got != "Euro" {
		t.Errorf("entry 0 name = %q, want Euro", got)
	}
	if got := nameOf(arr.Entries[1].Node); got != "Dollar" {
		t.Errorf("entry 1 name = %q, want Dollar", got)
	}
}

// Scenario 4 (spec.md §8): a dotted-key assignment cannot extend an
// array-of-tables; it must emit CannotExtendArrayWithDottedKey and leave the
// array untouched.
func TestMapCannotExtendArrayWithDottedKey(t *testing.T) {
	src := "[[a.b]]\n\n[a]\nb.y = 2\n"
	root, bag := mustMap(t, src)

	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.CannotExtendArrayWithDottedKey {
		t.Fatalf("errors = %v, want one CannotExtendArrayWithDottedKey", errs)
	}

	a := childTable(t, root, "a")
	bEntry, ok := a.Get("b")
	if !ok {
		t.Fatal("no 'a.b' entry")
	}
	an, ok := bEntry.Node.(*mapper.ArrayNode)
	if !ok {
		t.Fatalf("a.b is %T, want *ArrayNode", bEntry.Node)
	}
	arr := an.Array.(*mapper.ToplevelArray)
	if len(arr.Entries) != 1 {
		t.Errorf("a.b array has %d entries, want 1 (untouched)", len(arr.Entries))
	}
}

// Scenario 5 (spec.md §8): a later `[a]` header may not extend
// `a.b.c` through a dotted key once `[a.b.c]` already exists; the mapper
// emits CannotExtendTableWithDottedKey and keeps the original table intact.
func TestMapCannotExtendTableWithDottedKey(t *testing.T) {
	src := "[a.b.c]\nz = 9\n[a]\nb.c.t = \"x\"\n"
	root, bag := mustMap(t, src)

	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.CannotExtendTableWithDottedKey {
		t.Fatalf("errors = %v, want one CannotExtendTableWithDottedKey", errs)
	}

	// The diagnostic must point at the first segment of the offending
	// dotted key (the "b" starting "b.c.t" on line 3, zero-based), not at
	// "c" where the [a.b.c] header happens to have sealed the table, and
	// its path must read "a.b", not "a.b.c".
	got := errs[0]
	if !strings.Contains(got.Message, "'a.b'") {
		t.Errorf("message = %q, want it to mention path 'a.b'", got.Message)
	}
	wantSpan := token.Span{
		Start: token.Position{Line: 3, Char: 0},
		End:   token.Position{Line: 3, Char: 1},
	}
	if got.Span != wantSpan {
		t.Errorf("span = %v, want %v (the first \"b\" in \"b.c.t\")", got.Span, wantSpan)
	}

	c := childTable(t, childTable(t, childTable(t, root, "a"), "b"), "c")
	if _, ok := c.Get("t"); ok {
		t.Error("a.b.c.t should not have been inserted")
	}
	if got := scalarInt(t, c, "z"); got != 9 {
		t.Errorf("a.b.c.z = %d, want 9", got)
	}
}

// Scenario 6 (spec.md §8): an inline table is frozen at its closing brace;
// a dotted key inside it obeys the same composition rules as the top level,
// and nothing outside may extend it afterward.
func TestMapInlineTableDottedKeysAndFreezing(t *testing.T) {
	root, bag := mustMap(t, "a = { b.c.d = 1, b.c.e = 2 }\n[a.b.x]\ny = 1\n")

	a := childTable(t, root, "a")
	b := childTable(t, a, "b")
	c := childTable(t, b, "c")
	if got := scalarInt(t, c, "d"); got != 1 {
		t.Errorf("a.b.c.d = %d, want 1", got)
	}
	if got := scalarInt(t, c, "e"); got != 2 {
		t.Errorf("a.b.c.e = %d, want 2", got)
	}

	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.CannotExtendInlineTable {
		t.Fatalf("errors = %v, want one CannotExtendInlineTable", errs)
	}
}

// Assigning the same plain key twice at the same path is rejected with
// exactly one DuplicateKey.
func TestMapDuplicateScalarKeyIsRejected(t *testing.T) {
	_, bag := mustMap(t, "a = 1\na = 2\n")
	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.DuplicateKey {
		t.Fatalf("errors = %v, want one DuplicateKey", errs)
	}
}

// A [table] header may declare a super-table that an earlier header's
// dotted key created implicitly (spec.md §1: "[table] headers may declare
// super-tables of previously seen entries").
func TestMapTableHeaderExtendsImplicitSuperTable(t *testing.T) {
	root, bag := mustMap(t, "[a.b]\nx = 1\n[a]\nc = 2\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}
	a := childTable(t, root, "a")
	if got := scalarInt(t, childTable(t, a, "b"), "x"); got != 1 {
		t.Errorf("a.b.x = %d, want 1", got)
	}
	if got := scalarInt(t, a, "c"); got != 2 {
		t.Errorf("a.c = %d, want 2", got)
	}
}

// Re-declaring the same [table] header twice (not via a dotted-key
// extension) is a duplicate, not a legal super-table extension.
func TestMapDuplicateTableHeaderIsRejected(t *testing.T) {
	_, bag := mustMap(t, "[a]\nx = 1\n[a]\ny = 2\n")
	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.DuplicateKey {
		t.Fatalf("errors = %v, want one DuplicateKey", errs)
	}
}

// Appending to an inline array via a second [[array]] header is rejected.
func TestMapCannotExtendInlineArray(t *testing.T) {
	_, bag := mustMap(t, "a = [1, 2]\n[[a]]\nx = 1\n")
	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.CannotExtendInlineArray {
		t.Fatalf("errors = %v, want one CannotExtendInlineArray", errs)
	}
}

// An inline array cannot be extended with a table via a dotted key either.
func TestMapCannotExtendInlineArrayAsTable(t *testing.T) {
	_, bag := mustMap(t, "a = [1, 2]\na.b = 1\n")
	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Kind != errors.CannotExtendInlineArrayAsTable {
		t.Fatalf("errors = %v, want one CannotExtendInlineArrayAsTable", errs)
	}
}

func TestMapTableWalkVisitsNestedEntries(t *testing.T) {
	root, bag := mustMap(t, "a.b.c = 1\n[[d]]\nx = 2\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Errors())
	}

	seen := map[string]bool{}
	root.Walk(func(path []string, entry *mapper.MapTableEntry) bool {
		key := ""
		for i, p := range path {
			if i > 0 {
				key += "."
			}
			key += p
		}
		seen[key] = true
		return true
	})

	for _, want := range []string{"a", "a.b", "a.b.c", "d", "d.[0].x"} {
		if !seen[want] {
			t.Errorf("Walk did not visit %q; saw %v", want, seen)
		}
	}
}
