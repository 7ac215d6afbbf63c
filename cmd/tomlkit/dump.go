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

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tomlkit/tomlkit/ast"
	"github.com/tomlkit/tomlkit/mapper"
)

// dumpFlatPaths prints every scalar-valued entry as one "a.b.c = value"
// line, using mapper.MapTable.Walk rather than a second hand-rolled recursion
// (SPEC_FULL.md §4); this is the flattened counterpart to dumpTable's
// nested view, handy for grepping a specific path out of a large document.
func dumpFlatPaths(w io.Writer, table *mapper.MapTable) {
	var lines []string
	table.Walk(func(path []string, entry *mapper.MapTableEntry) bool {
		if sn, ok := entry.Node.(*mapper.ScalarNode); ok {
			lines = append(lines, strings.Join(path, ".")+" = "+dumpScalar(sn.Value))
		}
		return true
	})
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// dumpTable prints a MapTable as an indented key/value tree. Keys are
// sorted for stable output; the semantic map itself makes no ordering
// guarantee (spec.md §5).
func dumpTable(w io.Writer, table *mapper.MapTable, depth int) {
	names := make([]string, 0, len(table.Entries))
	for name := range table.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	indent := strings.Repeat("  ", depth)
	for _, name := range names {
		entry := table.Entries[name]
		dumpNode(w, indent, name, entry.Node, depth)
	}
}

func dumpNode(w io.Writer, indent, name string, node mapper.MapNode, depth int) {
	switch n := node.(type) {
	case *mapper.TableNode:
		fmt.Fprintf(w, "%s%s:\n", indent, name)
		dumpTable(w, n.Table, depth+1)
	case *mapper.ArrayNode:
		dumpArray(w, indent, name, n.Array, depth)
	case *mapper.ScalarNode:
		fmt.Fprintf(w, "%s%s = %s\n", indent, name, dumpScalar(n.Value))
	}
}

func dumpArray(w io.Writer, indent, name string, arr mapper.MapArray, depth int) {
	switch a := arr.(type) {
	case *mapper.ToplevelArray:
		fmt.Fprintf(w, "%s%s: [\n", indent, name)
		for i, e := range a.Entries {
			fmt.Fprintf(w, "%s  [%d]:\n", indent, i)
			dumpTable(w, e.Node, depth+2)
		}
		fmt.Fprintf(w, "%s]\n", indent)
	case *mapper.InlineArrayMap:
		fmt.Fprintf(w, "%s%s = [", indent, name)
		for i, e := range a.Entries {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			dumpInline(w, e.Node)
		}
		fmt.Fprintln(w, "]")
	}
}

func dumpInline(w io.Writer, node mapper.MapNode) {
	switch n := node.(type) {
	case *mapper.ScalarNode:
		fmt.Fprint(w, dumpScalar(n.Value))
	case *mapper.TableNode:
		fmt.Fprint(w, "{...}")
		_ = n
	case *mapper.ArrayNode:
		fmt.Fprint(w, "[...]")
		_ = n
	}
}

func dumpScalar(v ast.Value) string {
	switch s := v.(type) {
	case *ast.StringVal:
		return fmt.Sprintf("%q", s.Text)
	case *ast.IntVal:
		if s.Value == nil {
			return "<overflow:" + s.Lit + ">"
		}
		return fmt.Sprintf("%d", *s.Value)
	case *ast.FloatVal:
		return fmt.Sprintf("%v", s.Value)
	case *ast.BoolVal:
		return fmt.Sprintf("%v", s.Value)
	case *ast.DateTimeVal:
		return s.Lit
	case *ast.InvalidVal:
		return "<invalid:" + s.Lit + ">"
	default:
		return "<unknown>"
	}
}
