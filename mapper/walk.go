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

package mapper

// Walk visits every entry reachable from t in depth-first order, calling fn
// with the dotted path (from t, not from the document root) leading to each
// entry. Table entries are descended into after fn is called for them; fn
// returning false skips descending into that entry's children, mirroring
// cuelang.org/go/cue/ast.Walk's before/after shape collapsed to a single
// callback since MapTable entries have no separate "after" action to take.
//
// Both cargo (walking an arbitrary nested table like [target] without a
// purpose-built accessor for every triple) and cmd/tomlkit's dump output
// use Walk instead of each hand-rolling their own recursion (SPEC_FULL.md
// §4).
func (t *MapTable) Walk(fn func(path []string, entry *MapTableEntry) bool) {
	t.walk(nil, fn)
}

func (t *MapTable) walk(path []string, fn func(path []string, entry *MapTableEntry) bool) {
	for name, entry := range t.Entries {
		p := make([]string, len(path)+1)
		copy(p, path)
		p[len(path)] = name

		if !fn(p, entry) {
			continue
		}
		switch n := entry.Node.(type) {
		case *TableNode:
			n.Table.walk(p, fn)
		case *ArrayNode:
			if arr, ok := n.Array.(*ToplevelArray); ok {
				for i, e := range arr.Entries {
					idx := make([]string, len(p)+1)
					copy(idx, p)
					idx[len(p)] = indexSegment(i)
					e.Node.walk(idx, fn)
				}
			}
		}
	}
}

func indexSegment(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "[" + string(digits[i]) + "]"
	}
	// Decimal formatting without strconv to keep this file dependency-free;
	// array-of-tables with >= 10 elements are rare enough that a tiny
	// manual loop is clearer than importing strconv for one call site.
	var buf []byte
	n := i
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "[" + string(buf) + "]"
}
