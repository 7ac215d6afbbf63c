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

package token_test

import (
	"testing"

	"github.com/tomlkit/tomlkit/token"
)

func TestPositionBefore(t *testing.T) {
	cases := []struct {
		a, b token.Position
		want bool
	}{
		{token.Position{Line: 0, Char: 0}, token.Position{Line: 0, Char: 1}, true},
		{token.Position{Line: 0, Char: 5}, token.Position{Line: 1, Char: 0}, true},
		{token.Position{Line: 1, Char: 0}, token.Position{Line: 0, Char: 5}, false},
		{token.Position{Line: 2, Char: 3}, token.Position{Line: 2, Char: 3}, false},
	}
	for _, c := range cases {
		if got := c.a.Before(c.b); got != c.want {
			t.Errorf("%v.Before(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestNoPosNotValid(t *testing.T) {
	if token.NoPos.IsValid() {
		t.Error("NoPos.IsValid() = true, want false")
	}
	if token.NoSpan.IsValid() {
		t.Error("NoSpan.IsValid() = true, want false")
	}
}

func TestCover(t *testing.T) {
	a := token.Span{Start: token.Position{Line: 1, Char: 0}, End: token.Position{Line: 1, Char: 4}}
	b := token.Span{Start: token.Position{Line: 1, Char: 2}, End: token.Position{Line: 3, Char: 1}}

	got := token.Cover(a, b)
	want := token.Span{Start: token.Position{Line: 1, Char: 0}, End: token.Position{Line: 3, Char: 1}}
	if got != want {
		t.Errorf("Cover(%v, %v) = %v, want %v", a, b, got, want)
	}

	// Covering with an invalid span returns the other span unchanged.
	if got := token.Cover(token.NoSpan, a); got != a {
		t.Errorf("Cover(NoSpan, a) = %v, want %v", got, a)
	}
	if got := token.Cover(a, token.NoSpan); got != a {
		t.Errorf("Cover(a, NoSpan) = %v, want %v", got, a)
	}
}

func TestPositionString(t *testing.T) {
	p := token.Position{Line: 2, Char: 5}
	if got, want := p.String(), "3:6"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := token.NoPos.String(), "-"; got != want {
		t.Errorf("NoPos.String() = %q, want %q", got, want)
	}
}
