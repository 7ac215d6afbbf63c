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

// Package errors is the diagnostic bus threaded through the lexer, parser
// and mapper (spec.md §4.4). It accumulates, rather than throws: every
// stage recovers locally and keeps feeding the bus so that later stages
// still see enough structure to continue.
//
// Diagnostics carry spans, not rendered source excerpts; rendering (ANSI
// color, gutters, carets) is an external concern per spec.md §1 and is not
// implemented here.
package errors

import (
	"sort"

	"github.com/google/uuid"

	"github.com/tomlkit/tomlkit/token"
)

// Severity classifies a Diagnostic. Hints are not a separate severity; they
// ride along on an Error as part of its payload (spec.md §7).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Hint is a secondary span attached to a Diagnostic, e.g. "original
// declaration here" on a DuplicateKey error. Hints are part of the error
// payload, not separate diagnostics (spec.md §7).
type Hint struct {
	Span    token.Span
	Message string
}

// Diagnostic is a single accumulated error, warning, or info note.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     token.Span
	Message  string
	Hints    []Hint
}

func (d Diagnostic) Error() string {
	return d.Severity.String() + ": " + d.Message + " (" + d.Span.String() + ")"
}

// Bag is the mutable diagnostic sink passed explicitly through the
// pipeline (spec.md §4.4, §9 "pass a mutable sink explicitly rather than
// using process-wide state"). It is not safe for concurrent use; spec.md
// §5 requires none.
type Bag struct {
	// RunID correlates every diagnostic emitted during one pipeline run,
	// so a host that re-parses on every keystroke (e.g. an editor) can
	// group a batch of diagnostics without re-deriving it from a
	// timestamp. See SPEC_FULL.md §2.
	RunID uuid.UUID

	diags []Diagnostic
}

// NewBag returns an empty Bag with a fresh RunID.
func NewBag() *Bag {
	return &Bag{RunID: uuid.New()}
}

// Error records an error-severity diagnostic.
func (b *Bag) Error(d Diagnostic) {
	d.Severity = SeverityError
	b.diags = append(b.diags, d)
}

// Warn records a warning-severity diagnostic.
func (b *Bag) Warn(d Diagnostic) {
	d.Severity = SeverityWarning
	b.diags = append(b.diags, d)
}

// Info records an info-severity diagnostic.
func (b *Bag) Info(d Diagnostic) {
	d.Severity = SeverityInfo
	b.diags = append(b.diags, d)
}

// All returns every diagnostic recorded so far, in emission order.
func (b *Bag) All() []Diagnostic { return b.diags }

// Errors returns only the error-severity diagnostics.
func (b *Bag) Errors() []Diagnostic { return b.filter(SeverityError) }

// Warnings returns only the warning-severity diagnostics.
func (b *Bag) Warnings() []Diagnostic { return b.filter(SeverityWarning) }

// Infos returns only the info-severity diagnostics.
func (b *Bag) Infos() []Diagnostic { return b.filter(SeverityInfo) }

func (b *Bag) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded. A
// consumer pipeline may use this as its acceptance criterion; the core
// itself has no notion of "failed" (spec.md §7).
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by start position for deterministic output
// (spec.md §4.4 sort_diagnostics, §8 Determinism).
func (b *Bag) Sort() {
	sort.SliceStable(b.diags, func(i, j int) bool {
		return b.diags[i].Span.Start.Before(b.diags[j].Span.Start)
	})
}

// Dedup removes diagnostics that are equal in kind, span and message to one
// already recorded, so a single malformed construct does not surface as a
// cascade of near-identical errors. Grounded on
// original_source/crates/common/src/diagnostic.rs' grouping and
// cue/errors.list.RemoveMultiples; see SPEC_FULL.md §4.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.diags))
	out := b.diags[:0]
	for _, d := range b.diags {
		key := d.Kind.String() + "|" + d.Span.String() + "|" + d.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.diags = out
}

// Err folds the bag into a single error, or nil if there are no
// error-severity diagnostics. Mirrors cue/errors.list.Err.
func (b *Bag) Err() error {
	if !b.HasErrors() {
		return nil
	}
	return list(b.Errors())
}

type list []Diagnostic

func (l list) Error() string {
	if len(l) == 0 {
		return ""
	}
	msg := l[0].Error()
	if len(l) > 1 {
		msg += " (and other errors)"
	}
	return msg
}
