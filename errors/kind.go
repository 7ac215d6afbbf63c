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

package errors

// Kind names a diagnostic variant. The set is closed and mirrors spec.md
// §6's representative list, itself ported from the Error enum in
// original_source/crates-toml and original_source/crates/toml.
type Kind string

// Lex diagnostics.
const (
	InvalidChar       Kind = "InvalidChar"
	UnterminatedString Kind = "UnterminatedString"
	InvalidEscape     Kind = "InvalidEscape"
	LeadingZero       Kind = "LeadingZero"
	IntOverflow       Kind = "IntOverflow"
	InvalidDateField  Kind = "InvalidDateField"
)

// Parse diagnostics.
const (
	ExpectedValue            Kind = "ExpectedValue"
	ExpectedKey               Kind = "ExpectedKey"
	ExpectedEquals            Kind = "ExpectedEquals"
	ExpectedNewline           Kind = "ExpectedNewline"
	MissingCloseBracket       Kind = "MissingCloseBracket"
	MissingCloseBrace         Kind = "MissingCloseBrace"
	UnexpectedNewlineInInline Kind = "UnexpectedNewlineInInline"
	UnexpectedToken           Kind = "UnexpectedToken"
)

// Map diagnostics.
const (
	DuplicateKey                  Kind = "DuplicateKey"
	CannotExtendInlineTable       Kind = "CannotExtendInlineTable"
	CannotExtendInlineArray       Kind = "CannotExtendInlineArray"
	CannotExtendInlineArrayAsTable Kind = "CannotExtendInlineArrayAsTable"
	CannotExtendArrayWithDottedKey Kind = "CannotExtendArrayWithDottedKey"
	CannotExtendTableWithDottedKey Kind = "CannotExtendTableWithDottedKey"
)

// Cargo-manifest consumer diagnostics (spec.md §6, external to the core but
// declared alongside it so the cargo package need not invent its own Kind
// type).
const (
	AmbigousDepSpecGitRegistry  Kind = "AmbigousDepSpecGitRegistry"
	AmbigousGitSpec             Kind = "AmbigousGitSpec"
	WrongDatatypeInTable        Kind = "WrongDatatypeInTable"
	DeprecatedUnderscore        Kind = "DeprecatedUnderscore"
	RedundantDeprecatedUnderscore Kind = "RedundantDeprecatedUnderscore"
	InvalidSemverSpec           Kind = "InvalidSemverSpec"
	UnhandledTargetDependencies Kind = "UnhandledTargetDependencies"
)

func (k Kind) String() string { return string(k) }
