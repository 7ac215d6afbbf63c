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

package cargo_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/tomlkit/tomlkit/cargo"
	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/lexer"
	"github.com/tomlkit/tomlkit/mapper"
	"github.com/tomlkit/tomlkit/parser"
)

func mustParse(t *testing.T, src string) (*cargo.Manifest, *errors.Bag) {
	t.Helper()
	bag := errors.NewBag()
	toks := lexer.Lex(src, bag)
	file := parser.Parse(toks, bag)
	root := mapper.Map(file, bag)
	m := cargo.Parse(root, bag)
	return m, bag
}

func warningKinds(bag *errors.Bag) []errors.Kind {
	warnings := bag.Warnings()
	kinds := make([]errors.Kind, len(warnings))
	for i, w := range warnings {
		kinds[i] = w.Kind
	}
	return kinds
}

func TestParsePackageInfo(t *testing.T) {
	m, bag := mustParse(t, "[package]\nname = \"tomlkit\"\nversion = \"1.2.3\"\n")
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	qt.Assert(t, qt.IsNotNil(m.Package))
	qt.Assert(t, qt.Equals(m.Package.Name, "tomlkit"))
	qt.Assert(t, qt.Equals(m.Package.Version, "1.2.3"))
}

func TestParseShorthandDependency(t *testing.T) {
	m, bag := mustParse(t, "[dependencies]\nserde = \"1.0\"\n")
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	dep, ok := m.Dependencies["serde"]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(dep.Source, cargo.SourceRegistry))
	qt.Assert(t, qt.Equals(dep.VersionReq, "1.0"))
	qt.Assert(t, qt.IsTrue(dep.DefaultFeatures))
}

func TestParseInlineTableDependency(t *testing.T) {
	src := "[dependencies]\nserde = { version = \"1.0\", features = [\"derive\"], default-features = false }\n"
	m, bag := mustParse(t, src)
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	dep := m.Dependencies["serde"]
	qt.Assert(t, qt.Equals(dep.VersionReq, "1.0"))
	qt.Assert(t, qt.DeepEquals(dep.Features, []string{"derive"}))
	qt.Assert(t, qt.IsFalse(dep.DefaultFeatures))
}

func TestParseDottedDependencyBlock(t *testing.T) {
	src := "[dependencies.serde]\nversion = \"1.0\"\noptional = true\n"
	m, bag := mustParse(t, src)
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	dep := m.Dependencies["serde"]
	qt.Assert(t, qt.Equals(dep.VersionReq, "1.0"))
	qt.Assert(t, qt.IsTrue(dep.Optional))
}

func TestParseGitDependency(t *testing.T) {
	src := "[dependencies]\nserde = { git = \"https://github.com/serde-rs/serde\", branch = \"main\" }\n"
	m, bag := mustParse(t, src)
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	dep := m.Dependencies["serde"]
	qt.Assert(t, qt.Equals(dep.Source, cargo.SourceGit))
	qt.Assert(t, qt.Equals(dep.Branch, "main"))
}

func TestDependencyGitAndRegistryIsAmbiguous(t *testing.T) {
	src := "[dependencies]\nserde = { git = \"https://example.com/serde\", registry = \"custom\" }\n"
	_, bag := mustParse(t, src)
	errs := bag.Errors()
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(errs[0].Kind, errors.AmbigousDepSpecGitRegistry))
}

func TestDependencyGitAndPathIsAmbiguous(t *testing.T) {
	src := "[dependencies]\nserde = { git = \"https://example.com/serde\", path = \"../serde\" }\n"
	_, bag := mustParse(t, src)
	errs := bag.Errors()
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(errs[0].Kind, errors.AmbigousDepSpecGitRegistry))
}

func TestDependencyMultipleGitRefsIsAmbiguous(t *testing.T) {
	src := "[dependencies]\nserde = { git = \"https://example.com/serde\", branch = \"main\", tag = \"v1\" }\n"
	_, bag := mustParse(t, src)
	errs := bag.Errors()
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(errs[0].Kind, errors.AmbigousGitSpec))
}

func TestWorkspaceDependencyIgnoresOtherSourceFields(t *testing.T) {
	src := "[dependencies]\nserde = { workspace = true, path = \"../serde\" }\n"
	m, bag := mustParse(t, src)
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	qt.Assert(t, qt.Equals(m.Dependencies["serde"].Source, cargo.SourceWorkspace))
}

func TestDeprecatedUnderscoreDevDependenciesWarns(t *testing.T) {
	m, bag := mustParse(t, "[dev_dependencies]\nserde = \"1.0\"\n")
	qt.Assert(t, qt.Contains(warningKinds(bag), errors.DeprecatedUnderscore))
	_, ok := m.DevDependencies["serde"]
	qt.Assert(t, qt.IsTrue(ok))
}

func TestRedundantDeprecatedUnderscoreIsIgnored(t *testing.T) {
	src := "[dev-dependencies]\nserde = \"1.0\"\n[dev_dependencies]\nrand = \"0.8\"\n"
	m, bag := mustParse(t, src)
	qt.Assert(t, qt.Contains(warningKinds(bag), errors.RedundantDeprecatedUnderscore))
	_, randOK := m.DevDependencies["rand"]
	qt.Assert(t, qt.IsFalse(randOK))
	_, serdeOK := m.DevDependencies["serde"]
	qt.Assert(t, qt.IsTrue(serdeOK))
}

func TestTargetDependenciesAreRecordedAndWarned(t *testing.T) {
	src := "[target.'cfg(unix)'.dependencies]\nlibc = \"0.2\"\n"
	m, bag := mustParse(t, src)
	_, ok := m.Target["cfg(unix)"]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Contains(warningKinds(bag), errors.UnhandledTargetDependencies))
}

func TestInvalidSemverSpecWarns(t *testing.T) {
	src := "[package]\nname = \"x\"\nversion = \"not.a.version\"\n"
	_, bag := mustParse(t, src)
	qt.Assert(t, qt.Contains(warningKinds(bag), errors.InvalidSemverSpec))
}

func TestCaretVersionDoesNotTriggerSemverWarning(t *testing.T) {
	m, bag := mustParse(t, "[dependencies]\nserde = \"^1.0.0\"\n")
	qt.Assert(t, qt.IsFalse(bag.HasErrors()))
	qt.Assert(t, qt.Not(qt.Contains(warningKinds(bag), errors.InvalidSemverSpec)))
	qt.Assert(t, qt.Equals(m.Dependencies["serde"].VersionReq, "^1.0.0"))
}

func TestWrongDatatypeInDependencyTable(t *testing.T) {
	_, bag := mustParse(t, "[dependencies]\nserde = 7\n")
	errs := bag.Errors()
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(errs[0].Kind, errors.WrongDatatypeInTable))
}
