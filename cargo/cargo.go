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

// Package cargo is a consumer built on top of tomlkit's semantic map: it
// recognizes the shape of a Cargo.toml manifest (spec.md §6) and folds it
// into a typed Manifest. It is external to the core, the way
// encoding/toml builds a CUE-specific decoder on top of go-toml/v2's
// parser rather than folding CUE's conventions into the parser itself;
// here the field-by-field, kind-switching decode style of
// encoding/toml/decode.go's nextRootNode/decodeExpr is the model, adapted
// from "TOML node -> CUE ast.Expr" to "tomlkit MapNode -> manifest field".
package cargo

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/tomlkit/tomlkit/ast"
	"github.com/tomlkit/tomlkit/errors"
	"github.com/tomlkit/tomlkit/mapper"
	"github.com/tomlkit/tomlkit/token"
)

// Manifest is the recognized subset of a Cargo.toml file (spec.md §6).
// Sections this consumer does not interpret in depth (badges, lints,
// patch, replace, profile) are still recorded, as their raw
// *mapper.MapTableEntry, so a
// caller can inspect them without the consumer having its own model for
// every one of Cargo's manifest dialects.
type Manifest struct {
	Package *PackageInfo

	Dependencies      map[string]Dependency
	DevDependencies   map[string]Dependency
	BuildDependencies map[string]Dependency

	Lib     *mapper.MapTableEntry
	Bin     *mapper.MapTableEntry
	Example *mapper.MapTableEntry
	Test    *mapper.MapTableEntry
	Bench   *mapper.MapTableEntry

	Badges   *mapper.MapTableEntry
	Features *mapper.MapTableEntry
	Lints    *mapper.MapTableEntry
	Patch    *mapper.MapTableEntry
	Replace  *mapper.MapTableEntry
	Profile  *mapper.MapTableEntry
	Workspace *mapper.MapTableEntry

	Target map[string]*mapper.MapTableEntry
}

// PackageInfo is the `[package]` table's recognized fields.
type PackageInfo struct {
	Name    string
	Version string
}

// DependencySource distinguishes how a dependency's source is specified;
// exactly one should be set, enforced by the mutual-exclusion checks in
// parseDependency.
type DependencySource int

const (
	SourceRegistry DependencySource = iota
	SourcePath
	SourceGit
	SourceWorkspace
)

// Dependency is the folded form of any of the three dependency shapes
// spec.md §6 recognizes: a bare version string, an inline table, or a
// `[dependencies.name]` block.
type Dependency struct {
	Source DependencySource

	VersionReq string // shorthand or {version = "..."}, sanity-checked via semver

	Registry string
	Path     string

	Git    string
	Branch string
	Tag    string
	Rev    string

	Package         string // rename: the crate name behind this dependency key
	DefaultFeatures bool
	Features        []string
	Optional        bool
}

// Parse walks root and folds it into a Manifest, recording diagnostics on
// bag for anything that does not fit the recognized shapes. It never
// fails outright, matching the core's tolerant-stage philosophy (spec.md
// §6, §7): a malformed section is skipped, not fatal.
func Parse(root *mapper.MapTable, bag *errors.Bag) *Manifest {
	m := &Manifest{
		Dependencies:      map[string]Dependency{},
		DevDependencies:   map[string]Dependency{},
		BuildDependencies: map[string]Dependency{},
		Target:            map[string]*mapper.MapTableEntry{},
	}

	for name, entry := range root.Entries {
		switch name {
		case "package":
			m.Package = parsePackage(entry, bag)
		case "lib":
			m.Lib = entry
		case "bin":
			m.Bin = entry
		case "example":
			m.Example = entry
		case "test":
			m.Test = entry
		case "bench":
			m.Bench = entry
		case "badges":
			m.Badges = entry
		case "features":
			m.Features = entry
		case "lints":
			m.Lints = entry
		case "patch":
			m.Patch = entry
		case "replace":
			m.Replace = entry
		case "profile":
			m.Profile = entry
		case "workspace":
			m.Workspace = entry
		case "dependencies":
			parseDependencyTable(entry, m.Dependencies, bag)
		case "dev-dependencies":
			parseDependencyTable(entry, m.DevDependencies, bag)
		case "dev_dependencies":
			warnDeprecatedUnderscore(bag, entry, "dev_dependencies", "dev-dependencies")
			if _, ok := root.Get("dev-dependencies"); !ok {
				parseDependencyTable(entry, m.DevDependencies, bag)
			} else {
				bag.Warn(errors.Diagnostic{
					Kind:    errors.RedundantDeprecatedUnderscore,
					Span:    entry.Reprs[0].Span(),
					Message: "both 'dev-dependencies' and 'dev_dependencies' are present; 'dev_dependencies' is ignored",
				})
			}
		case "build-dependencies":
			parseDependencyTable(entry, m.BuildDependencies, bag)
		case "build_dependencies":
			warnDeprecatedUnderscore(bag, entry, "build_dependencies", "build-dependencies")
			if _, ok := root.Get("build-dependencies"); !ok {
				parseDependencyTable(entry, m.BuildDependencies, bag)
			} else {
				bag.Warn(errors.Diagnostic{
					Kind:    errors.RedundantDeprecatedUnderscore,
					Span:    entry.Reprs[0].Span(),
					Message: "both 'build-dependencies' and 'build_dependencies' are present; 'build_dependencies' is ignored",
				})
			}
		case "target":
			parseTarget(entry, m, bag)
		}
	}

	return m
}

func warnDeprecatedUnderscore(bag *errors.Bag, entry *mapper.MapTableEntry, oldKey, newKey string) {
	bag.Warn(errors.Diagnostic{
		Kind:    errors.DeprecatedUnderscore,
		Span:    entry.Reprs[0].Span(),
		Message: "'" + oldKey + "' is deprecated; use '" + newKey + "' instead",
	})
}

func parsePackage(entry *mapper.MapTableEntry, bag *errors.Bag) *PackageInfo {
	table, ok := asTable(entry, bag, "package")
	if !ok {
		return nil
	}
	info := &PackageInfo{}
	if nameEntry, ok := table.Get("name"); ok {
		if s, ok := asString(nameEntry, bag, "package.name"); ok {
			info.Name = s
		}
	}
	if verEntry, ok := table.Get("version"); ok {
		if s, ok := asString(verEntry, bag, "package.version"); ok {
			info.Version = s
			checkSemver(bag, s, verEntry.Reprs[0].Span())
		}
	}
	return info
}

var targetDepKeys = map[string]bool{
	"dependencies":       true,
	"dev-dependencies":   true,
	"build-dependencies": true,
}

func parseTarget(entry *mapper.MapTableEntry, m *Manifest, bag *errors.Bag) {
	table, ok := asTable(entry, bag, "target")
	if !ok {
		return
	}
	for triple, e := range table.Entries {
		m.Target[triple] = e
		tt, ok := asTable(e, bag, "target."+triple)
		if !ok {
			continue
		}
		// A target-cfg table can itself nest further (Cargo's
		// `[target.'cfg(...)'.dependencies]` form), so walk it rather than
		// checking only direct children (SPEC_FULL.md §4: generic
		// mapper.MapTable.Walk in place of an ad hoc recursion here).
		tt.Walk(func(path []string, de *mapper.MapTableEntry) bool {
			if len(path) > 0 && targetDepKeys[path[len(path)-1]] {
				bag.Warn(errors.Diagnostic{
					Kind:    errors.UnhandledTargetDependencies,
					Span:    de.Reprs[0].Span(),
					Message: "target-specific '" + strings.Join(path, ".") + "' for '" + triple + "' is recognized but not merged into the flat dependency maps",
				})
				return false
			}
			return true
		})
	}
}

func parseDependencyTable(entry *mapper.MapTableEntry, out map[string]Dependency, bag *errors.Bag) {
	table, ok := asTable(entry, bag, "dependencies")
	if !ok {
		return
	}
	for name, e := range table.Entries {
		if dep, ok := parseDependency(name, e, bag); ok {
			out[name] = dep
		}
	}
}

func parseDependency(name string, entry *mapper.MapTableEntry, bag *errors.Bag) (Dependency, bool) {
	switch n := entry.Node.(type) {
	case *mapper.ScalarNode:
		sv, ok := n.Value.(*ast.StringVal)
		if !ok {
			wrongDatatype(bag, entry, name)
			return Dependency{}, false
		}
		checkSemver(bag, sv.Text, entry.Reprs[0].Span())
		return Dependency{Source: SourceRegistry, VersionReq: sv.Text, DefaultFeatures: true}, true
	case *mapper.TableNode:
		return parseDependencyTableShape(name, n.Table, entry, bag)
	default:
		wrongDatatype(bag, entry, name)
		return Dependency{}, false
	}
}

func parseDependencyTableShape(name string, table *mapper.MapTable, entry *mapper.MapTableEntry, bag *errors.Bag) (Dependency, bool) {
	dep := Dependency{DefaultFeatures: true}

	_, hasWorkspace := table.Get("workspace")
	_, hasGit := table.Get("git")
	_, hasPath := table.Get("path")
	_, hasRegistry := table.Get("registry")

	if hasWorkspace {
		dep.Source = SourceWorkspace
	} else if hasGit {
		dep.Source = SourceGit
		if hasRegistry {
			bag.Error(errors.Diagnostic{
				Kind:    errors.AmbigousDepSpecGitRegistry,
				Span:    entry.Reprs[0].Span(),
				Message: "dependency '" + name + "' specifies both 'git' and 'registry'",
			})
		}
		if hasPath {
			bag.Error(errors.Diagnostic{
				Kind:    errors.AmbigousDepSpecGitRegistry,
				Span:    entry.Reprs[0].Span(),
				Message: "dependency '" + name + "' specifies both 'git' and 'path'",
			})
		}
	} else if hasPath {
		dep.Source = SourcePath
	} else {
		dep.Source = SourceRegistry
	}

	if gitCount := countPresent(table, "branch", "tag", "rev"); gitCount > 1 {
		bag.Error(errors.Diagnostic{
			Kind:    errors.AmbigousGitSpec,
			Span:    entry.Reprs[0].Span(),
			Message: "dependency '" + name + "' specifies more than one of 'branch', 'tag', 'rev'",
		})
	}

	if v, ok := table.Get("version"); ok {
		if s, ok := asString(v, bag, name+".version"); ok {
			dep.VersionReq = s
			checkSemver(bag, s, v.Reprs[0].Span())
		}
	}
	if v, ok := table.Get("registry"); ok {
		if s, ok := asString(v, bag, name+".registry"); ok {
			dep.Registry = s
		}
	}
	if v, ok := table.Get("path"); ok {
		if s, ok := asString(v, bag, name+".path"); ok {
			dep.Path = s
		}
	}
	if v, ok := table.Get("git"); ok {
		if s, ok := asString(v, bag, name+".git"); ok {
			dep.Git = s
		}
	}
	if v, ok := table.Get("branch"); ok {
		if s, ok := asString(v, bag, name+".branch"); ok {
			dep.Branch = s
		}
	}
	if v, ok := table.Get("tag"); ok {
		if s, ok := asString(v, bag, name+".tag"); ok {
			dep.Tag = s
		}
	}
	if v, ok := table.Get("rev"); ok {
		if s, ok := asString(v, bag, name+".rev"); ok {
			dep.Rev = s
		}
	}
	if v, ok := table.Get("package"); ok {
		if s, ok := asString(v, bag, name+".package"); ok {
			dep.Package = s
		}
	}
	if v, ok := table.Get("optional"); ok {
		if b, ok := asBool(v, bag, name+".optional"); ok {
			dep.Optional = b
		}
	}
	if v, ok := table.Get("features"); ok {
		dep.Features = asStringArray(v, bag, name+".features")
	}

	_, hasDefNew := table.Get("default-features")
	_, hasDefOld := table.Get("default_features")
	if hasDefOld {
		warnDeprecatedUnderscore(bag, entry, name+".default_features", name+".default-features")
	}
	if hasDefNew && hasDefOld {
		bag.Warn(errors.Diagnostic{
			Kind:    errors.RedundantDeprecatedUnderscore,
			Span:    entry.Reprs[0].Span(),
			Message: "dependency '" + name + "' specifies both 'default-features' and 'default_features'",
		})
	}
	defKey := "default-features"
	if hasDefOld && !hasDefNew {
		defKey = "default_features"
	}
	if v, ok := table.Get(defKey); ok {
		if b, ok := asBool(v, bag, name+"."+defKey); ok {
			dep.DefaultFeatures = b
		}
	}

	return dep, true
}

func countPresent(table *mapper.MapTable, keys ...string) int {
	n := 0
	for _, k := range keys {
		if _, ok := table.Get(k); ok {
			n++
		}
	}
	return n
}

func asTable(entry *mapper.MapTableEntry, bag *errors.Bag, path string) (*mapper.MapTable, bool) {
	tn, ok := entry.Node.(*mapper.TableNode)
	if !ok {
		wrongDatatype(bag, entry, path)
		return nil, false
	}
	return tn.Table, true
}

func asString(entry *mapper.MapTableEntry, bag *errors.Bag, path string) (string, bool) {
	sn, ok := entry.Node.(*mapper.ScalarNode)
	if !ok {
		wrongDatatype(bag, entry, path)
		return "", false
	}
	sv, ok := sn.Value.(*ast.StringVal)
	if !ok {
		wrongDatatype(bag, entry, path)
		return "", false
	}
	return sv.Text, true
}

func asBool(entry *mapper.MapTableEntry, bag *errors.Bag, path string) (bool, bool) {
	sn, ok := entry.Node.(*mapper.ScalarNode)
	if !ok {
		wrongDatatype(bag, entry, path)
		return false, false
	}
	bv, ok := sn.Value.(*ast.BoolVal)
	if !ok {
		wrongDatatype(bag, entry, path)
		return false, false
	}
	return bv.Value, true
}

func asStringArray(entry *mapper.MapTableEntry, bag *errors.Bag, path string) []string {
	an, ok := entry.Node.(*mapper.ArrayNode)
	if !ok {
		wrongDatatype(bag, entry, path)
		return nil
	}
	inline, ok := an.Array.(*mapper.InlineArrayMap)
	if !ok {
		wrongDatatype(bag, entry, path)
		return nil
	}
	out := make([]string, 0, len(inline.Entries))
	for _, elem := range inline.Entries {
		sn, ok := elem.Node.(*mapper.ScalarNode)
		if !ok {
			continue
		}
		if sv, ok := sn.Value.(*ast.StringVal); ok {
			out = append(out, sv.Text)
		}
	}
	return out
}

func wrongDatatype(bag *errors.Bag, entry *mapper.MapTableEntry, path string) {
	bag.Error(errors.Diagnostic{
		Kind:    errors.WrongDatatypeInTable,
		Span:    entry.Reprs[0].Span(),
		Message: "'" + path + "' has an unexpected datatype",
	})
}

// checkSemver sanity-checks a version requirement string against
// golang.org/x/mod/semver. Cargo's version-requirement grammar
// (caret/tilde/wildcard ranges) is richer than semver.IsValid alone can
// validate, so this only flags strings that look like a bare, fully
// qualified version (no operator prefix) and fail even a permissive
// semver check; it never blocks a Cargo-only operator like "^1.2" or a
// partial version like "1.2" that semver.IsValid would reject outright.
// Full range-grammar parsing is unspecified by spec.md (SPEC_FULL.md §2).
func checkSemver(bag *errors.Bag, v string, span token.Span) {
	trimmed := strings.TrimLeft(v, "^~=<>! ")
	if trimmed == "" || trimmed != v {
		return
	}
	if strings.Count(trimmed, ".") != 2 {
		return
	}
	if semver.IsValid("v" + trimmed) {
		return
	}
	bag.Warn(errors.Diagnostic{
		Kind:    errors.InvalidSemverSpec,
		Span:    span,
		Message: "version requirement '" + v + "' does not look like a valid semantic version",
	})
}
