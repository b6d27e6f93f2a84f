// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package testing provides shared fixture helpers for this module's own
// tests: writing a small C# source tree to disk, building an in-memory
// Graph from it without a Store, or standing up a full Project against a
// temp store. pkg/evaluator, pkg/project, pkg/ingestor, and pkg/store's
// own test files each needed this same "write files, build a graph, tag
// the source/dependency marker node" boilerplate; this package is that
// boilerplate, factored out once, rather than copied per package.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    g := testinghelpers.BuildGraphFixture(t, []testinghelpers.SourceFile{
//	        {Path: "X.cs", Contents: "class X {}"},
//	    }, nil)
//	    // g is ready to Evaluate against.
//	}
//
// # Fixture Helpers
//
// The package provides:
//   - WriteSourceTree: write a SourceFile list to a temp directory
//   - BuildGraphFixture: build a Graph in-memory from source/dependency
//     file sets, skipping Store entirely
//   - SoleNodeWithSymbol: find the node carrying a given builtin marker
//     symbol (SourceTypeSource, SourceTypeDependency)
//   - SetupTestProject: write files, then drive a Project through
//     ValidateLanguage and BuildGraph against a fresh temp store
//   - OpenTestStore: open a fresh bbolt store under a temp file, with
//     cleanup registered
package testing
