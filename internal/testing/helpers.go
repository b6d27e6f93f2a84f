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

package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/csharp-analyzer/pkg/builder"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
	"github.com/kraklabs/csharp-analyzer/pkg/project"
	"github.com/kraklabs/csharp-analyzer/pkg/store"
)

// SourceFile is one file to seed into a test fixture, keyed by its path
// relative to the fixture root.
type SourceFile struct {
	Path     string
	Contents string
}

// WriteSourceTree writes files under dir, creating any intermediate
// directories a file's Path implies. Returns dir for chaining.
func WriteSourceTree(t *testing.T, dir string, files []SourceFile) string {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(dir, f.Path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f.Contents), 0o644))
	}
	return dir
}

// BuildGraphFixture builds an in-memory Graph from source and dependency
// file sets, without touching a Store or disk. This is the shape
// pkg/evaluator's own tests use for a from-scratch fixture; shared here so
// pkg/ingestor, pkg/project, and pkg/evaluator don't each reimplement the
// "new builder, new graph, tag each file with the right marker node"
// boilerplate. Each file gets its own marker node inside that file, as the
// Ingestor creates one.
func BuildGraphFixture(t *testing.T, sourceFiles, depFiles []SourceFile) *graph.Graph {
	t.Helper()

	b, err := builder.NewCSharpBuilder(nil)
	require.NoError(t, err)

	g, err := builder.NewProjectGraph()
	require.NoError(t, err)

	sourceSym, ok := g.LookupSymbol(graph.SourceTypeSource)
	require.True(t, ok)
	depSym, ok := g.LookupSymbol(graph.SourceTypeDependency)
	require.True(t, ok)

	for _, f := range depFiles {
		fh := g.AddFile(f.Path, "dep-tag")
		depMarker := g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: depSym, HasSymbol: true, File: fh, HasFile: true})
		require.NoError(t, b.Build(context.Background(), g, fh, []byte(f.Contents), builder.Globals{
			FilePath:       f.Path,
			RootPath:       ".",
			SourceTypeNode: depMarker,
		}))
	}

	for _, f := range sourceFiles {
		fh := g.AddFile(f.Path, "src-tag")
		sourceMarker := g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sourceSym, HasSymbol: true, File: fh, HasFile: true})
		require.NoError(t, b.Build(context.Background(), g, fh, []byte(f.Contents), builder.Globals{
			FilePath:       f.Path,
			RootPath:       ".",
			SourceTypeNode: sourceMarker,
		}))
	}

	return g
}

// SoleNodeWithSymbol returns the first node in g carrying sym, failing the
// test if none exists. Builtin marker symbols (SourceTypeSource,
// SourceTypeDependency) are each attached to exactly one node by
// builder.NewProjectGraph, so "first" and "sole" coincide for those callers.
func SoleNodeWithSymbol(t *testing.T, g *graph.Graph, sym graph.Symbol) graph.NodeHandle {
	t.Helper()
	for _, h := range g.AllNodes() {
		n := g.Node(h)
		if n.HasSymbol && n.Symbol == sym {
			return h
		}
	}
	t.Fatalf("no node found with symbol %d", sym)
	return 0
}

// SetupTestProject writes sourceFiles under a temp directory, runs a
// Project through ValidateLanguage and BuildGraph against a fresh temp
// store, and registers cleanup to close the store. Resolve and
// LoadDependenciesToStore are left to the caller, since most graph-only
// tests have no dependency manifest to resolve.
func SetupTestProject(t *testing.T, sourceFiles []SourceFile, mode project.AnalysisMode) *project.Project {
	t.Helper()

	location := WriteSourceTree(t, t.TempDir(), sourceFiles)
	storePath := filepath.Join(t.TempDir(), "store.db")

	p := project.New(project.Config{
		Location:  location,
		StorePath: storePath,
		Mode:      mode,
	}, nil)

	require.NoError(t, p.ValidateLanguage())
	require.NoError(t, p.BuildGraph(context.Background()))
	t.Cleanup(func() { _ = p.Close() })

	return p
}

// OpenTestStore opens a fresh bbolt store under a temp file and registers
// cleanup to close it.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "store.db")
	st, err := store.Open(storePath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}
