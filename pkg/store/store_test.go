// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/csharp-analyzer/pkg/graph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "project.db")
	s, err := Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func oneNodeGraph(t *testing.T, path, symbol string) *graph.Graph {
	t.Helper()
	g := graph.New()
	fh := g.AddFile(path, "tag-"+symbol)
	sym := g.Intern(symbol)
	g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, File: fh, HasFile: true})
	return g
}

func TestPutThenListFiles(t *testing.T) {
	s := openTestStore(t)

	g := oneNodeGraph(t, "src/a.cs", "A")
	require.NoError(t, s.Put("src/a.cs", "tag1", g))

	assert.Equal(t, []string{"src/a.cs"}, s.ListFiles())
	tag, ok := s.Tag("src/a.cs")
	assert.True(t, ok)
	assert.Equal(t, "tag1", tag)
}

func TestPutReplacesPriorEntryAtomically(t *testing.T) {
	s := openTestStore(t)

	g1 := oneNodeGraph(t, "src/a.cs", "A")
	require.NoError(t, s.Put("src/a.cs", "tag1", g1))

	g2 := oneNodeGraph(t, "src/a.cs", "B")
	require.NoError(t, s.Put("src/a.cs", "tag2", g2))

	assert.Equal(t, []string{"src/a.cs"}, s.ListFiles())
	tag, _ := s.Tag("src/a.cs")
	assert.Equal(t, "tag2", tag)
}

func TestLoadForPathFiltersByPrefix(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("src/a/one.cs", "t1", oneNodeGraph(t, "src/a/one.cs", "One")))
	require.NoError(t, s.Put("src/b/two.cs", "t2", oneNodeGraph(t, "src/b/two.cs", "Two")))

	into := graph.New()
	require.NoError(t, s.LoadForPath("src/a", into))

	_, ok := into.LookupSymbol("One")
	assert.True(t, ok)
	_, ok = into.LookupSymbol("Two")
	assert.False(t, ok)
}

func TestLoadForPathDeduplicatesAcrossRepeatedLoads(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("src/a.cs", "t1", oneNodeGraph(t, "src/a.cs", "A")))

	into := graph.New()
	require.NoError(t, s.LoadForPath("src", into))
	firstCount := into.NodeCount()
	require.NoError(t, s.LoadForPath("src", into))

	assert.Equal(t, firstCount, into.NodeCount())
}

func TestReopenRestoresMergedGraph(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "project.db")
	s, err := Open(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put("src/a.cs", "t1", oneNodeGraph(t, "src/a.cs", "A")))
	require.NoError(t, s.Close())

	reopened, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"src/a.cs"}, reopened.ListFiles())
	_, ok := reopened.Graph().LookupSymbol("A")
	assert.True(t, ok)
}

func TestPartialsGroupsByDirectoryPrefix(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("src/a/one.cs", "t1", oneNodeGraph(t, "src/a/one.cs", "One")))

	partials := s.Partials()
	assert.Contains(t, partials, "src")
	assert.Contains(t, partials, "src/a")
	assert.Contains(t, partials, "src/a/one.cs")
	assert.Equal(t, []string{"src/a/one.cs"}, partials["src"])
}

func TestGraphAndPartials(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("src/a.cs", "t1", oneNodeGraph(t, "src/a.cs", "A")))

	g, partials, paths := s.GraphAndPartials()
	assert.NotNil(t, g)
	assert.NotEmpty(t, partials)
	assert.Equal(t, []string{"src/a.cs"}, paths)
}
