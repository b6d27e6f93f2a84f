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

package ingestor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/csharp-analyzer/pkg/builder"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
	"github.com/kraklabs/csharp-analyzer/pkg/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestSourceLoadsAcceptedFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A.cs", "class A {}\n")
	writeFile(t, root, "README.md", "not csharp\n")
	writeFile(t, root, "sub/B.cs", "class B {}\n")

	b, err := builder.NewCSharpBuilder(nil)
	require.NoError(t, err)

	g, err := builder.NewProjectGraph()
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	result, err := IngestSource(context.Background(), g, st, b, root)
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesLoaded)
	assert.Len(t, result.FileToTag, 2)
	assert.Contains(t, result.FileToTag, filepath.Join(root, "A.cs"))
	assert.Contains(t, result.FileToTag, filepath.Join(root, "sub", "B.cs"))
	assert.NotContains(t, result.FileToTag, filepath.Join(root, "README.md"))

	for path := range result.FileToTag {
		assert.True(t, g.HasFile(path))
		tag, ok := st.Tag(path)
		assert.True(t, ok)
		assert.Equal(t, result.FileToTag[path], tag)
	}
}

func TestIngestSourceSkipsFilesAlreadyInGraph(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A.cs", "class A {}\n")

	b, err := builder.NewCSharpBuilder(nil)
	require.NoError(t, err)
	g, err := builder.NewProjectGraph()
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	first, err := IngestSource(context.Background(), g, st, b, root)
	require.NoError(t, err)
	assert.Equal(t, 1, first.FilesLoaded)

	second, err := IngestSource(context.Background(), g, st, b, root)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesLoaded)
}

func TestIngestDependenciesCoversEveryDirectory(t *testing.T) {
	depA := t.TempDir()
	depB := t.TempDir()
	writeFile(t, depA, "X.cs", "namespace N { class X {} }\n")
	writeFile(t, depB, "Y.cs", "namespace N { class Y {} }\n")

	b, err := builder.NewCSharpBuilder(nil)
	require.NoError(t, err)
	g, err := builder.NewProjectGraph()
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	result, err := IngestDependencies(context.Background(), g, st, b, []string{depA, depB}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesLoaded)

	depSym, ok := g.LookupSymbol(graph.SourceTypeDependency)
	require.True(t, ok)
	var markerCount int
	for _, h := range g.AllNodes() {
		n := g.Node(h)
		if n.HasSymbol && n.Symbol == depSym {
			markerCount++
		}
	}
	// One marker node per ingested file, plus the one from the builtins graph.
	assert.Equal(t, 3, markerCount)
}

func TestIngestDependenciesEmptyListIsNoop(t *testing.T) {
	b, err := builder.NewCSharpBuilder(nil)
	require.NoError(t, err)
	g, err := builder.NewProjectGraph()
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	result, err := IngestDependencies(context.Background(), g, st, b, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesLoaded)
}
