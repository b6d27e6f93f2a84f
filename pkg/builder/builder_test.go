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

package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/csharp-analyzer/pkg/graph"
)

func TestAccepts(t *testing.T) {
	b, err := NewCSharpBuilder(nil)
	require.NoError(t, err)

	assert.True(t, b.Accepts("Program.cs"))
	assert.True(t, b.Accepts("nested/dir/Program.CS"))
	assert.False(t, b.Accepts("Program.go"))
	assert.False(t, b.Accepts("README.md"))
}

func TestNewBuiltinsGraphHandlesAreStable(t *testing.T) {
	g, err := NewBuiltinsGraph()
	require.NoError(t, err)

	sourceSym, ok := g.LookupSymbol(graph.SourceTypeSource)
	require.True(t, ok)
	depSym, ok := g.LookupSymbol(graph.SourceTypeDependency)
	require.True(t, ok)

	assert.Equal(t, graph.Symbol(1), sourceSym)
	assert.Equal(t, graph.Symbol(2), depSym)
}

func TestNewProjectGraphCarriesBuiltins(t *testing.T) {
	g, err := NewProjectGraph()
	require.NoError(t, err)

	_, ok := g.LookupSymbol(graph.SourceTypeSource)
	assert.True(t, ok)
	_, ok = g.LookupSymbol(graph.SourceTypeDependency)
	assert.True(t, ok)
}

func TestBuildEmptyFileProducesOnlyCompUnitAndMarker(t *testing.T) {
	b, err := NewCSharpBuilder(nil)
	require.NoError(t, err)

	g, err := NewProjectGraph()
	require.NoError(t, err)

	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)
	markerNode := soleNodeWithSymbol(t, g, sourceSym)

	file := g.AddFile("Empty.cs", "tag")
	before := g.NodeCount()

	err = b.Build(context.Background(), g, file, []byte(""), Globals{
		FilePath:       "Empty.cs",
		RootPath:       ".",
		SourceTypeNode: markerNode,
	})
	require.NoError(t, err)

	// Exactly one new node: the compilation unit itself.
	assert.Equal(t, before+1, g.NodeCount())
}

func TestBuildExtractsNamespaceClassAndMethod(t *testing.T) {
	b, err := NewCSharpBuilder(nil)
	require.NoError(t, err)

	g, err := NewProjectGraph()
	require.NoError(t, err)
	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)
	markerNode := soleNodeWithSymbol(t, g, sourceSym)

	src := `using System.Configuration;

namespace A.B {
    class X {
        void M() {
            ConfigurationManager.AppSettings;
        }
    }
}
`
	file := g.AddFile("X.cs", "tag")
	err = b.Build(context.Background(), g, file, []byte(src), Globals{
		FilePath:       "X.cs",
		RootPath:       ".",
		SourceTypeNode: markerNode,
	})
	require.NoError(t, err)

	_, ok := g.LookupSymbol("A.B")
	assert.True(t, ok, "namespace symbol A.B should be interned")
	_, ok = g.LookupSymbol("X")
	assert.True(t, ok, "class symbol X should be interned")
	_, ok = g.LookupSymbol("M")
	assert.True(t, ok, "method symbol M should be interned")

	// Member access splits into two separately located single-identifier
	// uses plus one combined receiver.member node.
	_, ok = g.LookupSymbol("ConfigurationManager")
	assert.True(t, ok, "receiver identifier should be interned on its own")
	_, ok = g.LookupSymbol("AppSettings")
	assert.True(t, ok, "member identifier should be interned on its own")
	_, ok = g.LookupSymbol("ConfigurationManager.AppSettings")
	assert.True(t, ok, "combined receiver.member symbol should also be interned")
}

func TestPropertyDeclarationEmitsMethodNameNode(t *testing.T) {
	b, err := NewCSharpBuilder(nil)
	require.NoError(t, err)

	g, err := NewProjectGraph()
	require.NoError(t, err)
	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)
	markerNode := soleNodeWithSymbol(t, g, sourceSym)

	src := `namespace System.Configuration {
    class ConfigurationManager {
        static NameValueCollection AppSettings { get; }
    }
}
`
	file := g.AddFile("ConfigurationManager.cs", "tag")
	err = b.Build(context.Background(), g, file, []byte(src), Globals{
		FilePath:       "ConfigurationManager.cs",
		RootPath:       ".",
		SourceTypeNode: markerNode,
	})
	require.NoError(t, err)

	sym, ok := g.LookupSymbol("AppSettings")
	require.True(t, ok)

	var found bool
	for _, h := range g.AllNodes() {
		n := g.Node(h)
		if n.HasSymbol && n.Symbol == sym && n.HasSourceInfo && n.SourceInfo.Kind == graph.KindMethodName {
			found = true
		}
	}
	assert.True(t, found, "property name should be tagged method_name")
}

func soleNodeWithSymbol(t *testing.T, g *graph.Graph, sym graph.Symbol) graph.NodeHandle {
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
