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

package evaluator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testinghelpers "github.com/kraklabs/csharp-analyzer/internal/testing"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
	"github.com/kraklabs/csharp-analyzer/pkg/pattern"
)

// fixture builds a small two-file project: a decompiled dependency
// exposing System.Configuration.ConfigurationManager.AppSettings, and a
// source file that imports the namespace and references both the class
// and the member on it.
func fixture(t *testing.T) *graph.Graph {
	t.Helper()
	return testinghelpers.BuildGraphFixture(t,
		[]testinghelpers.SourceFile{{
			Path: "X.cs",
			Contents: `using System.Configuration;

class X {
    void M() {
        ConfigurationManager.AppSettings["k"];
    }
}
`,
		}},
		[]testinghelpers.SourceFile{{
			Path: "deps/System.Configuration/ConfigurationManager.cs",
			Contents: `namespace System.Configuration {
    class ConfigurationManager {
        static NameValueCollection AppSettings { get; }
    }
}
`,
		}},
	)
}

func TestEvaluateLiteralPatternYieldsOneIncidentAtLeaf(t *testing.T) {
	g := fixture(t)
	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)

	p, err := pattern.Compile("System.Configuration.ConfigurationManager.AppSettings")
	require.NoError(t, err)

	incidents, err := Evaluate(g, sourceSym, p, KindAll, true)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Contains(t, incidents[0].FileURI, "X.cs")
	assert.Equal(t, "AppSettings", incidents[0].Variables["matchedSymbol"])
}

func TestEvaluateWildcardPatternYieldsBothTokens(t *testing.T) {
	g := fixture(t)
	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)

	p, err := pattern.Compile("System.Configuration.*")
	require.NoError(t, err)

	incidents, err := Evaluate(g, sourceSym, p, KindAll, true)
	require.NoError(t, err)
	assert.Len(t, incidents, 2)
}

func TestEvaluateSourceOnlyExcludesDependencyFile(t *testing.T) {
	g := fixture(t)
	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)

	p, err := pattern.Compile("*.*")
	require.NoError(t, err)

	incidents, err := Evaluate(g, sourceSym, p, KindAll, true)
	require.NoError(t, err)
	for _, inc := range incidents {
		assert.NotContains(t, inc.FileURI, "ConfigurationManager.cs")
	}
}

func TestEvaluateFullModeSeesDependencyFileToo(t *testing.T) {
	g := fixture(t)
	sourceSym, _ := g.LookupSymbol(graph.SourceTypeSource)

	p, err := pattern.Compile("System.Configuration.*")
	require.NoError(t, err)

	incidents, err := Evaluate(g, sourceSym, p, KindAll, false)
	require.NoError(t, err)

	var sawDependency bool
	for _, inc := range incidents {
		if strings.Contains(inc.FileURI, "ConfigurationManager.cs") {
			sawDependency = true
		}
	}
	assert.True(t, sawDependency, "full mode should also surface the declaration inside the dependency")
}

func TestFQNOfNestedNamespace(t *testing.T) {
	g := graph.New()
	file := g.AddFile("K.cs", "tag")

	nsSym := g.Intern("A.B.C")
	ns := g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: nsSym, HasSymbol: true, IsDefinition: true, File: file, HasFile: true})
	g.SetSourceInfo(ns, graph.SourceInfo{Kind: graph.KindNamespaceDeclaration})

	classSym := g.Intern("K")
	class := g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: classSym, HasSymbol: true, IsDefinition: true, File: file, HasFile: true})
	g.SetSourceInfo(class, graph.SourceInfo{Kind: graph.KindClassDef})
	require.NoError(t, g.AddEdge(class, ns, graph.FQNPrecedence))

	fqn, ok := fqnOf(g, class)
	require.True(t, ok)
	assert.Equal(t, "A.B.C", fqn.Namespace)
	assert.Equal(t, "K", fqn.Class)
	assert.False(t, fqn.HasMethod)
}

func TestFQNOfAbortsOnForeignKind(t *testing.T) {
	g := graph.New()
	file := g.AddFile("K.cs", "tag")

	scope := g.AddNode(graph.NodeSpec{Kind: graph.KindScope, File: file, HasFile: true})
	g.SetSourceInfo(scope, graph.SourceInfo{Kind: graph.KindCompUnit})

	classSym := g.Intern("K")
	class := g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: classSym, HasSymbol: true, IsDefinition: true, File: file, HasFile: true})
	g.SetSourceInfo(class, graph.SourceInfo{Kind: graph.KindClassDef})
	require.NoError(t, g.AddEdge(class, scope, graph.FQNPrecedence))

	_, ok := fqnOf(g, class)
	assert.False(t, ok)
}

func TestSplitTwoRejectsWrongShapes(t *testing.T) {
	assert.Nil(t, splitTwo("OneToken"))
	assert.Nil(t, splitTwo("a.b.c"))
	assert.Nil(t, splitTwo(".Method"))
	assert.Nil(t, splitTwo("Class."))
	assert.Equal(t, []string{"Class", "Method"}, splitTwo("Class.Method"))
}
