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

package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/csharp-analyzer/pkg/evaluator"
	"github.com/kraklabs/csharp-analyzer/pkg/pattern"
	"github.com/kraklabs/csharp-analyzer/pkg/resolver"
)

// writeSourceProject writes a small project with its own file declaring
// System.Configuration.ConfigurationManager.AppSettings alongside a file
// that references it, so a full-mode query has a definition root to match
// against without needing a real decompiled dependency tree.
func writeSourceProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	decl := `namespace System.Configuration {
    class ConfigurationManager {
        static NameValueCollection AppSettings { get; }
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ConfigurationManager.cs"), []byte(decl), 0o644))

	src := `using System.Configuration;

namespace Acme {
    class X {
        void M() {
            ConfigurationManager.AppSettings["k"];
        }
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "X.cs"), []byte(src), 0o644))
	return dir
}

func newTestProject(t *testing.T, location string) *Project {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "store.db")
	return New(Config{Location: location, StorePath: storePath, Mode: ModeFull}, nil)
}

func TestValidateLanguageTransitionsToLangReady(t *testing.T) {
	p := newTestProject(t, t.TempDir())
	assert.Equal(t, Uninitialized, p.State())
	require.NoError(t, p.ValidateLanguage())
	assert.Equal(t, LangReady, p.State())
}

func TestBuildGraphIngestsSourceWhenStoreEmpty(t *testing.T) {
	dir := writeSourceProject(t)
	p := newTestProject(t, dir)
	require.NoError(t, p.ValidateLanguage())
	require.NoError(t, p.BuildGraph(context.Background()))
	assert.Equal(t, GraphReady, p.State())
	assert.Contains(t, p.st.ListFiles(), filepath.ToSlash(filepath.Join(dir, "X.cs")))
}

func TestBuildGraphSecondRunLoadsFromStoreNotDisk(t *testing.T) {
	dir := writeSourceProject(t)
	storePath := filepath.Join(t.TempDir(), "store.db")

	first := New(Config{Location: dir, StorePath: storePath, Mode: ModeFull}, nil)
	require.NoError(t, first.ValidateLanguage())
	require.NoError(t, first.BuildGraph(context.Background()))
	require.NoError(t, first.Close())

	missingDir := filepath.Join(t.TempDir(), "does-not-exist")
	second := New(Config{Location: missingDir, StorePath: storePath, Mode: ModeFull}, nil)
	require.NoError(t, second.ValidateLanguage())
	require.NoError(t, second.BuildGraph(context.Background()))
	assert.Equal(t, GraphReady, second.State())
	assert.True(t, second.g.HasFile(filepath.Join(dir, "X.cs")))
}

func TestQueryYieldsIncidentForLiteralPattern(t *testing.T) {
	dir := writeSourceProject(t)
	p := newTestProject(t, dir)
	require.NoError(t, p.ValidateLanguage())
	require.NoError(t, p.BuildGraph(context.Background()))

	pat, err := pattern.Compile("System.Configuration.ConfigurationManager.AppSettings")
	require.NoError(t, err)

	incidents, err := p.Query(pat, evaluator.KindAll)
	require.NoError(t, err)
	require.NotEmpty(t, incidents)
	var sawUsage bool
	for _, inc := range incidents {
		assert.Equal(t, "AppSettings", inc.Variables["matchedSymbol"])
		if strings.Contains(inc.FileURI, "X.cs") {
			sawUsage = true
		}
	}
	assert.True(t, sawUsage, "expected an incident at the usage site in X.cs")
}

func TestHasNamespace(t *testing.T) {
	dir := writeSourceProject(t)
	p := newTestProject(t, dir)
	require.NoError(t, p.ValidateLanguage())
	require.NoError(t, p.BuildGraph(context.Background()))

	assert.True(t, p.HasNamespace("Acme"))
	assert.False(t, p.HasNamespace("NoSuchNamespace"))
}

func TestDependenciesDagIsFlat(t *testing.T) {
	p := newTestProject(t, t.TempDir())
	p.deps = []resolver.Dependency{
		{Name: "Newtonsoft.Json", Version: "12.0.3", DecompiledDirs: []string{"/tmp/x"}},
		{Name: "Ghost.Pkg", Version: "1.0.0", ResolveError: "decompile failed"},
	}

	dag := p.DependenciesDag()
	require.Len(t, dag, 2)
	assert.Equal(t, "Newtonsoft.Json", dag[0].Name)
	assert.True(t, dag[0].Resolved)
	assert.Nil(t, dag[0].Children)
	assert.False(t, dag[1].Resolved)
}

func TestResolveFailsClosedWithoutManifestOrTools(t *testing.T) {
	dir := t.TempDir() // no paket.dependencies, no configured tools
	p := newTestProject(t, dir)
	require.NoError(t, p.ValidateLanguage())
	require.NoError(t, p.BuildGraph(context.Background()))

	err := p.Resolve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Failed, p.State())
}

func TestParseAnalysisMode(t *testing.T) {
	m, err := ParseAnalysisMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseAnalysisMode("source-only")
	require.NoError(t, err)
	assert.Equal(t, ModeSourceOnly, m)

	_, err = ParseAnalysisMode("bogus")
	assert.Error(t, err)
}
