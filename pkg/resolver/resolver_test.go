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

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseManifestExtractsPackagesAndSmallestFramework(t *testing.T) {
	dir := t.TempDir()
	manifest := writeTemp(t, dir, "paket.dependencies", `source https://www.nuget.org/api/v2

nuget Newtonsoft.Json 12.0.3 copy_local: true restriction: >= net45
nuget System.Configuration.ConfigurationManager 4.7.0 copy_local: true restriction: >= net40
this line has no restriction marker
`)

	entries, smallest, err := parseManifest(manifest)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, manifestEntry{name: "Newtonsoft.Json", version: "12.0.3"}, entries[0])
	assert.Equal(t, manifestEntry{name: "System.Configuration.ConfigurationManager", version: "4.7.0"}, entries[1])
	assert.Equal(t, "net40", smallest)
}

func TestParseManifestSkipsShortLines(t *testing.T) {
	dir := t.TempDir()
	manifest := writeTemp(t, dir, "paket.dependencies", `nuget Foo restriction: >= net45
`)
	entries, _, err := parseManifest(manifest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSelectLibraryDLLsPicksHighestNotNewerAndDLLs(t *testing.T) {
	dir := t.TempDir()
	cache := writeTemp(t, dir, "paket-installmodel.cache", `D: /lib/net20
D: /lib/net40
D: /lib/net45
F: /lib/net20/Old.dll
F: /lib/net40/Foo.dll
F: /lib/net40/Bar.dll
F: /lib/net45/New.dll
`)

	dlls, err := selectLibraryDLLs(cache, "net40")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/lib/net40/Foo.dll", "/lib/net40/Bar.dll"}, dlls)
}

func TestSelectLibraryDLLsErrorsWhenNoCandidateBelowCeiling(t *testing.T) {
	dir := t.TempDir()
	cache := writeTemp(t, dir, "paket-installmodel.cache", `D: /lib/net45
F: /lib/net45/Only.dll
`)

	_, err := selectLibraryDLLs(cache, "net20")
	assert.Error(t, err)
}

func TestResolveReferenceAssembliesFindsNETFrameworkDir(t *testing.T) {
	projectDir := t.TempDir()
	pkgName := "Microsoft.NETFramework.ReferenceAssemblies.net45"
	pkgDir := filepath.Join(projectDir, "packages", pkgName)
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	writeTemp(t, pkgDir, "paket-installmodel.cache", `D: /other/path
D: /build/.NETFramework/v4.5
F: /build/.NETFramework/v4.5/mscorlib.dll
`)

	scriptDir := t.TempDir()
	fakePaket := writeTemp(t, scriptDir, "fake-paket.sh", "#!/bin/sh\nexit 0\n")
	require.NoError(t, os.Chmod(fakePaket, 0o755))

	dir, err := resolveReferenceAssemblies(context.Background(), projectDir, Tools{PackageManager: fakePaket}, "net45")
	require.NoError(t, err)
	assert.Equal(t, "/build/.NETFramework/v4.5", dir)
}

func TestRunToolWrapsNonZeroExit(t *testing.T) {
	scriptDir := t.TempDir()
	failing := writeTemp(t, scriptDir, "fail.sh", "#!/bin/sh\nexit 7\n")
	require.NoError(t, os.Chmod(failing, 0o755))

	err := runTool(context.Background(), failing, scriptDir)
	assert.Error(t, err)
}

func TestRunToolSucceeds(t *testing.T) {
	scriptDir := t.TempDir()
	ok := writeTemp(t, scriptDir, "ok.sh", "#!/bin/sh\nexit 0\n")
	require.NoError(t, os.Chmod(ok, 0o755))

	assert.NoError(t, runTool(context.Background(), ok, scriptDir))
}

func TestRunToolMissingExecutable(t *testing.T) {
	err := runTool(context.Background(), "", t.TempDir())
	assert.Error(t, err)
}

func TestDecompileOneRecordsErrorOnMissingCache(t *testing.T) {
	dep := Dependency{Name: "Ghost", PackageDir: filepath.Join(t.TempDir(), "missing")}
	decompileOne(context.Background(), &dep, Tools{}, "/refs", "net45", nil)
	assert.NotEmpty(t, dep.ResolveError)
	assert.Empty(t, dep.DecompiledDirs)
}
