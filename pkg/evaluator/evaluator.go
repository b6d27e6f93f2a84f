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

// Package evaluator implements the two-phase pattern-driven graph
// traversal: find starting nodes for a compiled Pattern, build a matcher
// over the symbols reachable from them, then walk every referenced file's
// compilation unit emitting one Incident per matching node.
package evaluator

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
	"github.com/kraklabs/csharp-analyzer/pkg/pattern"
)

// MatcherKind selects which of the two matcher flavors Evaluate builds.
type MatcherKind int

const (
	// KindAll builds a NamespaceMatcher: any class or method declared
	// under a namespace matching the pattern, further narrowed to symbols
	// the pattern's own leaf also matches.
	KindAll MatcherKind = iota
	// KindMethod builds a MethodMatcher: a receiver.method pair whose
	// class and method both appear together in some FQN reachable from a
	// matching definition root.
	KindMethod
)

// Incident is one reference to a matched symbol, located in source.
// Variables always carries "file" and "matchedSymbol" (the literal symbol
// string the traversal matched against), a superset of the wire contract's
// minimum of just "file".
type Incident struct {
	FileURI      string
	LineNumber   int
	CodeLocation graph.Span
	Variables    map[string]string
}

// Evaluate runs the full find-starting-nodes / build-matcher / traverse
// pipeline against g for pattern p. sourceSymbol is the interned
// SourceTypeSource marker; it is only consulted when sourceOnly is true.
func Evaluate(g *graph.Graph, sourceSymbol graph.Symbol, p *pattern.Pattern, kind MatcherKind, sourceOnly bool) ([]Incident, error) {
	fileToCU, referencedFiles, definitionRoots := findStartingNodes(g, p)

	var match func(string) bool
	switch kind {
	case KindAll:
		m, err := buildNamespaceMatcher(g, definitionRoots, p)
		if err != nil {
			return nil, err
		}
		match = m
	case KindMethod:
		m, err := buildMethodMatcher(g, definitionRoots)
		if err != nil {
			return nil, err
		}
		match = m
	default:
		return nil, fmt.Errorf("%w: unknown matcher kind %d", interrors.ErrGraphInconsistent, kind)
	}

	var sourceFiles map[graph.FileHandle]bool
	if sourceOnly {
		sourceFiles = filesCarryingMarker(g, fileToCU, sourceSymbol)
	}

	files := make([]graph.FileHandle, 0, len(referencedFiles))
	for f := range referencedFiles {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	var incidents []Incident
	for _, f := range files {
		cu, ok := fileToCU[f]
		if !ok {
			continue
		}
		if sourceOnly && !sourceFiles[f] {
			continue
		}
		uri, err := fileURI(g.File(f).Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", interrors.ErrGraphInconsistent, err)
		}
		traverseAndEmit(g, cu, uri, match, &incidents)
	}
	return incidents, nil
}

// SortIncidents stably sorts incidents by (file_uri, line_number), the
// determinism rule callers apply after Evaluate returns traversal-ordered
// results.
func SortIncidents(incidents []Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		if incidents[i].FileURI != incidents[j].FileURI {
			return incidents[i].FileURI < incidents[j].FileURI
		}
		return incidents[i].LineNumber < incidents[j].LineNumber
	})
}

// findStartingNodes is phase 1: classify every file-bearing node by syntax
// kind. comp_unit nodes never carry a symbol, so they're recorded before
// the symbol-bearing import/namespace_declaration cases are considered.
func findStartingNodes(g *graph.Graph, p *pattern.Pattern) (map[graph.FileHandle]graph.NodeHandle, map[graph.FileHandle]bool, []graph.NodeHandle) {
	fileToCU := make(map[graph.FileHandle]graph.NodeHandle)
	referencedFiles := make(map[graph.FileHandle]bool)
	var definitionRoots []graph.NodeHandle

	for _, h := range g.AllNodes() {
		n := g.Node(h)
		if !n.HasFile || !n.HasSourceInfo {
			continue
		}
		switch n.SourceInfo.Kind {
		case graph.KindCompUnit:
			fileToCU[n.File] = h
		case graph.KindImport:
			if !n.HasSymbol {
				continue
			}
			if p.MatchesImportPrefix(g.SymbolString(n.Symbol)) {
				referencedFiles[n.File] = true
			}
		case graph.KindNamespaceDeclaration:
			if !n.HasSymbol {
				continue
			}
			if p.MatchesNamespace(g.SymbolString(n.Symbol)) {
				definitionRoots = append(definitionRoots, h)
				referencedFiles[n.File] = true
			}
		}
	}
	return fileToCU, referencedFiles, definitionRoots
}

// buildNamespaceMatcher walks outward (ordinary edges only) from every
// definition root, collecting class_def and method_name symbols. The
// predicate additionally requires the pattern's own leaf part to match,
// so a fully-qualified literal pattern (no trailing wildcard) narrows to
// just the one symbol it names even though the namespace may expose many
// classes and methods; a trailing "*" leaf matches everything, which is
// what lets an all-references query surface every member underneath.
func buildNamespaceMatcher(g *graph.Graph, roots []graph.NodeHandle, p *pattern.Pattern) (func(string) bool, error) {
	classes := make(map[string]bool)
	methods := make(map[string]bool)

	for _, root := range roots {
		if !g.Node(root).HasSourceInfo {
			return nil, fmt.Errorf("%w: definition root missing source info", interrors.ErrGraphInconsistent)
		}
		walkOrdinary(g, root, func(child graph.Node) {
			if !child.HasSymbol || !child.HasSourceInfo {
				return
			}
			sym := g.SymbolString(child.Symbol)
			switch child.SourceInfo.Kind {
			case graph.KindClassDef:
				classes[sym] = true
			case graph.KindMethodName:
				methods[sym] = true
			}
		})
	}

	return func(s string) bool {
		if !p.MatchesLeaf(s) {
			return false
		}
		return classes[s] || methods[s]
	}, nil
}

// buildMethodMatcher walks outward from every definition root, computing
// the FQN of each method_name node it finds and storing its (class,
// method) pair. The predicate splits a candidate symbol on "." and
// requires an exact two-part class.method pair present in that set.
func buildMethodMatcher(g *graph.Graph, roots []graph.NodeHandle) (func(string) bool, error) {
	type pair struct{ class, method string }
	known := make(map[pair]bool)

	for _, root := range roots {
		if !g.Node(root).HasSourceInfo {
			return nil, fmt.Errorf("%w: definition root missing source info", interrors.ErrGraphInconsistent)
		}
		walkOrdinaryHandles(g, root, func(h graph.NodeHandle) {
			n := g.Node(h)
			if !n.HasSymbol || !n.HasSourceInfo || n.SourceInfo.Kind != graph.KindMethodName {
				return
			}
			fqn, ok := fqnOf(g, h)
			if !ok || !fqn.HasMethod {
				return
			}
			known[pair{class: fqn.Class, method: fqn.Method}] = true
		})
	}

	return func(s string) bool {
		parts := splitTwo(s)
		if parts == nil {
			return false
		}
		return known[pair{class: parts[0], method: parts[1]}]
	}, nil
}

func splitTwo(s string) []string {
	idx := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			if idx >= 0 {
				return nil // more than one dot: not a two-part symbol
			}
			idx = i
		}
	}
	if idx <= 0 || idx == len(s)-1 {
		return nil
	}
	return []string{s[:idx], s[idx+1:]}
}

// walkOrdinary visits every node reachable from root by ordinary (non-FQN)
// edges, depth-first, invoking visit on each child node encountered.
func walkOrdinary(g *graph.Graph, root graph.NodeHandle, visit func(graph.Node)) {
	walkOrdinaryHandles(g, root, func(h graph.NodeHandle) {
		visit(g.Node(h))
	})
}

func walkOrdinaryHandles(g *graph.Graph, root graph.NodeHandle, visit func(graph.NodeHandle)) {
	seen := map[graph.NodeHandle]bool{root: true}
	var dfs func(h graph.NodeHandle)
	dfs = func(h graph.NodeHandle) {
		for _, e := range g.OutEdges(h) {
			if e.Precedence == graph.FQNPrecedence {
				continue
			}
			if seen[e.To] {
				continue
			}
			seen[e.To] = true
			visit(e.To)
			dfs(e.To)
		}
	}
	dfs(root)
}

// traverseAndEmit walks cu's ordinary-edge subgraph depth-first, emitting
// one Incident for every visited node whose symbol satisfies match.
func traverseAndEmit(g *graph.Graph, cu graph.NodeHandle, uri string, match func(string) bool, out *[]Incident) {
	walkOrdinaryHandles(g, cu, func(h graph.NodeHandle) {
		n := g.Node(h)
		if !n.HasSymbol || !n.HasSourceInfo {
			return
		}
		sym := g.SymbolString(n.Symbol)
		if !match(sym) {
			return
		}
		*out = append(*out, Incident{
			FileURI:      uri,
			LineNumber:   n.SourceInfo.Span.Start.Line,
			CodeLocation: n.SourceInfo.Span,
			Variables:    map[string]string{"file": uri, "matchedSymbol": sym},
		})
	})
}

// filesCarryingMarker returns the set of files with a node whose symbol is
// sourceSymbol and which has an outgoing edge into that file's own
// compilation unit node — the source-only filter test.
func filesCarryingMarker(g *graph.Graph, fileToCU map[graph.FileHandle]graph.NodeHandle, sourceSymbol graph.Symbol) map[graph.FileHandle]bool {
	out := make(map[graph.FileHandle]bool)
	for _, h := range g.AllNodes() {
		n := g.Node(h)
		if !n.HasFile || !n.HasSymbol || n.Symbol != sourceSymbol {
			continue
		}
		cu, ok := fileToCU[n.File]
		if !ok {
			continue
		}
		for _, e := range g.OutEdges(h) {
			if e.To == cu {
				out[n.File] = true
				break
			}
		}
	}
	return out
}

func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
