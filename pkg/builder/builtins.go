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
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
)

// NewBuiltinsGraph constructs the once-per-language builtins graph: a
// synthetic "<builtins>" file and two reserved pop-symbol nodes, one per
// SourceTypeMarker string, interned in a fixed order so they land on
// symbol handles 1 and 2 of every graph this builtins graph is merged
// into (Graph.Merge interns symbols in source-graph order).
func NewBuiltinsGraph() (*graph.Graph, error) {
	g := graph.New()
	file := g.AddFile(graph.BuiltinsFilePath, "")

	sourceSym := g.Intern(graph.SourceTypeSource)
	depSym := g.Intern(graph.SourceTypeDependency)

	g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sourceSym, HasSymbol: true, File: file, HasFile: true})
	g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: depSym, HasSymbol: true, File: file, HasFile: true})

	return g, nil
}

// NewProjectGraph returns a fresh per-project graph with the builtins
// already merged in, so SourceTypeSource and SourceTypeDependency are
// handles 1 and 2 before any source ingestion begins.
func NewProjectGraph() (*graph.Graph, error) {
	builtins, err := NewBuiltinsGraph()
	if err != nil {
		return nil, err
	}
	g := graph.New()
	g.Merge(builtins)
	return g, nil
}
