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
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
)

// FQN is the fully-qualified-name decomposition of a node reached by
// walking its FQN-parent chain: at most one dotted string per field.
type FQN struct {
	Namespace    string
	Class        string
	Method       string
	HasNamespace bool
	HasClass     bool
	HasMethod    bool
}

// fqnOf walks h's FQN-parent chain (precedence graph.FQNPrecedence edges,
// child to parent) to the root, then assigns names to namespace/class/
// method bottom-up as it unwinds: the outermost ancestor's name is joined
// first, the node's own name last. Any node along the chain whose syntax
// kind isn't one of the three FQN-bearing kinds aborts the walk; the
// second return value is false in that case, matching "abort
// reconstruction and return empty" rather than treating it as fatal to
// the caller.
func fqnOf(g *graph.Graph, h graph.NodeHandle) (FQN, bool) {
	n := g.Node(h)
	if !n.HasSourceInfo || !n.HasSymbol {
		return FQN{}, false
	}

	var out FQN
	if parent, ok := g.FQNParent(h); ok {
		var parentOK bool
		out, parentOK = fqnOf(g, parent)
		if !parentOK {
			return FQN{}, false
		}
	}

	sym := g.SymbolString(n.Symbol)
	switch n.SourceInfo.Kind {
	case graph.KindNamespaceDeclaration:
		out.Namespace = appendDotted(out.Namespace, sym)
		out.HasNamespace = true
	case graph.KindClassDef:
		out.Class = appendDotted(out.Class, sym)
		out.HasClass = true
	case graph.KindMethodName:
		out.Method = appendDotted(out.Method, sym)
		out.HasMethod = true
	default:
		return FQN{}, false
	}
	return out, true
}

func appendDotted(existing, part string) string {
	if existing == "" {
		return part
	}
	return existing + "." + part
}
