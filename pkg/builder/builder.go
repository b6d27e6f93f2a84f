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

// Package builder turns C# source text into symbol-graph nodes and edges.
// It wraps a tree-sitter parse tree the way a tag-query engine would: each
// AST node of interest becomes a graph node carrying a syntax kind and,
// where applicable, an interned symbol, stitched together by FQN-parent
// edges (precedence graph.FQNPrecedence) and ordinary scope edges.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
)

// Globals are the per-file inputs the builder needs beyond the raw source
// bytes: the file's own pathname, the project root (for display purposes
// only — the graph itself stores paths verbatim), and the handle of the
// reserved SourceTypeMarker node this file should be tagged with.
type Globals struct {
	FilePath       string
	RootPath       string
	SourceTypeNode graph.NodeHandle
}

// Builder appends the nodes and edges derived from one file's source to an
// existing graph. Implementations must be safe to call from one goroutine
// at a time against a given *graph.Graph; callers serialize Builder calls
// against the shared project graph (see pkg/project).
type Builder interface {
	// Accepts reports whether path belongs to this builder's language,
	// purely from its name (extension), without reading its bytes.
	Accepts(path string) bool

	// Build parses source and appends graph nodes/edges for file. ctx is
	// checked for cancellation before parsing begins.
	Build(ctx context.Context, g *graph.Graph, file graph.FileHandle, source []byte, globals Globals) error
}

// CSharpBuilder is the Builder for C# source, backed by the tree-sitter C#
// grammar.
type CSharpBuilder struct {
	parser *sitter.Parser
	logger *slog.Logger
}

// NewCSharpBuilder constructs a CSharpBuilder. Returns ErrTsgParse if the
// grammar fails to load — it never does for a statically linked grammar,
// but the contract treats grammar setup as fallible.
func NewCSharpBuilder(logger *slog.Logger) (*CSharpBuilder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lang := csharp.GetLanguage()
	if lang == nil {
		return nil, fmt.Errorf("%w: csharp grammar unavailable", interrors.ErrTsgParse)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &CSharpBuilder{parser: parser, logger: logger}, nil
}

// Accepts reports whether path has a C# source extension.
func (b *CSharpBuilder) Accepts(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cs")
}

// buildCtx carries the per-file state threaded through the recursive AST
// walk: the graph being appended to, the source bytes (for text slicing),
// and the running FQN-parent stack (namespace/class/method handles a
// nested node should link to).
type buildCtx struct {
	g      *graph.Graph
	source []byte
	file   graph.FileHandle

	compUnit graph.NodeHandle
	// innermost denotes the nearest enclosing namespace/class/method node, to
	// which the next nested declaration's FQN-parent edge points. The
	// zero value means "no enclosing declaration" (top level).
	innermost graph.NodeHandle
	hasInner  bool
	// container is the nearest node ordinary (scope) edges should hang off
	// of when a new structural/name node is created.
	container graph.NodeHandle
}

// Build parses source under the C# grammar and appends one compilation-unit
// node, one import node per using directive, one namespace/class/method
// node per declaration (FQN-linked to its enclosing declaration), one name
// node per identifier/member-access reference, and the file's
// SourceTypeMarker edge — all per the contract in pkg/graph.
func (b *CSharpBuilder) Build(ctx context.Context, g *graph.Graph, file graph.FileHandle, source []byte, globals Globals) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: build %s", interrors.ErrCancelled, globals.FilePath)
	default:
	}

	tree, err := b.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", interrors.ErrGraphBuild, globals.FilePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()

	compUnit := g.AddNode(graph.NodeSpec{Kind: graph.KindScope, File: file, HasFile: true})
	g.SetSourceInfo(compUnit, spanOf(root, graph.KindCompUnit))

	if err := g.AddEdge(globals.SourceTypeNode, compUnit, 0); err != nil {
		return fmt.Errorf("%w: marker edge: %v", interrors.ErrGraphBuild, err)
	}

	bc := &buildCtx{g: g, source: source, file: file, compUnit: compUnit, container: compUnit}

	if err := b.walk(root, bc); err != nil {
		return fmt.Errorf("%w: %s: %v", interrors.ErrGraphBuild, globals.FilePath, err)
	}
	return nil
}

func (b *CSharpBuilder) text(n *sitter.Node, bc *buildCtx) string {
	return string(bc.source[n.StartByte():n.EndByte()])
}

func spanOf(n *sitter.Node, kind graph.SyntaxKind) graph.SourceInfo {
	return graph.SourceInfo{
		Kind: kind,
		Span: graph.Span{
			Start: graph.Position{Line: int(n.StartPoint().Row) + 1, Character: int(n.StartPoint().Column)},
			End:   graph.Position{Line: int(n.EndPoint().Row) + 1, Character: int(n.EndPoint().Column)},
		},
	}
}

// walk recurses through the parse tree, emitting graph nodes for the
// constructs the symbol graph cares about and descending into children
// with an updated buildCtx when a new FQN or scope level is entered.
func (b *CSharpBuilder) walk(n *sitter.Node, bc *buildCtx) error {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "using_directive":
		return b.emitImport(n, bc)
	case "namespace_declaration":
		return b.emitNamespace(n, bc)
	case "class_declaration", "struct_declaration", "interface_declaration":
		return b.emitClass(n, bc)
	case "method_declaration":
		return b.emitMethod(n, bc)
	case "property_declaration":
		return b.emitProperty(n, bc)
	case "member_access_expression":
		return b.emitMemberAccess(n, bc)
	case "identifier":
		return b.emitName(n, bc)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if err := b.walk(n.Child(i), bc); err != nil {
			return err
		}
	}
	return nil
}

// childBuildCtx returns a copy of bc with innermost/container updated to
// node, for recursing into a newly-opened namespace/class/method body.
func childBuildCtx(bc *buildCtx, node graph.NodeHandle) *buildCtx {
	child := *bc
	child.innermost = node
	child.hasInner = true
	child.container = node
	return &child
}

func (b *CSharpBuilder) emitImport(n *sitter.Node, bc *buildCtx) error {
	nameNode := n.NamedChild(0)
	if nameNode == nil {
		return nil
	}
	symbolText := b.text(nameNode, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(n, graph.KindImport))
	return bc.g.AddEdge(bc.container, node, 0)
}

func (b *CSharpBuilder) emitNamespace(n *sitter.Node, bc *buildCtx) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		// Anonymous/malformed namespace node: still descend into its body
		// under the current context rather than failing the whole file.
		for i := 0; i < int(n.ChildCount()); i++ {
			if err := b.walk(n.Child(i), bc); err != nil {
				return err
			}
		}
		return nil
	}

	symbolText := b.text(nameNode, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, IsDefinition: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(n, graph.KindNamespaceDeclaration))

	if err := bc.g.AddEdge(bc.container, node, 0); err != nil {
		return err
	}
	if bc.hasInner {
		if err := bc.g.AddEdge(node, bc.innermost, graph.FQNPrecedence); err != nil {
			return err
		}
	}

	child := childBuildCtx(bc, node)
	bodyNode := n.ChildByFieldName("body")
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			if err := b.walk(bodyNode.Child(i), child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *CSharpBuilder) emitClass(n *sitter.Node, bc *buildCtx) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	symbolText := b.text(nameNode, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, IsDefinition: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(n, graph.KindClassDef))

	if err := bc.g.AddEdge(bc.container, node, 0); err != nil {
		return err
	}
	if bc.hasInner {
		if err := bc.g.AddEdge(node, bc.innermost, graph.FQNPrecedence); err != nil {
			return err
		}
	}

	child := childBuildCtx(bc, node)
	bodyNode := n.ChildByFieldName("body")
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			if err := b.walk(bodyNode.Child(i), child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *CSharpBuilder) emitMethod(n *sitter.Node, bc *buildCtx) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	symbolText := b.text(nameNode, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, IsDefinition: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(nameNode, graph.KindMethodName))

	if err := bc.g.AddEdge(bc.container, node, 0); err != nil {
		return err
	}
	if bc.hasInner {
		if err := bc.g.AddEdge(node, bc.innermost, graph.FQNPrecedence); err != nil {
			return err
		}
	}

	child := childBuildCtx(bc, node)
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode != nil {
		for i := 0; i < int(paramsNode.ChildCount()); i++ {
			if err := b.emitArgument(paramsNode.Child(i), child); err != nil {
				return err
			}
		}
	}
	bodyNode := n.ChildByFieldName("body")
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			if err := b.walk(bodyNode.Child(i), child); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitProperty handles property declarations the same way as methods: a
// C# property is as much a named, callable member of its class as a method
// is, and the decompiled .NET base class library leans on static
// properties (ConfigurationManager.AppSettings is one) for exactly the
// kind of member references this system is asked to find. Accessor bodies
// are walked like a method body so references inside a getter/setter still
// surface.
func (b *CSharpBuilder) emitProperty(n *sitter.Node, bc *buildCtx) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	symbolText := b.text(nameNode, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, IsDefinition: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(nameNode, graph.KindMethodName))

	if err := bc.g.AddEdge(bc.container, node, 0); err != nil {
		return err
	}
	if bc.hasInner {
		if err := bc.g.AddEdge(node, bc.innermost, graph.FQNPrecedence); err != nil {
			return err
		}
	}

	// Property accessor bodies vary in shape (block accessors, expression
	// bodies, auto-properties with none at all); walk every child after
	// the name rather than pinning to one field, so whichever form is
	// present still gets descended into.
	child := childBuildCtx(bc, node)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nameNode {
			continue
		}
		if err := b.walk(c, child); err != nil {
			return err
		}
	}
	return nil
}

func (b *CSharpBuilder) emitArgument(n *sitter.Node, bc *buildCtx) error {
	if n.Type() != "parameter" {
		return nil
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	symbolText := b.text(nameNode, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: sym, HasSymbol: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(n, graph.KindArgument))
	return bc.g.AddEdge(bc.container, node, 0)
}

// emitMemberAccess handles expressions of the form Object.Member. Each side
// gets its own "name" node at its own token position rather than one
// combined dotted node: a reference like ConfigurationManager.AppSettings
// must surface as two separately located uses, one for the class name and
// one for the member, so a query against either in isolation still finds
// it and a query against a containing namespace finds both.
//
// It also emits one extra node spanning the whole expression, carrying the
// receiver and member joined by ".". The method-flavored evaluator matches
// on an exact class.method pair and has no notion of two separate token
// hits for one call; this node gives it something to match against without
// taking away the per-token nodes the namespace flavor needs. For a deeper
// chain (a.b.c) the receiver side is whatever text precedes the final
// member, a syntactic approximation consistent with this system not
// resolving variable types.
func (b *CSharpBuilder) emitMemberAccess(n *sitter.Node, bc *buildCtx) error {
	exprNode := n.ChildByFieldName("expression")
	nameNode := n.ChildByFieldName("name")

	if exprNode != nil {
		if err := b.walk(exprNode, bc); err != nil {
			return err
		}
	}
	if nameNode != nil {
		if err := b.walk(nameNode, bc); err != nil {
			return err
		}
	}

	if exprNode != nil && nameNode != nil {
		combined := b.text(exprNode, bc) + "." + b.text(nameNode, bc)
		sym := bc.g.Intern(combined)
		node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPushSymbol, Symbol: sym, HasSymbol: true, File: bc.file, HasFile: true})
		bc.g.SetSourceInfo(node, spanOf(n, graph.KindName))
		if err := bc.g.AddEdge(bc.container, node, 0); err != nil {
			return err
		}
	}
	return nil
}

func (b *CSharpBuilder) emitName(n *sitter.Node, bc *buildCtx) error {
	symbolText := b.text(n, bc)
	sym := bc.g.Intern(symbolText)
	node := bc.g.AddNode(graph.NodeSpec{Kind: graph.KindPushSymbol, Symbol: sym, HasSymbol: true, File: bc.file, HasFile: true})
	bc.g.SetSourceInfo(node, spanOf(n, graph.KindName))
	return bc.g.AddEdge(bc.container, node, 0)
}
