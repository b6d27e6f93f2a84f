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

// Package graph implements the in-memory symbol graph: an arena of nodes
// addressed by small integer handles, precedence-tagged edges stored in an
// adjacency multimap, and a per-node optional source-location table.
//
// Nodes never hold owning pointers to one another; everything is a handle
// into the Graph's arenas, so the structure tolerates the cycles an FQN
// chain combined with scope edges naturally produces.
package graph

import (
	"fmt"
	"sync"
)

// Symbol is an interned string handle. The zero value means "no symbol".
type Symbol uint32

// NodeHandle addresses a node in the arena. The zero value is never a valid
// handle (handle 0 is reserved so the zero value of NodeHandle reads as
// "absent" in optional fields).
type NodeHandle uint32

// FileHandle addresses a File in the arena. The zero value means "no file".
type FileHandle uint32

// FQNPrecedence is the edge precedence reserved for FQN-parent edges
// (child-to-parent in the naming hierarchy). Every other precedence value
// denotes an ordinary scope edge.
const FQNPrecedence = 10

// NodeKind distinguishes the closed set of node flavors the builder emits.
type NodeKind int

const (
	// KindScope is a plain structural node; it never carries a symbol.
	KindScope NodeKind = iota
	// KindPopSymbol consumes a symbol during path stitching.
	KindPopSymbol
	// KindPushSymbol pushes a symbol during path stitching.
	KindPushSymbol
	// KindRoot is the distinguished root sentinel.
	KindRoot
	// KindJumpTo is the distinguished jump-to sentinel.
	KindJumpTo
)

func (k NodeKind) String() string {
	switch k {
	case KindScope:
		return "scope"
	case KindPopSymbol:
		return "pop_symbol"
	case KindPushSymbol:
		return "push_symbol"
	case KindRoot:
		return "root"
	case KindJumpTo:
		return "jump_to"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Node is one arena entry. Symbol and SourceInfo are optional; HasSymbol and
// HasSourceInfo discriminate rather than relying on zero values, since
// Symbol(0) and the zero SourceInfo are themselves meaningful-looking.
type Node struct {
	Kind         NodeKind
	Symbol       Symbol
	HasSymbol    bool
	IsDefinition bool // only meaningful for KindPopSymbol
	File         FileHandle
	HasFile      bool
	SourceInfo   SourceInfo
	HasSourceInfo bool
}

// Edge is a directed, precedence-tagged arc from one node to another.
type Edge struct {
	To         NodeHandle
	Precedence int
}

// File is a pathname (unique within a graph) and its content tag.
type File struct {
	Path string
	Tag  string
}

// Graph is the per-project (or per-subgraph) symbol graph. All mutation
// happens through its methods; callers needing concurrent safety across
// Ingestor/Evaluator boundaries wrap a Graph in their own RWMutex (see
// pkg/project), one writer and many readers at a time.
type Graph struct {
	mu sync.RWMutex

	symbolByString map[string]Symbol
	stringBySymbol []string // index 0 unused, symbols are 1-based

	nodes []Node // index 0 unused, NodeHandle is 1-based
	out   map[NodeHandle][]Edge

	files       []File // index 0 unused, FileHandle is 1-based
	fileByPath  map[string]FileHandle
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		symbolByString: make(map[string]Symbol),
		stringBySymbol: make([]string, 1, 64),
		nodes:          make([]Node, 1, 64),
		out:            make(map[NodeHandle][]Edge),
		files:          make([]File, 1, 8),
		fileByPath:     make(map[string]FileHandle),
	}
}

// Intern returns the Symbol for s, creating a new handle on first use.
// Equal strings always share a handle.
func (g *Graph) Intern(s string) Symbol {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.internLocked(s)
}

func (g *Graph) internLocked(s string) Symbol {
	if sym, ok := g.symbolByString[s]; ok {
		return sym
	}
	sym := Symbol(len(g.stringBySymbol))
	g.stringBySymbol = append(g.stringBySymbol, s)
	g.symbolByString[s] = sym
	return sym
}

// SymbolString resolves a Symbol back to its string. Panics on an invalid
// handle, which would indicate a programming error (a handle minted by a
// different graph, or the zero value).
func (g *Graph) SymbolString(s Symbol) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stringBySymbol[s]
}

// LookupSymbol returns the Symbol for s without creating one, and whether it
// exists.
func (g *Graph) LookupSymbol(s string) (Symbol, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sym, ok := g.symbolByString[s]
	return sym, ok
}

// AddFile registers a file path, returning its handle. A second call with
// the same path returns the same handle: file-path to handle assignments
// are stable for the life of the graph.
func (g *Graph) AddFile(path, tag string) FileHandle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.fileByPath[path]; ok {
		g.files[h].Tag = tag
		return h
	}
	h := FileHandle(len(g.files))
	g.files = append(g.files, File{Path: path, Tag: tag})
	g.fileByPath[path] = h
	return h
}

// HasFile reports whether path has already been registered.
func (g *Graph) HasFile(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.fileByPath[path]
	return ok
}

// File returns the File record for a handle.
func (g *Graph) File(h FileHandle) File {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.files[h]
}

// FileHandleFor returns the handle for a registered path.
func (g *Graph) FileHandleFor(path string) (FileHandle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.fileByPath[path]
	return h, ok
}

// NodeSpec describes a node to add; kept as a struct so AddNode reads like
// the builder's call sites instead of a long positional argument list.
type NodeSpec struct {
	Kind         NodeKind
	Symbol       Symbol
	HasSymbol    bool
	IsDefinition bool
	File         FileHandle
	HasFile      bool
}

// AddNode appends a new node to the arena and returns its handle.
func (g *Graph) AddNode(spec NodeSpec) NodeHandle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		Kind:         spec.Kind,
		Symbol:       spec.Symbol,
		HasSymbol:    spec.HasSymbol,
		IsDefinition: spec.IsDefinition,
		File:         spec.File,
		HasFile:      spec.HasFile,
	})
	return h
}

// Node returns a copy of the node record for h.
func (g *Graph) Node(h NodeHandle) Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[h]
}

// NodeCount returns the number of nodes in the arena (including the unused
// zero slot).
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// AllNodes returns every valid node handle in ascending order.
func (g *Graph) AllNodes() []NodeHandle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]NodeHandle, 0, len(g.nodes)-1)
	for i := 1; i < len(g.nodes); i++ {
		out = append(out, NodeHandle(i))
	}
	return out
}

// SetSourceInfo attaches a span and syntax kind to a node.
func (g *Graph) SetSourceInfo(h NodeHandle, info SourceInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.nodes[h]
	n.SourceInfo = info
	n.HasSourceInfo = true
	g.nodes[h] = n
}

// AddEdge records a directed edge. Precedence FQNPrecedence is reserved for
// the FQN-parent relationship; a node may have at most one outgoing edge at
// that precedence, and AddEdge enforces it.
func (g *Graph) AddEdge(from, to NodeHandle, precedence int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if precedence == FQNPrecedence {
		for _, e := range g.out[from] {
			if e.Precedence == FQNPrecedence {
				return fmt.Errorf("graph: node %d already has an FQN-parent edge", from)
			}
		}
	}
	g.out[from] = append(g.out[from], Edge{To: to, Precedence: precedence})
	return nil
}

// OutEdges returns the edges leaving h, in insertion order.
func (g *Graph) OutEdges(h NodeHandle) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := g.out[h]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// FQNParent returns the node at the far end of h's outgoing FQN-parent edge,
// if any.
func (g *Graph) FQNParent(h NodeHandle) (NodeHandle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, e := range g.out[h] {
		if e.Precedence == FQNPrecedence {
			return e.To, true
		}
	}
	return 0, false
}

// FindNodesByKind returns every node handle whose SourceInfo.Kind equals
// kind, letting a caller ask "does this project declare any namespace at
// all" without running a full Evaluate.
func (g *Graph) FindNodesByKind(kind SyntaxKind) []NodeHandle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []NodeHandle
	for i := 1; i < len(g.nodes); i++ {
		n := g.nodes[i]
		if n.HasSourceInfo && n.SourceInfo.Kind == kind {
			out = append(out, NodeHandle(i))
		}
	}
	return out
}

// Merge copies every node, edge, file, and symbol from src into g,
// deduplicating symbols by interned string and files by path. Nodes and
// edges are not deduplicated: every merge appends all of src's nodes and
// edges, so callers that must not grow g on a repeated merge (such as
// Store.LoadForPath) skip files g already holds. It returns a mapping from src's node handles to g's
// node handles, useful to callers that need to relate merged state back to
// the source graph.
func (g *Graph) Merge(src *Graph) map[NodeHandle]NodeHandle {
	src.mu.RLock()
	defer src.mu.RUnlock()
	g.mu.Lock()
	defer g.mu.Unlock()

	symMap := make(map[Symbol]Symbol, len(src.stringBySymbol))
	for s := 1; s < len(src.stringBySymbol); s++ {
		symMap[Symbol(s)] = g.internLocked(src.stringBySymbol[s])
	}

	fileMap := make(map[FileHandle]FileHandle, len(src.files))
	for f := 1; f < len(src.files); f++ {
		file := src.files[f]
		if h, ok := g.fileByPath[file.Path]; ok {
			fileMap[FileHandle(f)] = h
			continue
		}
		h := FileHandle(len(g.files))
		g.files = append(g.files, file)
		g.fileByPath[file.Path] = h
		fileMap[FileHandle(f)] = h
	}

	nodeMap := make(map[NodeHandle]NodeHandle, len(src.nodes))
	for i := 1; i < len(src.nodes); i++ {
		n := src.nodes[i]
		newNode := Node{
			Kind:          n.Kind,
			IsDefinition:  n.IsDefinition,
			SourceInfo:    n.SourceInfo,
			HasSourceInfo: n.HasSourceInfo,
		}
		if n.HasSymbol {
			newNode.Symbol = symMap[n.Symbol]
			newNode.HasSymbol = true
		}
		if n.HasFile {
			newNode.File = fileMap[n.File]
			newNode.HasFile = true
		}
		h := NodeHandle(len(g.nodes))
		g.nodes = append(g.nodes, newNode)
		nodeMap[NodeHandle(i)] = h
	}

	for i := 1; i < len(src.nodes); i++ {
		srcHandle := NodeHandle(i)
		dstHandle := nodeMap[srcHandle]
		for _, e := range src.out[srcHandle] {
			g.out[dstHandle] = append(g.out[dstHandle], Edge{To: nodeMap[e.To], Precedence: e.Precedence})
		}
	}

	return nodeMap
}
