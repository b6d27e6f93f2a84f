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

// Package project coordinates one analyzed project's lifecycle:
// validate_language -> build_graph -> resolve -> load_dependencies_to_store,
// then serves query against the cached graph. It owns the reader/writer
// lock that keeps Ingestor (exclusive) and Evaluator (shared) from racing
// on the same in-memory Graph.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/pkg/builder"
	"github.com/kraklabs/csharp-analyzer/pkg/evaluator"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
	"github.com/kraklabs/csharp-analyzer/pkg/ingestor"
	"github.com/kraklabs/csharp-analyzer/pkg/pattern"
	"github.com/kraklabs/csharp-analyzer/pkg/resolver"
	"github.com/kraklabs/csharp-analyzer/pkg/store"
)

// State is one node of the project lifecycle state machine. Every
// non-terminal state may transition to Failed on a fatal error.
type State int

const (
	Uninitialized State = iota
	LangReady
	GraphReady
	DepsResolved
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case LangReady:
		return "lang_ready"
	case GraphReady:
		return "graph_ready"
	case DepsResolved:
		return "deps_resolved"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// AnalysisMode selects which files a query reports incidents from.
type AnalysisMode int

const (
	ModeFull AnalysisMode = iota
	ModeSourceOnly
)

// ParseAnalysisMode maps the RPC config string to an AnalysisMode.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	switch s {
	case "full":
		return ModeFull, nil
	case "source-only":
		return ModeSourceOnly, nil
	default:
		return 0, fmt.Errorf("project: unknown analysis mode %q, want \"full\" or \"source-only\"", s)
	}
}

// Config is everything New needs to construct a Project.
type Config struct {
	Location  string
	StorePath string
	Mode      AnalysisMode
	Tools     resolver.Tools
}

// DependencyNode is one entry of DependenciesDag's flat dependency list.
type DependencyNode struct {
	Name     string
	Version  string
	Resolved bool
	Children []DependencyNode
}

// Project owns one project's Builder, Store, cached Graph, and resolved
// Dependencies, and serializes state transitions against concurrent callers.
type Project struct {
	cfg    Config
	logger *slog.Logger

	stateMu sync.Mutex
	state   State

	graphMu sync.RWMutex // writers (Ingestor, dependency merge) exclusive; Query shared
	b       builder.Builder
	g       *graph.Graph
	st      *store.Store
	deps    []resolver.Dependency
}

// New constructs a Project in the Uninitialized state. No I/O happens until
// ValidateLanguage (or Init) is called.
func New(cfg Config, logger *slog.Logger) *Project {
	if logger == nil {
		logger = slog.Default()
	}
	projMetrics.init()
	return &Project{cfg: cfg, logger: logger, state: Uninitialized}
}

// State returns the project's current lifecycle state.
func (p *Project) State() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

func (p *Project) setState(s State) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.state = s
}

// fail transitions to Failed and passes err through unchanged, so every
// call site can just `return p.fail(err)`.
func (p *Project) fail(err error) error {
	p.setState(Failed)
	return err
}

// ValidateLanguage constructs and caches the Builder's language
// configuration. Uninitialized -> LangReady.
func (p *Project) ValidateLanguage() error {
	b, err := builder.NewCSharpBuilder(p.logger)
	if err != nil {
		return p.fail(err)
	}
	p.b = b
	p.setState(LangReady)
	return nil
}

// BuildGraph loads the cached Graph from the Store if store_path already
// holds data, or ingests location's source tree otherwise. LangReady ->
// GraphReady.
func (p *Project) BuildGraph(ctx context.Context) error {
	st, err := store.Open(p.cfg.StorePath, p.logger)
	if err != nil {
		return p.fail(err)
	}

	g, err := builder.NewProjectGraph()
	if err != nil {
		return p.fail(fmt.Errorf("%w: %v", interrors.ErrBuiltins, err))
	}

	p.graphMu.Lock()
	p.st = st
	p.g = g
	p.graphMu.Unlock()

	if existing := st.ListFiles(); len(existing) > 0 {
		if err := st.LoadForPath("", g); err != nil {
			return p.fail(err)
		}
		p.logger.Info("project.build_graph.loaded", "store", p.cfg.StorePath, "files", len(existing))
	} else {
		p.graphMu.Lock()
		result, err := ingestor.IngestSource(ctx, g, st, p.b, p.cfg.Location)
		p.graphMu.Unlock()
		if err != nil {
			return p.fail(err)
		}
		projMetrics.filesIngested.Add(float64(result.FilesLoaded))
		p.logger.Info("project.build_graph.ingested", "location", p.cfg.Location, "files", result.FilesLoaded)
	}

	p.setState(GraphReady)
	return nil
}

// Resolve runs the Resolver against location and caches the resulting
// Dependencies. GraphReady -> DepsResolved.
func (p *Project) Resolve(ctx context.Context) error {
	deps, err := resolver.Resolve(ctx, p.cfg.Location, p.cfg.Tools, p.logger)
	if err != nil {
		return p.fail(err)
	}
	p.deps = deps

	var failures int
	for _, d := range deps {
		if d.ResolveError != "" {
			failures++
		}
	}
	if failures > 0 {
		projMetrics.decompileFailures.Add(float64(failures))
	}

	p.setState(DepsResolved)
	return nil
}

// LoadDependenciesToStore ingests every resolved dependency's decompiled
// directories, one worker per directory, then folds the result into the
// project Graph and Store. DepsResolved -> Ready.
func (p *Project) LoadDependenciesToStore(ctx context.Context) error {
	var dirs []string
	for _, d := range p.deps {
		dirs = append(dirs, d.DecompiledDirs...)
	}

	p.graphMu.Lock()
	result, err := ingestor.IngestDependencies(ctx, p.g, p.st, p.b, dirs, p.logger)
	p.graphMu.Unlock()
	if err != nil {
		return p.fail(err)
	}
	projMetrics.filesIngested.Add(float64(result.FilesLoaded))
	p.logger.Info("project.load_dependencies.done", "dirs", len(dirs), "files", result.FilesLoaded)

	p.setState(Ready)
	return nil
}

// Init runs the full validate_language -> build_graph -> resolve ->
// load_dependencies_to_store sequence, stopping at the first failure.
func (p *Project) Init(ctx context.Context) error {
	if err := p.ValidateLanguage(); err != nil {
		return err
	}
	if err := p.BuildGraph(ctx); err != nil {
		return err
	}
	if err := p.Resolve(ctx); err != nil {
		return err
	}
	return p.LoadDependenciesToStore(ctx)
}

// Query evaluates pat against the cached Graph using kind, filtering to
// source files only when the project's analysis mode is source-only.
func (p *Project) Query(pat *pattern.Pattern, kind evaluator.MatcherKind) ([]evaluator.Incident, error) {
	start := time.Now()
	defer func() {
		projMetrics.queriesTotal.Inc()
		projMetrics.queryDuration.Observe(time.Since(start).Seconds())
	}()

	p.graphMu.RLock()
	defer p.graphMu.RUnlock()

	sourceSym, ok := p.g.LookupSymbol(graph.SourceTypeSource)
	if !ok {
		return nil, fmt.Errorf("%w: source marker not present in graph", interrors.ErrGraphInconsistent)
	}

	incidents, err := evaluator.Evaluate(p.g, sourceSym, pat, kind, p.cfg.Mode == ModeSourceOnly)
	if err != nil {
		return nil, err
	}
	evaluator.SortIncidents(incidents)
	return incidents, nil
}

// HasNamespace reports whether the cached Graph declares namespace name
// anywhere, without running a full Evaluate.
func (p *Project) HasNamespace(name string) bool {
	p.graphMu.RLock()
	defer p.graphMu.RUnlock()

	sym, ok := p.g.LookupSymbol(name)
	if !ok {
		return false
	}
	for _, h := range p.g.FindNodesByKind(graph.KindNamespaceDeclaration) {
		n := p.g.Node(h)
		if n.HasSymbol && n.Symbol == sym {
			return true
		}
	}
	return false
}

// DependenciesDag returns the cached dependency list in the flat
// name/version/resolved shape a caller wants for display or export. This
// project's dependency graph is one level deep, so Children is always
// empty.
func (p *Project) DependenciesDag() []DependencyNode {
	out := make([]DependencyNode, 0, len(p.deps))
	for _, d := range p.deps {
		out = append(out, DependencyNode{
			Name:     d.Name,
			Version:  d.Version,
			Resolved: len(d.DecompiledDirs) > 0,
		})
	}
	return out
}

// Close releases the Store's file descriptor.
func (p *Project) Close() error {
	p.graphMu.Lock()
	defer p.graphMu.Unlock()
	if p.st == nil {
		return nil
	}
	return p.st.Close()
}
