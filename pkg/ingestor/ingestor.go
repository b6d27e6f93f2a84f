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

// Package ingestor walks a directory tree, calls a Builder per accepted
// file, and writes each file's subgraph to a Store. Source ingestion runs
// sequentially; dependency ingestion runs one worker per decompiled
// dependency directory.
package ingestor

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/pkg/builder"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
	"github.com/kraklabs/csharp-analyzer/pkg/store"
)

// Result summarizes one ingest run: how many files were newly loaded, and
// the content tag recorded for each.
type Result struct {
	FilesLoaded int
	FileToTag   map[string]string
}

// IngestSource walks rootDir and ingests every file the Builder accepts,
// tagging each with the SourceTypeSource marker. Always sequential: a
// project's primary source tree is one unit of work, and the order files
// enter the shared graph should be deterministic across runs.
func IngestSource(ctx context.Context, g *graph.Graph, st *store.Store, b builder.Builder, rootDir string) (*Result, error) {
	return ingestDir(ctx, g, st, b, rootDir, graph.SourceTypeSource)
}

// IngestDependencies ingests a set of decompiled dependency directories,
// one worker per directory (capped against available CPUs), each
// directory's own files still walked and built sequentially relative to
// one another. Different dependency directories don't reference each
// other's declarations during ingestion, so nothing requires them to run
// one at a time.
func IngestDependencies(ctx context.Context, g *graph.Graph, st *store.Store, b builder.Builder, depDirs []string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	result := &Result{FileToTag: make(map[string]string)}
	if len(depDirs) == 0 {
		return result, nil
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers > len(depDirs) {
		workers = len(depDirs)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string, len(depDirs))
	for _, d := range depDirs {
		jobs <- d
	}
	close(jobs)

	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range jobs {
				r, err := ingestDir(runCtx, g, st, b, dir, graph.SourceTypeDependency)
				if err != nil {
					logger.Warn("ingest.dependency.dir.error", "dir", dir, "err", err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					continue
				}
				mu.Lock()
				for p, t := range r.FileToTag {
					result.FileToTag[p] = t
				}
				result.FilesLoaded += r.FilesLoaded
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// ingestDir walks dir, ingesting every accepted, not-yet-present file into
// g and st, tagging each with markerSymbol.
func ingestDir(ctx context.Context, g *graph.Graph, st *store.Store, b builder.Builder, dir string, markerSymbol string) (*Result, error) {
	paths, err := walkFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{FileToTag: make(map[string]string)}
	for _, path := range paths {
		loaded, tag, err := ingestFile(ctx, g, st, b, dir, path, markerSymbol)
		if err != nil {
			return nil, err
		}
		if loaded {
			result.FileToTag[path] = tag
			result.FilesLoaded++
		}
	}
	return result, nil
}

// walkFiles recursively collects every regular file under root, skipping
// directories themselves, in sorted order for deterministic processing.
func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %s: %v", interrors.ErrWalk, path, err)
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ingestFile ingests a single file already known to exist on disk. It skips
// files already present in g (by path), files the Builder doesn't accept,
// and files whose content tag matches what the store already has recorded;
// all three are reported as "not loaded" rather than an error.
func ingestFile(ctx context.Context, g *graph.Graph, st *store.Store, b builder.Builder, rootDir, path, markerSymbol string) (loaded bool, tag string, err error) {
	if g.HasFile(path) {
		return false, "", nil
	}
	if !b.Accepts(path) {
		return false, "", nil
	}

	select {
	case <-ctx.Done():
		return false, "", fmt.Errorf("%w: %s", interrors.ErrCancelled, path)
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, "", fmt.Errorf("%w: %s: %v", interrors.ErrRead, path, err)
	}
	tag = contentTag(data)

	if existing, known := st.Tag(path); known && existing == tag {
		return false, tag, nil
	}

	// A fresh, file-scoped graph is what Builder appends into and what
	// Store.Put persists as the file's subgraph; it's then folded into the
	// shared project graph by symbol string and file path, never by node
	// identity, so repeated ingests of the same project never collide.
	fileGraph := graph.New()
	fh := fileGraph.AddFile(path, tag)
	markerSym := fileGraph.Intern(markerSymbol)
	marker := fileGraph.AddNode(graph.NodeSpec{Kind: graph.KindPopSymbol, Symbol: markerSym, HasSymbol: true, File: fh, HasFile: true})

	if err := b.Build(ctx, fileGraph, fh, data, builder.Globals{
		FilePath:       path,
		RootPath:       rootDir,
		SourceTypeNode: marker,
	}); err != nil {
		return false, "", err
	}

	g.Merge(fileGraph)
	if err := st.Put(path, tag, fileGraph); err != nil {
		return false, "", err
	}
	return true, tag, nil
}

func contentTag(data []byte) string {
	sum := sha1.Sum(data)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}
