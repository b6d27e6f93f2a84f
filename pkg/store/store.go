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

// Package store persists one per-file subgraph per project in a single
// embedded bbolt database, keyed by file path. A second write for the same
// path replaces the prior entry atomically, and a prefix scan over the
// (byte-sorted) path keys loads every subgraph under a directory without a
// separate index structure.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	bolt "go.etcd.io/bbolt"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/pkg/graph"
)

var filesBucket = []byte("files")

func init() {
	gob.Register(graph.Snapshot{})
}

// entry is the gob-encoded value stored per file path.
type entry struct {
	Tag      string
	Subgraph graph.Snapshot
}

// Store is a project's persistent symbol-graph cache: one bbolt file, one
// bucket, keyed by normalized file path.
type Store struct {
	db     *bolt.DB
	path   string
	logger *slog.Logger

	mu     sync.Mutex // serializes Put calls; arrival order is write order
	merged *graph.Graph
	tags   map[string]string // path -> content tag, mirrors the bucket
	paths  []string          // sorted, rebuilt on load and on every Put
}

// Open creates or opens the persistent store at path. The on-disk bucket is
// decoded into an in-memory merged Graph eagerly, so Store.Graph reflects
// prior runs immediately after Open returns.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", interrors.ErrStoreOpen, path, err)
	}

	s := &Store{
		db:     db,
		path:   path,
		logger: logger,
		merged: graph.New(),
		tags:   make(map[string]string),
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(filesBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create bucket: %v", interrors.ErrStoreOpen, err)
	}

	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("store opened", "path", path, "files", len(s.paths))
	return s, nil
}

// Close releases the store's file descriptor.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the store file.
func (s *Store) Path() string {
	return s.path
}

func normalizePath(p string) string {
	return filepath.ToSlash(p)
}

// loadAll decodes every bucket entry into s.merged. Called once at Open.
func (s *Store) loadAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		return b.ForEach(func(k, v []byte) error {
			var e entry
			dec := gob.NewDecoder(bytes.NewReader(v))
			if err := dec.Decode(&e); err != nil {
				return fmt.Errorf("%w: decode %s: %v", interrors.ErrStoreIo, k, err)
			}
			path := string(k)
			s.tags[path] = e.Tag
			paths = append(paths, path)
			sub := graph.FromSnapshot(e.Subgraph)
			s.merged.Merge(sub)
			return nil
		})
	})
	if err != nil {
		return err
	}
	sort.Strings(paths)
	s.paths = paths
	return nil
}

// Put atomically upserts the subgraph for filePath, replacing any prior
// entry for the same path, and folds the subgraph into the in-memory merged
// Graph. Writes are serialized so concurrent ingest workers never interleave
// within the bbolt transaction.
func (s *Store) Put(filePath, contentTag string, subgraph *graph.Graph) error {
	filePath = normalizePath(filePath)

	var buf bytes.Buffer
	e := entry{Tag: contentTag, Subgraph: subgraph.Snapshot()}
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return fmt.Errorf("%w: encode %s: %v", interrors.ErrStoreIo, filePath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		return b.Put([]byte(filePath), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", interrors.ErrStoreIo, filePath, err)
	}

	if _, known := s.tags[filePath]; !known {
		s.paths = append(s.paths, filePath)
		sort.Strings(s.paths)
	}
	s.tags[filePath] = contentTag
	s.merged.Merge(subgraph)
	return nil
}

// Tag returns the content tag currently stored for filePath, and whether an
// entry exists. Ingestor uses this to skip files whose tag is unchanged.
func (s *Store) Tag(filePath string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag, ok := s.tags[normalizePath(filePath)]
	return tag, ok
}

// ListFiles returns every known file path, sorted.
func (s *Store) ListFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// LoadForPath loads every stored entry whose path starts with prefix into
// into, deduplicating by symbol and file identity via Graph.Merge so
// repeated loads do not inflate handle space.
func (s *Store) LoadForPath(prefix string, into *graph.Graph) error {
	prefix = normalizePath(prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		c := b.Cursor()
		for k, v := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			path := string(k)
			if into.HasFile(path) {
				// Already folded in by a prior LoadForPath call against this
				// target graph; skip so repeated loads don't inflate handle
				// space.
				continue
			}
			var e entry
			dec := gob.NewDecoder(bytes.NewReader(v))
			if err := dec.Decode(&e); err != nil {
				return fmt.Errorf("%w: decode %s: %v", interrors.ErrStoreIo, k, err)
			}
			sub := graph.FromSnapshot(e.Subgraph)
			into.Merge(sub)
		}
		return nil
	})
}

// Partials returns, for every known path, the set of its directory prefixes
// (the path itself included), grouped by prefix. It lets a caller inspect
// which prefixes a LoadForPath call would match without re-scanning the
// database.
func (s *Store) Partials() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string)
	for _, p := range s.paths {
		for _, prefix := range partialPathSet(p) {
			out[prefix] = append(out[prefix], p)
		}
	}
	return out
}

// partialPathSet returns p's directory prefixes from the root down to and
// including p itself, e.g. "a/b/c.cs" -> ["a", "a/b", "a/b/c.cs"].
func partialPathSet(p string) []string {
	segments := strings.Split(p, "/")
	prefixes := make([]string, 0, len(segments))
	for i := range segments {
		prefixes = append(prefixes, strings.Join(segments[:i+1], "/"))
	}
	return prefixes
}

// Graph returns the store's in-memory merged Graph, built from every entry
// loaded or put so far. Callers must not mutate it concurrently with Put.
func (s *Store) Graph() *graph.Graph {
	return s.merged
}

// GraphAndPartials returns the decoded in-memory graph, the partial-path
// index, and the sorted path list in one call.
func (s *Store) GraphAndPartials() (*graph.Graph, map[string][]string, []string) {
	return s.Graph(), s.Partials(), s.ListFiles()
}
