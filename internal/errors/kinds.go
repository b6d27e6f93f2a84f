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

package errors

import (
	"errors"
	"os"
)

// Kind sentinels: each component raises one of these via errors.Is-compatible
// wrapping, so callers can classify a failure without string matching. Kind
// sentinels are paired with an exit code through KindExitCode, and with the
// fatal/non-fatal propagation policy documented alongside each constant.
var (
	// ErrBadPattern: Pattern.compile failure. Returned to the caller as a
	// 4xx-equivalent; never fatal to the Project.
	ErrBadPattern = errors.New("bad pattern")

	// ErrTsgParse: the Builder's language grammar failed to load. Fatal to
	// Project.
	ErrTsgParse = errors.New("tag-query grammar parse failure")

	// ErrBuiltins: the builtins graph failed to construct. Fatal to Project.
	ErrBuiltins = errors.New("builtins graph construction failure")

	// ErrGraphBuild: Builder failed on one file. Fatal to the surrounding
	// Ingestor batch.
	ErrGraphBuild = errors.New("graph build failure")

	// ErrStoreOpen: Store.open failed. Fatal to Project.
	ErrStoreOpen = errors.New("store open failure")

	// ErrStoreIo: Store.put failed. Fatal to the current ingest task only.
	ErrStoreIo = errors.New("store io failure")

	// ErrResolveConvert: package manager convert-from-nuget failed. Fatal to
	// Project init.
	ErrResolveConvert = errors.New("dependency resolution: convert failure")

	// ErrResolveSpawn: a resolver subprocess failed to start. Fatal to
	// Project init.
	ErrResolveSpawn = errors.New("dependency resolution: subprocess spawn failure")

	// ErrResolveParse: a resolver manifest/cache file failed to parse.
	// Non-fatal when raised for one dependency's install-model cache: it is
	// recorded on that Dependency, logged, and resolution continues. A
	// failure to read the manifest or the reference-assembly cache is
	// returned from resolver.Resolve and is fatal to Project init.
	ErrResolveParse = errors.New("dependency resolution: parse failure")

	// ErrDecompile: decompiling one dependency's DLL failed. Non-fatal per
	// dependency; logged.
	ErrDecompile = errors.New("decompile failure")

	// ErrGraphInconsistent: the Evaluator found the graph in an inconsistent
	// state (e.g. a definition root missing SourceInfo). Converted to a
	// 5xx-equivalent.
	ErrGraphInconsistent = errors.New("graph inconsistent")

	// ErrWalk: the Ingestor's directory walk failed. Fatal to ingest.
	ErrWalk = errors.New("directory walk failure")

	// ErrRead: the Ingestor failed to read a file's bytes. Fatal to ingest.
	ErrRead = errors.New("file read failure")

	// ErrCancelled: a cancellation-aware operation observed its cancellation
	// flag. Returned up unchanged.
	ErrCancelled = errors.New("cancelled")

	// ErrProjectNotFound: a project ID has no initialized data directory.
	// Returned to the caller as a 4xx-equivalent.
	ErrProjectNotFound = errors.New("project not found")
)

// KindExitCode maps an error kind sentinel to the CLI exit code a caller
// presenting it to a user should use. Unrecognized kinds map to
// ExitInternal.
func KindExitCode(kind error) int {
	switch kind {
	case ErrBadPattern:
		return ExitInput
	case ErrTsgParse, ErrBuiltins, ErrGraphBuild, ErrGraphInconsistent:
		return ExitInternal
	case ErrStoreOpen, ErrStoreIo:
		return ExitDatabase
	case ErrResolveConvert, ErrResolveSpawn, ErrResolveParse, ErrDecompile:
		return ExitNetwork
	case ErrWalk, ErrRead:
		return ExitInput
	case ErrCancelled:
		return ExitInternal
	case ErrProjectNotFound:
		return ExitNotFound
	default:
		return ExitInternal
	}
}

// kindSentinels lists every Kind sentinel matchKind tests err against, in
// no particular order.
var kindSentinels = []error{
	ErrBadPattern, ErrTsgParse, ErrBuiltins, ErrGraphBuild, ErrStoreOpen,
	ErrStoreIo, ErrResolveConvert, ErrResolveSpawn, ErrResolveParse,
	ErrDecompile, ErrGraphInconsistent, ErrWalk, ErrRead, ErrCancelled,
	ErrProjectNotFound,
}

// matchKind returns the Kind sentinel err wraps, or nil if none match.
func matchKind(err error) error {
	for _, kind := range kindSentinels {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// FromError classifies err against the package's Kind sentinels and
// builds a UserError carrying the matching exit code and message, via the
// constructor that exit code corresponds to. A permission error from the
// standard library is recognized ahead of kind matching, since os errors
// never wrap a Kind sentinel. Anything unrecognized becomes an internal
// error.
func FromError(msg string, err error) *UserError {
	if err == nil {
		return nil
	}

	if os.IsPermission(err) {
		return NewPermissionError(msg, err.Error(), "Check file permissions and try again.", err)
	}

	switch KindExitCode(matchKind(err)) {
	case ExitInput:
		return NewInputError(msg, err.Error(), "Check the input and try again.")
	case ExitDatabase:
		return NewDatabaseError(msg, err.Error(), "Check that the project's store file isn't locked or corrupted.", err)
	case ExitNetwork:
		return NewNetworkError(msg, err.Error(), "Check that paket and ilspycmd are installed and reachable, then retry.", err)
	case ExitNotFound:
		return NewNotFoundError(msg, err.Error(), "Run 'csharp-analyzer index' to initialize the project.")
	default:
		return NewInternalError(msg, err.Error(), "This is a bug. Please report it.", err)
	}
}
