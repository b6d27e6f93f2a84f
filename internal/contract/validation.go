// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
)

const (
	// DefaultFilePathsSoftLimit is the baseline soft limit on how many
	// file_paths entries an Evaluate request's condition_info may scope to
	// before it's rejected, to keep one RPC call from walking the whole
	// graph file-by-file.
	DefaultFilePathsSoftLimit = 4096

	// RequestIDMaxBytes is the maximum length for an RPC request's
	// request_id field.
	RequestIDMaxBytes = 128
)

// FilePathsSoftLimit returns the effective soft limit for condition_info's
// file_paths list. Controlled via env CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT;
// falls back to DefaultFilePathsSoftLimit.
func FilePathsSoftLimit() int {
	if v := os.Getenv("CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultFilePathsSoftLimit
}

// ReferencedCondition is the body of a "referenced" capability's
// condition_info: a dotted pattern to search for, an optional location
// hint, and an optional list of file paths the caller already knows are
// in scope.
type ReferencedCondition struct {
	Pattern   string   `yaml:"pattern"`
	Location  string   `yaml:"location,omitempty"`
	FilePaths []string `yaml:"file_paths,omitempty"`
}

// ConditionInfo is the top-level YAML document Evaluate's request carries
// in request.condition_info: {referenced: {pattern, location, file_paths}}.
type ConditionInfo struct {
	Referenced ReferencedCondition `yaml:"referenced"`
}

// ParseConditionInfo decodes and validates an Evaluate request's
// condition_info document. Pattern is required; Location and FilePaths are
// optional scoping hints. A FilePaths list past FilePathsSoftLimit is
// rejected rather than silently truncated, since a caller that believes a
// clipped list was honored in full could mistake partial coverage for
// complete.
func ParseConditionInfo(doc []byte) (*ConditionInfo, error) {
	var info ConditionInfo
	if err := yaml.Unmarshal(doc, &info); err != nil {
		return nil, fmt.Errorf("%w: condition_info: %v", interrors.ErrBadPattern, err)
	}
	if info.Referenced.Pattern == "" {
		return nil, fmt.Errorf("%w: condition_info.referenced.pattern is required", interrors.ErrBadPattern)
	}
	if limit := FilePathsSoftLimit(); len(info.Referenced.FilePaths) > limit {
		return nil, fmt.Errorf("%w: condition_info.referenced.file_paths has %d entries, exceeds soft limit %d",
			interrors.ErrBadPattern, len(info.Referenced.FilePaths), limit)
	}
	return &info, nil
}

// ValidateRequestID reports whether a request_id field is within the
// RPC's length bound.
func ValidateRequestID(requestID string) error {
	if len(requestID) > RequestIDMaxBytes {
		return fmt.Errorf("request_id exceeds %d bytes", RequestIDMaxBytes)
	}
	return nil
}
