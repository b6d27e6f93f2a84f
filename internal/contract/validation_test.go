// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
)

func TestParseConditionInfoAcceptsMinimalDocument(t *testing.T) {
	doc := []byte(`referenced:
  pattern: "System.Configuration.*.AppSettings"
`)
	info, err := ParseConditionInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, "System.Configuration.*.AppSettings", info.Referenced.Pattern)
	assert.Empty(t, info.Referenced.Location)
	assert.Empty(t, info.Referenced.FilePaths)
}

func TestParseConditionInfoAcceptsFullDocument(t *testing.T) {
	doc := []byte(`referenced:
  pattern: "Acme.*.Widget"
  location: "src/Widgets"
  file_paths:
    - "src/Widgets/A.cs"
    - "src/Widgets/B.cs"
`)
	info, err := ParseConditionInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, "src/Widgets", info.Referenced.Location)
	assert.Equal(t, []string{"src/Widgets/A.cs", "src/Widgets/B.cs"}, info.Referenced.FilePaths)
}

func TestParseConditionInfoRejectsMissingPattern(t *testing.T) {
	doc := []byte(`referenced:
  location: "src/Widgets"
`)
	_, err := ParseConditionInfo(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interrors.ErrBadPattern))
}

func TestParseConditionInfoRejectsMalformedYAML(t *testing.T) {
	doc := []byte("referenced: [this is not a mapping")
	_, err := ParseConditionInfo(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interrors.ErrBadPattern))
}

func TestParseConditionInfoRejectsOversizedFilePaths(t *testing.T) {
	t.Setenv("CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT", "2")

	var sb strings.Builder
	sb.WriteString("referenced:\n  pattern: \"Acme.*\"\n  file_paths:\n")
	for i := 0; i < 3; i++ {
		sb.WriteString("    - \"f")
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString(".cs\"\n")
	}

	_, err := ParseConditionInfo([]byte(sb.String()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, interrors.ErrBadPattern))
}

func TestFilePathsSoftLimitDefaultsWhenUnset(t *testing.T) {
	t.Setenv("CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT", "")
	assert.Equal(t, DefaultFilePathsSoftLimit, FilePathsSoftLimit())
}

func TestFilePathsSoftLimitHonorsEnvOverride(t *testing.T) {
	t.Setenv("CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT", "10")
	assert.Equal(t, 10, FilePathsSoftLimit())
}

func TestValidateRequestID(t *testing.T) {
	assert.NoError(t, ValidateRequestID("short-id"))
	assert.Error(t, ValidateRequestID(strings.Repeat("a", RequestIDMaxBytes+1)))
}
