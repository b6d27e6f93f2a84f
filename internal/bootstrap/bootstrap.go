// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/pkg/project"
	"github.com/kraklabs/csharp-analyzer/pkg/resolver"
)

// ProjectConfig holds configuration for initializing or reopening an
// analyzed project.
type ProjectConfig struct {
	// ProjectID is the logical project identifier, used to name its data
	// directory when DataDir is left blank.
	ProjectID string

	// Location is the C# project directory to analyze.
	Location string

	// DataDir is the directory holding the project's bbolt store.
	// Defaults to ~/.csharp-analyzer/data/<project_id>.
	DataDir string

	// AnalysisMode is "full" or "source-only". Defaults to "full".
	AnalysisMode string

	// Tools locates the paket and ilspycmd executables the Resolver drives.
	Tools resolver.Tools
}

// ProjectInfo holds information about an initialized project.
type ProjectInfo struct {
	ProjectID string
	DataDir   string
	StorePath string
}

func defaultDataDir(projectID string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".csharp-analyzer", "data", projectID), nil
}

func resolveConfig(config ProjectConfig) (ProjectConfig, error) {
	if config.ProjectID == "" {
		return config, fmt.Errorf("project_id is required")
	}
	if config.AnalysisMode == "" {
		config.AnalysisMode = "full"
	}
	if config.DataDir == "" {
		dir, err := defaultDataDir(config.ProjectID)
		if err != nil {
			return config, err
		}
		config.DataDir = dir
	}
	return config, nil
}

// InitProject initializes a new analyzed project with a local bbolt store.
// This function is idempotent: re-running it against an unchanged Location
// and an already-populated store reloads from the store instead of
// re-ingesting, since pkg/project.BuildGraph itself skips ingestion once
// the store already holds files.
//
// The function:
//  1. Creates the data directory if it doesn't exist.
//  2. Constructs a Project and runs validate_language -> build_graph ->
//     resolve -> load_dependencies_to_store.
//
// Returns the resulting ProjectInfo and the live Project, ready for Query.
func InitProject(ctx context.Context, config ProjectConfig, logger *slog.Logger) (*ProjectInfo, *project.Project, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config, err := resolveConfig(config)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	mode, err := project.ParseAnalysisMode(config.AnalysisMode)
	if err != nil {
		return nil, nil, err
	}

	storePath := filepath.Join(config.DataDir, "store.db")
	logger.Info("bootstrap.project.init.start",
		"project_id", config.ProjectID,
		"location", config.Location,
		"store", storePath,
	)

	p := project.New(project.Config{
		Location:  config.Location,
		StorePath: storePath,
		Mode:      mode,
		Tools:     config.Tools,
	}, logger)

	if err := p.Init(ctx); err != nil {
		return nil, nil, fmt.Errorf("project init: %w", err)
	}

	logger.Info("bootstrap.project.init.success",
		"project_id", config.ProjectID,
		"store", storePath,
	)

	return &ProjectInfo{
		ProjectID: config.ProjectID,
		DataDir:   config.DataDir,
		StorePath: storePath,
	}, p, nil
}

// OpenProject reopens an existing project's store. Its BuildGraph call
// loads the cached Graph straight from the store rather than re-ingesting
// Location, so Location need not even exist for a read-only reopen.
func OpenProject(ctx context.Context, config ProjectConfig, logger *slog.Logger) (*project.Project, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(config.DataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", interrors.ErrProjectNotFound, config.DataDir)
	}

	mode, err := project.ParseAnalysisMode(config.AnalysisMode)
	if err != nil {
		return nil, err
	}

	logger.Debug("bootstrap.project.open",
		"project_id", config.ProjectID,
		"data_dir", config.DataDir,
	)

	p := project.New(project.Config{
		Location:  config.Location,
		StorePath: filepath.Join(config.DataDir, "store.db"),
		Mode:      mode,
		Tools:     config.Tools,
	}, logger)

	if err := p.ValidateLanguage(); err != nil {
		return nil, err
	}
	if err := p.BuildGraph(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns the project IDs found under the default data
// directory.
func ListProjects() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".csharp-analyzer", "data")
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No projects yet
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	return projects, nil
}
