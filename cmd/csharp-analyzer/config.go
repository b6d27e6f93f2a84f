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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/csharp-analyzer/pkg/resolver"
)

// Config is the on-disk .analyzer/project.yaml descriptor.
type Config struct {
	ProjectID    string `yaml:"project_id"`
	AnalysisMode string `yaml:"analysis_mode"`
	Tools        struct {
		PaketCmd string `yaml:"paket_cmd,omitempty"`
		IlspyCmd string `yaml:"ilspy_cmd,omitempty"`
	} `yaml:"tools"`
}

// DefaultConfig returns a Config with sensible defaults for a freshly
// initialized project.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID:    projectID,
		AnalysisMode: "full",
	}
}

// ResolverTools converts the config's tool paths into a resolver.Tools,
// leaving empty fields for PATH resolution.
func (c *Config) ResolverTools() resolver.Tools {
	return resolver.Tools{
		PackageManager: c.Tools.PaketCmd,
		Decompiler:     c.Tools.IlspyCmd,
	}
}

// ConfigDir returns the .analyzer directory for a project rooted at dir.
func ConfigDir(dir string) string {
	return filepath.Join(dir, ".analyzer")
}

// ConfigPath returns the project.yaml path for a project rooted at dir.
func ConfigPath(dir string) string {
	return filepath.Join(ConfigDir(dir), "project.yaml")
}

// LoadConfig reads and parses the project.yaml at path. An empty path
// defaults to ConfigPath(cwd).
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get current directory: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied, same trust boundary as the CLI itself
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.AnalysisMode == "" {
		cfg.AnalysisMode = "full"
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
