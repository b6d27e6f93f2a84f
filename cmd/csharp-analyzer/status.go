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
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/csharp-analyzer/internal/bootstrap"
	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/internal/output"
	"github.com/kraklabs/csharp-analyzer/internal/ui"
)

// statusResultJSON is the shape printed by 'status --json'.
type statusResultJSON struct {
	ProjectID       string `json:"project_id"`
	AnalysisMode    string `json:"analysis_mode"`
	State           string `json:"state"`
	DependencyCount int    `json:"dependency_count"`
	ResolvedCount   int    `json:"resolved_dependency_count"`
}

// runStatus executes the 'status' CLI command: opens the project's store
// and reports its lifecycle state and dependency counts without
// re-ingesting anything.
func runStatus(args []string, configPath string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Emit JSON instead of a human-readable summary")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: csharp-analyzer status [options]

Shows the indexed project's lifecycle state and dependency counts.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		interrors.FatalError(interrors.NewConfigError(
			"cannot load project configuration", err.Error(),
			"Run 'csharp-analyzer init' to create .analyzer/project.yaml.", err,
		), *jsonOutput)
	}

	proj, err := bootstrap.OpenProject(context.Background(), bootstrap.ProjectConfig{
		ProjectID:    cfg.ProjectID,
		AnalysisMode: cfg.AnalysisMode,
		Tools:        cfg.ResolverTools(),
	}, nil)
	if err != nil {
		interrors.FatalError(interrors.FromError("cannot open project", err), *jsonOutput)
	}
	defer proj.Close()

	deps := proj.DependenciesDag()
	resolved := 0
	for _, d := range deps {
		if d.Resolved {
			resolved++
		}
	}

	result := statusResultJSON{
		ProjectID:       cfg.ProjectID,
		AnalysisMode:    cfg.AnalysisMode,
		State:           proj.State().String(),
		DependencyCount: len(deps),
		ResolvedCount:   resolved,
	}

	if *jsonOutput {
		_ = output.JSON(result)
		return
	}
	printStatus(result)
}

func printStatus(s statusResultJSON) {
	ui.Header(fmt.Sprintf("Project %s", s.ProjectID))
	fmt.Printf("%s %s\n", ui.Label("Analysis mode:"), s.AnalysisMode)
	fmt.Printf("%s %s\n", ui.Label("State:"), s.State)
	fmt.Printf("%s %s\n", ui.Label("Dependencies:"), ui.CountText(s.DependencyCount))
	fmt.Printf("%s %d/%d\n", ui.Label("Resolved:"), s.ResolvedCount, s.DependencyCount)
}
