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

// Package bootstrap handles analyzed-project initialization and setup.
//
// This internal package wraps pkg/project's lifecycle state machine with a
// project-ID-addressed, home-directory-rooted data layout, the way a CLI
// or RPC front end wants to open a project by name rather than by handing
// around a raw store path.
//
// # Initialization Workflow
//
//	info, p, err := bootstrap.InitProject(ctx, bootstrap.ProjectConfig{
//	    ProjectID: "myproject",
//	    Location:  "/path/to/csharp/project",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Project initialized at: %s\n", info.DataDir)
//	defer p.Close()
//
//	// Later, reopen the project for queries without re-ingesting.
//	p, err := bootstrap.OpenProject(ctx, bootstrap.ProjectConfig{
//	    ProjectID: "myproject",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
// # Idempotency
//
// InitProject is idempotent: calling it multiple times against the same
// project is safe, since pkg/project.BuildGraph itself reloads from the
// store instead of re-ingesting once the store already holds files.
//
// # Configuration
//
// ProjectConfig controls the initialization behavior:
//
//   - ProjectID: Required. Logical identifier, used to name the data
//     directory when DataDir is left blank.
//   - Location: The C# project directory to analyze.
//   - DataDir: Optional. Where to store the bbolt file. Defaults to
//     ~/.csharp-analyzer/data/<project_id>.
//   - AnalysisMode: "full" or "source-only". Defaults to "full".
//   - Tools: paths to the paket and ilspycmd executables.
//
// # Project Discovery
//
// List existing projects in the default data directory:
//
//	projects, err := bootstrap.ListProjects()
//	for _, id := range projects {
//	    fmt.Println(id)
//	}
package bootstrap
