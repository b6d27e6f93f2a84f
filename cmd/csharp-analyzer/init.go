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
	"flag"
	"fmt"
	"os"
	"path/filepath"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/internal/ui"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force        bool
	projectID    string
	analysisMode string
	paketCmd     string
	ilspyCmd     string
}

func runInit(args []string) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		interrors.FatalError(interrors.NewInternalError(
			"cannot get current directory", err.Error(),
			"This is a bug. Please report it.", err,
		), false)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !flags.force {
		interrors.FatalError(interrors.NewConfigError(
			"configuration already exists", fmt.Sprintf("%s already exists", configPath),
			"Use --force to overwrite.", nil,
		), false)
	}

	pid := flags.projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}

	cfg := DefaultConfig(pid)
	if flags.analysisMode != "" {
		cfg.AnalysisMode = flags.analysisMode
	}
	cfg.Tools.PaketCmd = flags.paketCmd
	cfg.Tools.IlspyCmd = flags.ilspyCmd

	if err := os.MkdirAll(ConfigDir(cwd), 0o750); err != nil {
		interrors.FatalError(interrors.FromError("cannot create .analyzer directory", err), false)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		interrors.FatalError(interrors.FromError("cannot save configuration", err), false)
	}

	ui.Successf("Created %s", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .analyzer/project.yaml if needed")
	fmt.Println("  2. Run 'csharp-analyzer index' to build the symbol graph")
	fmt.Println("  3. Run 'csharp-analyzer query <pattern>' to search it")
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier (default: directory name)")
	fs.StringVar(&f.analysisMode, "analysis-mode", "full", `Analysis mode: "full" or "source-only"`)
	fs.StringVar(&f.paketCmd, "paket-cmd", "", "Path to the paket executable (default: PATH resolution)")
	fs.StringVar(&f.ilspyCmd, "ilspy-cmd", "", "Path to the ilspycmd executable (default: PATH resolution)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: csharp-analyzer init [options]

Creates .analyzer/project.yaml configuration file.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}
