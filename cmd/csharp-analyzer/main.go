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

// Package main implements the csharp-analyzer CLI for initializing,
// indexing, and querying a C# project's symbol graph.
//
// Usage:
//
//	csharp-analyzer init                Create .analyzer/project.yaml
//	csharp-analyzer index [--location]  Build or reload the symbol graph
//	csharp-analyzer query <pattern>     Evaluate a dotted pattern
//	csharp-analyzer status [--json]     Show project status
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kraklabs/csharp-analyzer/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		showVersion = pflag.Bool("version", false, "Show version and exit")
		configPath  = pflag.StringP("config", "c", "", "Path to .analyzer/project.yaml (default: ./.analyzer/project.yaml)")
		noColor     = pflag.Bool("no-color", false, "Disable colored output")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `csharp-analyzer - C# symbol-reference query engine

Usage:
  csharp-analyzer <command> [options]

Commands:
  init      Create .analyzer/project.yaml configuration
  index     Build the symbol graph for the current project
  query     Evaluate a dotted pattern against the indexed graph
  status    Show project status

Global Options:
`)
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  csharp-analyzer init --analysis-mode source-only
  csharp-analyzer index --location ./src
  csharp-analyzer query "System.Configuration.*.AppSettings"
  csharp-analyzer status --json

Data Storage:
  Data is stored locally in ~/.csharp-analyzer/data/<project_id>/
`)
	}

	pflag.Parse()
	ui.InitColors(*noColor)

	if *showVersion {
		fmt.Printf("csharp-analyzer version %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "index":
		runIndex(cmdArgs, *configPath)
	case "query":
		runQuery(cmdArgs, *configPath)
	case "status":
		runStatus(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		pflag.Usage()
		os.Exit(1)
	}
}
