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
	"text/tabwriter"

	"github.com/kraklabs/csharp-analyzer/internal/bootstrap"
	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/internal/output"
	"github.com/kraklabs/csharp-analyzer/internal/ui"
	"github.com/kraklabs/csharp-analyzer/pkg/evaluator"
	"github.com/kraklabs/csharp-analyzer/pkg/pattern"
)

// queryResultJSON is the shape printed by 'query --json'.
type queryResultJSON struct {
	Pattern   string         `json:"pattern"`
	Incidents []incidentJSON `json:"incidents"`
	Count     int            `json:"count"`
}

type incidentJSON struct {
	File      string            `json:"file"`
	Line      int               `json:"line"`
	Variables map[string]string `json:"variables,omitempty"`
}

// runQuery executes the 'query' CLI command: compiles a dotted pattern and
// evaluates it against the project's cached graph.
//
// Usage: csharp-analyzer query [options] <pattern>
func runQuery(args []string, configPath string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	method := fs.Bool("method", false, "Match receiver.method pairs instead of namespace-scoped symbols")
	jsonOutput := fs.Bool("json", false, "Emit JSON instead of a table")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: csharp-analyzer query [options] <pattern>

Evaluates a dotted pattern against the indexed project's symbol graph and
prints every matching reference.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		interrors.FatalError(interrors.NewInputError(
			"query requires exactly one pattern argument",
			fmt.Sprintf("got %d positional arguments", fs.NArg()),
			`Pass a single dotted pattern, e.g. "System.Configuration.*.AppSettings"`,
		), *jsonOutput)
	}
	rawPattern := fs.Arg(0)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		interrors.FatalError(interrors.NewConfigError(
			"cannot load project configuration", err.Error(),
			"Run 'csharp-analyzer init' to create .analyzer/project.yaml.", err,
		), *jsonOutput)
	}

	p, err := pattern.Compile(rawPattern)
	if err != nil {
		interrors.FatalError(interrors.FromError("invalid pattern", err), *jsonOutput)
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

	kind := evaluator.KindAll
	if *method {
		kind = evaluator.KindMethod
	}

	incidents, err := proj.Query(p, kind)
	if err != nil {
		interrors.FatalError(interrors.FromError("query failed", err), *jsonOutput)
	}

	if *jsonOutput {
		outputQueryJSON(rawPattern, incidents)
		return
	}
	printQueryResult(rawPattern, incidents)
}

func outputQueryJSON(rawPattern string, incidents []evaluator.Incident) {
	result := queryResultJSON{
		Pattern:   rawPattern,
		Incidents: make([]incidentJSON, 0, len(incidents)),
		Count:     len(incidents),
	}
	for _, inc := range incidents {
		result.Incidents = append(result.Incidents, incidentJSON{
			File:      inc.FileURI,
			Line:      inc.LineNumber,
			Variables: inc.Variables,
		})
	}
	_ = output.JSON(result)
}

func printQueryResult(rawPattern string, incidents []evaluator.Incident) {
	if len(incidents) == 0 {
		ui.Warningf("No matches for %q", rawPattern)
		return
	}

	ui.Header(fmt.Sprintf("%d match(es) for %q", len(incidents), rawPattern))
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", ui.Label("FILE"), ui.Label("LINE"), ui.Label("SYMBOL"))
	for _, inc := range incidents {
		fmt.Fprintf(w, "%s\t%d\t%s\n", inc.FileURI, inc.LineNumber, inc.Variables["matchedSymbol"])
	}
	_ = w.Flush()
}
