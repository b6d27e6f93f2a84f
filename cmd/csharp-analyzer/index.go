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
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/csharp-analyzer/internal/bootstrap"
	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
	"github.com/kraklabs/csharp-analyzer/internal/ui"
)

// runIndex executes the 'index' CLI command: it drives a Project through
// the full validate_language -> build_graph -> resolve ->
// load_dependencies_to_store sequence, or reloads an already-populated
// store in place.
//
// Flags:
//   - --location: C# project directory to analyze (default: current directory)
//   - --debug: Enable debug logging
func runIndex(args []string, configPath string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	location := fs.String("location", ".", "C# project directory to analyze")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: csharp-analyzer index [options]

Builds the symbol graph for the configured project, or reloads it from the
existing store if one already holds data.

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
		), false)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	spinner := newIndexSpinner()
	if spinner != nil {
		go func() {
			for spinner.State().CurrentPercent < 1 {
				_ = spinner.Add(1)
				time.Sleep(65 * time.Millisecond)
			}
		}()
	}

	info, p, err := bootstrap.InitProject(ctx, bootstrap.ProjectConfig{
		ProjectID:    cfg.ProjectID,
		Location:     *location,
		AnalysisMode: cfg.AnalysisMode,
		Tools:        cfg.ResolverTools(),
	}, logger)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		interrors.FatalError(interrors.FromError("index failed", err), false)
	}
	defer p.Close()

	ui.Successf("Indexed project %q", info.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("Store:"), ui.DimText(info.StorePath))
}

func newIndexSpinner() *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
