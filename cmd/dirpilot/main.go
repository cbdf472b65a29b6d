// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"dirpilot/internal/config"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	debugMode  = flag.Bool("d", false, "Enable debug mode")
	logFile    = flag.String("log-file", "", "Log file path (logs disabled by default)")
	configPath = flag.String("config", "config.json", "Configuration file path")
	version    = flag.Bool("version", false, "Print version and exit")

	printSchema  = flag.Bool("config-schema", false, "Print the config.json JSON schema and exit")
	printExample = flag.Bool("config-example", false, "Print an example config.json and exit")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *version {
		fmt.Printf("dirpilot %s\n", Version)
		return 0
	}
	if *printSchema {
		fmt.Println(config.SchemaJSON())
		return 0
	}
	if *printExample {
		fmt.Println(config.ExampleConfigJSON())
		return 0
	}

	logger, closer, err := initLogger(*debugMode, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}
	logger.Info().Str("version", Version).Msg("dirpilot starting")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load config")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	session, warnings, err := buildSession(cfg, nil, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start session")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", w.Field, w.Message)
	}

	if useBatchMode(flag.Args(), term.IsTerminal(int(os.Stdin.Fd()))) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		session.Approve = newToolApprover(session.ToolRegistry, ttyPrompt)
		if err := runBatch(ctx, session, cfg, os.Stdin, os.Stdout, logger); err != nil {
			logger.Error().Err(err).Msg("Batch mode failed")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runREPL(session, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Console failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// useBatchMode selects batch mode for an explicit "-" argument or when
// stdin is not a terminal.
func useBatchMode(args []string, stdinIsTerminal bool) bool {
	if len(args) > 0 && args[0] == "-" {
		return true
	}
	return !stdinIsTerminal
}

func initLogger(debug bool, logFilePath string) (zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Logs are discarded unless a log file is given.
	var output io.Writer = io.Discard
	var closer io.Closer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		closer = file
	}

	return zerolog.New(output).With().Timestamp().Logger(), closer, nil
}
