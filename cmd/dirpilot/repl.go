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
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"dirpilot/internal/chat"
	"dirpilot/internal/commands"
	"dirpilot/internal/config"
	"dirpilot/internal/theme"
)

func runREPL(session *chat.Session, cfg *config.Config, logger zerolog.Logger) error {
	logger.Debug().Msg("Running interactive console")

	colors := theme.ForEnvironment(os.LookupEnv)
	registry := commands.NewRegistry()
	ops := session.ToolRegistry.Ops()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              promptFor(ops),
		HistoryFile:         cfg.CommandHistoryFile,
		AutoComplete:        newCompleter(registry, ops),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		FuncFilterInputRune: filterInterruptRune,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	session.Approve = newToolApprover(session.ToolRegistry, readlinePrompt(rl))
	session.OnToolResult = toolResultPrinter(out, colors, logger)
	loadHistory(session, cfg, logger)

	fmt.Fprintln(out, colors.Header.Sprint("dirpilot by Dyne.org"))
	fmt.Fprintf(out, "Connected to: %s\n", cfg.APIURL)
	fmt.Fprintf(out, "Model in use: %s\n", cfg.Model)
	fmt.Fprintf(out, "Working in:   %s\n", ops.CurrentDirectory())
	colors.Muted.Fprintln(out, "Type /help for commands, /quit to exit")
	fmt.Fprintln(out)

	canceler := &operationCanceler{}
	stop := watchInterrupts(canceler)
	defer stop()

	env := &commands.Env{Session: session, Out: out, Colors: colors}
	for {
		rl.SetPrompt(promptFor(ops))
		line, err := rl.Readline()
		switch classifyReadlineError(line, err) {
		case readlineExit:
			logger.Info().Msg("Session ended")
			return nil
		case readlineContinue:
			continue
		case readlineUnhandled:
			if err != nil {
				return err
			}
		}

		line = strings.TrimSpace(sanitizeInputLine(line))
		if line == "" {
			continue
		}

		if commands.IsCommand(line) {
			logger.Debug().Str("command", line).Msg("Executing command")
			quit, err := registry.Execute(env, line)
			if err != nil {
				colors.Error.Fprintf(out, "✗ %v\n", err)
			}
			if quit {
				logger.Info().Msg("Session ended")
				return nil
			}
			continue
		}

		handleConversation(session, line, out, colors, canceler, logger)
		saveHistory(session, cfg, logger)
	}
}
