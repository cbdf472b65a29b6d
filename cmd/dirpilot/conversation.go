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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"dirpilot/internal/chat"
	"dirpilot/internal/theme"
	"dirpilot/internal/tools"
)

// handleConversation sends input to the assistant and prints the answer.
// The request is cancelled through canceler.
func handleConversation(session *chat.Session, input string, out io.Writer, colors *theme.ColorScheme, canceler *operationCanceler, logger zerolog.Logger) {
	logConversation(logger, openai.ChatMessageRoleUser, input)

	ctx, cancel := context.WithCancel(context.Background())
	canceler.Set(cancel)
	defer func() {
		canceler.Clear()
		cancel()
	}()

	start := time.Now()
	response, err := session.Exchange(ctx, input)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			colors.Error.Fprintln(out, "✗ Request cancelled")
		} else {
			colors.Error.Fprintf(out, "✗ Error: %v\n", err)
		}
		logger.Error().Err(err).Dur("duration_ms", duration).Msg("Error getting response")
		return
	}

	logger.Info().Dur("duration_ms", duration).Msg("AI response received")
	logConversation(logger, openai.ChatMessageRoleAssistant, response)

	colors.Assistant.Fprint(out, "⟫ ")
	fmt.Fprintln(out, response)
	fmt.Fprintln(out)
}

// toolResultPrinter shows each executed tool call as it happens.
func toolResultPrinter(out io.Writer, colors *theme.ColorScheme, logger zerolog.Logger) chat.ToolResultFunc {
	return func(call openai.ToolCall, result *tools.ToolResult) {
		logToolCall(logger, call.Function.Name, call.Function.Arguments)

		formatted := tools.FormatToolResult(call, result, true)
		lines := strings.Split(formatted, "\n")
		fmt.Fprintln(out, colors.Tool.Sprintf("🔧 %s", lines[0]))
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if result.Failed() {
				colors.Error.Fprintln(out, line)
			} else {
				colors.Muted.Fprintln(out, line)
			}
		}

		event := logger.Debug()
		if result.Failed() {
			event = logger.Warn().Str("code", string(result.Code)).AnErr("error", result.Error)
		}
		event.Str("tool_name", call.Function.Name).Int("result_length", len(result.Result)).Msg("Tool executed")
	}
}

func logToolCall(logger zerolog.Logger, name, args string) {
	logger.Info().
		Str("role", "tool_call").
		Str("tool", name).
		Str("args", args).
		Msg("conversation")
}

func logConversation(logger zerolog.Logger, role, content string) {
	if content == "" {
		return
	}
	logger.Info().
		Str("role", role).
		Str("content", content).
		Msg("conversation")
}
