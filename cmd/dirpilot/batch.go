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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"dirpilot/internal/chat"
	"dirpilot/internal/config"
)

const maxBatchLine = 1 << 20

// runBatch answers the first line of in and writes the response to out.
func runBatch(ctx context.Context, session *chat.Session, cfg *config.Config, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	logger.Debug().Msg("Running in batch mode")
	loadHistory(session, cfg, logger)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLine)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}
		return nil
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return nil
	}
	logConversation(logger, openai.ChatMessageRoleUser, input)

	start := time.Now()
	response, err := session.Exchange(ctx, input)
	duration := time.Since(start)
	if err != nil {
		logger.Error().Err(err).Dur("duration_ms", duration).Msg("Error getting response")
		saveHistory(session, cfg, logger)
		return fmt.Errorf("failed to get response: %w", err)
	}
	logger.Info().Dur("duration_ms", duration).Msg("AI response received")
	logConversation(logger, openai.ChatMessageRoleAssistant, response)

	fmt.Fprintln(out, response)
	saveHistory(session, cfg, logger)
	return nil
}
