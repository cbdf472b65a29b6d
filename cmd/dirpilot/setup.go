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
	"github.com/rs/zerolog"

	"dirpilot/internal/chat"
	"dirpilot/internal/config"
	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/fsops"
	"dirpilot/internal/tools"
	"dirpilot/internal/workdir"
)

// buildSession wires the working directory, filesystem operations, tool
// registry and chat session from cfg. A nil client selects the OpenAI
// client configured by cfg.
func buildSession(cfg *config.Config, client chat.ChatClient, logger zerolog.Logger) (*chat.Session, []config.ValidationWarning, error) {
	state, err := workdir.FromProcess()
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeUnexpected, "failed to seed working directory", err)
	}
	ops := fsops.New(state, logger, fsops.Options{Limits: cfg.ToolLimitsConfig()})
	if cfg.WorkingDirectory != "" {
		if _, err := ops.ChangeDirectory(cfg.WorkingDirectory); err != nil {
			return nil, nil, apperrors.Wrap(apperrors.CodeConfig, "invalid working_directory", err)
		}
	}

	rates := cfg.ToolRateLimitsConfig()
	registry := tools.NewRegistry(ops, tools.Options{
		Policy:     cfg.ToolPolicy(),
		RateLimits: &rates,
		Logger:     logger,
	})

	warnings := cfg.Validate(registry)
	for _, w := range warnings {
		logger.Warn().Str("field", w.Field).Msg(w.Message)
	}

	var session *chat.Session
	if client == nil {
		session = chat.NewSession(cfg, registry, logger)
	} else {
		session = chat.NewSessionWithClient(cfg, client, registry, logger)
	}
	logger.Debug().
		Str("model", cfg.Model).
		Str("base", ops.CurrentDirectory()).
		Strs("tools", registry.GetToolNames()).
		Msg("session ready")
	return session, warnings, nil
}

func loadHistory(session *chat.Session, cfg *config.Config, logger zerolog.Logger) {
	if cfg.HistoryFile == "" {
		return
	}
	if err := session.LoadConversationHistory(cfg.HistoryFile, cfg.HistoryMaxMessages); err != nil {
		logger.Warn().Err(err).Msg("Failed to load conversation history")
	}
}

func saveHistory(session *chat.Session, cfg *config.Config, logger zerolog.Logger) {
	if cfg.HistoryFile == "" {
		return
	}
	if err := session.SaveConversationHistory(cfg.HistoryFile); err != nil {
		logger.Warn().Err(err).Msg("Failed to save conversation history")
	}
}
