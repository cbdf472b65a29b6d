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

package chat

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// ChatClient abstracts the OpenAI client so sessions can be driven by a
// fake in tests.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// HistoryStorage persists conversation messages.
type HistoryStorage interface {
	// Save appends messages to the store at path.
	Save(path string, messages []openai.ChatCompletionMessage) error
	// Load returns at most the last maxMessages stored messages; 0 means all.
	// A missing store yields no messages and no error.
	Load(path string, maxMessages int) ([]openai.ChatCompletionMessage, error)
}

var _ ChatClient = (*openai.Client)(nil)
var _ HistoryStorage = JSONLHistory{}
