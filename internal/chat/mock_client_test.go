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
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"dirpilot/internal/config"
	"dirpilot/internal/fsops"
	"dirpilot/internal/paths"
	"dirpilot/internal/tools"
	"dirpilot/internal/workdir"
)

// MockChatClient is a scripted ChatClient. Responses are returned in order;
// once they run out the last one repeats.
type MockChatClient struct {
	CreateCompletionFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	Responses            []openai.ChatCompletionResponse

	mu              sync.Mutex
	CompletionCalls []openai.ChatCompletionRequest
}

// CreateChatCompletion implements ChatClient.
func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	m.CompletionCalls = append(m.CompletionCalls, req)
	calls := len(m.CompletionCalls)
	m.mu.Unlock()

	if m.CreateCompletionFunc != nil {
		return m.CreateCompletionFunc(ctx, req)
	}
	if len(m.Responses) > 0 {
		idx := calls - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		return m.Responses[idx], nil
	}
	return textResponse("mock response"), nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolCallResponse(calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				ToolCalls: calls,
			},
		}},
	}
}

func toolCall(id, name, args string) openai.ToolCall {
	return openai.ToolCall{
		ID:       id,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	return cfg
}

// newTestSession returns a session whose tools operate inside a fresh
// temporary directory, using the default policy. A nil cfg selects testConfig.
func newTestSession(t *testing.T, client ChatClient, cfg *config.Config) (*Session, string) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	base := t.TempDir()
	env := paths.MapEnv(base, nil)
	ops := fsops.New(workdir.New(base), zerolog.Nop(), fsops.Options{Env: &env})
	registry := tools.NewRegistry(ops, tools.Options{
		RateLimits: &tools.RateLimitConfig{},
		Logger:     zerolog.Nop(),
	})
	return NewSessionWithClient(cfg, client, registry, zerolog.Nop()), base
}
