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
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"dirpilot/internal/config"
	"dirpilot/internal/tools"
	systemprompt "dirpilot/system_prompt"
)

// maxToolRounds bounds how many consecutive tool-call rounds one prompt may trigger.
const maxToolRounds = 16

// ToolApprovalFunc decides whether a tool that requires confirmation may run.
type ToolApprovalFunc func(call openai.ToolCall) (bool, error)

// ToolResultFunc observes every executed tool call.
type ToolResultFunc func(call openai.ToolCall, result *tools.ToolResult)

// Session represents a chat session with context.
//
// Message operations are guarded by an internal mutex. The tool loop itself
// is sequential: one prompt is processed at a time.
type Session struct {
	Client       ChatClient
	Config       *config.Config
	Messages     []openai.ChatCompletionMessage
	ToolRegistry *tools.Registry
	History      HistoryStorage

	// Approve is consulted for tools at the ask level. Without it such
	// tools are refused.
	Approve ToolApprovalFunc
	// OnToolResult, when set, is called after each tool call.
	OnToolResult ToolResultFunc

	logger            zerolog.Logger
	filters           tools.OutputFilterConfig
	mu                sync.Mutex
	lastSavedMsgCount int
}

var defaultSystemPrompt = mustLoadSystemPrompt()

func mustLoadSystemPrompt() string {
	prompt, err := systemprompt.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load system prompt: %v", err))
	}
	return prompt
}

// NewSession creates a chat session backed by an OpenAI compatible endpoint.
func NewSession(cfg *config.Config, registry *tools.Registry, logger zerolog.Logger) *Session {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
	}
	return NewSessionWithClient(cfg, openai.NewClientWithConfig(clientConfig), registry, logger)
}

// NewSessionWithClient creates a chat session with a provided client.
func NewSessionWithClient(cfg *config.Config, client ChatClient, registry *tools.Registry, logger zerolog.Logger) *Session {
	return &Session{
		Client: client,
		Config: cfg,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: defaultSystemPrompt},
		},
		ToolRegistry: registry,
		History:      JSONLHistory{},
		logger:       logger.With().Str("component", "chat").Logger(),
		filters:      cfg.ToolOutputFiltersConfig(),
	}
}

// AddMessage adds a message to the conversation history
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:    role,
		Content: content,
	})
}

// AddAssistantMessage adds an assistant message with optional tool calls.
func (s *Session) AddAssistantMessage(content string, toolCalls []openai.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResultMessage appends a tool result message. The text is passed
// through the configured output filters first.
func (s *Session) AddToolResultMessage(call openai.ToolCall, result *tools.ToolResult) {
	content := result.Result
	if content == "" && result.Error != nil {
		content = fmt.Sprintf("Error: %v", result.Error)
	}
	if content == "" {
		content = "(no output)"
	}
	content, truncated := tools.SanitizeOutput(content, s.filters)
	if truncated {
		s.logger.Debug().Str("tool", call.Function.Name).Msg("tool output truncated")
	}

	name := call.Function.Name
	if name == "" {
		name = "unknown_tool"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: call.ID,
	})
}

// MessagesSnapshot returns a copy of the current messages.
func (s *Session) MessagesSnapshot() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]openai.ChatCompletionMessage, len(s.Messages))
	copy(msgs, s.Messages)
	return msgs
}

// Exchange sends one prompt and returns the model's final answer.
func (s *Session) Exchange(ctx context.Context, prompt string) (string, error) {
	return s.GetResponseWithContext(ctx, prompt)
}

// GetResponseWithContext sends prompt and runs requested tools until the
// model answers with plain text.
func (s *Session) GetResponseWithContext(ctx context.Context, prompt string) (string, error) {
	s.AddMessage(openai.ChatMessageRoleUser, prompt)

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.complete(ctx)
		if err != nil {
			return "", newAPIError("create_completion", err)
		}
		if len(resp.Choices) == 0 {
			return "", newAPIError("create_completion", ErrEmptyResponse)
		}

		response := resp.Choices[0].Message
		s.AddAssistantMessage(response.Content, response.ToolCalls)
		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		s.logger.Debug().Int("round", round).Int("calls", len(response.ToolCalls)).Msg("running tool calls")
		for _, call := range response.ToolCalls {
			result := s.executeToolCall(ctx, call)
			s.AddToolResultMessage(call, result)
			if s.OnToolResult != nil {
				s.OnToolResult(call, result)
			}
		}
	}

	return "", newAPIError("create_completion", fmt.Errorf("%w: limit is %d", ErrToolLoopExceeded, maxToolRounds))
}

func (s *Session) complete(ctx context.Context) (openai.ChatCompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.Config.Model,
		Messages: s.MessagesSnapshot(),
	}
	if s.ToolRegistry != nil {
		req.Tools = s.ToolRegistry.OpenAITools()
	}
	if s.Config.Temperature != nil {
		req.Temperature = *s.Config.Temperature
	}
	if s.Config.MaxTokens != nil {
		req.MaxTokens = *s.Config.MaxTokens
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.Config.RequestTimeout())
	defer cancel()
	return s.Client.CreateChatCompletion(reqCtx, req)
}

// executeToolCall runs one call, asking for approval when the tool's
// permission level is ask.
func (s *Session) executeToolCall(ctx context.Context, call openai.ToolCall) *tools.ToolResult {
	name := call.Function.Name
	if s.ToolRegistry == nil {
		return &tools.ToolResult{
			Function: name,
			Error:    fmt.Errorf("%w: %s", tools.ErrToolNotFound, name),
			Result:   "Error: no tools are available in this session",
		}
	}

	perm := s.ToolRegistry.GetPermission(name)
	if !perm.Allowed || !perm.RequireConfirmation || s.Approve == nil {
		return s.ToolRegistry.ExecuteOpenAIToolCall(ctx, call)
	}

	approved, err := s.Approve(call)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", name).Msg("tool approval failed")
		return &tools.ToolResult{
			Function: name,
			Error:    fmt.Errorf("%w: %s: %v", tools.ErrToolDeniedByUser, name, err),
			Result:   fmt.Sprintf("Tool '%s' was not approved: %v", name, err),
		}
	}
	if !approved {
		return &tools.ToolResult{
			Function: name,
			Error:    fmt.Errorf("%w: %s", tools.ErrToolDeniedByUser, name),
			Result:   fmt.Sprintf("User denied running tool '%s'.", name),
		}
	}
	return s.ToolRegistry.ExecuteOpenAIToolCallWithOptions(ctx, call, tools.ExecuteOptions{Force: true})
}

// ClearHistory clears the conversation history, keeping the system prompt.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = []openai.ChatCompletionMessage{s.Messages[0]}
	s.lastSavedMsgCount = 0
}

// GetHistory returns the conversation history excluding the system message.
func (s *Session) GetHistory() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]openai.ChatCompletionMessage, len(s.Messages)-1)
	copy(history, s.Messages[1:])
	return history
}

// SaveConversationHistory appends messages not yet saved to the history file.
func (s *Session) SaveConversationHistory(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.Messages[1:]
	if len(history) <= s.lastSavedMsgCount {
		return nil
	}
	if err := s.History.Save(path, history[s.lastSavedMsgCount:]); err != nil {
		return err
	}
	s.lastSavedMsgCount = len(history)
	return nil
}

// LoadConversationHistory loads at most maxMessages messages from path.
func (s *Session) LoadConversationHistory(path string, maxMessages int) error {
	messages, err := s.History.Load(path, maxMessages)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, messages...)
	s.lastSavedMsgCount = len(s.Messages) - 1
	s.logger.Debug().Int("messages", len(messages)).Str("file", path).Msg("history loaded")
	return nil
}

// PrintHistory writes the conversation to w, one line per message.
func (s *Session) PrintHistory(w io.Writer) {
	fmt.Fprintln(w, "--- Conversation History ---")
	for _, msg := range s.MessagesSnapshot()[1:] {
		role := "Unknown"
		switch msg.Role {
		case openai.ChatMessageRoleUser:
			role = "User"
		case openai.ChatMessageRoleAssistant:
			role = "Assistant"
		case openai.ChatMessageRoleTool:
			role = "Tool"
		}
		content := msg.Content
		if content == "" && len(msg.ToolCalls) > 0 {
			content = fmt.Sprintf("(%d tool calls)", len(msg.ToolCalls))
		}
		fmt.Fprintf(w, "%s: %s\n", role, content)
	}
	fmt.Fprintln(w, "--- End History ---")
}
