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
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/sashabaranov/go-openai"
)

// JSONLHistory stores one JSON encoded message per line.
type JSONLHistory struct{}

// Save appends messages to the file at path, creating it if needed.
func (JSONLHistory) Save(path string, messages []openai.ChatCompletionMessage) error {
	if len(messages) == 0 {
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return newHistoryError("open", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, msg := range messages {
		if err := encoder.Encode(msg); err != nil {
			return newHistoryError("encode", path, err)
		}
	}
	return nil
}

// Load reads the file at path and keeps the last maxMessages entries.
func (JSONLHistory) Load(path string, maxMessages int) ([]openai.ChatCompletionMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, newHistoryError("open", path, err)
	}
	defer file.Close()

	var messages []openai.ChatCompletionMessage
	decoder := json.NewDecoder(file)
	for {
		var msg openai.ChatCompletionMessage
		if err := decoder.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return nil, newHistoryError("decode", path, err)
		}
		messages = append(messages, msg)
	}

	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
	return trimToUserTurn(messages), nil
}

// trimToUserTurn drops leading messages until the first user message, so a
// truncated history never opens with tool results whose calls were cut off.
func trimToUserTurn(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	for i, msg := range messages {
		if msg.Role == openai.ChatMessageRoleUser {
			return messages[i:]
		}
	}
	return nil
}
