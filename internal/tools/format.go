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

package tools

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const displayTruncateChars = 200

// FormatToolResult renders a tool call and its result for the terminal. The
// first line names the call; the rest is the output, cut to a short preview
// when truncate is set.
func FormatToolResult(call openai.ToolCall, result *ToolResult, truncate bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", call.Function.Name, compactArgs(call.Function.Arguments))

	if result == nil {
		b.WriteString("  (no result)\n")
		return b.String()
	}

	body := result.Result
	if body == "" && result.Error != nil {
		body = result.Error.Error()
	}
	if truncate {
		if cut, ok := truncateString(body, displayTruncateChars); ok {
			body = cut + "..."
		}
	}

	switch {
	case result.Error != nil:
		fmt.Fprintf(&b, "  Error: %s\n", body)
	case result.Code != "":
		fmt.Fprintf(&b, "  Failed (%s): %s\n", result.Code, body)
	default:
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func compactArgs(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return ""
	}
	if cut, ok := truncateString(raw, 120); ok {
		return cut + "..."
	}
	return raw
}
