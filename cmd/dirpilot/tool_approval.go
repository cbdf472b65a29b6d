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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/term"

	"dirpilot/internal/chat"
	"dirpilot/internal/tools"
)

type approvalDecision int

const (
	approvalUnknown approvalDecision = iota
	approvalYes
	approvalNo
	approvalAlways
)

type toolPromptFunc func(call openai.ToolCall) (approvalDecision, error)

// newToolApprover asks prompt about every call. "always" promotes the tool
// to allow in registry for the rest of the session.
func newToolApprover(registry *tools.Registry, prompt toolPromptFunc) chat.ToolApprovalFunc {
	return func(call openai.ToolCall) (bool, error) {
		decision, err := prompt(call)
		if err != nil {
			return false, err
		}
		if decision == approvalAlways {
			if err := registry.SetPermission(toolCallName(call), tools.PermissionAllow); err != nil {
				return false, err
			}
			return true, nil
		}
		return decision == approvalYes, nil
	}
}

// ttyPrompt asks on the controlling terminal, which is also used when stdin
// carries batch input.
func ttyPrompt(call openai.ToolCall) (approvalDecision, error) {
	input := os.Stdin
	output := io.Writer(os.Stdout)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return approvalNo, fmt.Errorf("no TTY available for tool approval")
		}
		defer tty.Close()
		input = tty
		output = tty
	}
	return promptApproval(bufio.NewReader(input), output, call)
}

// readlinePrompt asks through the console's readline instance so the
// question does not compete with it for stdin.
func readlinePrompt(rl *readline.Instance) toolPromptFunc {
	return func(call openai.ToolCall) (approvalDecision, error) {
		saved := rl.Config.Prompt
		defer rl.SetPrompt(saved)

		rl.SetPrompt(approvalQuestion(call))
		for {
			line, err := rl.Readline()
			if err != nil {
				return approvalNo, err
			}
			decision := parseApprovalInput(line)
			if decision != approvalUnknown {
				return decision, nil
			}
			fmt.Fprintln(rl.Stdout(), "Please enter yes, no, or always.")
		}
	}
}

func promptApproval(reader *bufio.Reader, output io.Writer, call openai.ToolCall) (approvalDecision, error) {
	for {
		fmt.Fprint(output, approvalQuestion(call))
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return approvalNo, err
		}
		decision := parseApprovalInput(line)
		if decision != approvalUnknown {
			return decision, nil
		}
		fmt.Fprintln(output, "Please enter yes, no, or always.")
		if err == io.EOF {
			return approvalNo, err
		}
	}
}

// approvalQuestion shows the call's arguments without file content.
func approvalQuestion(call openai.ToolCall) string {
	name := toolCallName(call)
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	argsDisplay := ""
	if rawArgs != "" && rawArgs != "{}" && rawArgs != "null" {
		argsDisplay = fmt.Sprintf(" with args %s", rawArgs)
		if argsMap, ok := parseArgsJSON(rawArgs); ok {
			if content, ok := argsMap["content"].(string); ok {
				argsMap["content"] = fmt.Sprintf("(%d bytes)", len(content))
			}
			if redacted, err := json.Marshal(argsMap); err == nil {
				argsDisplay = fmt.Sprintf(" with args %s", string(redacted))
			}
		}
	}
	return fmt.Sprintf("Allow tool %s%s? (Yes/no/always): ", name, argsDisplay)
}

func parseApprovalInput(input string) approvalDecision {
	normalized := strings.TrimSpace(strings.ToLower(input))
	if normalized == "" {
		return approvalYes
	}
	switch {
	case isPrefixToken(normalized, "yes"):
		return approvalYes
	case isPrefixToken(normalized, "no"):
		return approvalNo
	case isPrefixToken(normalized, "always"):
		return approvalAlways
	default:
		return approvalUnknown
	}
}

func isPrefixToken(input, target string) bool {
	if input == "" || len(input) > len(target) {
		return false
	}
	return strings.HasPrefix(target, input)
}

func toolCallName(call openai.ToolCall) string {
	name := call.Function.Name
	if name == "" {
		return "unknown_tool"
	}
	return name
}

func parseArgsJSON(rawArgs string) (map[string]interface{}, bool) {
	if rawArgs == "" {
		return nil, false
	}
	var argsMap map[string]interface{}
	if err := json.Unmarshal([]byte(rawArgs), &argsMap); err != nil {
		return nil, false
	}
	return argsMap, true
}
