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

// Package commands implements the console's slash commands.
package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sashabaranov/go-openai"

	"dirpilot/internal/chat"
	"dirpilot/internal/theme"
	"dirpilot/internal/tools"
)

// Env is what a command acts on.
type Env struct {
	Session *chat.Session
	Out     io.Writer
	Colors  *theme.ColorScheme
}

// Handler runs a command and reports whether the console should exit.
type Handler func(env *Env, args []string) (quit bool, err error)

// Command represents a slash command
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     Handler
}

// Registry holds all available commands
type Registry struct {
	commands map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*Command)}

	r.Register("help", "", "Show available commands", r.handleHelp)
	r.Register("pwd", "", "Show the current directory", handlePwd)
	r.Register("ls", "", "List the current directory", handleLs)
	r.Register("cd", "<dir>", "Change the current directory", handleCd)
	r.Register("permissions", "[tool allow|ask|deny]", "Show or change tool permissions", handlePermissions)
	r.Register("history", "", "Display conversation history", handleHistory)
	r.Register("clear", "", "Clear conversation history", handleClear)
	r.Register("quit", "", "Exit the application", handleQuit)
	r.Register("exit", "", "Exit the application", handleQuit)

	return r
}

// Register adds a new command to the registry
func (r *Registry) Register(name, usage, description string, handler Handler) {
	r.commands[name] = &Command{
		Name:        name,
		Usage:       usage,
		Description: description,
		Handler:     handler,
	}
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	list := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// IsCommand reports whether input is a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Execute runs the slash command in input. Unknown commands are reported
// on env.Out.
func (r *Registry) Execute(env *Env, input string) (bool, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])

	cmd, exists := r.commands[name]
	if !exists {
		env.Colors.Error.Fprintf(env.Out, "✗ Unknown command: /%s (type /help for available commands)\n", name)
		return false, nil
	}
	return cmd.Handler(env, fields[1:])
}

func (r *Registry) handleHelp(env *Env, _ []string) (bool, error) {
	fmt.Fprintln(env.Out, env.Colors.Header.Sprint("Available Commands:"))
	for _, cmd := range r.Commands() {
		usage := "/" + cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		fmt.Fprintf(env.Out, "  %-34s %s\n", usage, cmd.Description)
	}
	fmt.Fprintln(env.Out, "\nAnything else is sent to the assistant. Ctrl+C cancels a running request.")
	return false, nil
}

func handlePwd(env *Env, _ []string) (bool, error) {
	fmt.Fprintln(env.Out, env.Session.ToolRegistry.Ops().CurrentDirectory())
	return false, nil
}

func handleLs(env *Env, _ []string) (bool, error) {
	listing, err := env.Session.ToolRegistry.Ops().ListCurrentDirectory()
	if err != nil {
		env.Colors.Error.Fprintf(env.Out, "✗ %v\n", err)
		return false, nil
	}
	if listing == "" {
		env.Colors.Muted.Fprintln(env.Out, "(empty)")
		return false, nil
	}
	fmt.Fprintln(env.Out, listing)
	return false, nil
}

func handleCd(env *Env, args []string) (bool, error) {
	if len(args) == 0 {
		env.Colors.Error.Fprintln(env.Out, "✗ Usage: /cd <dir>")
		return false, nil
	}
	msg, err := env.Session.ToolRegistry.Ops().ChangeDirectory(strings.Join(args, " "))
	if err != nil {
		env.Colors.Error.Fprintf(env.Out, "✗ %v\n", err)
		return false, nil
	}
	env.Colors.Success.Fprintf(env.Out, "✓ %s\n", msg)
	return false, nil
}

func handlePermissions(env *Env, args []string) (bool, error) {
	registry := env.Session.ToolRegistry
	switch len(args) {
	case 0:
	case 2:
		level := tools.PermissionLevel(strings.ToLower(args[1]))
		switch level {
		case tools.PermissionAllow, tools.PermissionAsk, tools.PermissionDeny:
		default:
			env.Colors.Error.Fprintf(env.Out, "✗ Unknown permission level %q (use allow, ask or deny)\n", args[1])
			return false, nil
		}
		if err := registry.SetPermission(args[0], level); err != nil {
			env.Colors.Error.Fprintf(env.Out, "✗ %v\n", err)
			return false, nil
		}
		env.Colors.Success.Fprintf(env.Out, "✓ %s set to %s\n", args[0], level)
		return false, nil
	default:
		env.Colors.Error.Fprintln(env.Out, "✗ Usage: /permissions [tool allow|ask|deny]")
		return false, nil
	}

	fmt.Fprintln(env.Out, env.Colors.Header.Sprint("Tool Permissions:"))
	w := tabwriter.NewWriter(env.Out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Tool\tPermission\tChanges files")
	fmt.Fprintln(w, "────\t──────────\t─────────────")
	for _, tool := range registry.GetTools() {
		mutating := "no"
		if tool.Mutating() {
			mutating = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", tool.Name(), registry.GetPermission(tool.Name()).Level(), mutating)
	}
	return false, w.Flush()
}

func handleHistory(env *Env, _ []string) (bool, error) {
	messages := env.Session.GetHistory()
	if len(messages) == 0 {
		env.Colors.Muted.Fprintln(env.Out, "No conversation history")
		return false, nil
	}

	fmt.Fprintln(env.Out, env.Colors.Header.Sprint("Conversation History:"))
	for _, msg := range messages {
		switch msg.Role {
		case openai.ChatMessageRoleUser:
			env.Colors.User.Fprint(env.Out, "❯ ")
			fmt.Fprintln(env.Out, msg.Content)
		case openai.ChatMessageRoleAssistant:
			if msg.Content == "" {
				continue
			}
			env.Colors.Assistant.Fprint(env.Out, "⟫ ")
			fmt.Fprintln(env.Out, msg.Content)
		case openai.ChatMessageRoleTool:
			env.Colors.Muted.Fprintf(env.Out, "  [%s] %s\n", msg.Name, firstLine(msg.Content))
		}
	}
	return false, nil
}

func handleClear(env *Env, _ []string) (bool, error) {
	env.Session.ClearHistory()
	env.Colors.Success.Fprintln(env.Out, "✓ Conversation history cleared")
	return false, nil
}

func handleQuit(*Env, []string) (bool, error) {
	return true, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
