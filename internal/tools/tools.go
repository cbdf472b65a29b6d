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

// Package tools exposes the filesystem operations as named tools the model
// can call, with a permission policy, argument validation and rate limits.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/fsops"
)

// PermissionLevel is the user-facing name of a Permission.
type PermissionLevel string

const (
	PermissionAllow PermissionLevel = "allow"
	PermissionAsk   PermissionLevel = "ask"
	PermissionDeny  PermissionLevel = "deny"
)

// Permission describes the policy for a tool.
type Permission struct {
	Allowed             bool
	RequireConfirmation bool
}

// Level maps the permission onto allow, ask or deny.
func (p Permission) Level() PermissionLevel {
	switch {
	case !p.Allowed:
		return PermissionDeny
	case p.RequireConfirmation:
		return PermissionAsk
	default:
		return PermissionAllow
	}
}

// PermissionFor returns the Permission matching level. Unknown levels deny.
func PermissionFor(level PermissionLevel) Permission {
	switch level {
	case PermissionAllow:
		return Permission{Allowed: true}
	case PermissionAsk:
		return Permission{Allowed: true, RequireConfirmation: true}
	default:
		return Permission{Allowed: false, RequireConfirmation: true}
	}
}

// Policy assigns permission levels to tool names. Tools not named keep
// their current level.
type Policy map[string]PermissionLevel

// DefaultPolicy allows the read-only tools and asks before anything that
// writes to disk.
func DefaultPolicy() Policy {
	return PolicyFromLists(
		[]string{
			"getCurrentDateTimeLocal",
			"getCurrentDirectory",
			"setCurrentDirectory",
			"listCurrentDirectory",
			"readFile",
		},
		[]string{
			"removePath",
			"renamePath",
			"makeDirectory",
			"createFile",
			"writeFile",
			"appendFile",
			"movePath",
		},
		nil,
	)
}

// PolicyFromLists builds a policy from allow, ask and deny lists. Later
// lists win when a name appears twice.
func PolicyFromLists(allow, ask, deny []string) Policy {
	policy := make(Policy, len(allow)+len(ask)+len(deny))
	for _, name := range allow {
		policy[name] = PermissionAllow
	}
	for _, name := range ask {
		policy[name] = PermissionAsk
	}
	for _, name := range deny {
		policy[name] = PermissionDeny
	}
	return policy
}

// ToolResult represents the result of a tool execution. Error is set only
// for registry-level failures; filesystem outcomes live in Result with
// Code naming their kind.
type ToolResult struct {
	Function string
	Result   string
	Error    error
	Code     apperrors.Code
	Duration time.Duration
}

// Failed reports whether the call did not achieve its effect.
func (r *ToolResult) Failed() bool {
	return r != nil && (r.Error != nil || r.Code != "")
}

// ExecuteOptions controls how tool execution is handled.
type ExecuteOptions struct {
	// Force bypasses policy checks and confirmation requirements (use only after explicit user consent).
	Force bool
}

// Options configures a Registry. Zero values select defaults.
type Options struct {
	Policy     Policy
	RateLimits *RateLimitConfig
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Registry holds all available tools with their implementations.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]Tool
	permissions map[string]Permission
	limiters    map[string]*toolRateLimiter
	rateConfig  RateLimitConfig
	now         func() time.Time
	ops         *fsops.Ops
	logger      zerolog.Logger
}

// NewRegistry creates a registry with the built-in tools bound to ops.
func NewRegistry(ops *fsops.Ops, opts Options) *Registry {
	rateConfig := DefaultRateLimitConfig()
	if opts.RateLimits != nil {
		rateConfig = *opts.RateLimits
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := &Registry{
		tools:       make(map[string]Tool),
		permissions: make(map[string]Permission),
		limiters:    make(map[string]*toolRateLimiter),
		rateConfig:  rateConfig,
		now:         now,
		ops:         ops,
		logger:      opts.Logger.With().Str("component", "tools").Logger(),
	}

	registerBuiltInTools(r)
	r.ApplyPolicy(DefaultPolicy())
	r.ApplyPolicy(opts.Policy)
	return r
}

// Ops returns the filesystem operations the built-in tools use.
func (r *Registry) Ops() *fsops.Ops {
	return r.ops
}

// RegisterTool adds a tool to the registry. New tools start denied until a
// policy names them.
func (r *Registry) RegisterTool(tool Tool) error {
	if tool == nil || tool.Name() == "" {
		return fmt.Errorf("%w: tool must have a name", ErrInvalidArguments)
	}
	if !tool.CompatibleWith(HostAPIVersion) {
		return fmt.Errorf("%w: %s %s", ErrIncompatibleTool, tool.Name(), tool.Version())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	if _, ok := r.permissions[name]; !ok {
		r.permissions[name] = PermissionFor(PermissionDeny)
	}
	r.limiters[name] = newToolRateLimiter(r.rateConfig.perMinute(name), r.rateConfig.Cooldowns[name], r.now)
	return nil
}

// ApplyPolicy merges policy into the registry permissions. Names that are
// not registered are ignored.
func (r *Registry) ApplyPolicy(policy Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, level := range policy {
		if _, ok := r.tools[name]; !ok {
			continue
		}
		r.permissions[name] = PermissionFor(level)
	}
}

// GetToolNames returns all tool names in sorted order.
func (r *Registry) GetToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTools returns all registered tools sorted by name.
func (r *Registry) GetTools() []Tool {
	names := r.GetToolNames()
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Tool, 0, len(names))
	for _, name := range names {
		list = append(list, r.tools[name])
	}
	return list
}

// OpenAITools returns the registry as OpenAI tool definitions, sorted by
// name so requests are stable.
func (r *Registry) OpenAITools() []openai.Tool {
	list := r.GetTools()
	defs := make([]openai.Tool, 0, len(list))
	for _, tool := range list {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}

// Execute runs the specified tool with given arguments.
func (r *Registry) Execute(ctx context.Context, function string, args map[string]interface{}) *ToolResult {
	return r.ExecuteWithOptions(ctx, function, args, ExecuteOptions{})
}

// ExecuteWithOptions runs the tool using the provided options.
func (r *Registry) ExecuteWithOptions(ctx context.Context, function string, args map[string]interface{}, opts ExecuteOptions) *ToolResult {
	if ctx == nil {
		ctx = context.Background()
	}
	result := &ToolResult{Function: function}

	tool, exists := r.getTool(function)
	if !exists {
		result.Error = fmt.Errorf("%w: %s", ErrToolNotFound, function)
		result.Result = fmt.Sprintf("Error: Tool '%s' not found. Available tools: %v", function, r.GetToolNames())
		return r.finish(result, args)
	}

	if !opts.Force {
		perm := r.getPermission(function)
		if !perm.Allowed {
			result.Error = fmt.Errorf("%w: %s", ErrToolNotAllowed, function)
			result.Result = fmt.Sprintf("Tool '%s' is blocked by policy. Enable it to proceed.", function)
			return r.finish(result, args)
		}
		if perm.RequireConfirmation {
			result.Error = fmt.Errorf("%w: %s", ErrToolRequiresConfirmation, function)
			result.Result = fmt.Sprintf("Tool '%s' requires explicit approval before running.", function)
			return r.finish(result, args)
		}
	}

	if err := tool.Validate(args); err != nil {
		result.Error = fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		result.Result = fmt.Sprintf("Error: %v", result.Error)
		return r.finish(result, args)
	}

	if err := r.getLimiter(function).Allow(); err != nil {
		result.Error = err
		result.Result = fmt.Sprintf("Tool '%s' is rate limited: %v", function, err)
		return r.finish(result, args)
	}

	if err := ctx.Err(); err != nil {
		result.Error = NewToolExecutionError(function, "", err)
		result.Result = fmt.Sprintf("Error: %v", result.Error)
		return r.finish(result, args)
	}

	start := r.now()
	r.run(ctx, tool, args, result)
	result.Duration = r.now().Sub(start)
	return r.finish(result, args)
}

// run executes tool, turning operation failures into result text and
// panics into execution errors.
func (r *Registry) run(ctx context.Context, tool Tool, args map[string]interface{}, result *ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result.Error = NewToolExecutionError(tool.Name(), "", fmt.Errorf("panic: %v", rec))
			result.Result = fmt.Sprintf("Error: tool %s panicked: %v", tool.Name(), rec)
			r.logger.Error().Str("tool", tool.Name()).Interface("panic", rec).Msg("tool panicked")
		}
	}()

	out, err := tool.Execute(ctx, args)
	if err != nil {
		result.Result = err.Error()
		result.Code = apperrors.CodeOf(err)
		return
	}
	result.Result = out
}

func (r *Registry) finish(result *ToolResult, args map[string]interface{}) *ToolResult {
	event := r.logger.Debug()
	if result.Error != nil {
		event = r.logger.Warn().Err(result.Error)
	}
	event.
		Str("tool", result.Function).
		Interface("args", args).
		Str("code", string(result.Code)).
		Dur("duration", result.Duration).
		Msg("tool executed")
	return result
}

// ExecuteOpenAIToolCall executes an OpenAI tool call payload.
func (r *Registry) ExecuteOpenAIToolCall(ctx context.Context, call openai.ToolCall) *ToolResult {
	return r.ExecuteOpenAIToolCallWithOptions(ctx, call, ExecuteOptions{})
}

// ExecuteOpenAIToolCallWithOptions executes a tool call with execution options.
func (r *Registry) ExecuteOpenAIToolCallWithOptions(ctx context.Context, call openai.ToolCall, opts ExecuteOptions) *ToolResult {
	name := call.Function.Name
	if name == "" {
		return &ToolResult{
			Function: "unknown_tool",
			Error:    fmt.Errorf("%w: tool call missing function name", ErrInvalidArguments),
			Result:   "Error: tool call missing function name",
		}
	}
	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			wrapped := fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			return &ToolResult{
				Function: name,
				Error:    wrapped,
				Result:   fmt.Sprintf("Error: %v", wrapped),
			}
		}
	}
	return r.ExecuteWithOptions(ctx, name, args, opts)
}

// SetPermission sets the permission level of a registered tool.
func (r *Registry) SetPermission(name string, level PermissionLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	r.permissions[name] = PermissionFor(level)
	return nil
}

// GetPermission returns the current permission entry for a tool.
func (r *Registry) GetPermission(name string) Permission {
	return r.getPermission(name)
}

func (r *Registry) getTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) getPermission(name string) Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if perm, ok := r.permissions[name]; ok {
		return perm
	}
	return PermissionFor(PermissionDeny)
}

func (r *Registry) getLimiter(name string) *toolRateLimiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiters[name]
}
