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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/fsops"
	"dirpilot/internal/tools"
)

const (
	defaultModel                 = "gpt-4o-mini"
	defaultAPIURL                = "https://api.openai.com/v1"
	defaultHistoryFile           = ".dirpilot_conversation_history"
	defaultCommandHistoryFile    = ".dirpilot_history"
	defaultHistoryMaxMessages    = 100
	defaultRequestTimeoutSeconds = 120
)

// Config represents the application configuration
type Config struct {
	APIKey                string            `json:"api_key"`
	APIURL                string            `json:"api_url,omitempty"`
	Model                 string            `json:"model"`
	Temperature           *float32          `json:"temperature,omitempty"`
	MaxTokens             *int              `json:"max_tokens,omitempty"`
	RequestTimeoutSeconds int               `json:"request_timeout_seconds,omitempty"`
	WorkingDirectory      string            `json:"working_directory,omitempty"`
	Tools                 ToolSettings      `json:"tools,omitempty"`
	ToolLimits            ToolLimits        `json:"tool_limits,omitempty"`
	ToolRateLimits        ToolRateLimits    `json:"tool_rate_limits,omitempty"`
	ToolOutputFilters     ToolOutputFilters `json:"tool_output_filters,omitempty"`
	HistoryFile           string            `json:"history_file,omitempty"`
	CommandHistoryFile    string            `json:"command_history_file,omitempty"`
	HistoryMaxMessages    int               `json:"history_max_messages,omitempty"`
}

// ToolSettings describes tool allow/ask/deny lists.
type ToolSettings struct {
	Allow               []string `json:"allow"`
	Ask                 []string `json:"ask,omitempty"`
	Deny                []string `json:"deny,omitempty"`
	RequireConfirmation []string `json:"require_confirmation,omitempty"`
}

// ToolLimits configures resource limits for filesystem tools.
type ToolLimits struct {
	MaxFileSizeBytes    int64 `json:"max_file_size_bytes,omitempty"`
	MaxDirectoryEntries int   `json:"max_directory_entries,omitempty"`
}

// ToolRateLimits configures tool rate limits and cooldowns.
type ToolRateLimits struct {
	DefaultPerMinute int            `json:"default_per_minute,omitempty"`
	PerTool          map[string]int `json:"per_tool,omitempty"`
	CooldownSeconds  map[string]int `json:"cooldown_seconds,omitempty"`
}

// ToolOutputFilters configures output sanitization for tool results.
type ToolOutputFilters struct {
	MaxChars     int  `json:"max_chars,omitempty"`
	StripANSI    bool `json:"strip_ansi,omitempty"`
	StripControl bool `json:"strip_control,omitempty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	limits := fsops.DefaultLimits()
	rates := tools.DefaultRateLimitConfig()
	cooldowns := make(map[string]int, len(rates.Cooldowns))
	for name, d := range rates.Cooldowns {
		cooldowns[name] = int(d / time.Second)
	}
	filters := tools.DefaultOutputFilterConfig()

	return &Config{
		Model:                 defaultModel,
		APIURL:                defaultAPIURL,
		RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		ToolLimits: ToolLimits{
			MaxFileSizeBytes:    limits.MaxFileSizeBytes,
			MaxDirectoryEntries: limits.MaxDirectoryEntries,
		},
		ToolRateLimits: ToolRateLimits{
			DefaultPerMinute: rates.DefaultPerMinute,
			CooldownSeconds:  cooldowns,
		},
		ToolOutputFilters: ToolOutputFilters{
			MaxChars:     filters.MaxChars,
			StripANSI:    filters.StripANSI,
			StripControl: filters.StripControl,
		},
		HistoryFile:        defaultHistoryFile,
		CommandHistoryFile: defaultCommandHistoryFile,
		HistoryMaxMessages: defaultHistoryMaxMessages,
	}
}

// LoadConfig loads configuration from a JSON file, applies env overrides, and validates required fields.
// A missing file is not an error; defaults and the environment are used instead.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfig, "failed to read config file", err)
		}
		normalized, err := normalizeConfigJSON(data)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfig, "invalid config file "+filepath, err)
		}
		if err := json.Unmarshal(normalized, config); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfig, "invalid config file "+filepath, err)
		}
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		config.APIKey = val
	}
	if val := os.Getenv("OPENAI_API_URL"); val != "" {
		config.APIURL = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		config.Model = val
	}

	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}

	if config.APIKey == "" {
		return nil, apperrors.New(apperrors.CodeConfig, "API key is required (set api_key in config.json or OPENAI_API_KEY)")
	}

	return config, nil
}

// RequestTimeout returns the per-request timeout for the chat API.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return defaultRequestTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ToolPolicy converts config settings into a tool policy. Names absent from
// every list keep their default level.
func (c *Config) ToolPolicy() tools.Policy {
	ask := append(append([]string{}, c.Tools.Ask...), c.Tools.RequireConfirmation...)
	return tools.PolicyFromLists(c.Tools.Allow, ask, c.Tools.Deny)
}

// ToolLimitsConfig returns filesystem limits for runtime enforcement.
func (c *Config) ToolLimitsConfig() fsops.Limits {
	return fsops.Limits{
		MaxFileSizeBytes:    c.ToolLimits.MaxFileSizeBytes,
		MaxDirectoryEntries: c.ToolLimits.MaxDirectoryEntries,
	}
}

// ToolRateLimitsConfig returns rate limiting configuration for tools.
func (c *Config) ToolRateLimitsConfig() tools.RateLimitConfig {
	cooldowns := make(map[string]time.Duration, len(c.ToolRateLimits.CooldownSeconds))
	for name, seconds := range c.ToolRateLimits.CooldownSeconds {
		if seconds <= 0 {
			continue
		}
		cooldowns[name] = time.Duration(seconds) * time.Second
	}
	perTool := make(map[string]int, len(c.ToolRateLimits.PerTool))
	for name, rate := range c.ToolRateLimits.PerTool {
		perTool[name] = rate
	}

	return tools.RateLimitConfig{
		DefaultPerMinute: c.ToolRateLimits.DefaultPerMinute,
		PerTool:          perTool,
		Cooldowns:        cooldowns,
	}
}

// ToolOutputFiltersConfig returns output filter configuration for tools.
func (c *Config) ToolOutputFiltersConfig() tools.OutputFilterConfig {
	return tools.OutputFilterConfig{
		MaxChars:     c.ToolOutputFilters.MaxChars,
		StripANSI:    c.ToolOutputFilters.StripANSI,
		StripControl: c.ToolOutputFilters.StripControl,
	}
}

// ValidationWarning represents a non-fatal configuration issue
type ValidationWarning struct {
	Field   string
	Message string
}

// Validate checks the configuration for common issues and returns warnings
func (c *Config) Validate(registry *tools.Registry) []ValidationWarning {
	var warnings []ValidationWarning

	// OpenAI expects 0-2
	if c.Temperature != nil {
		temp := *c.Temperature
		if temp < 0 || temp > 2 {
			warnings = append(warnings, ValidationWarning{
				Field:   "temperature",
				Message: fmt.Sprintf("temperature %.2f is outside recommended range [0, 2]", temp),
			})
		}
	}

	if c.MaxTokens != nil {
		tokens := *c.MaxTokens
		if tokens <= 0 {
			warnings = append(warnings, ValidationWarning{
				Field:   "max_tokens",
				Message: fmt.Sprintf("max_tokens %d must be positive", tokens),
			})
		}
		if tokens > 128000 {
			warnings = append(warnings, ValidationWarning{
				Field:   "max_tokens",
				Message: fmt.Sprintf("max_tokens %d exceeds typical model limits", tokens),
			})
		}
	}

	if registry != nil {
		registered := make(map[string]bool)
		for _, name := range registry.GetToolNames() {
			registered[name] = true
		}
		lists := []struct {
			field string
			names []string
		}{
			{"tools.allow", c.Tools.Allow},
			{"tools.ask", c.Tools.Ask},
			{"tools.require_confirmation", c.Tools.RequireConfirmation},
			{"tools.deny", c.Tools.Deny},
			{"tool_rate_limits.per_tool", mapKeys(c.ToolRateLimits.PerTool)},
			{"tool_rate_limits.cooldown_seconds", mapKeys(c.ToolRateLimits.CooldownSeconds)},
		}
		for _, list := range lists {
			for _, name := range list.names {
				if !registered[name] {
					warnings = append(warnings, ValidationWarning{
						Field:   list.field,
						Message: fmt.Sprintf("tool %q is not registered", name),
					})
				}
			}
		}
	}

	if c.HistoryMaxMessages <= 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "history_max_messages",
			Message: fmt.Sprintf("history_max_messages %d should be positive, using default", c.HistoryMaxMessages),
		})
	}

	if c.WorkingDirectory != "" {
		if info, err := os.Stat(c.WorkingDirectory); err != nil || !info.IsDir() {
			warnings = append(warnings, ValidationWarning{
				Field:   "working_directory",
				Message: fmt.Sprintf("working_directory %q is not an existing directory", c.WorkingDirectory),
			})
		}
	}

	return warnings
}
