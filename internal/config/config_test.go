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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/fsops"
	"dirpilot/internal/tools"
	"dirpilot/internal/workdir"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_URL", "")
	t.Setenv("OPENAI_MODEL", "")
}

func newRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	ops := fsops.New(workdir.New(t.TempDir()), zerolog.Nop(), fsops.Options{})
	return tools.NewRegistry(ops, tools.Options{Logger: zerolog.Nop()})
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `{"api_key":"file-key","model":"gpt-file","api_url":"https://file.example"}`)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_URL", "https://env.example")
	t.Setenv("OPENAI_MODEL", "env-model")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("expected env key to override file, got %s", cfg.APIKey)
	}
	if cfg.APIURL != "https://env.example" {
		t.Fatalf("expected env API URL to override file, got %s", cfg.APIURL)
	}
	if cfg.Model != "env-model" {
		t.Fatalf("expected env model to override file, got %s", cfg.Model)
	}
}

func TestMissingAPIKeyReturnsError(t *testing.T) {
	path := writeTempConfig(t, `{}`)
	clearEnv(t)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !apperrors.HasCode(err, apperrors.CodeConfig) {
		t.Fatalf("expected config error code, got %v", err)
	}
}

func TestMissingFileUsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != defaultModel || cfg.APIURL != defaultAPIURL {
		t.Fatalf("expected defaults, got model=%s url=%s", cfg.Model, cfg.APIURL)
	}
	if cfg.HistoryMaxMessages != defaultHistoryMaxMessages {
		t.Fatalf("expected default history size, got %d", cfg.HistoryMaxMessages)
	}
}

func TestConfigValidationRejectsUnknownField(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"top level", `{"api_key":"k","unknown_field":123}`, `"unknown_field"`},
		{"nested", `{"api_key":"k","tool_limits":{"max_directory_depth":3}}`, `"tool_limits.max_directory_depth"`},
		{"tools", `{"api_key":"k","tools":{"maybe":["readFile"]}}`, `"tools.maybe"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error for unknown field")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("expected error to name %s, got %v", tt.field, err)
			}
		})
	}
}

func TestConfigValidationRejectsInvalidType(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"number", `{"api_key":"k","tool_limits":{"max_file_size_bytes":"oops"}}`, "tool_limits.max_file_size_bytes"},
		{"string", `{"api_key":"k","working_directory":3}`, "working_directory"},
		{"bool", `{"api_key":"k","tool_output_filters":{"strip_ansi":"yes"}}`, "tool_output_filters.strip_ansi"},
		{"array", `{"api_key":"k","tools":{"allow":"readFile"}}`, "tools.allow"},
		{"map", `{"api_key":"k","tool_rate_limits":{"per_tool":{"readFile":"fast"}}}`, "tool_rate_limits.per_tool.readFile"},
		{"section", `{"api_key":"k","tools":[]}`, "tools must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error for invalid type")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("expected error to mention %s, got %v", tt.field, err)
			}
		})
	}
}

func TestToolLimitsDefaultsApplied(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{"api_key":"k"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.ToolLimitsConfig(); got != fsops.DefaultLimits() {
		t.Fatalf("expected default limits, got %+v", got)
	}
}

func TestToolLimitsCustom(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{
		"api_key": "k",
		"tool_limits": {"max_file_size_bytes": 1024, "max_directory_entries": 5}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	limits := cfg.ToolLimitsConfig()
	if limits.MaxFileSizeBytes != 1024 || limits.MaxDirectoryEntries != 5 {
		t.Fatalf("unexpected limits %+v", limits)
	}
}

func TestToolRateLimitsDefaultsAndCustom(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{"api_key":"k"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rates := cfg.ToolRateLimitsConfig()
	if rates.DefaultPerMinute != 60 {
		t.Fatalf("expected default 60/min, got %d", rates.DefaultPerMinute)
	}
	if rates.Cooldowns["removePath"] != time.Second {
		t.Fatalf("expected removePath cooldown, got %v", rates.Cooldowns["removePath"])
	}

	cfg, err = LoadConfig(writeTempConfig(t, `{
		"api_key": "k",
		"tool_rate_limits": {
			"default_per_minute": 10,
			"per_tool": {"writeFile": 2},
			"cooldown_seconds": {"movePath": 3, "removePath": 0}
		}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rates = cfg.ToolRateLimitsConfig()
	if rates.DefaultPerMinute != 10 || rates.PerTool["writeFile"] != 2 {
		t.Fatalf("unexpected rates %+v", rates)
	}
	if rates.Cooldowns["movePath"] != 3*time.Second {
		t.Fatalf("expected movePath cooldown 3s, got %v", rates.Cooldowns["movePath"])
	}
	if _, ok := rates.Cooldowns["removePath"]; ok {
		t.Fatal("zero cooldowns must be dropped")
	}
}

func TestToolOutputFiltersCustom(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{
		"api_key": "k",
		"tool_output_filters": {"max_chars": 50, "strip_ansi": false, "strip_control": true}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filters := cfg.ToolOutputFiltersConfig()
	if filters.MaxChars != 50 || filters.StripANSI || !filters.StripControl {
		t.Fatalf("unexpected filters %+v", filters)
	}
}

func TestToolPolicy(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{
		"api_key": "k",
		"tools": {
			"allow": ["writeFile"],
			"confirm": ["readFile"],
			"deny": ["removePath"]
		}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry := newRegistry(t)
	registry.ApplyPolicy(cfg.ToolPolicy())

	expect := map[string]tools.PermissionLevel{
		"writeFile":  tools.PermissionAllow,
		"readFile":   tools.PermissionAsk,
		"removePath": tools.PermissionDeny,
		// untouched names keep the default
		"movePath":            tools.PermissionAsk,
		"listCurrentDirectory": tools.PermissionAllow,
	}
	for name, level := range expect {
		if got := registry.GetPermission(name).Level(); got != level {
			t.Errorf("%s: expected %s, got %s", name, level, got)
		}
	}
}

func TestEmptyToolPolicyKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.ToolPolicy()) != 0 {
		t.Fatalf("expected empty policy, got %v", cfg.ToolPolicy())
	}
}

func TestTemperatureAndMaxTokens(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{"api_key":"k"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Temperature != nil || cfg.MaxTokens != nil {
		t.Fatal("expected temperature and max_tokens to be optional")
	}

	cfg, err = LoadConfig(writeTempConfig(t, `{"api_key":"k","temperature":0.2,"max_tokens":512}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Fatalf("unexpected temperature %v", cfg.Temperature)
	}
	if cfg.MaxTokens == nil || *cfg.MaxTokens != 512 {
		t.Fatalf("unexpected max_tokens %v", cfg.MaxTokens)
	}
}

func TestRequestTimeout(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeTempConfig(t, `{"api_key":"k","request_timeout_seconds":7}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RequestTimeout() != 7*time.Second {
		t.Fatalf("expected 7s, got %v", cfg.RequestTimeout())
	}
	if (&Config{}).RequestTimeout() != defaultRequestTimeoutSeconds*time.Second {
		t.Fatal("expected default timeout for zero value")
	}
}

func TestValidateWarnings(t *testing.T) {
	temp := float32(3)
	tokens := 0
	cfg := DefaultConfig()
	cfg.Temperature = &temp
	cfg.MaxTokens = &tokens
	cfg.HistoryMaxMessages = 0
	cfg.WorkingDirectory = filepath.Join(t.TempDir(), "missing")
	cfg.Tools.Allow = []string{"readFile", "ls"}
	cfg.ToolRateLimits.PerTool = map[string]int{"execute": 1}

	warnings := cfg.Validate(newRegistry(t))
	fields := map[string]int{}
	for _, w := range warnings {
		fields[w.Field]++
	}
	for _, field := range []string{"temperature", "max_tokens", "history_max_messages", "working_directory", "tools.allow", "tool_rate_limits.per_tool"} {
		if fields[field] != 1 {
			t.Errorf("expected one warning for %s, got %d (%v)", field, fields[field], warnings)
		}
	}
}

func TestValidateCleanConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkingDirectory = t.TempDir()
	if warnings := cfg.Validate(newRegistry(t)); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	if _, err := normalizeConfigJSON([]byte(ExampleConfigJSON())); err != nil {
		t.Fatalf("example config does not validate: %v", err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(SchemaJSON()), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
}
