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

// Package systemprompt holds the instructions sent as the first message of
// every chat session.
package systemprompt

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.txt
var promptFiles embed.FS

// Sections returns the embedded prompt file names in the order they are joined.
func Sections() ([]string, error) {
	names, err := fs.Glob(promptFiles, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded system prompt files: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Load joins the embedded prompt sections, separated by a blank line.
func Load() (string, error) {
	names, err := Sections()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no system prompt files found in embedded set")
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read system prompt file %q: %w", name, err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}
