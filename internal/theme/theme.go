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

// Package theme holds the terminal colours of the interactive console.
package theme

import (
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// ColorScheme provides pterm and color styles for console output.
type ColorScheme struct {
	Header    *pterm.Style
	User      *color.Color
	Assistant *color.Color
	Error     *color.Color
	Success   *color.Color
	Tool      *pterm.Style
	Muted     *color.Color
}

// DefaultColorScheme returns the standard console colours.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Header:    pterm.NewStyle(pterm.FgCyan, pterm.Bold),
		User:      color.New(color.FgBlue),
		Assistant: color.New(color.FgGreen),
		Error:     color.New(color.FgRed, color.Bold),
		Success:   color.New(color.FgGreen),
		Tool:      pterm.NewStyle(pterm.FgYellow),
		Muted:     color.New(color.FgHiBlack),
	}
}

// DisabledColorScheme returns a color scheme with all colors disabled (for NO_COLOR).
func DisabledColorScheme() *ColorScheme {
	color.NoColor = true
	pterm.DisableColor()

	return &ColorScheme{
		Header:    pterm.NewStyle(),
		User:      color.New(),
		Assistant: color.New(),
		Error:     color.New(),
		Success:   color.New(),
		Tool:      pterm.NewStyle(),
		Muted:     color.New(),
	}
}

// ForEnvironment picks the disabled scheme when NO_COLOR is set to any
// non-empty value.
func ForEnvironment(lookup func(string) (string, bool)) *ColorScheme {
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		return DisabledColorScheme()
	}
	return DefaultColorScheme()
}
