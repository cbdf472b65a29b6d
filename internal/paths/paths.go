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

// Package paths expands and resolves tool path arguments against a base
// directory. Nothing in this package touches the filesystem.
package paths

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "dirpilot/internal/errors"
)

// MaxPathLength bounds raw path arguments.
const MaxPathLength = 4096

// Mode selects the containment policy applied by Resolve.
type Mode int

const (
	// Unsandboxed honors absolute paths as given.
	Unsandboxed Mode = iota
	// Sandboxed additionally requires the result to be the base or below it.
	Sandboxed
)

func (m Mode) String() string {
	if m == Sandboxed {
		return "sandboxed"
	}
	return "unsandboxed"
}

// ErrOutsideBase is returned by Resolve in Sandboxed mode when the path
// escapes the base directory.
var ErrOutsideBase = apperrors.New(apperrors.CodeSandbox, "outside current working directory")

// ValidatePathString validates raw path input before resolution.
func ValidatePathString(path string, maxLen int) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "Path cannot be empty")
	}
	if strings.IndexByte(path, 0) != -1 {
		return apperrors.New(apperrors.CodeInvalidInput, "Path contains a null byte")
	}
	if !utf8.ValidString(path) {
		return apperrors.New(apperrors.CodeInvalidInput, "Path is not valid UTF-8")
	}
	if maxLen > 0 && len(path) > maxLen {
		return apperrors.Newf(apperrors.CodeInvalidInput, "Path exceeds maximum length of %d characters", maxLen)
	}
	return nil
}

// Resolve expands raw and turns it into a clean absolute path. Relative
// input is joined onto base. In Sandboxed mode a result outside base yields
// ErrOutsideBase together with the resolved path, so callers can name it.
func Resolve(raw, base string, mode Mode, env Env) (string, error) {
	if err := ValidatePathString(raw, MaxPathLength); err != nil {
		return "", err
	}

	expanded := Expand(raw, env)
	cleanBase := filepath.Clean(base)

	var resolved string
	if filepath.IsAbs(expanded) {
		resolved = filepath.Clean(expanded)
	} else {
		resolved = filepath.Join(cleanBase, expanded)
	}

	if mode == Sandboxed && !HasPathPrefix(resolved, cleanBase) {
		return resolved, ErrOutsideBase
	}
	return resolved, nil
}

// HasPathPrefix returns true when path is base or lies below it. The
// comparison is per path component, so "/work" does not contain "/workshop".
func HasPathPrefix(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}
