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

package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/paths"
)

// CurrentDirectory returns the base directory verbatim.
func (o *Ops) CurrentDirectory() string {
	return o.state.Get()
}

// ChangeDirectory moves the base to newPath after checking that it is an
// existing, readable and traversable directory. The base is left untouched
// on every failure.
func (o *Ops) ChangeDirectory(newPath string) (string, error) {
	base := o.state.Snapshot()

	resolved, err := o.resolve(newPath, base, paths.Unsandboxed, "")
	if err != nil {
		return "", failure("Failed to change directory", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.New(apperrors.CodeNotFound, "Path does not exist: "+resolved)
		}
		return "", failure("Failed to change directory", err)
	}
	if !info.IsDir() {
		return "", apperrors.New(apperrors.CodeWrongType, "Not a directory: "+resolved)
	}
	if !canRead(resolved) {
		return "", apperrors.New(apperrors.CodePermission, "Directory is not readable: "+resolved)
	}
	if !canTraverse(resolved) {
		return "", apperrors.New(apperrors.CodePermission, "Directory is not traversable (no execute permission): "+resolved)
	}

	o.state.Set(resolved)
	o.logger.Debug().Str("from", base).Str("to", resolved).Msg("changed directory")
	return "Changed directory to " + resolved, nil
}

// ListCurrentDirectory lists the immediate children of the base directory.
// Directories, including symlinks to directories, carry a "[DIR]" marker.
func (o *Ops) ListCurrentDirectory() (string, error) {
	base := o.state.Snapshot()

	entries, err := os.ReadDir(base)
	if err != nil {
		return "", failure("Error reading directory", err)
	}
	if len(entries) == 0 {
		return "Directory is empty", nil
	}

	limit := o.limits.MaxDirectoryEntries
	var result strings.Builder
	for i, entry := range entries {
		if i >= limit {
			fmt.Fprintf(&result, "... (%d more entries)\n", len(entries)-limit)
			break
		}
		if isDirEntryDir(base, entry) {
			result.WriteString("[DIR]  ")
		} else {
			result.WriteString("       ")
		}
		result.WriteString(entry.Name())
		result.WriteString("\n")
	}
	return result.String(), nil
}

func isDirEntryDir(base string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(base, entry.Name()))
	return err == nil && info.IsDir()
}
