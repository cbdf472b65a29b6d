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

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/paths"
)

// MakeDirectory creates a directory and any missing parents (mkdir -p).
// Absolute paths are honored as given and are not confined to the base.
func (o *Ops) MakeDirectory(name string) (string, error) {
	if blank(name) {
		return "", apperrors.New(apperrors.CodeInvalidInput, "Directory name must be provided.")
	}
	resolved, err := o.resolve(name, o.state.Snapshot(), paths.Unsandboxed, "")
	if err != nil {
		return "", failure("Failed to create directory", err)
	}

	if info, err := os.Stat(resolved); err == nil {
		if info.IsDir() {
			return "", apperrors.New(apperrors.CodeCollision, "Directory already exists: "+resolved)
		}
		return "", apperrors.New(apperrors.CodeCollision, "A file with the same name already exists: "+resolved)
	}

	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return "", failure("Failed to create directory", err)
	}

	o.logger.Debug().Str("path", resolved).Msg("created directory")
	return fmt.Sprintf("The directory `%s` has been created successfully.", filepath.Base(resolved)), nil
}

// RemovePath deletes a file, a symlink or a whole directory tree below the
// base directory. Containment is checked before existence.
func (o *Ops) RemovePath(target string) (string, error) {
	if blank(target) {
		return "", apperrors.New(apperrors.CodeInvalidInput, "No path provided.")
	}
	base := o.state.Snapshot()
	resolved, err := o.resolve(target, base, paths.Sandboxed,
		"Refusing to delete outside current working directory")
	if err != nil {
		return "", failure("Failed to remove path", err)
	}
	if resolved == base {
		return "", apperrors.New(apperrors.CodeSandbox, "Refusing to delete the current working directory itself: "+resolved)
	}

	info, err := os.Lstat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.New(apperrors.CodeNotFound, "Path does not exist: "+resolved)
		}
		return "", failure("Failed to remove path", err)
	}

	if info.IsDir() {
		deleted, err := removeTree(resolved)
		if err != nil {
			o.logger.Warn().Err(err).Str("path", resolved).Int("deleted", deleted).Msg("partial tree removal")
			return "", failure("Failed to remove path", err)
		}
		o.logger.Debug().Str("path", resolved).Int("deleted", deleted).Msg("removed directory tree")
		return fmt.Sprintf("Removed directory tree: %s (%d entries deleted)", resolved, deleted), nil
	}

	if err := os.Remove(resolved); err != nil {
		return "", failure("Failed to remove path", err)
	}
	o.logger.Debug().Str("path", resolved).Msg("removed entry")
	return "Removed: " + resolved, nil
}

// RenamePath renames an entry. Both ends must stay below the base directory
// and the destination must not exist yet.
func (o *Ops) RenamePath(oldName, newName string) (string, error) {
	if blank(oldName) || blank(newName) {
		return "", apperrors.New(apperrors.CodeInvalidInput, "Both source and destination names must be provided.")
	}
	base := o.state.Snapshot()

	oldPath, errOld := paths.Resolve(oldName, base, paths.Sandboxed, o.env)
	newPath, errNew := paths.Resolve(newName, base, paths.Sandboxed, o.env)
	for _, err := range []error{errOld, errNew} {
		if err == nil {
			continue
		}
		if apperrors.HasCode(err, apperrors.CodeSandbox) {
			return "", apperrors.New(apperrors.CodeSandbox, "Refusing to rename outside current working directory.")
		}
		return "", failure("Failed to rename", err)
	}

	if !present(oldPath) {
		return "", apperrors.New(apperrors.CodeNotFound, "Source does not exist: "+oldPath)
	}
	if present(newPath) {
		return "", apperrors.New(apperrors.CodeCollision, "Destination already exists: "+newPath)
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return "", failure("Failed to rename", err)
	}
	if err := o.rename(oldPath, newPath); err != nil {
		return "", failure("Failed to rename", err)
	}

	o.logger.Debug().Str("from", oldPath).Str("to", newPath).Msg("renamed")
	return fmt.Sprintf("Renamed %s → %s", oldPath, newPath), nil
}
