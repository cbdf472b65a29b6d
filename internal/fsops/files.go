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
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/docker/go-units"

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/paths"
)

var errFileNameRequired = apperrors.New(apperrors.CodeInvalidInput, "File name must be provided.")

// ReadFile returns the whole content of a UTF-8 text file. Absolute paths
// are honored.
func (o *Ops) ReadFile(name string) (string, error) {
	if blank(name) {
		return "", errFileNameRequired
	}
	resolved, err := o.resolve(name, o.state.Snapshot(), paths.Unsandboxed, "")
	if err != nil {
		return "", failure("Error reading file", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.New(apperrors.CodeNotFound, "File does not exist: "+resolved)
		}
		return "", failure("Error reading file", err)
	}
	if info.IsDir() {
		return "", apperrors.New(apperrors.CodeWrongType, "Path is a directory, not a file: "+resolved)
	}
	if !canRead(resolved) {
		return "", apperrors.New(apperrors.CodePermission, "File is not readable: "+resolved)
	}
	if info.Size() > o.limits.MaxFileSizeBytes {
		return "", apperrors.Newf(apperrors.CodeInvalidInput, "File exceeds maximum size of %s: %s",
			units.BytesSize(float64(o.limits.MaxFileSizeBytes)), resolved)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return "", failure("Error reading file", err)
	}
	if !utf8.Valid(content) {
		return "", apperrors.New(apperrors.CodeWrongType, "File is not valid UTF-8 text: "+resolved)
	}
	return string(content), nil
}

// CreateFile creates a new empty file below the base directory, creating
// missing parents. An existing entry is never touched.
func (o *Ops) CreateFile(name string) (string, error) {
	if blank(name) {
		return "", errFileNameRequired
	}
	resolved, err := o.resolve(name, o.state.Snapshot(), paths.Sandboxed,
		"Refusing to create file outside current working directory")
	if err != nil {
		return "", failure("Failed to create file", err)
	}

	if present(resolved) {
		return "", apperrors.New(apperrors.CodeCollision, "File already exists: "+resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", failure("Failed to create file", err)
	}

	f, err := os.OpenFile(resolved, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", failure("Failed to create file", err)
	}
	if err := f.Close(); err != nil {
		return "", failure("Failed to create file", err)
	}

	o.logger.Debug().Str("path", resolved).Msg("created file")
	return "Created file: " + resolved, nil
}

// WriteFile replaces the content of a file below the base directory,
// creating it and its parents when missing.
func (o *Ops) WriteFile(name, content string) (string, error) {
	if blank(name) {
		return "", errFileNameRequired
	}
	resolved, err := o.resolve(name, o.state.Snapshot(), paths.Sandboxed,
		"Refusing to write file outside current working directory")
	if err != nil {
		return "", failure("Failed to write file", err)
	}

	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		return "", apperrors.New(apperrors.CodeWrongType, "Path is a directory, not a file: "+resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", failure("Failed to write file", err)
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return "", failure("Failed to write file", err)
	}

	o.logger.Debug().Str("path", resolved).Int("bytes", len(content)).Msg("wrote file")
	return "Wrote file: " + resolved, nil
}

// AppendFile appends content plus one line separator to a file below the
// base directory, creating it and its parents when missing.
func (o *Ops) AppendFile(name, content string) (string, error) {
	if blank(name) {
		return "", errFileNameRequired
	}
	resolved, err := o.resolve(name, o.state.Snapshot(), paths.Sandboxed,
		"Refusing to append to file outside current working directory")
	if err != nil {
		return "", failure("Failed to append to file", err)
	}

	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		return "", apperrors.New(apperrors.CodeWrongType, "Path is a directory, not a file: "+resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", failure("Failed to append to file", err)
	}

	f, err := os.OpenFile(resolved, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", failure("Failed to append to file", err)
	}
	if _, err := f.WriteString(content + lineSeparator); err != nil {
		f.Close()
		return "", failure("Failed to append to file", err)
	}
	if err := f.Close(); err != nil {
		return "", failure("Failed to append to file", err)
	}

	o.logger.Debug().Str("path", resolved).Int("bytes", len(content)).Msg("appended to file")
	return "Appended to file: " + resolved, nil
}
