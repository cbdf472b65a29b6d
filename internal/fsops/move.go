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

// MovePath moves source to target anywhere on the filesystem. It first
// tries an atomic rename; when that fails (typically across filesystems)
// it copies the tree and then deletes the source.
//
// The fallback is not atomic: if the process dies between the copy and the
// delete, both source and target remain on disk.
func (o *Ops) MovePath(source, target string, overwrite bool) (string, error) {
	if blank(source) || blank(target) {
		return "", apperrors.New(apperrors.CodeInvalidInput, "Source and target must be provided.")
	}
	base := o.state.Snapshot()

	src, err := o.resolve(source, base, paths.Unsandboxed, "")
	if err != nil {
		return "", failure("Failed to move", err)
	}
	dst, err := o.resolve(target, base, paths.Unsandboxed, "")
	if err != nil {
		return "", failure("Failed to move", err)
	}

	if !present(src) {
		return "", apperrors.New(apperrors.CodeNotFound, "Source does not exist: "+src)
	}
	if dst == src {
		return "", apperrors.New(apperrors.CodeInvalidInput, "Source and target are the same: "+src)
	}
	if paths.HasPathPrefix(dst, src) {
		return "", apperrors.New(apperrors.CodeInvalidInput, "Cannot move a directory into itself: "+dst)
	}
	if present(dst) && !overwrite {
		return "", apperrors.New(apperrors.CodeCollision, "Target already exists: "+dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", failure("Failed to move", err)
	}

	if renameErr := o.rename(src, dst); renameErr != nil {
		o.logger.Info().
			Err(renameErr).
			Bool("cross_device", isCrossDevice(renameErr)).
			Str("src", src).
			Str("dst", dst).
			Str("fallback", "copy_delete").
			Msg("rename failed, copying instead")

		if err := copyTree(src, dst, overwrite); err != nil {
			return "", failure("Failed to move", err)
		}
		if err := removeAny(src); err != nil {
			return "", failure("Failed to move", err)
		}
	}

	o.logger.Debug().Str("src", src).Str("dst", dst).Bool("overwrite", overwrite).Msg("moved")
	return fmt.Sprintf("Moved: %s → %s", src, dst), nil
}
