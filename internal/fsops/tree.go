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

	"github.com/u-root/u-root/pkg/core/cp"

	apperrors "dirpilot/internal/errors"
)

// removeTree deletes root and everything below it in post-order: every
// entry goes before its parent directory. Symlinks are removed as links and
// never descended into. It returns the number of entries deleted, root
// included, even when it stops on an error.
func removeTree(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %s - %w", root, err)
	}

	deleted := 0
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			n, err := removeTree(path)
			deleted += n
			if err != nil {
				return deleted, err
			}
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to delete file: %s - %w", path, err)
		}
		deleted++
	}

	if err := os.Remove(root); err != nil && !os.IsNotExist(err) {
		return deleted, fmt.Errorf("failed to delete directory: %s - %w", root, err)
	}
	return deleted + 1, nil
}

// removeAny deletes path whatever it is, without following symlinks.
func removeAny(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		_, err = removeTree(path)
		return err
	}
	return os.Remove(path)
}

// copyTree copies src to dst, recursing into directories and recreating
// symlinks as links. Existing directories are merged. An existing
// non-directory at a target path is replaced only when overwrite is set.
func copyTree(src, dst string, overwrite bool) error {
	opts := cp.Options{
		NoFollowSymlinks: true,
		PreCallback: func(from, to string, fi os.FileInfo) error {
			if fi.IsDir() {
				return nil
			}
			existing, err := os.Lstat(to)
			if err != nil {
				return nil
			}
			if !overwrite {
				return apperrors.New(apperrors.CodeCollision, "Target already exists: "+to)
			}
			if existing.IsDir() {
				return apperrors.New(apperrors.CodeWrongType, "Cannot replace directory with a file: "+to)
			}
			// Links cannot be created over an existing entry.
			return os.Remove(to)
		},
	}

	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return opts.CopyTree(src, dst)
	}
	return opts.Copy(src, dst)
}
