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

// Limits bounds how much data a single operation hands back.
type Limits struct {
	MaxFileSizeBytes    int64
	MaxDirectoryEntries int
}

const (
	defaultMaxFileSizeBytes    int64 = 10 * 1024 * 1024
	defaultMaxDirectoryEntries       = 2000
)

// DefaultLimits returns the default resource limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSizeBytes:    defaultMaxFileSizeBytes,
		MaxDirectoryEntries: defaultMaxDirectoryEntries,
	}
}

func normalizeLimits(l Limits) Limits {
	if l.MaxFileSizeBytes <= 0 {
		l.MaxFileSizeBytes = defaultMaxFileSizeBytes
	}
	if l.MaxDirectoryEntries <= 0 {
		l.MaxDirectoryEntries = defaultMaxDirectoryEntries
	}
	return l
}
