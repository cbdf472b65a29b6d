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

// Package workdir holds the tool surface's notion of the current directory.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State is the mutable base directory shared by all tool operations.
// Only a successful directory change may call Set.
type State struct {
	mu   sync.RWMutex
	base string
}

// New seeds the state with dir as given; the value is not validated.
func New(dir string) *State {
	return &State{base: dir}
}

// FromProcess seeds the state from the process working directory.
func FromProcess() (*State, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	return New(dir), nil
}

// Get returns the current base directory verbatim.
func (s *State) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

// Snapshot returns the base cleaned for path arithmetic. Operations take
// one snapshot at call start and never re-read the state.
func (s *State) Snapshot() string {
	return filepath.Clean(s.Get())
}

// Set replaces the base directory.
func (s *State) Set(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = dir
}
