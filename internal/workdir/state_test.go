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

package workdir

import (
	"os"
	"sync"
	"testing"
)

func TestFromProcess(t *testing.T) {
	state, err := FromProcess()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wd, _ := os.Getwd()
	if state.Get() != wd {
		t.Fatalf("expected %q, got %q", wd, state.Get())
	}
}

func TestGetReturnsVerbatim(t *testing.T) {
	state := New("/work/")
	if state.Get() != "/work/" {
		t.Fatalf("expected verbatim base, got %q", state.Get())
	}
	if state.Snapshot() != "/work" {
		t.Fatalf("expected cleaned snapshot, got %q", state.Snapshot())
	}
}

func TestSetConcurrent(t *testing.T) {
	state := New("/a")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			state.Set("/b")
		}()
		go func() {
			defer wg.Done()
			_ = state.Snapshot()
		}()
	}
	wg.Wait()
	if state.Get() != "/b" {
		t.Fatalf("expected /b, got %q", state.Get())
	}
}
