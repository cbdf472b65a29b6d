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

//go:build unix

package main

import (
	"context"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestWatchInterruptsCancels(t *testing.T) {
	canceler := &operationCanceler{}
	stop := watchInterrupts(canceler)
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	canceler.Set(cancel)

	if err := unix.Kill(unix.Getpid(), unix.SIGINT); err != nil {
		t.Fatalf("send SIGINT: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected SIGINT to cancel the request")
	}
}
