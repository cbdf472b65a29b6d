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

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/chzyer/readline"
)

// operationCanceler holds the cancel function of the request in flight.
type operationCanceler struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (c *operationCanceler) Set(cancel context.CancelFunc) {
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

func (c *operationCanceler) Clear() {
	c.mu.Lock()
	c.cancel = nil
	c.mu.Unlock()
}

func (c *operationCanceler) Cancel() bool {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// watchInterrupts routes SIGINT to the canceler while a request runs.
// Readline handles Ctrl+C itself while it owns the terminal.
func watchInterrupts(c *operationCanceler) (stop func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-signals:
				c.Cancel()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
	}
}

func filterInterruptRune(r rune) (rune, bool) {
	if r == readline.CharBell {
		return 0, false
	}
	return r, true
}
