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

package tools

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig configures rate limits and cooldowns for tools.
type RateLimitConfig struct {
	DefaultPerMinute int
	PerTool          map[string]int
	Cooldowns        map[string]time.Duration
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		DefaultPerMinute: 60,
		Cooldowns: map[string]time.Duration{
			"removePath": time.Second,
		},
	}
}

func (c RateLimitConfig) perMinute(name string) int {
	if n, ok := c.PerTool[name]; ok {
		return n
	}
	return c.DefaultPerMinute
}

// toolRateLimiter is a token bucket refilled lazily on each call, plus an
// optional cooldown between successful calls.
type toolRateLimiter struct {
	mu          sync.Mutex
	now         func() time.Time
	capacity    float64
	tokens      float64
	refill      time.Duration
	last        time.Time
	cooldown    time.Duration
	nextAllowed time.Time
}

func newToolRateLimiter(ratePerMinute int, cooldown time.Duration, now func() time.Time) *toolRateLimiter {
	if ratePerMinute <= 0 && cooldown <= 0 {
		return nil
	}
	if now == nil {
		now = time.Now
	}

	rl := &toolRateLimiter{
		now:      now,
		cooldown: cooldown,
		last:     now(),
	}
	if ratePerMinute > 0 {
		rl.capacity = float64(ratePerMinute)
		rl.tokens = rl.capacity
		rl.refill = time.Minute / time.Duration(ratePerMinute)
		if rl.refill <= 0 {
			rl.refill = time.Nanosecond
		}
	}
	return rl
}

// Allow consumes one token, or reports why the call has to wait.
func (r *toolRateLimiter) Allow() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.nextAllowed.IsZero() && now.Before(r.nextAllowed) {
		return fmt.Errorf("%w: retry after %s", ErrToolInCooldown, r.nextAllowed.Sub(now).Round(time.Millisecond))
	}

	if r.capacity > 0 {
		if elapsed := now.Sub(r.last); elapsed > 0 {
			r.tokens += float64(elapsed) / float64(r.refill)
			if r.tokens > r.capacity {
				r.tokens = r.capacity
			}
		}
		r.last = now
		if r.tokens < 1 {
			return ErrToolRateLimited
		}
		r.tokens--
	}

	if r.cooldown > 0 {
		r.nextAllowed = now.Add(r.cooldown)
	}
	return nil
}
