/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ratelimit provides keyed token-bucket limiting for the agent API.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter maintains one token bucket per key. Buckets are created lazily and
// pruned after a period of inactivity so hostile clients cannot grow the map
// without bound.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int

	lastPrune time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	pruneInterval = 5 * time.Minute
	bucketTTL     = 15 * time.Minute
)

// NewLimiter creates a Limiter allowing perMinute events per key with the
// given burst. Non-positive inputs fall back to a permissive default.
func NewLimiter(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		perMinute = 60
	}

	if burst <= 0 {
		burst = perMinute
	}

	return &Limiter{
		buckets:   make(map[string]*bucket),
		limit:     rate.Limit(float64(perMinute) / 60.0),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

// Allow consumes one token for key and reports the decision along with the
// quota headers a handler should emit.
func (l *Limiter) Allow(key string) Result {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > pruneInterval {
		l.prune(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}

	b.lastSeen = now

	res := Result{Limit: l.burst}

	reservation := b.limiter.Reserve()
	delay := reservation.Delay()

	if delay > 0 {
		reservation.Cancel()

		res.RetryAfter = delay

		return res
	}

	res.Allowed = true
	res.Remaining = remainingTokens(b.limiter)

	return res
}

// prune drops buckets idle longer than bucketTTL. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > bucketTTL {
			delete(l.buckets, key)
		}
	}

	l.lastPrune = now
}

func remainingTokens(lim *rate.Limiter) int {
	tokens := int(math.Floor(lim.Tokens()))
	if tokens < 0 {
		return 0
	}

	return tokens
}
