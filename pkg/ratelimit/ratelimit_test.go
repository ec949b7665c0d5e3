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

package ratelimit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsWithinBurst(t *testing.T) {
	l := NewLimiter(10, 3)

	for i := 0; i < 3; i++ {
		res := l.Allow("key-a")
		assert.True(t, res.Allowed, "request %d should pass", i)
		assert.Equal(t, 3, res.Limit)
	}
}

func TestLimiterDeniesPastBurst(t *testing.T) {
	l := NewLimiter(1, 2)

	require.True(t, l.Allow("key-a").Allowed)
	require.True(t, l.Allow("key-a").Allowed)

	res := l.Allow("key-a")
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
	assert.Zero(t, res.Remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)

	require.True(t, l.Allow("key-a").Allowed)
	assert.False(t, l.Allow("key-a").Allowed)

	// A fresh key still has its full burst.
	assert.True(t, l.Allow("key-b").Allowed)
}

func TestLimiterRemainingDecreases(t *testing.T) {
	l := NewLimiter(1, 5)

	first := l.Allow("key-a")
	second := l.Allow("key-a")

	require.True(t, first.Allowed)
	require.True(t, second.Allowed)
	assert.Greater(t, first.Remaining, second.Remaining)
}

func TestLimiterDefaultsOnBadConfig(t *testing.T) {
	l := NewLimiter(0, 0)

	res := l.Allow("key-a")
	assert.True(t, res.Allowed)
	assert.Equal(t, 60, res.Limit)
}

func TestLimiterManyKeys(t *testing.T) {
	l := NewLimiter(60, 1)

	for i := 0; i < 1000; i++ {
		res := l.Allow(fmt.Sprintf("key-%d", i))
		require.True(t, res.Allowed)
	}
}
