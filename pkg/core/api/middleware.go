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

package api

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benjameshughes/rmm/pkg/models"
	"github.com/benjameshughes/rmm/pkg/ratelimit"
)

type contextKey string

const deviceContextKey contextKey = "device"

// deviceFromContext returns the authenticated device placed by the agent auth
// middleware.
func deviceFromContext(ctx context.Context) *models.Device {
	device, _ := ctx.Value(deviceContextKey).(*models.Device)
	return device
}

// remoteIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// agentKey extracts the agent credential. X-Agent-Key is the current header;
// X-Device-Key is accepted for older agent builds.
func agentKey(r *http.Request) string {
	if key := r.Header.Get("X-Agent-Key"); key != "" {
		return key
	}

	return r.Header.Get("X-Device-Key")
}

func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", remoteIP(r)).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// agentAuthMiddleware resolves the agent credential to an active device and
// stores it on the request context. Every failure is the same 401 body.
func (s *APIServer) agentAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device, err := s.authenticator.AuthenticateKey(r.Context(), agentKey(r))
		if err != nil {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), deviceContextKey, device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limitByIP throttles unauthenticated endpoints by caller IP.
func (s *APIServer) limitByIP(limiter *ratelimit.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		res := limiter.Allow(remoteIP(r))
		if !writeRateHeaders(w, res) {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// limitByKeyMiddleware throttles authenticated agent traffic per API key. It
// runs after auth, so the key is always present; the IP fallback covers the
// degenerate empty-key case.
func (s *APIServer) limitByKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.agentLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := agentKey(r)
		if key == "" {
			key = remoteIP(r)
		}

		res := s.agentLimiter.Allow(key)
		if !writeRateHeaders(w, res) {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeRateHeaders stamps quota headers and, when the request is denied,
// writes the 429 response. Returns false when the caller must stop.
func writeRateHeaders(w http.ResponseWriter, res ratelimit.Result) bool {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

	if res.Allowed {
		return true
	}

	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, "rate limit exceeded", http.StatusTooManyRequests)

	return false
}

// adminAuthMiddleware guards the admin surface with the shared X-API-Key.
// When no key is configured the surface is disabled outright.
func (s *APIServer) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminAPIKey == "" {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		supplied := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.adminAPIKey)) != 1 {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
