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

// Package api provides the HTTP surface for agents and administrators.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/benjameshughes/rmm/pkg/auth"
	"github.com/benjameshughes/rmm/pkg/commands"
	"github.com/benjameshughes/rmm/pkg/core"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
	"github.com/benjameshughes/rmm/pkg/ratelimit"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	// maxBodyBytes bounds agent-supplied request bodies. Command output alone
	// can legitimately approach 1 MiB.
	maxBodyBytes = 5 << 20
)

// APIServer is the HTTP server for the agent and admin APIs.
type APIServer struct {
	router        *mux.Router
	core          *core.Server
	queue         *commands.Queue
	authenticator *auth.Authenticator
	adminAPIKey   string
	enrollLimiter *ratelimit.Limiter
	agentLimiter  *ratelimit.Limiter
	logger        logger.Logger
	listenAddr    string
	httpServer    *http.Server
}

// NewAPIServer creates a new API server instance with the given options.
func NewAPIServer(options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router: mux.NewRouter(),
		logger: logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithListenAddr sets the listen address for the API server.
func WithListenAddr(addr string) func(*APIServer) {
	return func(server *APIServer) {
		server.listenAddr = addr
	}
}

// WithCoreServer wires the orchestration layer into the API server.
func WithCoreServer(c *core.Server) func(*APIServer) {
	return func(server *APIServer) {
		server.core = c
	}
}

// WithCommandQueue wires the command queue into the API server.
func WithCommandQueue(q *commands.Queue) func(*APIServer) {
	return func(server *APIServer) {
		server.queue = q
	}
}

// WithAuthenticator wires agent credential checks into the API server.
func WithAuthenticator(a *auth.Authenticator) func(*APIServer) {
	return func(server *APIServer) {
		server.authenticator = a
	}
}

// WithAdminAPIKey sets the shared key protecting the admin routes. An empty
// key disables the admin surface entirely.
func WithAdminAPIKey(key string) func(*APIServer) {
	return func(server *APIServer) {
		server.adminAPIKey = key
	}
}

// WithRateLimits installs request throttling from configuration.
func WithRateLimits(cfg *models.RateLimitConfig) func(*APIServer) {
	return func(server *APIServer) {
		if cfg == nil {
			return
		}

		server.enrollLimiter = ratelimit.NewLimiter(cfg.EnrollPerMinute, cfg.EnrollBurst)
		server.agentLimiter = ratelimit.NewLimiter(cfg.AgentPerMinute, cfg.AgentBurst)
	}
}

// WithLogger sets the logger for the API server.
func WithLogger(log logger.Logger) func(*APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// Router exposes the configured router, mainly for tests.
func (s *APIServer) Router() *mux.Router {
	return s.router
}

func (s *APIServer) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	agent := s.router.PathPrefix("/api").Subrouter()
	agent.Handle("/enroll",
		s.limitByIP(s.enrollLimiter, http.HandlerFunc(s.handleEnroll))).Methods("POST")
	agent.Handle("/check",
		s.limitByIP(s.enrollLimiter, http.HandlerFunc(s.handleCheck))).Methods("GET", "POST")

	authed := s.router.PathPrefix("/api").Subrouter()
	authed.Use(s.agentAuthMiddleware)
	authed.Use(s.limitByKeyMiddleware)
	authed.HandleFunc("/metrics", s.handleMetrics).Methods("POST")
	authed.HandleFunc("/heartbeat", s.handleHeartbeat).Methods("POST")
	authed.HandleFunc("/commands/pending", s.handlePendingCommand).Methods("GET")
	authed.HandleFunc("/commands/{id}/started", s.handleCommandStarted).Methods("POST")
	authed.HandleFunc("/commands/{id}/result", s.handleCommandResult).Methods("POST")

	admin := s.router.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.adminAuthMiddleware)
	admin.HandleFunc("/devices", s.adminListDevices).Methods("GET")
	admin.HandleFunc("/devices/{id}", s.adminGetDevice).Methods("GET")
	admin.HandleFunc("/devices/{id}/approve", s.adminApproveDevice).Methods("POST")
	admin.HandleFunc("/devices/{id}/revoke", s.adminRevokeDevice).Methods("POST")
	admin.HandleFunc("/devices/{id}/metrics", s.adminDeviceMetrics).Methods("GET")
	admin.HandleFunc("/devices/{id}/commands", s.adminDeviceCommands).Methods("GET")
	admin.HandleFunc("/commands", s.adminQueueCommand).Methods("POST")
	admin.HandleFunc("/commands/{id}", s.adminGetCommand).Methods("GET")
	admin.HandleFunc("/commands/{id}/cancel", s.adminCancelCommand).Methods("POST")
}

// Start runs the HTTP server until the context is cancelled, then shuts down
// gracefully.
func (s *APIServer) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.listenAddr).Msg("HTTP server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{Error: message}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
