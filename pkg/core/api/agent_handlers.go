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
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/benjameshughes/rmm/pkg/commands"
	"github.com/benjameshughes/rmm/pkg/core"
	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/models"
)

type statusResponse struct {
	Status string `json:"status"`
}

var okResponse = statusResponse{Status: "ok"}

func (s *APIServer) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.core.Enroll(r.Context(), &req, remoteIP(r))
	if err != nil {
		if errors.Is(err, core.ErrHostnameRequired) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.logger.Error().Err(err).Msg("enrollment failed")
		writeError(w, "enrollment failed", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	// GET polls carry the identity in query parameters instead of a body.
	var req models.CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		req.Hostname = r.URL.Query().Get("hostname")
		req.HardwareFingerprint = r.URL.Query().Get("hardware_fingerprint")
	}

	resp, err := s.core.Check(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrHostnameRequired):
			writeError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, db.ErrDeviceNotFound):
			writeError(w, "not found", http.StatusNotFound)
		default:
			s.logger.Error().Err(err).Msg("enrollment check failed")
			writeError(w, "check failed", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleMetrics accepts the raw telemetry body. Parsing never rejects the
// request; only storage failures do.
func (s *APIServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	device := deviceFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := s.core.IngestMetrics(r.Context(), device, body, remoteIP(r)); err != nil {
		s.logger.Error().Err(err).Str("device_id", device.ID).Msg("failed to store metrics")
		writeError(w, "failed to store metrics", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, okResponse)
}

func (s *APIServer) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	device := deviceFromContext(r.Context())

	resp, err := s.core.Heartbeat(r.Context(), device, remoteIP(r))
	if err != nil {
		s.logger.Error().Err(err).Str("device_id", device.ID).Msg("heartbeat failed")
		writeError(w, "heartbeat failed", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handlePendingCommand drains at most one command per poll. An empty queue is
// a 200 with a null command, not an error.
func (s *APIServer) handlePendingCommand(w http.ResponseWriter, r *http.Request) {
	device := deviceFromContext(r.Context())

	cmd, err := s.queue.Dequeue(r.Context(), device.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("device_id", device.ID).Msg("command dequeue failed")
		writeError(w, "failed to fetch commands", http.StatusInternalServerError)

		return
	}

	resp := models.PendingCommandResponse{}
	if cmd != nil {
		resp.Command = &models.CommandDispatch{
			ID:             cmd.ID,
			ScriptContent:  cmd.ScriptContent,
			ScriptType:     cmd.ScriptType,
			TimeoutSeconds: cmd.TimeoutSeconds,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) handleCommandStarted(w http.ResponseWriter, r *http.Request) {
	device := deviceFromContext(r.Context())
	commandID := mux.Vars(r)["id"]

	if err := s.queue.MarkStarted(r.Context(), commandID, device.ID); err != nil {
		if errors.Is(err, commands.ErrCommandNotFound) {
			writeError(w, "command not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Str("command_id", commandID).Msg("failed to mark command started")
		writeError(w, "failed to update command", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, okResponse)
}

func (s *APIServer) handleCommandResult(w http.ResponseWriter, r *http.Request) {
	device := deviceFromContext(r.Context())
	commandID := mux.Vars(r)["id"]

	var req models.CommandResultRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.queue.SubmitResult(r.Context(), commandID, device.ID, &req); err != nil {
		if errors.Is(err, commands.ErrExitCodeRequired) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errors.Is(err, commands.ErrCommandNotFound) {
			writeError(w, "command not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Str("command_id", commandID).Msg("failed to record command result")
		writeError(w, "failed to record result", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, okResponse)
}
