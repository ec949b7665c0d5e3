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
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/benjameshughes/rmm/pkg/commands"
	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/models"
)

func (s *APIServer) adminListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.core.ListDevices(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list devices")
		writeError(w, "failed to list devices", http.StatusInternalServerError)

		return
	}

	if devices == nil {
		devices = []models.Device{}
	}

	writeJSON(w, http.StatusOK, devices)
}

func (s *APIServer) adminGetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.core.GetDevice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			writeError(w, "device not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Msg("failed to fetch device")
		writeError(w, "failed to fetch device", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, device)
}

// adminApproveDevice issues the device key. The response is the one place the
// key appears in clear, so the admin can hand it to the agent installer.
func (s *APIServer) adminApproveDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.core.ApproveDevice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			writeError(w, "device not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Msg("failed to approve device")
		writeError(w, "failed to approve device", http.StatusInternalServerError)

		return
	}

	resp := struct {
		Device *models.Device `json:"device"`
		APIKey *string        `json:"api_key,omitempty"`
	}{Device: device, APIKey: device.APIKey}

	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) adminRevokeDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.core.RevokeDevice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			writeError(w, "device not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Msg("failed to revoke device")
		writeError(w, "failed to revoke device", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, device)
}

func (s *APIServer) adminDeviceMetrics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	metrics, err := s.core.RecentMetrics(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch metrics")
		writeError(w, "failed to fetch metrics", http.StatusInternalServerError)

		return
	}

	if metrics == nil {
		metrics = []models.DeviceMetric{}
	}

	writeJSON(w, http.StatusOK, metrics)
}

func (s *APIServer) adminDeviceCommands(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	cmds, err := s.queue.ListForDevice(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list commands")
		writeError(w, "failed to list commands", http.StatusInternalServerError)

		return
	}

	if cmds == nil {
		cmds = []models.DeviceCommand{}
	}

	writeJSON(w, http.StatusOK, cmds)
}

func (s *APIServer) adminQueueCommand(w http.ResponseWriter, r *http.Request) {
	var req models.QueueCommandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cmd, err := s.queue.Enqueue(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDeviceIDRequired),
			errors.Is(err, commands.ErrScriptRequired),
			errors.Is(err, commands.ErrInvalidScriptType):
			writeError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, db.ErrDeviceNotFound):
			writeError(w, "device not found", http.StatusNotFound)
		default:
			s.logger.Error().Err(err).Msg("failed to queue command")
			writeError(w, "failed to queue command", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusCreated, cmd)
}

func (s *APIServer) adminGetCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.queue.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, commands.ErrCommandNotFound) {
			writeError(w, "command not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Msg("failed to fetch command")
		writeError(w, "failed to fetch command", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, cmd)
}

func (s *APIServer) adminCancelCommand(w http.ResponseWriter, r *http.Request) {
	if err := s.queue.Cancel(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, commands.ErrCommandNotFound) {
			writeError(w, "command not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Msg("failed to cancel command")
		writeError(w, "failed to cancel command", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, okResponse)
}
