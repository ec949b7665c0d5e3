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

// Package core implements the fleet orchestration behind the HTTP surface:
// device enrollment and trust transitions, telemetry ingestion, and the
// admin-facing device views.
package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
	"github.com/benjameshughes/rmm/pkg/telemetry"
)

var ErrHostnameRequired = errors.New("hostname is required")

// EventPublisher receives device lifecycle notifications.
type EventPublisher interface {
	DeviceEnrolled(ctx context.Context, device *models.Device)
	DeviceApproved(ctx context.Context, device *models.Device)
	DeviceRevoked(ctx context.Context, device *models.Device)
}

// Server coordinates the device store, the telemetry normalizer, and the
// lifecycle event stream.
type Server struct {
	store      db.Service
	normalizer *telemetry.Normalizer
	events     EventPublisher
	logger     logger.Logger
	now        func() time.Time
}

// NewServer creates a Server. events may be nil when lifecycle events are
// disabled.
func NewServer(store db.Service, events EventPublisher, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Server{
		store:      store,
		normalizer: telemetry.NewNormalizer(log),
		events:     events,
		logger:     log,
		now:        time.Now,
	}
}

// Enroll registers or re-registers a device. Matching prefers the hardware
// fingerprint; a hostname match is the fallback so re-imaged machines without
// a stable fingerprint converge on their old record instead of duplicating
// it. New devices start pending and get no key.
func (s *Server) Enroll(ctx context.Context, req *models.EnrollRequest, remoteIP string) (*models.EnrollResponse, error) {
	if req == nil || strings.TrimSpace(req.Hostname) == "" {
		return nil, ErrHostnameRequired
	}

	hostname := strings.TrimSpace(req.Hostname)
	fingerprint := strings.TrimSpace(req.HardwareFingerprint)

	device, err := s.matchDevice(ctx, fingerprint, hostname)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	if device == nil {
		device = s.newDevice(req, hostname, fingerprint, remoteIP, now)

		if err := s.store.CreateDevice(ctx, device); err != nil {
			return nil, err
		}

		s.logger.Info().
			Str("device_id", device.ID).
			Str("hostname", device.Hostname).
			Msg("device enrolled")

		if s.events != nil {
			s.events.DeviceEnrolled(ctx, device)
		}

		return enrollResponse(device), nil
	}

	s.applyEnrollment(device, req, fingerprint, remoteIP, now)

	if err := s.store.UpdateDeviceEnrollment(ctx, device); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("device_id", device.ID).
		Str("hostname", device.Hostname).
		Str("status", string(device.Status)).
		Msg("device re-enrolled")

	return enrollResponse(device), nil
}

// Check reports enrollment status for a polling agent. It never creates a
// record; an unmatched device gets db.ErrDeviceNotFound.
func (s *Server) Check(ctx context.Context, req *models.CheckRequest) (*models.EnrollResponse, error) {
	if req == nil || strings.TrimSpace(req.Hostname) == "" {
		return nil, ErrHostnameRequired
	}

	device, err := s.matchDevice(ctx, strings.TrimSpace(req.HardwareFingerprint), strings.TrimSpace(req.Hostname))
	if err != nil {
		return nil, err
	}

	if device == nil {
		return nil, db.ErrDeviceNotFound
	}

	return enrollResponse(device), nil
}

// matchDevice resolves fingerprint first, hostname second. Returns (nil, nil)
// when neither matches; callers decide whether that means create or 404.
func (s *Server) matchDevice(ctx context.Context, fingerprint, hostname string) (*models.Device, error) {
	if fingerprint != "" {
		device, err := s.store.FindDeviceByFingerprint(ctx, fingerprint)
		if err == nil {
			return device, nil
		}

		if !errors.Is(err, db.ErrDeviceNotFound) {
			return nil, err
		}
	}

	device, err := s.store.FindDeviceByHostname(ctx, hostname)
	if err == nil {
		return device, nil
	}

	if errors.Is(err, db.ErrDeviceNotFound) {
		return nil, nil
	}

	return nil, err
}

func (s *Server) newDevice(req *models.EnrollRequest, hostname, fingerprint, remoteIP string, now time.Time) *models.Device {
	device := &models.Device{
		ID:         uuid.New().String(),
		Hostname:   hostname,
		Status:     models.DeviceStatusPending,
		LastIP:     remoteIP,
		LastSeen:   &now,
		OSName:     enrollOSName(req),
		OSVersion:  req.OSVersion,
		CPUModel:   req.CPUModel,
		CPUCores:   req.CPUCores,
		TotalRAMGB: enrollRAMGB(req),
		Disks:      req.Disks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if fingerprint != "" {
		device.HardwareFingerprint = &fingerprint
	}

	return device
}

// applyEnrollment merges fresh hardware facts onto a matched device without
// touching its trust status or key.
func (s *Server) applyEnrollment(device *models.Device, req *models.EnrollRequest, fingerprint, remoteIP string, now time.Time) {
	if fingerprint != "" {
		device.HardwareFingerprint = &fingerprint
	}

	if osName := enrollOSName(req); osName != "" {
		device.OSName = osName
	}

	if req.OSVersion != "" {
		device.OSVersion = req.OSVersion
	}

	if req.CPUModel != "" {
		device.CPUModel = req.CPUModel
	}

	if req.CPUCores > 0 {
		device.CPUCores = req.CPUCores
	}

	if ram := enrollRAMGB(req); ram > 0 {
		device.TotalRAMGB = ram
	}

	if len(req.Disks) > 0 {
		device.Disks = req.Disks
	}

	device.LastIP = remoteIP
	device.LastSeen = &now
	device.UpdatedAt = now
}

func enrollOSName(req *models.EnrollRequest) string {
	if req.OSName != "" {
		return req.OSName
	}

	return req.OS
}

func enrollRAMGB(req *models.EnrollRequest) float64 {
	if req.TotalRAMGB > 0 {
		return req.TotalRAMGB
	}

	if req.TotalRAMBytes > 0 {
		gb := float64(req.TotalRAMBytes) / (1 << 30)
		return float64(int(gb*100+0.5)) / 100
	}

	return 0
}

// enrollResponse maps a device to the wire status the agent acts on. The
// api_key only travels when the device is active.
func enrollResponse(device *models.Device) *models.EnrollResponse {
	resp := &models.EnrollResponse{DeviceStatus: device.Status}

	switch device.Status {
	case models.DeviceStatusActive:
		resp.Status = "approved"
		resp.APIKey = device.APIKey
	case models.DeviceStatusRevoked:
		resp.Status = "revoked"
	default:
		resp.Status = "pending"
	}

	return resp
}

// IngestMetrics normalizes and stores one telemetry submission for an
// authenticated device, then stamps liveness. Unparsable telemetry still
// records a sample; the agent is alive even when its payload is garbage.
func (s *Server) IngestMetrics(ctx context.Context, device *models.Device, body []byte, remoteIP string) error {
	now := s.now().UTC()
	metric := s.normalizer.Normalize(device.ID, body, now)

	if err := s.store.InsertDeviceMetric(ctx, metric); err != nil {
		return err
	}

	if err := s.store.TouchDevice(ctx, device.ID, remoteIP, now); err != nil {
		s.logger.Warn().Err(err).Str("device_id", device.ID).Msg("failed to stamp device liveness")
	}

	s.refreshOSInfo(ctx, device.ID, metric.Payload)

	return nil
}

// refreshOSInfo opportunistically updates the device's OS facts when the
// telemetry payload carries a system_info block.
func (s *Server) refreshOSInfo(ctx context.Context, deviceID string, payload models.Payload) {
	raw, ok := payload["system_info"]
	if !ok {
		return
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return
	}

	var info struct {
		OSName    string `json:"os_name"`
		OSVersion string `json:"os_version"`
		OS        string `json:"os"`
		Version   string `json:"version"`
	}

	if err := json.Unmarshal(encoded, &info); err != nil {
		return
	}

	osName := info.OSName
	if osName == "" {
		osName = info.OS
	}

	osVersion := info.OSVersion
	if osVersion == "" {
		osVersion = info.Version
	}

	if osName == "" && osVersion == "" {
		return
	}

	if err := s.store.UpdateDeviceOSInfo(ctx, deviceID, osName, osVersion); err != nil {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to refresh device OS info")
	}
}

// Heartbeat stamps liveness and returns the server clock so agents can detect
// drift.
func (s *Server) Heartbeat(ctx context.Context, device *models.Device, remoteIP string) (*models.HeartbeatResponse, error) {
	now := s.now().UTC()

	if err := s.store.TouchDevice(ctx, device.ID, remoteIP, now); err != nil {
		return nil, err
	}

	return &models.HeartbeatResponse{Status: "ok", ServerTime: now}, nil
}

// ListDevices returns the full fleet for the admin view.
func (s *Server) ListDevices(ctx context.Context) ([]models.Device, error) {
	return s.store.ListDevices(ctx)
}

// GetDevice returns one device by id.
func (s *Server) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	return s.store.GetDevice(ctx, id)
}

// RecentMetrics returns the newest samples for a device.
func (s *Server) RecentMetrics(ctx context.Context, deviceID string, limit int) ([]models.DeviceMetric, error) {
	return s.store.GetRecentMetrics(ctx, deviceID, limit)
}

// ApproveDevice transitions a device to active and issues its API key. The
// key is returned exactly once, in this response.
func (s *Server) ApproveDevice(ctx context.Context, id string) (*models.Device, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, err
	}

	if err := s.store.SetDeviceStatus(ctx, id, models.DeviceStatusActive, &apiKey); err != nil {
		return nil, err
	}

	device, err := s.store.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("device_id", device.ID).
		Str("hostname", device.Hostname).
		Msg("device approved")

	if s.events != nil {
		s.events.DeviceApproved(ctx, device)
	}

	return device, nil
}

// RevokeDevice transitions a device to revoked. Its key stops authenticating
// immediately but stays on the row for audit.
func (s *Server) RevokeDevice(ctx context.Context, id string) (*models.Device, error) {
	if err := s.store.SetDeviceStatus(ctx, id, models.DeviceStatusRevoked, nil); err != nil {
		return nil, err
	}

	device, err := s.store.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("device_id", device.ID).
		Str("hostname", device.Hostname).
		Msg("device revoked")

	if s.events != nil {
		s.events.DeviceRevoked(ctx, device)
	}

	return device, nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
