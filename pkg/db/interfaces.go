/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"

	"github.com/benjameshughes/rmm/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/benjameshughes/rmm/pkg/db Service

// Service represents all database operations for the RMM core.
type Service interface {
	Close()

	// Device operations.

	GetDevice(ctx context.Context, id string) (*models.Device, error)
	GetDeviceByAPIKey(ctx context.Context, apiKey string) (*models.Device, error)
	FindDeviceByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error)
	FindDeviceByHostname(ctx context.Context, hostname string) (*models.Device, error)
	CreateDevice(ctx context.Context, device *models.Device) error
	// UpdateDeviceEnrollment refreshes descriptive hardware/OS fields,
	// merges a late-arriving fingerprint, and stamps last_seen/last_ip.
	UpdateDeviceEnrollment(ctx context.Context, device *models.Device) error
	TouchDevice(ctx context.Context, id, ip string, seen time.Time) error
	UpdateDeviceOSInfo(ctx context.Context, id, osName, osVersion string) error
	SetDeviceStatus(ctx context.Context, id string, status models.DeviceStatus, apiKey *string) error
	ListDevices(ctx context.Context) ([]models.Device, error)

	// Metric operations. Metrics are append-only.

	InsertDeviceMetric(ctx context.Context, metric *models.DeviceMetric) error
	GetRecentMetrics(ctx context.Context, deviceID string, limit int) ([]models.DeviceMetric, error)

	// Command queue operations.

	CreateCommand(ctx context.Context, cmd *models.DeviceCommand) error
	GetCommand(ctx context.Context, id string) (*models.DeviceCommand, error)
	// DequeuePendingCommand atomically selects the device's oldest pending
	// command and marks it sent. Returns (nil, nil) when nothing is queued.
	DequeuePendingCommand(ctx context.Context, deviceID string, sentAt time.Time) (*models.DeviceCommand, error)
	MarkCommandStarted(ctx context.Context, commandID, deviceID string, startedAt time.Time) error
	CompleteCommand(ctx context.Context, commandID, deviceID string, result *models.CommandResult) error
	CancelCommand(ctx context.Context, commandID string, at time.Time) error
	ListDeviceCommands(ctx context.Context, deviceID string, limit int) ([]models.DeviceCommand, error)
	// SweepTimedOutCommands reconciles commands that exceeded their
	// timeout_seconds without reaching a terminal state.
	SweepTimedOutCommands(ctx context.Context, now time.Time) (int64, error)
}
