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

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

const (
	testDeviceID    = "7f9c55f7-9c18-4f6e-9a3d-0a2b89a41f10"
	testFingerprint = "fp-abc123"
	testHostname    = "WORKSTATION-01"
	testIP          = "203.0.113.7"
)

func newTestServer(t *testing.T) (*Server, *db.MockService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := db.NewMockService(ctrl)

	return NewServer(store, nil, logger.NewTestLogger()), store
}

func TestEnrollCreatesPendingDevice(t *testing.T) {
	s, store := newTestServer(t)

	store.EXPECT().FindDeviceByFingerprint(gomock.Any(), testFingerprint).Return(nil, db.ErrDeviceNotFound)
	store.EXPECT().FindDeviceByHostname(gomock.Any(), testHostname).Return(nil, db.ErrDeviceNotFound)
	store.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, device *models.Device) error {
			assert.NotEmpty(t, device.ID)
			assert.Equal(t, testHostname, device.Hostname)
			assert.Equal(t, models.DeviceStatusPending, device.Status)
			require.NotNil(t, device.HardwareFingerprint)
			assert.Equal(t, testFingerprint, *device.HardwareFingerprint)
			assert.Equal(t, testIP, device.LastIP)
			assert.Nil(t, device.APIKey)

			return nil
		})

	resp, err := s.Enroll(context.Background(), &models.EnrollRequest{
		Hostname:            testHostname,
		HardwareFingerprint: testFingerprint,
		OSName:              "Windows 11 Pro",
	}, testIP)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, models.DeviceStatusPending, resp.DeviceStatus)
	assert.Nil(t, resp.APIKey)
}

func TestEnrollMatchesByFingerprintFirst(t *testing.T) {
	s, store := newTestServer(t)

	key := "existing-key"
	existing := &models.Device{
		ID:       testDeviceID,
		Hostname: "old-hostname",
		Status:   models.DeviceStatusActive,
		APIKey:   &key,
	}

	store.EXPECT().FindDeviceByFingerprint(gomock.Any(), testFingerprint).Return(existing, nil)
	store.EXPECT().UpdateDeviceEnrollment(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := s.Enroll(context.Background(), &models.EnrollRequest{
		Hostname:            testHostname,
		HardwareFingerprint: testFingerprint,
	}, testIP)
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	require.NotNil(t, resp.APIKey)
	assert.Equal(t, key, *resp.APIKey)
}

func TestEnrollFallsBackToHostname(t *testing.T) {
	s, store := newTestServer(t)

	existing := &models.Device{ID: testDeviceID, Hostname: testHostname, Status: models.DeviceStatusPending}

	store.EXPECT().FindDeviceByFingerprint(gomock.Any(), testFingerprint).Return(nil, db.ErrDeviceNotFound)
	store.EXPECT().FindDeviceByHostname(gomock.Any(), testHostname).Return(existing, nil)
	store.EXPECT().UpdateDeviceEnrollment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, device *models.Device) error {
			// The hostname match gains the fingerprint; no second row appears.
			require.NotNil(t, device.HardwareFingerprint)
			assert.Equal(t, testFingerprint, *device.HardwareFingerprint)

			return nil
		})

	resp, err := s.Enroll(context.Background(), &models.EnrollRequest{
		Hostname:            testHostname,
		HardwareFingerprint: testFingerprint,
	}, testIP)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestEnrollWithoutFingerprintMatchesHostnameOnly(t *testing.T) {
	s, store := newTestServer(t)

	existing := &models.Device{ID: testDeviceID, Hostname: testHostname, Status: models.DeviceStatusRevoked}

	store.EXPECT().FindDeviceByHostname(gomock.Any(), testHostname).Return(existing, nil)
	store.EXPECT().UpdateDeviceEnrollment(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := s.Enroll(context.Background(), &models.EnrollRequest{Hostname: testHostname}, testIP)
	require.NoError(t, err)
	assert.Equal(t, "revoked", resp.Status)
	assert.Nil(t, resp.APIKey)
}

func TestEnrollRequiresHostname(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.Enroll(context.Background(), &models.EnrollRequest{Hostname: "  "}, testIP)
	assert.ErrorIs(t, err, ErrHostnameRequired)

	_, err = s.Enroll(context.Background(), nil, testIP)
	assert.ErrorIs(t, err, ErrHostnameRequired)
}

func TestEnrollConvertsRAMBytes(t *testing.T) {
	s, store := newTestServer(t)

	store.EXPECT().FindDeviceByHostname(gomock.Any(), testHostname).Return(nil, db.ErrDeviceNotFound)
	store.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, device *models.Device) error {
			assert.InDelta(t, 16.0, device.TotalRAMGB, 0.01)
			return nil
		})

	_, err := s.Enroll(context.Background(), &models.EnrollRequest{
		Hostname:      testHostname,
		TotalRAMBytes: 16 * (1 << 30),
	}, testIP)
	require.NoError(t, err)
}

func TestCheckNeverCreates(t *testing.T) {
	s, store := newTestServer(t)

	store.EXPECT().FindDeviceByFingerprint(gomock.Any(), testFingerprint).Return(nil, db.ErrDeviceNotFound)
	store.EXPECT().FindDeviceByHostname(gomock.Any(), testHostname).Return(nil, db.ErrDeviceNotFound)

	_, err := s.Check(context.Background(), &models.CheckRequest{
		Hostname:            testHostname,
		HardwareFingerprint: testFingerprint,
	})
	assert.ErrorIs(t, err, db.ErrDeviceNotFound)
}

func TestCheckApprovedDeviceCarriesKey(t *testing.T) {
	s, store := newTestServer(t)

	key := "the-key"
	device := &models.Device{ID: testDeviceID, Status: models.DeviceStatusActive, APIKey: &key}
	store.EXPECT().FindDeviceByHostname(gomock.Any(), testHostname).Return(device, nil)

	resp, err := s.Check(context.Background(), &models.CheckRequest{Hostname: testHostname})
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	require.NotNil(t, resp.APIKey)
	assert.Equal(t, key, *resp.APIKey)
}

func TestIngestMetricsStoresAndTouches(t *testing.T) {
	s, store := newTestServer(t)

	device := &models.Device{ID: testDeviceID, Status: models.DeviceStatusActive}

	store.EXPECT().InsertDeviceMetric(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, metric *models.DeviceMetric) error {
			assert.Equal(t, testDeviceID, metric.DeviceID)
			require.NotNil(t, metric.CPUPercent)
			assert.InDelta(t, 42.5, *metric.CPUPercent, 0.001)

			return nil
		})
	store.EXPECT().TouchDevice(gomock.Any(), testDeviceID, testIP, gomock.Any()).Return(nil)

	err := s.IngestMetrics(context.Background(), device, []byte(`{"cpu": 42.5}`), testIP)
	require.NoError(t, err)
}

func TestIngestMetricsGarbageBodyStillRecords(t *testing.T) {
	s, store := newTestServer(t)

	device := &models.Device{ID: testDeviceID}

	store.EXPECT().InsertDeviceMetric(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, metric *models.DeviceMetric) error {
			assert.Nil(t, metric.CPUPercent)
			assert.Nil(t, metric.RAMPercent)

			return nil
		})
	store.EXPECT().TouchDevice(gomock.Any(), testDeviceID, testIP, gomock.Any()).Return(nil)

	err := s.IngestMetrics(context.Background(), device, []byte(`not json at all`), testIP)
	require.NoError(t, err)
}

func TestIngestMetricsRefreshesOSInfo(t *testing.T) {
	s, store := newTestServer(t)

	device := &models.Device{ID: testDeviceID}

	store.EXPECT().InsertDeviceMetric(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().TouchDevice(gomock.Any(), testDeviceID, testIP, gomock.Any()).Return(nil)
	store.EXPECT().UpdateDeviceOSInfo(gomock.Any(), testDeviceID, "Ubuntu", "24.04").Return(nil)

	body := []byte(`{"cpu": 5, "system_info": {"os_name": "Ubuntu", "os_version": "24.04"}}`)
	err := s.IngestMetrics(context.Background(), device, body, testIP)
	require.NoError(t, err)
}

func TestHeartbeat(t *testing.T) {
	s, store := newTestServer(t)

	device := &models.Device{ID: testDeviceID}
	store.EXPECT().TouchDevice(gomock.Any(), testDeviceID, testIP, gomock.Any()).Return(nil)

	resp, err := s.Heartbeat(context.Background(), device, testIP)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.ServerTime.IsZero())
}

func TestApproveDeviceIssuesKey(t *testing.T) {
	s, store := newTestServer(t)

	var issued string

	store.EXPECT().SetDeviceStatus(gomock.Any(), testDeviceID, models.DeviceStatusActive, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, _ models.DeviceStatus, apiKey *string) error {
			require.NotNil(t, apiKey)
			assert.Len(t, *apiKey, 64)
			issued = *apiKey

			return nil
		})
	store.EXPECT().GetDevice(gomock.Any(), testDeviceID).DoAndReturn(
		func(_ context.Context, id string) (*models.Device, error) {
			return &models.Device{ID: id, Status: models.DeviceStatusActive, APIKey: &issued}, nil
		})

	device, err := s.ApproveDevice(context.Background(), testDeviceID)
	require.NoError(t, err)
	require.NotNil(t, device.APIKey)
	assert.Equal(t, issued, *device.APIKey)
}

func TestApproveUnknownDevice(t *testing.T) {
	s, store := newTestServer(t)

	store.EXPECT().
		SetDeviceStatus(gomock.Any(), testDeviceID, models.DeviceStatusActive, gomock.Any()).
		Return(db.ErrDeviceNotFound)

	_, err := s.ApproveDevice(context.Background(), testDeviceID)
	assert.ErrorIs(t, err, db.ErrDeviceNotFound)
}

func TestRevokeDeviceKeepsKeyColumn(t *testing.T) {
	s, store := newTestServer(t)

	store.EXPECT().SetDeviceStatus(gomock.Any(), testDeviceID, models.DeviceStatusRevoked, gomock.Nil()).Return(nil)
	store.EXPECT().GetDevice(gomock.Any(), testDeviceID).Return(
		&models.Device{ID: testDeviceID, Status: models.DeviceStatusRevoked}, nil)

	device, err := s.RevokeDevice(context.Background(), testDeviceID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusRevoked, device.Status)
}

func TestGenerateAPIKeyIsUnique(t *testing.T) {
	a, err := generateAPIKey()
	require.NoError(t, err)

	b, err := generateAPIKey()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
