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

package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

const testDeviceID = "c3a4dd27-4b19-47ab-9a22-6c9b5ed93f71"

func normalize(t *testing.T, body string) *models.DeviceMetric {
	t.Helper()

	n := NewNormalizer(logger.NewTestLogger())
	m := n.Normalize(testDeviceID, []byte(body), time.Now().UTC())
	require.NotNil(t, m)
	require.Equal(t, testDeviceID, m.DeviceID)

	return m
}

func TestNormalizeCPUPrecomputedUsagePercent(t *testing.T) {
	m := normalize(t, `{"cpu": {"usage_percent": 37.456}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 37.46, *m.CPUPercent, 0.001)
}

func TestNormalizeCPUBareScalar(t *testing.T) {
	m := normalize(t, `{"cpu": 42.5}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 42.5, *m.CPUPercent, 0.001)
}

func TestNormalizeCPUStringWrappedScalar(t *testing.T) {
	m := normalize(t, `{"cpu": "42.5"}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 42.5, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesIdle(t *testing.T) {
	m := normalize(t, `{"cpu": {
		"labels": ["time", "user", "system", "idle"],
		"data": [[1715000000, 12, 3, 85]]
	}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 15.0, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesUsesLastRow(t *testing.T) {
	m := normalize(t, `{"cpu": {
		"labels": ["time", "idle"],
		"data": [[1715000000, 90], [1715000001, 70]]
	}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 30.0, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesStringWrapped(t *testing.T) {
	m := normalize(t, `{"cpu": "{\"labels\": [\"time\", \"idle\"], \"data\": [[1715000000, 85]]}"}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 15.0, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesResultWrapper(t *testing.T) {
	m := normalize(t, `{"cpu": {"result": {
		"labels": ["time", "idle"],
		"data": [[1715000000, 60]]
	}}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 40.0, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesUsageFallback(t *testing.T) {
	m := normalize(t, `{"cpu": {
		"labels": ["time", "usage"],
		"data": [[1715000000, 33.3]]
	}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 33.3, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesBusyFallback(t *testing.T) {
	m := normalize(t, `{"cpu": {
		"labels": ["time", "busy"],
		"data": [[1715000000, 27.25]]
	}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 27.25, *m.CPUPercent, 0.001)
}

func TestNormalizeCPULegacySeriesUserPlusSystem(t *testing.T) {
	m := normalize(t, `{"cpu": {
		"labels": ["time", "user", "system"],
		"data": [[1715000000, 10.5, 4.25]]
	}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 14.75, *m.CPUPercent, 0.001)
}

func TestNormalizeCPUSummarizedDimensions(t *testing.T) {
	m := normalize(t, `{"cpu": {"view": {"dimensions": {
		"ids": ["irq", "user", "system", "dpc", "idle"],
		"sts": {"avg": [0.21, 2.52, 15.79, 0.14, 81.34]}
	}}}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 18.66, *m.CPUPercent, 0.001)

	// dpc folds into system in the detailed breakdown.
	require.NotNil(t, m.CPUStates)
	assert.NotContains(t, m.CPUStates, "dpc")
	assert.InDelta(t, 15.93, m.CPUStates["system"], 0.001)
	assert.InDelta(t, 2.52, m.CPUStates["user"], 0.001)
	assert.InDelta(t, 0.21, m.CPUStates["irq"], 0.001)
}

func TestNormalizeCPUClampsToRange(t *testing.T) {
	m := normalize(t, `{"cpu": 150}`)
	require.NotNil(t, m.CPUPercent)
	assert.Equal(t, 100.0, *m.CPUPercent)

	m = normalize(t, `{"cpu": -3}`)
	require.NotNil(t, m.CPUPercent)
	assert.Equal(t, 0.0, *m.CPUPercent)
}

func TestNormalizeCPUMalformed(t *testing.T) {
	cases := map[string]string{
		"missing":             `{}`,
		"null":                `{"cpu": null}`,
		"garbage string":      `{"cpu": "not json"}`,
		"empty object":        `{"cpu": {}}`,
		"labels without data": `{"cpu": {"labels": ["time", "idle"]}}`,
		"empty data":          `{"cpu": {"labels": ["time", "idle"], "data": []}}`,
		"time column only":    `{"cpu": {"labels": ["time"], "data": [[1715000000]]}}`,
		"bool scalar":         `{"cpu": true}`,
		"non-numeric idle":    `{"cpu": {"labels": ["time", "idle"], "data": [[1715000000, "garbage"]]}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			m := normalize(t, body)
			assert.Nil(t, m.CPUPercent)
		})
	}
}

func TestNormalizeCPUSeriesNonNumericIdleFallsBack(t *testing.T) {
	// The unusable idle cell drops out; user+system still resolves.
	m := normalize(t, `{"cpu": {
		"labels": ["time", "idle", "user", "system"],
		"data": [[1715000000, "garbage", 12, 3]]
	}}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 15.0, *m.CPUPercent, 0.001)
}

func TestNormalizeIllTypedFieldDegradesOnlyItself(t *testing.T) {
	m := normalize(t, `{"agent_version": 3, "cpu": 42.5}`)

	require.NotNil(t, m.CPUPercent)
	assert.InDelta(t, 42.5, *m.CPUPercent, 0.001)
	assert.Empty(t, m.AgentVersion)
}

func TestNormalizeRAMLegacySeries(t *testing.T) {
	m := normalize(t, `{"ram": {
		"labels": ["time", "used", "free", "cached", "buffers"],
		"data": [[1715000000, 4096, 12288, 2048, 512]]
	}}`)

	require.NotNil(t, m.RAMPercent)
	assert.InDelta(t, 21.62, *m.RAMPercent, 0.001)
}

func TestNormalizeRAMNegativeColumnsClampToZero(t *testing.T) {
	m := normalize(t, `{"ram": {
		"labels": ["time", "used", "free", "cached"],
		"data": [[1715000000, 4096, 4096, -500]]
	}}`)

	require.NotNil(t, m.RAMPercent)
	assert.InDelta(t, 50.0, *m.RAMPercent, 0.001)
}

func TestNormalizeRAMZeroUsedIsNull(t *testing.T) {
	m := normalize(t, `{"ram": {
		"labels": ["time", "used", "free"],
		"data": [[1715000000, 0, 8192]]
	}}`)

	assert.Nil(t, m.RAMPercent)
}

func TestNormalizeRAMZeroSumIsNull(t *testing.T) {
	m := normalize(t, `{"ram": {
		"labels": ["time", "used", "free"],
		"data": [[1715000000, -10, -20]]
	}}`)

	assert.Nil(t, m.RAMPercent)
}

func TestNormalizeRAMPrecomputedUsagePercent(t *testing.T) {
	m := normalize(t, `{"memory": {"usage_percent": 63.2, "used": 10240, "total": 16384}}`)

	require.NotNil(t, m.RAMPercent)
	assert.InDelta(t, 63.2, *m.RAMPercent, 0.001)
	require.NotNil(t, m.MemoryUsedMiB)
	assert.InDelta(t, 10240, *m.MemoryUsedMiB, 0.001)
	require.NotNil(t, m.MemoryTotalMiB)
	assert.InDelta(t, 16384, *m.MemoryTotalMiB, 0.001)
}

func TestNormalizeRAMScalar(t *testing.T) {
	m := normalize(t, `{"ram": 55.5}`)

	require.NotNil(t, m.RAMPercent)
	assert.InDelta(t, 55.5, *m.RAMPercent, 0.001)
}

func TestNormalizeRAMSummarizedDimensions(t *testing.T) {
	m := normalize(t, `{"ram": {"view": {"dimensions": {
		"ids": ["free", "used", "cached", "buffers"],
		"sts": {"avg": [12288, 4096, 2048, 512]}
	}}}}`)

	require.NotNil(t, m.RAMPercent)
	assert.InDelta(t, 21.62, *m.RAMPercent, 0.001)
}

func TestNormalizeBodyNotJSON(t *testing.T) {
	m := normalize(t, `this is not json`)

	assert.Nil(t, m.CPUPercent)
	assert.Nil(t, m.RAMPercent)
	assert.Nil(t, m.Payload)
}

func TestNormalizeKeepsRawPayload(t *testing.T) {
	m := normalize(t, `{"cpu": 10, "custom_field": "kept"}`)

	require.NotNil(t, m.Payload)
	assert.Equal(t, "kept", m.Payload["custom_field"])
}

func TestNormalizeAgentVersion(t *testing.T) {
	m := normalize(t, `{"agent_version": "2.4.1", "cpu": 5}`)

	assert.Equal(t, "2.4.1", m.AgentVersion)
}

func TestNormalizeLoadTriple(t *testing.T) {
	m := normalize(t, `{"load": [0.52, 0.61, 0.75]}`)

	require.NotNil(t, m.Load1)
	assert.InDelta(t, 0.52, *m.Load1, 0.001)
	require.NotNil(t, m.Load5)
	assert.InDelta(t, 0.61, *m.Load5, 0.001)
	require.NotNil(t, m.Load15)
	assert.InDelta(t, 0.75, *m.Load15, 0.001)
}

func TestNormalizeLoadSeries(t *testing.T) {
	m := normalize(t, `{"load": {
		"labels": ["time", "load1", "load5", "load15"],
		"data": [[1715000000, 1.5, 1.2, 0.9]]
	}}`)

	require.NotNil(t, m.Load1)
	assert.InDelta(t, 1.5, *m.Load1, 0.001)
	require.NotNil(t, m.Load15)
	assert.InDelta(t, 0.9, *m.Load15, 0.001)
}

func TestNormalizeUptime(t *testing.T) {
	m := normalize(t, `{"uptime": 86400}`)

	require.NotNil(t, m.UptimeSeconds)
	assert.InDelta(t, 86400, *m.UptimeSeconds, 0.001)
}

func TestNormalizeUptimeSeries(t *testing.T) {
	m := normalize(t, `{"uptime": {
		"labels": ["time", "uptime"],
		"data": [[1715000000, 3600]]
	}}`)

	require.NotNil(t, m.UptimeSeconds)
	assert.InDelta(t, 3600, *m.UptimeSeconds, 0.001)
}

func TestNormalizeAlerts(t *testing.T) {
	m := normalize(t, `{"alerts": {"normal": 12, "warning": 2, "critical": 1}}`)

	require.NotNil(t, m.AlertsNormal)
	assert.Equal(t, 12, *m.AlertsNormal)
	require.NotNil(t, m.AlertsWarning)
	assert.Equal(t, 2, *m.AlertsWarning)
	require.NotNil(t, m.AlertsCritical)
	assert.Equal(t, 1, *m.AlertsCritical)
}

func TestNormalizeProcesses(t *testing.T) {
	m := normalize(t, `{"processes": {"total": 240, "running": 3, "sleeping": 236, "zombie": 1}}`)

	require.NotNil(t, m.ProcessesTotal)
	assert.Equal(t, 240, *m.ProcessesTotal)
	require.NotNil(t, m.ProcessesZombie)
	assert.Equal(t, 1, *m.ProcessesZombie)
}

func TestNormalizeDisks(t *testing.T) {
	m := normalize(t, `{"disks": [
		{"mount_point": "/", "name": "sda1", "total_gb": 100, "used_gb": 40, "available_gb": 60},
		{"mount_point": "/data", "total_gb": 500, "used_gb": 125, "used_percent": 25}
	]}`)

	require.Len(t, m.Disks, 2)

	assert.Equal(t, "/", m.Disks[0].MountPoint)
	assert.Equal(t, "sda1", m.Disks[0].Name)
	require.NotNil(t, m.Disks[0].UsedPercent)
	assert.InDelta(t, 40.0, *m.Disks[0].UsedPercent, 0.001)

	require.NotNil(t, m.Disks[1].UsedPercent)
	assert.InDelta(t, 25.0, *m.Disks[1].UsedPercent, 0.001)
}

func TestNormalizeDisksSkipsEntriesWithoutMount(t *testing.T) {
	m := normalize(t, `{"disks": [{"name": "nomount", "total_gb": 10}]}`)

	assert.Empty(t, m.Disks)
}

func TestNormalizeNetworkList(t *testing.T) {
	m := normalize(t, `{"network": [
		{"interface": "eth0", "rx_kbps": 120.5, "tx_kbps": 48.2}
	]}`)

	require.Len(t, m.Network, 1)
	assert.Equal(t, "eth0", m.Network[0].Interface)
	require.NotNil(t, m.Network[0].RxKbps)
	assert.InDelta(t, 120.5, *m.Network[0].RxKbps, 0.001)
}

func TestNormalizeNetworkKeyedMap(t *testing.T) {
	m := normalize(t, `{"network": {"wlan0": {"received": 10.1, "sent": 2.4}}}`)

	require.Len(t, m.Network, 1)
	assert.Equal(t, "wlan0", m.Network[0].Interface)
	require.NotNil(t, m.Network[0].TxKbps)
	assert.InDelta(t, 2.4, *m.Network[0].TxKbps, 0.001)
}

func TestNormalizeMemoryBreakdownFromSeries(t *testing.T) {
	m := normalize(t, `{"ram": {
		"labels": ["time", "used", "free", "cached", "buffers"],
		"data": [[1715000000, 4096, 12288, 2048, 512]]
	}}`)

	require.NotNil(t, m.MemoryUsedMiB)
	assert.InDelta(t, 4096, *m.MemoryUsedMiB, 0.001)
	require.NotNil(t, m.MemoryTotalMiB)
	assert.InDelta(t, 18944, *m.MemoryTotalMiB, 0.001)
}
