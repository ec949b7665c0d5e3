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

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/benjameshughes/rmm/pkg/models"
)

const insertMetricSQL = `
INSERT INTO device_metrics (
	device_id,
	recorded_at,
	cpu_percent,
	ram_percent,
	cpu_states,
	load_1,
	load_5,
	load_15,
	uptime_seconds,
	memory_total_mib,
	memory_used_mib,
	memory_free_mib,
	memory_cached_mib,
	memory_buffers_mib,
	memory_available_mib,
	alerts_normal,
	alerts_warning,
	alerts_critical,
	processes_total,
	processes_running,
	processes_sleeping,
	processes_zombie,
	agent_version,
	payload
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24
)
RETURNING id`

const insertDiskMetricSQL = `
INSERT INTO device_disk_metrics (
	metric_id, mount_point, name, total_gb, used_gb, available_gb, used_percent
) VALUES (
	$1,$2,$3,$4,$5,$6,$7
)
ON CONFLICT (metric_id, mount_point) DO NOTHING`

const insertNetworkMetricSQL = `
INSERT INTO device_network_metrics (
	metric_id, interface, rx_kbps, tx_kbps
) VALUES (
	$1,$2,$3,$4
)
ON CONFLICT (metric_id, interface) DO NOTHING`

// InsertDeviceMetric writes one telemetry sample with its disk and network
// children in a single transaction. Samples are immutable once created.
func (db *DB) InsertDeviceMetric(ctx context.Context, metric *models.DeviceMetric) error {
	if metric == nil {
		return ErrMetricNil
	}

	if metric.DeviceID == "" {
		return ErrDeviceIDRequired
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToInsert, err)
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var metricID int64

	err = tx.QueryRow(ctx, insertMetricSQL,
		metric.DeviceID,
		metric.RecordedAt,
		metric.CPUPercent,
		metric.RAMPercent,
		metric.CPUStates,
		metric.Load1,
		metric.Load5,
		metric.Load15,
		metric.UptimeSeconds,
		metric.MemoryTotalMiB,
		metric.MemoryUsedMiB,
		metric.MemoryFreeMiB,
		metric.MemoryCachedMiB,
		metric.MemoryBuffersMiB,
		metric.MemoryAvailableMiB,
		metric.AlertsNormal,
		metric.AlertsWarning,
		metric.AlertsCritical,
		metric.ProcessesTotal,
		metric.ProcessesRunning,
		metric.ProcessesSleeping,
		metric.ProcessesZombie,
		metric.AgentVersion,
		metric.Payload,
	).Scan(&metricID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToInsert, err)
	}

	metric.ID = metricID

	if len(metric.Disks) > 0 || len(metric.Network) > 0 {
		batch := &pgx.Batch{}

		for i := range metric.Disks {
			d := &metric.Disks[i]
			batch.Queue(insertDiskMetricSQL,
				metricID, d.MountPoint, d.Name, d.TotalGB, d.UsedGB, d.AvailableGB, d.UsedPercent)
		}

		for i := range metric.Network {
			n := &metric.Network[i]
			batch.Queue(insertNetworkMetricSQL, metricID, n.Interface, n.RxKbps, n.TxKbps)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToInsert, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToInsert, err)
	}

	return nil
}

const recentMetricsSQL = `
SELECT
	id, device_id, recorded_at, cpu_percent, ram_percent, cpu_states,
	load_1, load_5, load_15, uptime_seconds,
	memory_total_mib, memory_used_mib, memory_free_mib,
	memory_cached_mib, memory_buffers_mib, memory_available_mib,
	alerts_normal, alerts_warning, alerts_critical,
	processes_total, processes_running, processes_sleeping, processes_zombie,
	agent_version
FROM device_metrics
WHERE device_id = $1
ORDER BY recorded_at DESC
LIMIT $2`

// GetRecentMetrics returns the newest samples for a device, newest first.
// Disk and network children are not loaded here; the admin graphing views
// only chart the top-level series.
func (db *DB) GetRecentMetrics(ctx context.Context, deviceID string, limit int) ([]models.DeviceMetric, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx, recentMetricsSQL, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var metrics []models.DeviceMetric

	for rows.Next() {
		var m models.DeviceMetric

		err := rows.Scan(
			&m.ID, &m.DeviceID, &m.RecordedAt, &m.CPUPercent, &m.RAMPercent, &m.CPUStates,
			&m.Load1, &m.Load5, &m.Load15, &m.UptimeSeconds,
			&m.MemoryTotalMiB, &m.MemoryUsedMiB, &m.MemoryFreeMiB,
			&m.MemoryCachedMiB, &m.MemoryBuffersMiB, &m.MemoryAvailableMiB,
			&m.AlertsNormal, &m.AlertsWarning, &m.AlertsCritical,
			&m.ProcessesTotal, &m.ProcessesRunning, &m.ProcessesSleeping, &m.ProcessesZombie,
			&m.AgentVersion,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
		}

		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}
