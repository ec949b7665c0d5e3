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
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		hostname TEXT NOT NULL,
		hardware_fingerprint TEXT UNIQUE,
		api_key TEXT UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		last_ip TEXT NOT NULL DEFAULT '',
		last_seen TIMESTAMPTZ,
		os_name TEXT NOT NULL DEFAULT '',
		os_version TEXT NOT NULL DEFAULT '',
		cpu_model TEXT NOT NULL DEFAULT '',
		cpu_cores INT NOT NULL DEFAULT 0,
		total_ram_gb DOUBLE PRECISION NOT NULL DEFAULT 0,
		disks JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_hostname ON devices (hostname)`,
	`CREATE TABLE IF NOT EXISTS device_metrics (
		id BIGSERIAL PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		recorded_at TIMESTAMPTZ NOT NULL,
		cpu_percent DOUBLE PRECISION,
		ram_percent DOUBLE PRECISION,
		cpu_states JSONB,
		load_1 DOUBLE PRECISION,
		load_5 DOUBLE PRECISION,
		load_15 DOUBLE PRECISION,
		uptime_seconds DOUBLE PRECISION,
		memory_total_mib DOUBLE PRECISION,
		memory_used_mib DOUBLE PRECISION,
		memory_free_mib DOUBLE PRECISION,
		memory_cached_mib DOUBLE PRECISION,
		memory_buffers_mib DOUBLE PRECISION,
		memory_available_mib DOUBLE PRECISION,
		alerts_normal INT,
		alerts_warning INT,
		alerts_critical INT,
		processes_total INT,
		processes_running INT,
		processes_sleeping INT,
		processes_zombie INT,
		agent_version TEXT NOT NULL DEFAULT '',
		payload JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_device_metrics_device_time
		ON device_metrics (device_id, recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS device_disk_metrics (
		metric_id BIGINT NOT NULL REFERENCES device_metrics(id) ON DELETE CASCADE,
		mount_point TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		total_gb DOUBLE PRECISION,
		used_gb DOUBLE PRECISION,
		available_gb DOUBLE PRECISION,
		used_percent DOUBLE PRECISION,
		PRIMARY KEY (metric_id, mount_point)
	)`,
	`CREATE TABLE IF NOT EXISTS device_network_metrics (
		metric_id BIGINT NOT NULL REFERENCES device_metrics(id) ON DELETE CASCADE,
		interface TEXT NOT NULL,
		rx_kbps DOUBLE PRECISION,
		tx_kbps DOUBLE PRECISION,
		PRIMARY KEY (metric_id, interface)
	)`,
	`CREATE TABLE IF NOT EXISTS device_commands (
		id UUID PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		template_id UUID,
		script_content TEXT NOT NULL,
		script_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		queued_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at TIMESTAMPTZ,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		timeout_seconds INT NOT NULL DEFAULT 300,
		output TEXT,
		exit_code INT,
		error_message TEXT,
		queued_by TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_device_commands_dispatch
		ON device_commands (device_id, status, queued_at)`,
}

// ensureSchema creates all tables and indexes if they do not exist yet.
func (db *DB) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
