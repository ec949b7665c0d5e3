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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/benjameshughes/rmm/pkg/models"
)

const deviceColumns = `id, hostname, hardware_fingerprint, api_key, status, last_ip, last_seen,
	os_name, os_version, cpu_model, cpu_cores, total_ram_gb, disks, created_at, updated_at`

const insertDeviceSQL = `
INSERT INTO devices (
	id,
	hostname,
	hardware_fingerprint,
	api_key,
	status,
	last_ip,
	last_seen,
	os_name,
	os_version,
	cpu_model,
	cpu_cores,
	total_ram_gb,
	disks,
	created_at,
	updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
)`

// updateDeviceEnrollmentSQL refreshes descriptive fields without clobbering
// known values with blanks, and merges a fingerprint only when one is supplied.
const updateDeviceEnrollmentSQL = `
UPDATE devices SET
	hardware_fingerprint = COALESCE($2, hardware_fingerprint),
	os_name = COALESCE(NULLIF($3, ''), os_name),
	os_version = COALESCE(NULLIF($4, ''), os_version),
	cpu_model = COALESCE(NULLIF($5, ''), cpu_model),
	cpu_cores = CASE WHEN $6 > 0 THEN $6 ELSE cpu_cores END,
	total_ram_gb = CASE WHEN $7 > 0 THEN $7 ELSE total_ram_gb END,
	disks = CASE WHEN $8::jsonb = '[]'::jsonb THEN disks ELSE $8::jsonb END,
	last_ip = COALESCE(NULLIF($9, ''), last_ip),
	last_seen = $10,
	updated_at = $10
WHERE id = $1`

func scanDevice(row pgx.Row) (*models.Device, error) {
	var d models.Device

	err := row.Scan(
		&d.ID,
		&d.Hostname,
		&d.HardwareFingerprint,
		&d.APIKey,
		&d.Status,
		&d.LastIP,
		&d.LastSeen,
		&d.OSName,
		&d.OSVersion,
		&d.CPUModel,
		&d.CPUCores,
		&d.TotalRAMGB,
		&d.Disks,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (db *DB) getDeviceWhere(ctx context.Context, clause string, arg interface{}) (*models.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE %s`, deviceColumns, clause)

	device, err := scanDevice(db.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
	}

	return device, nil
}

func (db *DB) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	return db.getDeviceWhere(ctx, "id = $1", id)
}

func (db *DB) GetDeviceByAPIKey(ctx context.Context, apiKey string) (*models.Device, error) {
	return db.getDeviceWhere(ctx, "api_key = $1", apiKey)
}

func (db *DB) FindDeviceByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error) {
	return db.getDeviceWhere(ctx, "hardware_fingerprint = $1", fingerprint)
}

// FindDeviceByHostname returns the oldest device row for the hostname so a
// re-enrolling agent always converges on the original record.
func (db *DB) FindDeviceByHostname(ctx context.Context, hostname string) (*models.Device, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM devices WHERE hostname = $1 ORDER BY created_at ASC LIMIT 1`, deviceColumns)

	device, err := scanDevice(db.pool.QueryRow(ctx, query, hostname))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
	}

	return device, nil
}

func (db *DB) CreateDevice(ctx context.Context, device *models.Device) error {
	if device == nil {
		return ErrDeviceNil
	}

	if device.Hostname == "" {
		return ErrHostnameRequired
	}

	disks := device.Disks
	if disks == nil {
		disks = []models.DeviceDisk{}
	}

	_, err := db.pool.Exec(ctx, insertDeviceSQL,
		device.ID,
		device.Hostname,
		device.HardwareFingerprint,
		device.APIKey,
		device.Status,
		device.LastIP,
		device.LastSeen,
		device.OSName,
		device.OSVersion,
		device.CPUModel,
		device.CPUCores,
		device.TotalRAMGB,
		disks,
		device.CreatedAt,
		device.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToInsert, err)
	}

	return nil
}

func (db *DB) UpdateDeviceEnrollment(ctx context.Context, device *models.Device) error {
	if device == nil {
		return ErrDeviceNil
	}

	if device.ID == "" {
		return ErrDeviceIDRequired
	}

	disks := device.Disks
	if disks == nil {
		disks = []models.DeviceDisk{}
	}

	seen := device.LastSeen
	if seen == nil {
		now := time.Now().UTC()
		seen = &now
	}

	tag, err := db.pool.Exec(ctx, updateDeviceEnrollmentSQL,
		device.ID,
		device.HardwareFingerprint,
		device.OSName,
		device.OSVersion,
		device.CPUModel,
		device.CPUCores,
		device.TotalRAMGB,
		disks,
		device.LastIP,
		seen,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// TouchDevice stamps last_seen and last_ip. Last-writer-wins is acceptable
// for concurrent submissions from the same device.
func (db *DB) TouchDevice(ctx context.Context, id, ip string, seen time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE devices SET last_seen = $2, last_ip = COALESCE(NULLIF($3, ''), last_ip), updated_at = $2 WHERE id = $1`,
		id, seen, ip)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

func (db *DB) UpdateDeviceOSInfo(ctx context.Context, id, osName, osVersion string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE devices SET
			os_name = COALESCE(NULLIF($2, ''), os_name),
			os_version = COALESCE(NULLIF($3, ''), os_version)
		WHERE id = $1`,
		id, osName, osVersion)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	return nil
}

// SetDeviceStatus applies an administrative status transition. An api_key is
// supplied on approval; revocation leaves the key column in place so history
// is preserved while the active-status check invalidates trust.
func (db *DB) SetDeviceStatus(ctx context.Context, id string, status models.DeviceStatus, apiKey *string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE devices SET status = $2, api_key = COALESCE($3, api_key), updated_at = now() WHERE id = $1`,
		id, status, apiKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

func (db *DB) ListDevices(ctx context.Context) ([]models.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices ORDER BY hostname, created_at`, deviceColumns)

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var devices []models.Device

	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
		}

		devices = append(devices, *device)
	}

	return devices, rows.Err()
}
