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

const commandColumns = `id, device_id, template_id, script_content, script_type, status,
	queued_at, sent_at, started_at, completed_at, timeout_seconds,
	output, exit_code, error_message, queued_by`

const insertCommandSQL = `
INSERT INTO device_commands (
	id,
	device_id,
	template_id,
	script_content,
	script_type,
	status,
	queued_at,
	timeout_seconds,
	queued_by
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`

// dequeuePendingCommandSQL is the single atomic unit of poll-dispatch: it
// selects the oldest pending command for the device and marks it sent in one
// statement. FOR UPDATE SKIP LOCKED keeps two concurrent polls from ever
// dispatching the same row; the status guard in the outer UPDATE makes the
// transition conditional even if the row was flipped between plan and lock.
const dequeuePendingCommandSQL = `
UPDATE device_commands SET
	status = 'sent',
	sent_at = $2
WHERE id = (
	SELECT id FROM device_commands
	WHERE device_id = $1 AND status = 'pending'
	ORDER BY queued_at ASC, id ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
AND status = 'pending'
RETURNING ` + commandColumns

const markCommandStartedSQL = `
UPDATE device_commands SET
	status = 'running',
	started_at = $3
WHERE id = $1 AND device_id = $2 AND status = 'sent'`

const completeCommandSQL = `
UPDATE device_commands SET
	status = $3,
	exit_code = $4,
	output = $5,
	error_message = $6,
	completed_at = $7
WHERE id = $1 AND device_id = $2 AND status IN ('sent', 'running')`

const cancelCommandSQL = `
UPDATE device_commands SET
	status = 'cancelled',
	completed_at = $2
WHERE id = $1 AND status IN ('pending', 'sent', 'running')`

// sweepTimedOutSQL reconciles commands that outlived their timeout budget
// without reaching a terminal state. The clock starts at dispatch when the
// command was sent, otherwise at queue time.
const sweepTimedOutSQL = `
UPDATE device_commands SET
	status = 'timed_out',
	completed_at = $1
WHERE status IN ('pending', 'sent', 'running')
AND timeout_seconds > 0
AND COALESCE(sent_at, queued_at) + make_interval(secs => timeout_seconds) < $1`

func scanCommand(row pgx.Row) (*models.DeviceCommand, error) {
	var c models.DeviceCommand

	err := row.Scan(
		&c.ID,
		&c.DeviceID,
		&c.TemplateID,
		&c.ScriptContent,
		&c.ScriptType,
		&c.Status,
		&c.QueuedAt,
		&c.SentAt,
		&c.StartedAt,
		&c.CompletedAt,
		&c.TimeoutSeconds,
		&c.Output,
		&c.ExitCode,
		&c.ErrorMessage,
		&c.QueuedBy,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (db *DB) CreateCommand(ctx context.Context, cmd *models.DeviceCommand) error {
	if cmd == nil {
		return ErrCommandNil
	}

	if cmd.DeviceID == "" {
		return ErrDeviceIDRequired
	}

	if cmd.ScriptContent == "" {
		return ErrScriptRequired
	}

	if !models.ValidScriptType(cmd.ScriptType) {
		return ErrScriptTypeInvalid
	}

	_, err := db.pool.Exec(ctx, insertCommandSQL,
		cmd.ID,
		cmd.DeviceID,
		cmd.TemplateID,
		cmd.ScriptContent,
		cmd.ScriptType,
		cmd.Status,
		cmd.QueuedAt,
		cmd.TimeoutSeconds,
		cmd.QueuedBy,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToInsert, err)
	}

	return nil
}

func (db *DB) GetCommand(ctx context.Context, id string) (*models.DeviceCommand, error) {
	query := fmt.Sprintf(`SELECT %s FROM device_commands WHERE id = $1`, commandColumns)

	cmd, err := scanCommand(db.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCommandNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
	}

	return cmd, nil
}

func (db *DB) DequeuePendingCommand(ctx context.Context, deviceID string, sentAt time.Time) (*models.DeviceCommand, error) {
	cmd, err := scanCommand(db.pool.QueryRow(ctx, dequeuePendingCommandSQL, deviceID, sentAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
	}

	return cmd, nil
}

// MarkCommandStarted transitions the device's own sent command to running.
// Zero rows means not-found to the caller: wrong owner, wrong state, and
// absence all look the same from outside.
func (db *DB) MarkCommandStarted(ctx context.Context, commandID, deviceID string, startedAt time.Time) error {
	tag, err := db.pool.Exec(ctx, markCommandStartedSQL, commandID, deviceID, startedAt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrCommandNotFound
	}

	return nil
}

func (db *DB) CompleteCommand(ctx context.Context, commandID, deviceID string, result *models.CommandResult) error {
	if result == nil {
		return ErrCommandNil
	}

	tag, err := db.pool.Exec(ctx, completeCommandSQL,
		commandID,
		deviceID,
		result.Status,
		result.ExitCode,
		result.Output,
		result.ErrorMessage,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrCommandNotFound
	}

	return nil
}

func (db *DB) CancelCommand(ctx context.Context, commandID string, at time.Time) error {
	tag, err := db.pool.Exec(ctx, cancelCommandSQL, commandID, at)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrCommandNotFound
	}

	return nil
}

func (db *DB) ListDeviceCommands(ctx context.Context, deviceID string, limit int) ([]models.DeviceCommand, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(
		`SELECT %s FROM device_commands WHERE device_id = $1 ORDER BY queued_at DESC LIMIT $2`,
		commandColumns)

	rows, err := db.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var commands []models.DeviceCommand

	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToScan, err)
		}

		commands = append(commands, *cmd)
	}

	return commands, rows.Err()
}

func (db *DB) SweepTimedOutCommands(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, sweepTimedOutSQL, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	return tag.RowsAffected(), nil
}
