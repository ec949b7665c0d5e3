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

// Package commands implements the poll-based command queue: admins queue
// scripts, agents drain them one at a time, and a background sweeper reclaims
// commands that outlive their timeout.
package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

var (
	ErrScriptRequired    = errors.New("script_content is required")
	ErrInvalidScriptType = errors.New("invalid script_type")
	ErrDeviceIDRequired  = errors.New("device_id is required")
	ErrCommandNotFound   = errors.New("command not found")
	ErrResultNil         = errors.New("result is nil")
	ErrExitCodeRequired  = errors.New("exit_code is required")
)

const (
	// defaultTimeoutSeconds bounds commands queued without an explicit budget.
	defaultTimeoutSeconds = 300

	// maxOutputBytes caps stored command output. Larger outputs keep their
	// prefix and gain a truncation marker so re-submissions stay identical.
	maxOutputBytes = 1 << 20

	truncationMarker = "\n[output truncated]"
)

// Publisher receives lifecycle notifications for completed commands.
// Implementations must tolerate being called with a terminal command in any
// terminal state.
type Publisher interface {
	CommandCompleted(ctx context.Context, cmd *models.DeviceCommand)
}

// Queue coordinates command dispatch between the admin API and polling agents.
type Queue struct {
	store     db.Service
	publisher Publisher
	logger    logger.Logger
	now       func() time.Time
}

// NewQueue creates a Queue. publisher may be nil when lifecycle events are
// disabled.
func NewQueue(store db.Service, publisher Publisher, log logger.Logger) *Queue {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Queue{
		store:     store,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// Enqueue validates and persists a new pending command for a device.
func (q *Queue) Enqueue(ctx context.Context, req *models.QueueCommandRequest) (*models.DeviceCommand, error) {
	if req == nil || req.DeviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	if strings.TrimSpace(req.ScriptContent) == "" {
		return nil, ErrScriptRequired
	}

	if !models.ValidScriptType(req.ScriptType) {
		return nil, ErrInvalidScriptType
	}

	if _, err := q.store.GetDevice(ctx, req.DeviceID); err != nil {
		return nil, err
	}

	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}

	cmd := &models.DeviceCommand{
		ID:             uuid.New().String(),
		DeviceID:       req.DeviceID,
		TemplateID:     req.TemplateID,
		ScriptContent:  req.ScriptContent,
		ScriptType:     req.ScriptType,
		Status:         models.CommandStatusPending,
		QueuedAt:       q.now().UTC(),
		TimeoutSeconds: timeout,
		QueuedBy:       req.QueuedBy,
	}

	if err := q.store.CreateCommand(ctx, cmd); err != nil {
		return nil, err
	}

	q.logger.Info().
		Str("command_id", cmd.ID).
		Str("device_id", cmd.DeviceID).
		Str("script_type", string(cmd.ScriptType)).
		Msg("command queued")

	return cmd, nil
}

// Dequeue hands the device its oldest pending command, atomically marking it
// sent. Returns (nil, nil) when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context, deviceID string) (*models.DeviceCommand, error) {
	cmd, err := q.store.DequeuePendingCommand(ctx, deviceID, q.now().UTC())
	if err != nil {
		return nil, err
	}

	if cmd != nil {
		q.logger.Debug().
			Str("command_id", cmd.ID).
			Str("device_id", deviceID).
			Msg("command dispatched")
	}

	return cmd, nil
}

// MarkStarted acknowledges that the device began executing a sent command.
func (q *Queue) MarkStarted(ctx context.Context, commandID, deviceID string) error {
	err := q.store.MarkCommandStarted(ctx, commandID, deviceID, q.now().UTC())
	if errors.Is(err, db.ErrCommandNotFound) {
		return ErrCommandNotFound
	}

	return err
}

// SubmitResult records an execution result. The exit code is mandatory; a
// non-empty error message forces failed regardless of it, otherwise exit code
// zero means completed. Output beyond maxOutputBytes is truncated
// deterministically.
func (q *Queue) SubmitResult(ctx context.Context, commandID, deviceID string, req *models.CommandResultRequest) error {
	if req == nil {
		return ErrResultNil
	}

	if req.ExitCode == nil {
		return ErrExitCodeRequired
	}

	status := models.CommandStatusCompleted
	exitCode := *req.ExitCode

	if exitCode != 0 {
		status = models.CommandStatusFailed
	}

	errMsg := strings.TrimSpace(req.ErrorMessage)
	if errMsg != "" {
		status = models.CommandStatusFailed
	}

	result := &models.CommandResult{
		Status:      status,
		ExitCode:    exitCode,
		CompletedAt: q.now().UTC(),
	}

	if output := truncateOutput(req.Output); output != "" {
		result.Output = &output
	}

	if errMsg != "" {
		result.ErrorMessage = &errMsg
	}

	err := q.store.CompleteCommand(ctx, commandID, deviceID, result)
	if errors.Is(err, db.ErrCommandNotFound) {
		return ErrCommandNotFound
	}

	if err != nil {
		return err
	}

	q.logger.Info().
		Str("command_id", commandID).
		Str("device_id", deviceID).
		Str("status", string(status)).
		Int("exit_code", exitCode).
		Msg("command result recorded")

	if q.publisher != nil {
		if cmd, err := q.store.GetCommand(ctx, commandID); err == nil {
			q.publisher.CommandCompleted(ctx, cmd)
		}
	}

	return nil
}

// Cancel aborts a command that has not reached a terminal state.
func (q *Queue) Cancel(ctx context.Context, commandID string) error {
	err := q.store.CancelCommand(ctx, commandID, q.now().UTC())
	if errors.Is(err, db.ErrCommandNotFound) {
		return ErrCommandNotFound
	}

	return err
}

// Get returns a command by id.
func (q *Queue) Get(ctx context.Context, commandID string) (*models.DeviceCommand, error) {
	cmd, err := q.store.GetCommand(ctx, commandID)
	if errors.Is(err, db.ErrCommandNotFound) {
		return nil, ErrCommandNotFound
	}

	return cmd, err
}

// ListForDevice returns the device's command history, newest first.
func (q *Queue) ListForDevice(ctx context.Context, deviceID string, limit int) ([]models.DeviceCommand, error) {
	return q.store.ListDeviceCommands(ctx, deviceID, limit)
}

// truncateOutput enforces the output cap. Truncation cuts at a byte boundary
// and appends the marker, so the same oversized input always stores the same
// bytes.
func truncateOutput(output string) string {
	if len(output) <= maxOutputBytes {
		return output
	}

	return output[:maxOutputBytes-len(truncationMarker)] + truncationMarker
}
