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

// Package natsutil publishes fleet lifecycle events to NATS JetStream as
// CloudEvents. Publishing is best-effort: API responses never wait on or fail
// because of the event stream.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

const (
	eventSource     = "rmm/core"
	defaultStream   = "rmm-events"
	subjectDevices  = "events.device.*"
	subjectCommands = "events.command.*"
)

// DeviceEventData is the payload of device lifecycle events.
type DeviceEventData struct {
	DeviceID  string    `json:"device_id"`
	Hostname  string    `json:"hostname"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CommandEventData is the payload of command lifecycle events.
type CommandEventData struct {
	CommandID string    `json:"command_id"`
	DeviceID  string    `json:"device_id"`
	Status    string    `json:"status"`
	ExitCode  *int      `json:"exit_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher publishes CloudEvents to a JetStream stream. A nil publisher
// is valid and drops every event, so callers never branch on configuration.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
	logger logger.Logger
}

// NewEventPublisher creates an EventPublisher for the given stream.
func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &EventPublisher{
		js:     js,
		stream: streamName,
		logger: log,
	}
}

func (p *EventPublisher) publish(ctx context.Context, eventType, subject string, when time.Time, data interface{}) {
	if p == nil || p.js == nil {
		return
	}

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &when,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", eventType).Msg("failed to marshal lifecycle event")
		return
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish lifecycle event")
		return
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("published lifecycle event")
}

// DeviceEnrolled publishes an event for a newly created device record.
func (p *EventPublisher) DeviceEnrolled(ctx context.Context, device *models.Device) {
	if device == nil {
		return
	}

	now := time.Now().UTC()
	p.publish(ctx, "com.benjameshughes.rmm.device.enrolled", "events.device.enrolled", now,
		DeviceEventData{
			DeviceID:  device.ID,
			Hostname:  device.Hostname,
			Status:    string(device.Status),
			Timestamp: now,
		})
}

// DeviceApproved publishes an event when an admin approves a device.
func (p *EventPublisher) DeviceApproved(ctx context.Context, device *models.Device) {
	if device == nil {
		return
	}

	now := time.Now().UTC()
	p.publish(ctx, "com.benjameshughes.rmm.device.approved", "events.device.approved", now,
		DeviceEventData{
			DeviceID:  device.ID,
			Hostname:  device.Hostname,
			Status:    string(models.DeviceStatusActive),
			Timestamp: now,
		})
}

// DeviceRevoked publishes an event when an admin revokes a device.
func (p *EventPublisher) DeviceRevoked(ctx context.Context, device *models.Device) {
	if device == nil {
		return
	}

	now := time.Now().UTC()
	p.publish(ctx, "com.benjameshughes.rmm.device.revoked", "events.device.revoked", now,
		DeviceEventData{
			DeviceID:  device.ID,
			Hostname:  device.Hostname,
			Status:    string(models.DeviceStatusRevoked),
			Timestamp: now,
		})
}

// CommandCompleted publishes an event when a command reaches a terminal state.
func (p *EventPublisher) CommandCompleted(ctx context.Context, cmd *models.DeviceCommand) {
	if cmd == nil {
		return
	}

	when := time.Now().UTC()
	if cmd.CompletedAt != nil {
		when = *cmd.CompletedAt
	}

	p.publish(ctx, "com.benjameshughes.rmm.command.completed", "events.command.completed", when,
		CommandEventData{
			CommandID: cmd.ID,
			DeviceID:  cmd.DeviceID,
			Status:    string(cmd.Status),
			ExitCode:  cmd.ExitCode,
			Timestamp: when,
		})
}

// Connect dials NATS, builds a JetStream context, and ensures the lifecycle
// event stream exists. The returned connection belongs to the caller.
func Connect(ctx context.Context, cfg *models.NATSConfig, events *models.EventsConfig, log logger.Logger) (*EventPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var js jetstream.JetStream

	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamName := defaultStream
	subjects := []string{subjectDevices, subjectCommands}

	if events != nil {
		if events.StreamName != "" {
			streamName = events.StreamName
		}

		if len(events.Subjects) > 0 {
			subjects = events.Subjects
		}
	}

	if _, err = js.Stream(ctx, streamName); err != nil {
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: subjects,
		})
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("failed to create or get stream %s: %w", streamName, err)
		}
	}

	return NewEventPublisher(js, streamName, log), nc, nil
}
