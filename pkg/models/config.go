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

package models

import (
	"errors"
	"time"
)

var ErrDatabaseConfigRequired = errors.New("database configuration is required")

// CoreServiceConfig is the top-level configuration for the core service.
type CoreServiceConfig struct {
	ListenAddr  string           `json:"listen_addr"`
	AdminAPIKey string           `json:"admin_api_key,omitempty"`
	Database    *Database        `json:"database"`
	NATS        *NATSConfig      `json:"nats,omitempty"`
	Events      *EventsConfig    `json:"events,omitempty"`
	RateLimits  *RateLimitConfig `json:"rate_limits,omitempty"`
	Sweep       *SweepConfig     `json:"sweep,omitempty"`
	Logging     *LogConfig       `json:"logging,omitempty"`
}

// Validate checks the parts of the config without workable defaults.
func (c *CoreServiceConfig) Validate() error {
	if c.Database == nil || c.Database.Host == "" || c.Database.Database == "" {
		return ErrDatabaseConfigRequired
	}

	return nil
}

// Database holds Postgres connection settings for the pgx pool.
type Database struct {
	Host               string            `json:"host"`
	Port               int               `json:"port,omitempty"`
	Database           string            `json:"database"`
	Username           string            `json:"username,omitempty"`
	Password           string            `json:"password,omitempty"`
	SSLMode            string            `json:"sslmode,omitempty"`
	ApplicationName    string            `json:"application_name,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// NATSConfig holds the JetStream connection used for lifecycle events.
type NATSConfig struct {
	URL    string `json:"url"`
	Domain string `json:"domain,omitempty"`
}

// EventsConfig controls lifecycle event publishing.
type EventsConfig struct {
	Enabled    bool     `json:"enabled"`
	StreamName string   `json:"stream_name,omitempty"`
	Subjects   []string `json:"subjects,omitempty"`
}

// RateLimitConfig is the request throttling policy. Enrollment and status
// checks are keyed by caller IP; authenticated agent traffic is keyed by API
// key, falling back to IP when no key is supplied.
type RateLimitConfig struct {
	EnrollPerMinute int `json:"enroll_per_minute,omitempty"`
	EnrollBurst     int `json:"enroll_burst,omitempty"`
	AgentPerMinute  int `json:"agent_per_minute,omitempty"`
	AgentBurst      int `json:"agent_burst,omitempty"`
}

// SweepConfig controls the command timeout reconciliation job.
type SweepConfig struct {
	IntervalSeconds int `json:"interval_seconds,omitempty"`
}

// LogConfig mirrors the logger package config without importing it here.
type LogConfig struct {
	Level      string `json:"level,omitempty"`
	Debug      bool   `json:"debug,omitempty"`
	Output     string `json:"output,omitempty"`
	TimeFormat string `json:"time_format,omitempty"`
}

// CloudEvent is the envelope used for lifecycle events on NATS.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data"`
}
