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

// Package auth resolves agent credentials to enrolled devices.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

// ErrUnauthorized is the single failure mode for agent credential checks.
// Missing key, unknown key, and non-active device status all collapse into it
// so responses never reveal which condition failed.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator validates per-device API keys against the device store.
type Authenticator struct {
	store  db.Service
	logger logger.Logger
}

// NewAuthenticator creates an Authenticator backed by the device store.
func NewAuthenticator(store db.Service, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Authenticator{store: store, logger: log}
}

// AuthenticateKey resolves a raw API key to its device. The key is trimmed of
// surrounding whitespace before lookup. Only devices in active status
// authenticate; pending and revoked devices fail identically to unknown keys.
func (a *Authenticator) AuthenticateKey(ctx context.Context, apiKey string) (*models.Device, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrUnauthorized
	}

	device, err := a.store.GetDeviceByAPIKey(ctx, apiKey)
	if err != nil {
		if !errors.Is(err, db.ErrDeviceNotFound) {
			a.logger.Error().Err(err).Msg("device lookup failed during authentication")
		}

		return nil, ErrUnauthorized
	}

	if device.Status != models.DeviceStatusActive {
		a.logger.Debug().
			Str("device_id", device.ID).
			Str("status", string(device.Status)).
			Msg("rejecting key for non-active device")

		return nil, ErrUnauthorized
	}

	return device, nil
}
