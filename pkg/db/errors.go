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

import "errors"

var (

	// Core database errors.

	ErrFailedToScan   = errors.New("failed to scan")
	ErrFailedToQuery  = errors.New("failed to query")
	ErrFailedToInsert = errors.New("failed to insert")
	ErrFailedToInit   = errors.New("failed to initialize schema")
	ErrFailedOpenDB   = errors.New("failed to open database")

	// Lookup errors. ErrCommandNotFound also covers conditional state
	// transitions that matched zero rows: ownership mismatches and
	// already-terminal commands are indistinguishable from absence on
	// purpose, so callers cannot probe other devices' queues.

	ErrDeviceNotFound  = errors.New("device not found")
	ErrCommandNotFound = errors.New("command not found")

	// Validation errors.

	ErrDeviceNil          = errors.New("device is nil")
	ErrDeviceIDRequired   = errors.New("device id is required")
	ErrHostnameRequired   = errors.New("hostname is required")
	ErrMetricNil          = errors.New("device metric is nil")
	ErrCommandNil         = errors.New("device command is nil")
	ErrScriptRequired     = errors.New("script content is required")
	ErrScriptTypeInvalid  = errors.New("unsupported script type")
)
