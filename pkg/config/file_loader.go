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

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	errConfigPathRequired = errors.New("config path is required")
	errReadConfigFile     = errors.New("failed to read config file")
	errParseConfigFile    = errors.New("failed to parse config file")
)

// FileConfigLoader loads configuration from a local JSON file.
type FileConfigLoader struct{}

// Load implements ConfigLoader by reading and unmarshaling a JSON file.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	if path == "" {
		return errConfigPathRequired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %q: %w", errReadConfigFile, path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w %q: %w", errParseConfigFile, path, err)
	}

	return nil
}
