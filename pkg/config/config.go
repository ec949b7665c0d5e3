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

// Package config loads service configuration from a JSON file with
// environment variable overrides.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/benjameshughes/rmm/pkg/logger"
)

var (
	errInvalidConfigPtr = errors.New("config must be a non-nil pointer")
	errLoadConfigFailed = errors.New("failed to load configuration")
)

// ConfigLoader loads configuration from some source into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by config structs that can check themselves.
type Validator interface {
	Validate() error
}

// Config holds the configuration loading dependencies.
type Config struct {
	fileLoader ConfigLoader
	envLoader  ConfigLoader
	logger     logger.Logger
}

// NewConfig initializes a Config with the default file and env loaders.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Config{
		fileLoader: &FileConfigLoader{},
		envLoader:  NewEnvConfigLoader(log, "RMM_"),
		logger:     log,
	}
}

// LoadAndValidate reads the file at path into dst, applies environment
// overrides, and validates the result when dst implements Validator.
func (c *Config) LoadAndValidate(ctx context.Context, path string, dst interface{}) error {
	if dst == nil {
		return errInvalidConfigPtr
	}

	if err := c.fileLoader.Load(ctx, path, dst); err != nil {
		return fmt.Errorf("%w: %w", errLoadConfigFailed, err)
	}

	if err := c.envLoader.Load(ctx, path, dst); err != nil {
		return fmt.Errorf("%w: %w", errLoadConfigFailed, err)
	}

	if v, ok := dst.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}
