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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls log level and output destination.
type Config struct {
	Level      string `json:"level" yaml:"level"`
	Debug      bool   `json:"debug" yaml:"debug"`
	Output     string `json:"output" yaml:"output"`
	TimeFormat string `json:"time_format" yaml:"time_format"`
}

type zerologLogger struct {
	logger zerolog.Logger
}

// New creates a Logger from the given config. A nil config yields an
// info-level logger on stdout.
func New(config *Config) (Logger, error) {
	if config == nil {
		config = &Config{}
	}

	var output io.Writer = os.Stdout

	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	l := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zerologLogger{logger: l}, nil
}

// NewWithComponent creates a Logger tagged with a component field.
func NewWithComponent(config *Config, component string) (Logger, error) {
	base, err := New(config)
	if err != nil {
		return nil, err
	}

	return base.WithComponent(component), nil
}

func (z *zerologLogger) Trace() *zerolog.Event { return z.logger.Trace() }
func (z *zerologLogger) Debug() *zerolog.Event { return z.logger.Debug() }
func (z *zerologLogger) Info() *zerolog.Event  { return z.logger.Info() }
func (z *zerologLogger) Warn() *zerolog.Event  { return z.logger.Warn() }
func (z *zerologLogger) Error() *zerolog.Event { return z.logger.Error() }
func (z *zerologLogger) Fatal() *zerolog.Event { return z.logger.Fatal() }
func (z *zerologLogger) Panic() *zerolog.Event { return z.logger.Panic() }
func (z *zerologLogger) With() zerolog.Context { return z.logger.With() }

func (z *zerologLogger) WithComponent(component string) Logger {
	return &zerologLogger{logger: z.logger.With().Str("component", component).Logger()}
}

func (z *zerologLogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := z.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}

	return ctx.Logger()
}

func (z *zerologLogger) SetLevel(level zerolog.Level) {
	z.logger = z.logger.Level(level)
}

func (z *zerologLogger) SetDebug(debug bool) {
	if debug {
		z.SetLevel(zerolog.DebugLevel)
	} else {
		z.SetLevel(zerolog.InfoLevel)
	}
}
