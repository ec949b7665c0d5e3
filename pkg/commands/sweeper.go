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

package commands

import (
	"context"
	"time"

	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
)

const defaultSweepInterval = 30 * time.Second

// TimeoutSweeper periodically transitions overdue non-terminal commands to
// timed_out. Timeouts are reconciled here rather than at poll time so a
// device that never polls again still converges.
type TimeoutSweeper struct {
	store    db.Service
	interval time.Duration
	logger   logger.Logger
}

// NewTimeoutSweeper creates a sweeper. A non-positive interval falls back to
// the default.
func NewTimeoutSweeper(store db.Service, interval time.Duration, log logger.Logger) *TimeoutSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &TimeoutSweeper{
		store:    store,
		interval: interval,
		logger:   log,
	}
}

// Run sweeps on a ticker until the context is cancelled. It blocks; callers
// run it in a goroutine.
func (s *TimeoutSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("command timeout sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("command timeout sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single reconciliation pass.
func (s *TimeoutSweeper) SweepOnce(ctx context.Context) {
	swept, err := s.store.SweepTimedOutCommands(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("timeout sweep failed")
		return
	}

	if swept > 0 {
		s.logger.Info().Int64("commands", swept).Msg("timed out overdue commands")
	}
}
