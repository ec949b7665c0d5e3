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

// Package db provides the Postgres-backed persistence layer for devices,
// telemetry samples, and the command queue.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

// DB implements Service on top of a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// New dials Postgres, bootstraps the schema, and returns a ready Service.
func New(ctx context.Context, cfg *models.Database, log logger.Logger) (Service, error) {
	pool, err := NewPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	database := &DB{
		pool:   pool,
		logger: log,
	}

	if err := database.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return database, nil
}

// NewWithPool wraps an existing pool, for tests and tools that manage their
// own connection lifecycle.
func NewWithPool(pool *pgxpool.Pool, log logger.Logger) *DB {
	return &DB{pool: pool, logger: log}
}

func (db *DB) Close() {
	db.pool.Close()
}
