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

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

// NewPool dials the configured Postgres cluster and returns a pgx pool.
func NewPool(ctx context.Context, cfg *models.Database, log logger.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, ErrFailedOpenDB
	}

	pg := *cfg
	if pg.Port == 0 {
		pg.Port = 5432
	}

	connURL := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", pg.Host, pg.Port),
		Path:   "/" + pg.Database,
	}

	if pg.Username != "" {
		if pg.Password != "" {
			connURL.User = url.UserPassword(pg.Username, pg.Password)
		} else {
			connURL.User = url.User(pg.Username)
		}
	}

	query := connURL.Query()

	sslMode := pg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	query.Set("sslmode", sslMode)

	if pg.ApplicationName != "" {
		query.Set("application_name", pg.ApplicationName)
	}

	for k, v := range pg.ExtraRuntimeParams {
		if k == "" {
			continue
		}

		query.Set(k, v)
	}

	connURL.RawQuery = query.Encode()

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse connection string: %w", err)
	}

	if pg.MaxConnections > 0 {
		poolConfig.MaxConns = pg.MaxConnections
	}

	if pg.MinConnections > 0 {
		poolConfig.MinConns = pg.MinConnections
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("db: failed to initialize pool: %w", err)
	}

	if log != nil {
		log.Info().
			Str("host", pg.Host).
			Int("port", pg.Port).
			Int32("max_conns", poolConfig.MaxConns).
			Msg("connected to Postgres")
	}

	return pool, nil
}
