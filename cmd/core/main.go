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

package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benjameshughes/rmm/pkg/auth"
	"github.com/benjameshughes/rmm/pkg/commands"
	"github.com/benjameshughes/rmm/pkg/config"
	"github.com/benjameshughes/rmm/pkg/core"
	"github.com/benjameshughes/rmm/pkg/core/api"
	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
	"github.com/benjameshughes/rmm/pkg/natsutil"
)

const defaultListenAddr = ":8090"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/rmm/core.json", "Path to core config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootLog := logger.NewTestLogger()

	var cfg models.CoreServiceConfig
	if err := config.NewConfig(bootLog).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return err
	}

	logCfg := &logger.Config{}
	if cfg.Logging != nil {
		logCfg.Level = cfg.Logging.Level
		logCfg.Debug = cfg.Logging.Debug
		logCfg.Output = cfg.Logging.Output
		logCfg.TimeFormat = cfg.Logging.TimeFormat
	}

	mainLog, err := logger.NewWithComponent(logCfg, "core")
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.Database, mainLog.WithComponent("db"))
	if err != nil {
		return err
	}
	defer database.Close()

	var events *natsutil.EventPublisher

	if cfg.NATS != nil && cfg.NATS.URL != "" && cfg.Events != nil && cfg.Events.Enabled {
		publisher, nc, err := natsutil.Connect(ctx, cfg.NATS, cfg.Events, mainLog.WithComponent("events"))
		if err != nil {
			return err
		}
		defer nc.Close()

		events = publisher
	}

	coreServer := core.NewServer(database, eventsOrNil(events), mainLog)
	queue := commands.NewQueue(database, commandEventsOrNil(events), mainLog.WithComponent("commands"))
	authenticator := auth.NewAuthenticator(database, mainLog.WithComponent("auth"))

	sweepInterval := time.Duration(0)
	if cfg.Sweep != nil {
		sweepInterval = time.Duration(cfg.Sweep.IntervalSeconds) * time.Second
	}

	sweeper := commands.NewTimeoutSweeper(database, sweepInterval, mainLog.WithComponent("sweeper"))
	go sweeper.Run(ctx)

	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	apiServer := api.NewAPIServer(
		api.WithListenAddr(listenAddr),
		api.WithCoreServer(coreServer),
		api.WithCommandQueue(queue),
		api.WithAuthenticator(authenticator),
		api.WithAdminAPIKey(cfg.AdminAPIKey),
		api.WithRateLimits(cfg.RateLimits),
		api.WithLogger(mainLog.WithComponent("api")),
	)

	return apiServer.Start(ctx)
}

// eventsOrNil avoids handing a typed-nil publisher to an interface field.
func eventsOrNil(events *natsutil.EventPublisher) core.EventPublisher {
	if events == nil {
		return nil
	}

	return events
}

func commandEventsOrNil(events *natsutil.EventPublisher) commands.Publisher {
	if events == nil {
		return nil
	}

	return events
}
