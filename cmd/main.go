package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/j50301m/wallet-server/internal/api/routes"
	"github.com/j50301m/wallet-server/internal/infrastructure/config"
	"github.com/j50301m/wallet-server/internal/infrastructure/database"
	"github.com/j50301m/wallet-server/internal/infrastructure/di"
	"github.com/j50301m/wallet-server/pkg/graceful"
	"github.com/j50301m/wallet-server/pkg/logger"
	"github.com/j50301m/wallet-server/pkg/snowflake"
	"github.com/j50301m/wallet-server/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	if err := snowflake.Init(); err != nil {
		log.Fatal("failed to init id generator", "error", err)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:      cfg.Telemetry.TracingEnabled,
		ServiceName:  cfg.Server.Name,
		CollectorURL: cfg.Telemetry.OTLPURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Telemetry.SampleRate,
	}, log.Zap())
	if err != nil {
		log.Fatal("failed to init tracing", "error", err)
	}
	defer shutdownTracing(ctx)

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	container := di.NewContainer(cfg, log, db)

	router := routes.SetupRoutes(container)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	sm := graceful.NewShutdownManager(server, db.DB, log)
	sm.Register(graceful.ShutdownFunc(func(time.Duration) error {
		return container.Close()
	}))
	sm.WaitForShutdown()
}
