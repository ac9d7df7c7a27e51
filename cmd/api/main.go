package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockex-backend/bootstrap"
	"stockex-backend/internal/config"
	"stockex-backend/internal/infrastructure/database"
	"stockex-backend/internal/interfaces/router"
	"stockex-backend/internal/logging"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Setup(cfg.LogLevel, cfg.Env)

	svcs, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap")
	}
	defer svcs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svcs.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("dependency check failed")
	}
	log.Info().Bool("redis", svcs.Rdb != nil).Bool("broker", svcs.Broker != nil).Msg("dependencies connected")

	if cfg.Env == "development" {
		if err := database.AutoMigrate(svcs.DB); err != nil {
			log.Fatal().Err(err).Msg("auto migrate")
		}
	}

	app, err := router.CreateApp(svcs)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svcs.Worker.Run(ctx)
	}()

	if err := svcs.Scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler start")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	svcs.Scheduler.Stop()
	cancel()
	wg.Wait()
	log.Info().Msg("server stopped")
}
