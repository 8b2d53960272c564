package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/picpoul/donorhub/internal/config"
	"github.com/picpoul/donorhub/internal/server"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	appEnv := getEnv(config.EnvAppEnv, config.EnvDevelopment)
	port := getEnv(config.EnvPort, config.DefaultPort)
	dbPath := getEnv(config.EnvDBPath, config.DefaultDBPath)
	seedPath := os.Getenv(config.EnvSeedPath)
	expireSpec := getEnv(config.EnvExpireSpec, config.DefaultExpireSpec)

	logger := newLogger(appEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStore(dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str(config.LogKeyPath, dbPath).Msg("failed to open database")
	}
	defer func() { _ = store.Close() }()

	if seedPath != "" {
		seedLog := logger.With().Str(config.LogKeyComponent, config.CompStore).Logger()
		if err := server.Seed(ctx, store, seedPath, time.Now(), seedLog); err != nil {
			logger.Fatal().Err(err).Str(config.LogKeyPath, seedPath).Msg("failed to seed database")
		}
	}

	cronLog := logger.With().Str(config.LogKeyComponent, config.CompScheduler).Logger()
	scheduler, err := server.NewScheduler(store, cronLog, expireSpec)
	if err != nil {
		logger.Fatal().Err(err).Str(config.LogKeySpec, expireSpec).Msg("invalid expiry schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(port, store, logger.With().Str(config.LogKeyComponent, config.CompServer).Logger())
	logger.Info().Str(config.LogKeyPort, port).Str(config.LogKeyEnv, appEnv).Msg("API listening")
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}

// newLogger constructs a zerolog.Logger with sane defaults for the service.
func newLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == config.EnvDevelopment {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()

	if appEnv == config.EnvDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
