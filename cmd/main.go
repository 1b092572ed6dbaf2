package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marker-bot/config"
	telegram "marker-bot/internal/api"
	"marker-bot/internal/container"
	"marker-bot/internal/infrastructure/storage"
	"marker-bot/internal/infrastructure/vision"
	"marker-bot/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}

	// Детектор маркеров (без тега gocv работает заглушка)
	detector := vision.NewArucoDetector(cfg.JPEGQuality)
	defer detector.Close()

	// Собираем сервисы приложения
	appContainer := container.New(
		storage.NewMemoryUserRepository(),
		storage.NewMemoryScanRepository(),
		detector,
		log,
	)

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.ScanService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("bot is running")
	if err := bot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped")
	}
}
