package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken string
	LogLevel      string
	LogFormat     string
	JPEGQuality   int
	ScanWorkers   int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("JPEG_QUALITY", 90)
	v.SetDefault("SCAN_WORKERS", 4)
	v.AutomaticEnv()

	cfg := &Config{
		TelegramToken: v.GetString("TELEGRAM_TOKEN"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		JPEGQuality:   v.GetInt("JPEG_QUALITY"),
		ScanWorkers:   v.GetInt("SCAN_WORKERS"),
	}

	// Качество JPEG вне диапазона приводим к значению по умолчанию
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}
	if cfg.ScanWorkers < 1 {
		cfg.ScanWorkers = 1
	}

	return cfg, nil
}
