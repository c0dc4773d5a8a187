package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr             = ":8080"
	defaultTimezone             = "Europe/Paris"
	defaultCalendarSyncInterval = 5 * time.Minute
)

type Config struct {
	DBDSN       string
	Environment string
	LogLevel    string
	HTTPAddr    string
	JWTSecret   string

	// Часовой пояс коучей без явно заданного timezone
	DefaultTimezone string

	// Необязательные внешние сервисы: пустое значение отключает канал
	TelegramToken         string
	NatsURL               string
	GoogleCredentialsFile string
	GoogleCalendarID      string

	CalendarSyncInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:                 os.Getenv("DB_DSN"),
		Environment:           os.Getenv("ENV"),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		HTTPAddr:              os.Getenv("HTTP_ADDR"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		DefaultTimezone:       os.Getenv("DEFAULT_TIMEZONE"),
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		NatsURL:               os.Getenv("NATS_URL"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		GoogleCalendarID:      os.Getenv("GOOGLE_CALENDAR_ID"),
		CalendarSyncInterval:  defaultCalendarSyncInterval,
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = defaultTimezone
	}

	if raw := os.Getenv("CALENDAR_SYNC_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("CALENDAR_SYNC_INTERVAL %q: must be a positive duration", raw)
		}
		cfg.CalendarSyncInterval = interval
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location часовой пояс по умолчанию
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	return loc, nil
}

// CalendarEnabled Google Calendar настроен
func (c *Config) CalendarEnabled() bool {
	return c.GoogleCredentialsFile != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
