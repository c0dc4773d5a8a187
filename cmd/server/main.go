package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/mytrackly_booking/internal/app"
	"github.com/Freeeeeet/mytrackly_booking/internal/calendar"
	"github.com/Freeeeeet/mytrackly_booking/internal/config"
	"github.com/Freeeeeet/mytrackly_booking/internal/controller/api"
	"github.com/Freeeeeet/mytrackly_booking/internal/notify"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository"
	"github.com/Freeeeeet/mytrackly_booking/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	calendarMaxRetries = 3
	calendarRetryBase  = 200 * time.Millisecond
	shutdownTimeout    = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting booking service",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	defaultLocation, err := cfg.Location()
	if err != nil {
		return err
	}

	pool, err := app.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	users := repository.NewUserRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	notifiers := notify.Fanout{}
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, notify.NewTelegramNotifier(b, users, defaultLocation, logger))
		logger.Info("Telegram notifications enabled")
	}
	if cfg.NatsURL != "" {
		natsNotifier, conn, err := notify.NewNatsNotifier(cfg.NatsURL)
		if err != nil {
			return err
		}
		defer conn.Drain()
		notifiers = append(notifiers, natsNotifier)
		logger.Info("NATS events enabled", zap.String("url", cfg.NatsURL))
	}

	var provider calendar.Provider = calendar.Disabled{}
	if cfg.CalendarEnabled() {
		google, err := calendar.NewGoogleProvider(ctx, cfg.GoogleCalendarID, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
		if err != nil {
			return err
		}
		provider = calendar.NewRetrying(google, calendarMaxRetries, calendarRetryBase, logger)
		logger.Info("Google Calendar sync enabled")
	}

	availabilitySvc := service.NewAvailabilityService(users, availabilityRepo, logger)
	slotSvc := service.NewSlotService(users, availabilityRepo, reservationRepo, defaultLocation, logger)
	reservationSvc := service.NewReservationService(users, reservationRepo, slotSvc, provider, notifiers, logger)

	scheduler := app.NewScheduler(reservationSvc, cfg.CalendarSyncInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := api.NewApp(api.Services{
		Availability: availabilitySvc,
		Slots:        slotSvc,
		Reservations: reservationSvc,
		Ready:        pool.Ping,
	}, []byte(cfg.JWTSecret), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.ShutdownWithContext(shutdownCtx)
}
