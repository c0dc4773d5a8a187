package api

import (
	"context"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Services зависимости HTTP слоя
type Services struct {
	Availability *service.AvailabilityService
	Slots        *service.SlotService
	Reservations *service.ReservationService

	// Ready проверка готовности для /healthz, nil - всегда готов
	Ready func(ctx context.Context) error
}

// NewApp собирает fiber приложение со всеми маршрутами
func NewApp(services Services, jwtSecret []byte, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "mytrackly-booking",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	app.Use(RequestLogger(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if services.Ready != nil {
			if err := services.Ready(c.UserContext()); err != nil {
				logger.Warn("Readiness check failed", zap.Error(err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	availability := NewAvailabilityHandler(services.Availability, services.Slots, logger)
	reservations := NewReservationHandler(services.Reservations, logger)

	api := app.Group("/api", AuthMiddleware(jwtSecret))

	api.Get("/coach/availability", availability.GetAvailability)
	api.Put("/coach/availability", availability.ReplaceAvailability)
	api.Post("/coach/availability/templates/:name", availability.ApplyTemplate)
	api.Get("/coaches/:coachId/slots", availability.ListSlots)

	api.Get("/reservations", reservations.List)
	api.Post("/reservations", reservations.Create)
	api.Get("/reservations/:id", reservations.Get)
	api.Post("/reservations/:id/accept", reservations.Accept())
	api.Post("/reservations/:id/refuse", reservations.Refuse())
	api.Post("/reservations/:id/reschedule", reservations.Reschedule)
	api.Post("/reservations/:id/cancel", reservations.Cancel())
	api.Post("/reservations/:id/remind", reservations.Remind())

	return app
}
