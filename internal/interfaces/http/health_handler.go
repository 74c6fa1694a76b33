package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger comprueba una dependencia (DB, Redis).
type Pinger func(ctx context.Context) error

// Health responde 200 si todas las dependencias responden; 503 si alguna falla.
// Nunca expone detalles del error.
func Health(service string, deps map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		status := fiber.StatusOK
		checks := make(fiber.Map, len(deps))
		for name, ping := range deps {
			if err := ping(ctx); err != nil {
				checks[name] = "error"
				status = fiber.StatusServiceUnavailable
				continue
			}
			checks[name] = "connected"
		}
		return c.Status(status).JSON(fiber.Map{
			"ok":      status == fiber.StatusOK,
			"service": service,
			"checks":  checks,
		})
	}
}
