package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solvio/solvio-api/internal/config"
	"github.com/solvio/solvio-api/internal/utils"
)

// HealthCheck reports basic service liveness.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "healthy", fiber.Map{
			"app": cfg.AppName,
			"env": cfg.AppEnv,
		})
	}
}
