package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solvio/solvio-api/internal/config"
	"github.com/solvio/solvio-api/internal/handler"
	"github.com/solvio/solvio-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassroomHandler  *handler.ClassroomHandler
	AssignmentHandler *handler.AssignmentHandler
	ProgressHandler   *handler.ProgressHandler
	ReportHandler     *handler.ReportHandler
	ProblemHandler    *handler.ProblemHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ClassroomHandler != nil {
		classrooms := api.Group("/classrooms", jwtMiddleware)
		deps.ClassroomHandler.Register(classrooms)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)

		if deps.ReportHandler != nil {
			deps.ReportHandler.Register(progress)
		}
	}

	if deps.ProblemHandler != nil {
		problems := api.Group("/problems", jwtMiddleware)
		deps.ProblemHandler.Register(problems)
	}
}
