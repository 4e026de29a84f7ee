package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/solvio/solvio-api/internal/repository"
	"github.com/solvio/solvio-api/internal/service"
	"github.com/solvio/solvio-api/internal/utils"
)

// ProblemHandler serves the read-only problem bank.
type ProblemHandler struct {
	service service.ProblemService
	logger  zerolog.Logger
}

// NewProblemHandler constructs the handler.
func NewProblemHandler(service service.ProblemService, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		service: service,
		logger:  logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register attaches problem bank endpoints to the router group.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:problemID", h.get)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	filter := repository.ProblemFilter{Topic: strings.TrimSpace(c.Query("topic"))}
	if page, err := parseQueryInt(c, "page"); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := parseQueryInt(c, "limit"); err == nil && limit > 0 {
		filter.PageSize = limit
	}
	if raw := strings.TrimSpace(c.Query("level")); raw != "" {
		level, err := parseQueryInt(c, "level")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid level")
		}
		filter.Level = &level
	}

	problems, err := h.service.List(c.Context(), actorFromContext(c), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "problems retrieved", problems)
}

func (h *ProblemHandler) get(c *fiber.Ctx) error {
	problemID := c.Params("problemID")
	if problemID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "problemID is required")
	}

	problem, err := h.service.Get(c.Context(), actorFromContext(c), problemID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "problem retrieved", problem)
}
