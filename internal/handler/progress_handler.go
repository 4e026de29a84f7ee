package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/middleware"
	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/service"
	"github.com/solvio/solvio-api/internal/utils"
)

// ProgressHandler wires the submission workflow routes.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the progress endpoints to the router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	student := middleware.RequireRole(models.RoleStudent)
	router.Post("/:assignmentID/questions/:questionID/work", student, h.saveWork)
	router.Post("/:assignmentID/questions/:questionID/hints", student, h.addHint)
	router.Post("/:assignmentID/questions/:questionID/complete", student, h.complete)
	router.Get("/:assignmentID", h.get)
}

func (h *ProgressHandler) saveWork(c *fiber.Ctx) error {
	assignmentID, questionID, err := parseProgressParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.SaveWorkRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	progress, err := h.service.SaveWork(c.Context(), actorFromContext(c), assignmentID, questionID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "work saved", progress)
}

func (h *ProgressHandler) addHint(c *fiber.Ctx) error {
	assignmentID, questionID, err := parseProgressParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AddHintRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.AddHint(c.Context(), actorFromContext(c), assignmentID, questionID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "hint recorded", submission)
}

func (h *ProgressHandler) complete(c *fiber.Ctx) error {
	assignmentID, questionID, err := parseProgressParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.CompleteQuestion(c.Context(), actorFromContext(c), assignmentID, questionID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "question completed", submission)
}

// get returns the caller's own progress for students, or every student's
// progress for the owning teacher.
func (h *ProgressHandler) get(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if actor.IsTeacher() {
		records, err := h.service.ListForAssignment(c.Context(), actor, assignmentID)
		if err != nil {
			return sendServiceError(c, h.logger, err)
		}
		return utils.SendSuccess(c, "progress retrieved", records)
	}

	progress, err := h.service.Get(c.Context(), actor, assignmentID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func parseProgressParams(c *fiber.Ctx) (uint, uint, error) {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		return 0, 0, err
	}
	questionID, err := parseUintParam(c, "questionID")
	if err != nil {
		return 0, 0, err
	}
	return assignmentID, questionID, nil
}
