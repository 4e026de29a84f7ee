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

// ClassroomHandler wires classroom HTTP routes.
type ClassroomHandler struct {
	service service.ClassroomService
	logger  zerolog.Logger
}

// NewClassroomHandler constructs the handler.
func NewClassroomHandler(service service.ClassroomService, logger zerolog.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		service: service,
		logger:  logger.With().Str("component", "classroom_handler").Logger(),
	}
}

// Register attaches classroom endpoints to the router group.
func (h *ClassroomHandler) Register(router fiber.Router) {
	teacher := middleware.RequireRole(models.RoleTeacher)
	student := middleware.RequireRole(models.RoleStudent)

	router.Post("", teacher, h.create)
	router.Get("/teaching", teacher, h.listTeaching)
	router.Get("/enrolled", student, h.listEnrolled)
	router.Post("/join", student, h.join)
	router.Get("/:id", h.get)
	router.Patch("/:id", teacher, h.update)
	router.Post("/:id/new-code", teacher, h.regenerateCode)
	router.Delete("/:id/students/:studentID", teacher, h.removeStudent)
}

func (h *ClassroomHandler) create(c *fiber.Ctx) error {
	payload := dto.ClassroomCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	classroom, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "classroom created", classroom)
}

func (h *ClassroomHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	classroom, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classroom retrieved", classroom)
}

func (h *ClassroomHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ClassroomUpdateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	classroom, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classroom updated", classroom)
}

func (h *ClassroomHandler) join(c *fiber.Ctx) error {
	payload := dto.ClassroomJoinRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Join(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "joined classroom", result)
}

func (h *ClassroomHandler) regenerateCode(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	code, err := h.service.RegenerateCode(c.Context(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "join code regenerated", fiber.Map{"code": code})
}

func (h *ClassroomHandler) removeStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.RemoveStudent(c.Context(), actorFromContext(c), id, studentID); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student removed", nil)
}

func (h *ClassroomHandler) listTeaching(c *fiber.Ctx) error {
	classrooms, err := h.service.ListTeaching(c.Context(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classrooms retrieved", classrooms)
}

func (h *ClassroomHandler) listEnrolled(c *fiber.Ctx) error {
	classrooms, err := h.service.ListEnrolled(c.Context(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classrooms retrieved", classrooms)
}
