package controller

import (
	"errors"
	"strings"

	"soalku_backend/internals/features/master/topics/dto"
	"soalku_backend/internals/features/master/topics/service"
	helper "soalku_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicController struct {
	Service   *service.TopicService
	Validator *validator.Validate
}

func NewTopicController(db *gorm.DB) *TopicController {
	return &TopicController{Service: service.NewTopicService(db), Validator: helper.NewValidator()}
}

// GET /topics?subject_id=&q=
func (h *TopicController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	var subjectID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("subject_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "subject_id tidak valid")
		}
		subjectID = &id
	}
	rows, total, err := h.Service.List(c.UserContext(), subjectID, c.Query("q"), p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar topik", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (h *TopicController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail topik", dto.FromModel(m))
}

func (h *TopicController) Create(c *fiber.Ctx) error {
	var req dto.CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Topik berhasil dibuat", dto.FromModel(m))
}

func (h *TopicController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Topik berhasil diperbarui", dto.FromModel(m))
}

func (h *TopicController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(helper.MapDBError(err), helper.ErrConflictInUse) {
			return helper.JsonError(c, fiber.StatusConflict, "Topik masih digunakan oleh soal")
		}
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Topik dihapus", fiber.Map{"topic_id": id})
}
