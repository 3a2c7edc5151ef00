package controller

import (
	"errors"
	"strings"

	"soalku_backend/internals/features/master/levels/dto"
	"soalku_backend/internals/features/master/levels/model"
	helper "soalku_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LevelController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewLevelController(db *gorm.DB) *LevelController {
	return &LevelController{DB: db, Validator: helper.NewValidator()}
}

func (h *LevelController) find(c *fiber.Ctx) (*model.LevelModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.LevelModel
	if err := h.DB.WithContext(c.UserContext()).First(&m, "level_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Level tidak ditemukan")
		}
		return nil, err
	}
	return &m, nil
}

// GET /levels (tanpa paging, jumlahnya sedikit)
func (h *LevelController) List(c *fiber.Ctx) error {
	var rows []model.LevelModel
	if err := h.DB.WithContext(c.UserContext()).Order("level_order ASC, level_name ASC").Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Daftar level", dto.FromModels(rows))
}

func (h *LevelController) Detail(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail level", dto.FromModel(m))
}

func (h *LevelController) Create(c *fiber.Ctx) error {
	var req dto.CreateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := &model.LevelModel{LevelName: strings.TrimSpace(req.LevelName), LevelOrder: req.LevelOrder}
	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Level berhasil dibuat", dto.FromModel(m))
}

func (h *LevelController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	req.Apply(m)
	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Level berhasil diperbarui", dto.FromModel(m))
}

// DELETE /admin/levels/:id — masih dipakai soal -> 409
func (h *LevelController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(&model.LevelModel{}, "level_id = ?", m.LevelID).Error; err != nil {
		if errors.Is(helper.MapDBError(err), helper.ErrConflictInUse) {
			return helper.JsonError(c, fiber.StatusConflict, "Level masih digunakan oleh soal")
		}
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Level dihapus", fiber.Map{"level_id": m.LevelID})
}
