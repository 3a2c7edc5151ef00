package controller

import (
	"errors"
	"strings"

	"soalku_backend/internals/features/master/categories/dto"
	"soalku_backend/internals/features/master/categories/model"
	helper "soalku_backend/internals/helpers"
	"soalku_backend/internals/helpers/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Uploader  *upload.Uploader
}

func NewCategoryController(db *gorm.DB, up *upload.Uploader) *CategoryController {
	return &CategoryController{DB: db, Validator: helper.NewValidator(), Uploader: up}
}

func (h *CategoryController) find(c *fiber.Ctx) (*model.CategoryModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.CategoryModel
	if err := h.DB.WithContext(c.UserContext()).First(&m, "category_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Kategori tidak ditemukan")
		}
		return nil, err
	}
	return &m, nil
}

// GET /categories?q=
func (h *CategoryController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	q := h.DB.WithContext(c.UserContext()).Model(&model.CategoryModel{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("LOWER(category_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}
	var rows []model.CategoryModel
	if err := q.Order("category_name ASC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar kategori", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /categories/:id
func (h *CategoryController) Detail(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail kategori", dto.FromModel(m))
}

// POST /admin/categories (json atau multipart + icon)
func (h *CategoryController) Create(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := req.ToModel()

	url, err := h.Uploader.FromForm(c, "icon")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url != "" {
		m.CategoryIconURL = &url
	}
	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		h.Uploader.Remove(c.UserContext(), m.CategoryIconURL)
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Kategori berhasil dibuat", dto.FromModel(m))
}

// PATCH /admin/categories/:id
func (h *CategoryController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	req.Apply(m)

	oldIcon := m.CategoryIconURL
	url, err := h.Uploader.FromForm(c, "icon")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url != "" {
		m.CategoryIconURL = &url
	}
	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		if url != "" {
			h.Uploader.Remove(c.UserContext(), &url)
		}
		return helper.FromError(c, err)
	}
	if url != "" {
		h.Uploader.Remove(c.UserContext(), oldIcon)
	}
	return helper.JsonUpdated(c, "Kategori berhasil diperbarui", dto.FromModel(m))
}

// DELETE /admin/categories/:id — masih dipakai subject -> 409
func (h *CategoryController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(&model.CategoryModel{}, "category_id = ?", m.CategoryID).Error; err != nil {
		if errors.Is(helper.MapDBError(err), helper.ErrConflictInUse) {
			return helper.JsonError(c, fiber.StatusConflict, "Kategori masih digunakan oleh subject")
		}
		return helper.FromError(c, err)
	}
	h.Uploader.Remove(c.UserContext(), m.CategoryIconURL)
	return helper.JsonDeleted(c, "Kategori dihapus", fiber.Map{"category_id": m.CategoryID})
}
