package controller

import (
	"errors"
	"strings"

	categoryModel "soalku_backend/internals/features/master/categories/model"
	"soalku_backend/internals/features/master/subjects/dto"
	"soalku_backend/internals/features/master/subjects/model"
	helper "soalku_backend/internals/helpers"
	"soalku_backend/internals/helpers/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Uploader  *upload.Uploader
}

func NewSubjectController(db *gorm.DB, up *upload.Uploader) *SubjectController {
	return &SubjectController{DB: db, Validator: helper.NewValidator(), Uploader: up}
}

func (h *SubjectController) find(c *fiber.Ctx) (*model.SubjectModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.SubjectModel
	if err := h.DB.WithContext(c.UserContext()).Preload("Category").First(&m, "subject_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Subject tidak ditemukan")
		}
		return nil, err
	}
	return &m, nil
}

func (h *SubjectController) ensureCategory(c *fiber.Ctx, id uuid.UUID) error {
	var n int64
	if err := h.DB.WithContext(c.UserContext()).Model(&categoryModel.CategoryModel{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Kategori tidak ditemukan")
	}
	return nil
}

// GET /subjects?category_id=&q=
func (h *SubjectController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	q := h.DB.WithContext(c.UserContext()).Model(&model.SubjectModel{})
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "category_id tidak valid")
		}
		q = q.Where("subject_category_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("LOWER(subject_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}
	var rows []model.SubjectModel
	if err := q.Preload("Category").Order("subject_name ASC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar subject", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (h *SubjectController) Detail(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail subject", dto.FromModel(m))
}

func (h *SubjectController) Create(c *fiber.Ctx) error {
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := h.ensureCategory(c, req.SubjectCategoryID); err != nil {
		return helper.FromError(c, err)
	}
	m := req.ToModel()

	url, err := h.Uploader.FromForm(c, "icon")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url != "" {
		m.SubjectIconURL = &url
	}
	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		h.Uploader.Remove(c.UserContext(), m.SubjectIconURL)
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Subject berhasil dibuat", dto.FromModel(m))
}

func (h *SubjectController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	before := m.SubjectCategoryID
	req.Apply(m)
	if m.SubjectCategoryID != before {
		if err := h.ensureCategory(c, m.SubjectCategoryID); err != nil {
			return helper.FromError(c, err)
		}
		m.Category = nil
	}

	oldIcon := m.SubjectIconURL
	url, err := h.Uploader.FromForm(c, "icon")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url != "" {
		m.SubjectIconURL = &url
	}
	if err := h.DB.WithContext(c.UserContext()).Omit("Category").Save(m).Error; err != nil {
		if url != "" {
			h.Uploader.Remove(c.UserContext(), &url)
		}
		return helper.FromError(c, err)
	}
	if url != "" {
		h.Uploader.Remove(c.UserContext(), oldIcon)
	}
	return helper.JsonUpdated(c, "Subject berhasil diperbarui", dto.FromModel(m))
}

// DELETE /admin/subjects/:id — masih dipakai soal/topik -> 409
func (h *SubjectController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(&model.SubjectModel{}, "subject_id = ?", m.SubjectID).Error; err != nil {
		if errors.Is(helper.MapDBError(err), helper.ErrConflictInUse) {
			return helper.JsonError(c, fiber.StatusConflict, "Subject masih digunakan oleh soal atau topik")
		}
		return helper.FromError(c, err)
	}
	h.Uploader.Remove(c.UserContext(), m.SubjectIconURL)
	return helper.JsonDeleted(c, "Subject dihapus", fiber.Map{"subject_id": m.SubjectID})
}
