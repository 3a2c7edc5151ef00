package controller

import (
	"errors"
	"strings"
	"time"

	"soalku_backend/internals/features/exams/packages/dto"
	"soalku_backend/internals/features/exams/packages/model"
	subService "soalku_backend/internals/features/finance/subscriptions/service"
	soalModel "soalku_backend/internals/features/questions/soal/model"
	"soalku_backend/internals/constants"
	helper "soalku_backend/internals/helpers"
	"soalku_backend/internals/helpers/dbtime"
	"soalku_backend/internals/helpers/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PackageController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Uploader  *upload.Uploader
	Location  *time.Location
	Clock     dbtime.Clock
}

func NewPackageController(db *gorm.DB, up *upload.Uploader, loc *time.Location) *PackageController {
	return &PackageController{DB: db, Validator: helper.NewValidator(), Uploader: up, Location: loc, Clock: dbtime.SystemClock}
}

var packageSortColumns = map[string]string{
	"created_at": "package_created_at",
	"name":       "package_name",
	"price":      "package_price_idr",
}

func (h *PackageController) findPackage(c *fiber.Ctx, param string) (*model.PackageModel, error) {
	id, err := helper.ParseUUIDParam(c, param)
	if err != nil {
		return nil, err
	}
	var m model.PackageModel
	if err := h.DB.WithContext(c.UserContext()).First(&m, "package_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Paket tidak ditemukan")
		}
		return nil, err
	}
	return &m, nil
}

/* =========================
   Public
========================= */

// GET /packages?q=&sort_by=&order=
func (h *PackageController) ListActive(c *fiber.Ctx) error {
	return h.list(c, true)
}

// GET /admin/packages?status=&q=
func (h *PackageController) ListAll(c *fiber.Ctx) error {
	return h.list(c, false)
}

func (h *PackageController) list(c *fiber.Ctx, activeOnly bool) error {
	p := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.UserContext()).Model(&model.PackageModel{})
	if activeOnly {
		q = q.Where("package_status = ?", model.PackageStatusActive)
	} else if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("package_status = ?", st)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("LOWER(package_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}
	var rows []model.PackageModel
	if err := q.Order(helper.SafeOrderClause(c, packageSortColumns, "created_at")).
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar paket", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /packages/:id
func (h *PackageController) Detail(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if m.PackageStatus != model.PackageStatusActive && helper.GetRoleFromToken(c) != constants.RoleAdmin {
		return helper.JsonError(c, fiber.StatusNotFound, "Paket tidak ditemukan")
	}

	var n int64
	if err := h.DB.WithContext(c.UserContext()).Model(&model.PackageQuestionModel{}).
		Where("package_question_package_id = ?", m.PackageID).Count(&n).Error; err != nil {
		return helper.FromError(c, err)
	}
	out := dto.FromModel(m)
	out.QuestionCount = &n
	return helper.JsonOK(c, "Detail paket", out)
}

// GET /packages/:id/questions (login) — soal tanpa kunci jawaban untuk subscriber yang punya akses
func (h *PackageController) Questions(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	isAdmin := helper.GetRoleFromToken(c) == constants.RoleAdmin
	if !isAdmin {
		userID, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		if m.PackageStatus != model.PackageStatusActive {
			return helper.JsonError(c, fiber.StatusForbidden, "Paket tidak aktif")
		}
		if !m.IsFree() {
			today := dbtime.DateOf(h.Clock(), h.Location)
			ok, err := subService.HasActiveSubscription(c.UserContext(), h.DB, userID, m.PackageID, today)
			if err != nil {
				return helper.FromError(c, err)
			}
			if !ok {
				return helper.JsonError(c, fiber.StatusForbidden, "Anda belum berlangganan paket ini")
			}
		}
	}

	rows, err := h.loadSlots(c, m.PackageID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Soal paket", dto.FromSlots(rows, isAdmin))
}

func (h *PackageController) loadSlots(c *fiber.Ctx, packageID uuid.UUID) ([]model.PackageQuestionModel, error) {
	var rows []model.PackageQuestionModel
	err := h.DB.WithContext(c.UserContext()).
		Preload("Question").
		Preload("Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_option_order ASC")
		}).
		Where("package_question_package_id = ?", packageID).
		Order("package_question_id ASC").
		Find(&rows).Error
	return rows, err
}

/* =========================
   Admin CRUD
========================= */

// POST /admin/packages
func (h *PackageController) Create(c *fiber.Ctx) error {
	var req dto.CreatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := req.ToModel()
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Paket berhasil dibuat", dto.FromModel(m))
}

// PATCH /admin/packages/:id
func (h *PackageController) Update(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := req.Apply(m); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Paket berhasil diperbarui", dto.FromModel(m))
}

// DELETE /admin/packages/:id — slot ikut terhapus; paket yang sudah punya attempt/transaksi/langganan -> 409
func (h *PackageController) Delete(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_question_package_id = ?", m.PackageID).Delete(&model.PackageQuestionModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PackageModel{}, "package_id = ?", m.PackageID).Error
	})
	if err != nil {
		if errors.Is(helper.MapDBError(err), helper.ErrConflictInUse) {
			return helper.JsonError(c, fiber.StatusConflict, "Paket masih digunakan (attempt/transaksi/langganan), nonaktifkan saja")
		}
		return helper.FromError(c, err)
	}
	if h.Uploader != nil {
		h.Uploader.Remove(c.UserContext(), m.PackageCoverURL)
	}
	return helper.JsonDeleted(c, "Paket berhasil dihapus", fiber.Map{"package_id": m.PackageID})
}

// POST /admin/packages/:id/cover (multipart field package_cover)
func (h *PackageController) UploadCover(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	url, err := h.Uploader.FromForm(c, "package_cover")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "File package_cover wajib diunggah")
	}

	old := m.PackageCoverURL
	if err := h.DB.WithContext(c.UserContext()).Model(m).Update("package_cover_url", url).Error; err != nil {
		h.Uploader.Remove(c.UserContext(), &url)
		return helper.FromError(c, err)
	}
	h.Uploader.Remove(c.UserContext(), old)
	m.PackageCoverURL = &url
	return helper.JsonUpdated(c, "Cover paket diperbarui", dto.FromModel(m))
}

/* =========================
   Admin: slot soal
========================= */

// GET /admin/packages/:id/questions
func (h *PackageController) AdminQuestions(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	rows, err := h.loadSlots(c, m.PackageID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Soal paket", dto.FromSlots(rows, true))
}

// POST /admin/packages/:id/questions {question_ids: [...]}
// Urutan slot mengikuti urutan question_ids; soal yang sudah ada di paket dilewati.
func (h *PackageController) AddQuestions(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.AddQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	seen := make(map[uuid.UUID]bool, len(req.QuestionIDs))
	ids := make([]uuid.UUID, 0, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	var added int64
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var approved int64
		if err := tx.Model(&soalModel.QuestionModel{}).
			Where("question_id IN ? AND question_status = ?", ids, soalModel.QuestionStatusApproved).
			Count(&approved).Error; err != nil {
			return err
		}
		if approved != int64(len(ids)) {
			return fiber.NewError(fiber.StatusBadRequest, "Hanya soal berstatus approved yang bisa dimasukkan ke paket")
		}

		for _, qid := range ids {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.PackageQuestionModel{
				PackageQuestionPackageID:  m.PackageID,
				PackageQuestionQuestionID: qid,
			})
			if res.Error != nil {
				return res.Error
			}
			added += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Soal ditambahkan ke paket", fiber.Map{"added": added, "skipped": int64(len(ids)) - added})
}

// DELETE /admin/packages/:id/questions/:question_id
func (h *PackageController) RemoveQuestion(c *fiber.Ctx) error {
	m, err := h.findPackage(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	qid, err := helper.ParseUUIDParam(c, "question_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	res := h.DB.WithContext(c.UserContext()).
		Where("package_question_package_id = ? AND package_question_question_id = ?", m.PackageID, qid).
		Delete(&model.PackageQuestionModel{})
	if res.Error != nil {
		return helper.FromError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Soal tidak ada di paket ini")
	}
	return helper.JsonDeleted(c, "Soal dikeluarkan dari paket", fiber.Map{"question_id": qid})
}
