package controller

import (
	"errors"
	"strings"

	"soalku_backend/internals/features/exams/attempts/dto"
	"soalku_backend/internals/features/exams/attempts/model"
	"soalku_backend/internals/features/exams/attempts/service"
	helper "soalku_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptController struct {
	DB        *gorm.DB
	Service   *service.AttemptService
	Validator *validator.Validate
}

func NewAttemptController(db *gorm.DB, svc *service.AttemptService) *AttemptController {
	return &AttemptController{DB: db, Service: svc, Validator: helper.NewValidator()}
}

// =========================
// POST /exams/:package_id/answers
// =========================
func (h *AttemptController) SaveAnswers(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	packageID, err := helper.ParseUUIDParam(c, "package_id")
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.SaveAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	if _, err := h.Service.CheckAccess(ctx, userID, packageID); err != nil {
		return helper.FromError(c, err)
	}
	attempt, err := h.Service.GetOrCreateOpenAttempt(ctx, userID, packageID)
	if err != nil {
		return helper.FromError(c, err)
	}
	records, err := h.Service.RecordAnswers(ctx, attempt, req.Answers)
	if err != nil {
		return helper.FromError(c, err)
	}

	attempt.Answers = records
	return helper.JsonOK(c, "Jawaban tersimpan", dto.FromModel(attempt))
}

// =========================
// POST /exams/:package_id/submit
// =========================
func (h *AttemptController) SubmitPackage(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	packageID, err := helper.ParseUUIDParam(c, "package_id")
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
		}
	}

	ctx := c.UserContext()
	if _, err := h.Service.CheckAccess(ctx, userID, packageID); err != nil {
		return helper.FromError(c, err)
	}
	attempt, err := h.Service.GetOrCreateOpenAttempt(ctx, userID, packageID)
	if err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.Submit(ctx, attempt, req.Answers)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Ujian selesai", res)
}

// =========================
// POST /exams/attempts/:id/submit
// =========================
func (h *AttemptController) SubmitAttempt(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	attemptID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
		}
	}

	ctx := c.UserContext()
	attempt, err := h.Service.GetOwnedAttempt(ctx, attemptID, userID, false)
	if err != nil {
		return helper.FromError(c, err)
	}
	// akses dicek ulang: paket bisa dinonaktifkan / langganan habis selama attempt berjalan
	if _, err := h.Service.CheckAccess(ctx, userID, attempt.AttemptPackageID); err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.Submit(ctx, attempt, req.Answers)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Ujian selesai", res)
}

// =========================
// GET /exams/:package_id/attempt
// =========================
func (h *AttemptController) CurrentAttempt(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	packageID, err := helper.ParseUUIDParam(c, "package_id")
	if err != nil {
		return helper.FromError(c, err)
	}

	var a model.AttemptModel
	err = h.DB.WithContext(c.UserContext()).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_record_package_question_id ASC")
		}).
		Where("attempt_subscriber_id = ? AND attempt_package_id = ? AND attempt_finished_at IS NULL", userID, packageID).
		Take(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Belum ada attempt yang berjalan")
		}
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Attempt berjalan", dto.FromModel(&a))
}

// =========================
// GET /exams/attempts?package_id=&finished=true
// =========================
func (h *AttemptController) History(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.UserContext()).Model(&model.AttemptModel{}).
		Where("attempt_subscriber_id = ?", userID)
	if s := strings.TrimSpace(c.Query("package_id")); s != "" {
		pid, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "package_id tidak valid")
		}
		q = q.Where("attempt_package_id = ?", pid)
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("finished"))) {
	case "true", "1":
		q = q.Where("attempt_finished_at IS NOT NULL")
	case "false", "0":
		q = q.Where("attempt_finished_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}
	var rows []model.AttemptModel
	if err := q.Order("attempt_started_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Riwayat ujian", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// =========================
// GET /exams/attempts/:id
// =========================
func (h *AttemptController) Detail(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	attemptID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	a, err := h.Service.GetOwnedAttempt(c.UserContext(), attemptID, userID, true)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail attempt", dto.FromModel(a))
}
