package controller

import (
	"errors"
	"strings"

	packageModel "soalku_backend/internals/features/exams/packages/model"
	"soalku_backend/internals/features/finance/subscriptions/dto"
	"soalku_backend/internals/features/finance/subscriptions/model"
	"soalku_backend/internals/features/finance/subscriptions/service"
	userModel "soalku_backend/internals/features/users/user/model"
	helper "soalku_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Activator *service.Activator
}

func NewSubscriptionController(db *gorm.DB, act *service.Activator) *SubscriptionController {
	return &SubscriptionController{DB: db, Validator: helper.NewValidator(), Activator: act}
}

/* =========================
   GET /subscriptions/mine
========================= */

func (h *SubscriptionController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	q := h.DB.WithContext(c.UserContext()).
		Preload("Package").
		Where("subscription_subscriber_id = ?", userID)
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("subscription_status = ?", st)
	}

	var rows []model.SubscriptionModel
	if err := q.Order("subscription_end_date DESC").Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Daftar langganan", dto.FromModels(rows))
}

/* =========================
   Admin
========================= */

// GET /admin/subscriptions?subscriber_id=&package_id=&status=
func (h *SubscriptionController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.UserContext()).Model(&model.SubscriptionModel{})
	if s := strings.TrimSpace(c.Query("subscriber_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "subscriber_id tidak valid")
		}
		q = q.Where("subscription_subscriber_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("package_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "package_id tidak valid")
		}
		q = q.Where("subscription_package_id = ?", id)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("subscription_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var rows []model.SubscriptionModel
	if err := q.Preload("Package").
		Order("subscription_subscribed_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar langganan", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// POST /admin/subscriptions
func (h *SubscriptionController) Grant(c *fiber.Ctx) error {
	var req dto.ManualGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	db := h.DB.WithContext(c.UserContext())

	var user userModel.UserModel
	if err := db.Select("id", "role").First(&user, "id = ?", req.SubscriberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
		}
		return helper.FromError(c, err)
	}

	var pkg packageModel.PackageModel
	if err := db.First(&pkg, "package_id = ?", req.PackageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Paket tidak ditemukan")
		}
		return helper.FromError(c, err)
	}

	res, err := h.Activator.Activate(c.UserContext(), db, service.ActivateInput{
		SubscriberID: user.ID,
		Package:      &pkg,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return helper.FromError(c, err)
	}
	res.Subscription.Package = &pkg

	if !res.Created {
		return helper.JsonOK(c, "Grant serupa baru saja dibuat, dilewati", dto.FromModel(&res.Subscription))
	}
	return helper.JsonCreated(c, "Langganan berhasil diaktifkan", dto.FromModel(&res.Subscription))
}
