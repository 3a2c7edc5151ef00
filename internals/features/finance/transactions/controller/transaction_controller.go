package controller

import (
	"strings"
	"time"

	subDTO "soalku_backend/internals/features/finance/subscriptions/dto"
	"soalku_backend/internals/features/finance/transactions/dto"
	"soalku_backend/internals/features/finance/transactions/model"
	"soalku_backend/internals/features/finance/transactions/service"
	helper "soalku_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionController struct {
	Service   *service.TransactionService
	Validator *validator.Validate
}

func NewTransactionController(svc *service.TransactionService) *TransactionController {
	return &TransactionController{Service: svc, Validator: helper.NewValidator()}
}

/* =========================
   Subscriber
========================= */

// POST /transactions/checkout
func (h *TransactionController) Checkout(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := h.Service.Checkout(c.UserContext(), userID, req.PackageID)
	if err != nil {
		return helper.FromError(c, err)
	}

	body := fiber.Map{"transaction": dto.FromModel(&res.Transaction)}
	if res.Subscription != nil {
		body["subscription"] = subDTO.FromModel(res.Subscription)
		return helper.JsonCreated(c, "Paket gratis langsung aktif", body)
	}
	body["snap_token"] = res.Transaction.TransactionSnapToken
	body["redirect_url"] = res.Transaction.TransactionRedirectURL
	return helper.JsonCreated(c, "Transaksi dibuat, lanjutkan pembayaran", body)
}

// GET /transactions/mine?status=
func (h *TransactionController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)

	f := service.ListFilter{SubscriberID: &userID, Offset: p.Offset, Limit: p.Limit}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		f.Status = model.TransactionStatus(st)
		if !f.Status.Valid() {
			return helper.JsonError(c, fiber.StatusBadRequest, "status tidak valid")
		}
	}
	return h.respondList(c, f, p)
}

// GET /transactions/:id
func (h *TransactionController) Detail(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	trx, err := h.Service.GetOwn(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail transaksi", dto.FromModel(trx))
}

/* =========================
   Admin
========================= */

// GET /admin/transactions?subscriber_id=&package_id=&status=&from=&to=
func (h *TransactionController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{Offset: p.Offset, Limit: p.Limit}

	for _, key := range []string{"subscriber_id", "package_id"} {
		s := strings.TrimSpace(c.Query(key))
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, key+" tidak valid")
		}
		if key == "subscriber_id" {
			f.SubscriberID = &id
		} else {
			f.PackageID = &id
		}
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		f.Status = model.TransactionStatus(st)
		if !f.Status.Valid() {
			return helper.JsonError(c, fiber.StatusBadRequest, "status tidak valid")
		}
	}

	loc := h.Service.Location
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from harus YYYY-MM-DD")
		}
		f.From = &t
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to harus YYYY-MM-DD")
		}
		// inklusif sampai akhir hari
		t = t.AddDate(0, 0, 1)
		f.To = &t
	}
	return h.respondList(c, f, p)
}

// GET /admin/transactions/:id
func (h *TransactionController) AdminDetail(c *fiber.Ctx) error {
	trx, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail transaksi", dto.FromModel(trx))
}

// PATCH /admin/transactions/:id/status
func (h *TransactionController) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := h.Service.SetStatus(c.UserContext(), c.Params("id"), model.TransactionStatus(req.Status), req.Note)
	if err != nil {
		return helper.FromError(c, err)
	}

	body := fiber.Map{"transaction": dto.FromModel(&res.Transaction)}
	if res.Subscription != nil {
		body["subscription"] = subDTO.FromModel(res.Subscription)
		body["subscription_created"] = res.Created
	}
	return helper.JsonUpdated(c, "Status transaksi diperbarui", body)
}

func (h *TransactionController) respondList(c *fiber.Ctx, f service.ListFilter, p helper.Paging) error {
	rows, total, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar transaksi", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}
