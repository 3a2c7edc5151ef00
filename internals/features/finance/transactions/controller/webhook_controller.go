package controller

import (
	"encoding/json"
	"strings"

	"soalku_backend/internals/features/finance/transactions/service"
	helper "soalku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

// POST /payments/notification (publik, dipanggil Midtrans)
func (h *TransactionController) Notification(c *fiber.Ctx) error {
	raw := append([]byte(nil), c.Body()...)

	var n service.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if strings.TrimSpace(n.OrderID) == "" || strings.TrimSpace(n.TransactionStatus) == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "order_id dan transaction_status wajib diisi")
	}

	headers := map[string]string{}
	for k, v := range c.GetReqHeaders() {
		if strings.EqualFold(k, fiber.HeaderAuthorization) {
			continue
		}
		headers[k] = strings.Join(v, ",")
	}

	res, err := h.Service.HandleNotification(c.UserContext(), n, headers, raw)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Notifikasi diproses", res)
}
