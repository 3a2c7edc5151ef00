package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/finance/transactions/controller"
	"soalku_backend/internals/features/finance/transactions/service"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
)

// Publik: notifikasi Midtrans (tanpa token, diverifikasi via signature)
func PaymentWebhookRoutes(api fiber.Router, svc *service.TransactionService) {
	ctrl := controller.NewTransactionController(svc)

	api.Post("/payments/notification", ctrl.Notification)
}

func TransactionUserRoutes(user fiber.Router, svc *service.TransactionService) {
	ctrl := controller.NewTransactionController(svc)

	trx := user.Group("/transactions")
	trx.Post("/checkout",
		authMiddleware.OnlyRoles(constants.RoleErrorSubscriber("membeli paket"), constants.SubscriberRole...),
		ctrl.Checkout,
	)
	trx.Get("/mine", ctrl.Mine)
	trx.Get("/:id", ctrl.Detail)
}

func TransactionAdminRoutes(admin fiber.Router, svc *service.TransactionService) {
	ctrl := controller.NewTransactionController(svc)

	trx := admin.Group("/transactions",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola transaksi"), constants.AdminOnly...),
	)
	trx.Get("/", ctrl.List)
	trx.Get("/:id", ctrl.AdminDetail)
	trx.Patch("/:id/status", ctrl.UpdateStatus)
}
