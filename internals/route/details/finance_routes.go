package details

import (
	subscriptionRoute "soalku_backend/internals/features/finance/subscriptions/route"
	transactionRoute "soalku_backend/internals/features/finance/transactions/route"
	transactionService "soalku_backend/internals/features/finance/transactions/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func FinancePublicRoutes(api fiber.Router, trx *transactionService.TransactionService) {
	transactionRoute.PaymentWebhookRoutes(api, trx)
}

func FinanceUserRoutes(user fiber.Router, db *gorm.DB, trx *transactionService.TransactionService) {
	transactionRoute.TransactionUserRoutes(user, trx)
	subscriptionRoute.SubscriptionUserRoutes(user, db, trx.Activator)
}

func FinanceAdminRoutes(admin fiber.Router, db *gorm.DB, trx *transactionService.TransactionService) {
	transactionRoute.TransactionAdminRoutes(admin, trx)
	subscriptionRoute.SubscriptionAdminRoutes(admin, db, trx.Activator)
}
