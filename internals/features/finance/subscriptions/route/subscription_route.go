package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/finance/subscriptions/controller"
	"soalku_backend/internals/features/finance/subscriptions/service"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Login (semua role): langganan milik sendiri
func SubscriptionUserRoutes(user fiber.Router, db *gorm.DB, act *service.Activator) {
	ctrl := controller.NewSubscriptionController(db, act)

	sub := user.Group("/subscriptions")
	sub.Get("/mine", ctrl.Mine)
}

func SubscriptionAdminRoutes(admin fiber.Router, db *gorm.DB, act *service.Activator) {
	ctrl := controller.NewSubscriptionController(db, act)

	sub := admin.Group("/subscriptions",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola langganan"), constants.AdminOnly...),
	)
	sub.Get("/", ctrl.List)
	sub.Post("/", ctrl.Grant)
}
