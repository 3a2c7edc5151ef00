package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/master/topics/controller"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TopicPublicRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTopicController(db)

	g := api.Group("/topics")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Detail)
}

func TopicAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTopicController(db)

	g := admin.Group("/topics",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola topik"), constants.AdminOnly...),
	)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
