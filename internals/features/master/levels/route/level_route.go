package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/master/levels/controller"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func LevelPublicRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewLevelController(db)

	api.Get("/levels", ctrl.List)
	api.Get("/levels/:id", ctrl.Detail)
}

func LevelAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewLevelController(db)

	g := admin.Group("/levels",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola level"), constants.AdminOnly...),
	)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
