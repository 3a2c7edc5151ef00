package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/master/categories/controller"
	"soalku_backend/internals/helpers/upload"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CategoryPublicRoutes(api fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewCategoryController(db, up)

	g := api.Group("/categories")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Detail)
}

func CategoryAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewCategoryController(db, up)

	g := admin.Group("/categories",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola kategori"), constants.AdminOnly...),
	)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
