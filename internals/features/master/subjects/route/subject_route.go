package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/master/subjects/controller"
	"soalku_backend/internals/helpers/upload"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SubjectPublicRoutes(api fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewSubjectController(db, up)

	g := api.Group("/subjects")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Detail)
}

func SubjectAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewSubjectController(db, up)

	g := admin.Group("/subjects",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola subject"), constants.AdminOnly...),
	)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
