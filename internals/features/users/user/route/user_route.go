package route

import (
	"soalku_backend/internals/constants"
	userController "soalku_backend/internals/features/users/user/controller"
	"soalku_backend/internals/helpers/upload"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Profil diri (JWT)
func UserSelfRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := userController.NewUserController(db, up)

	user.Patch("/users/me", ctrl.UpdateMe)
	user.Post("/users/me/avatar", ctrl.UploadAvatar)
}

func UserAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := userController.NewUserController(db, up)

	users := admin.Group("/users",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola user"), constants.AdminOnly...),
	)
	users.Get("/", ctrl.List)
	users.Post("/", ctrl.Create)
	users.Get("/:id", ctrl.Detail)
	users.Patch("/:id/role", ctrl.UpdateRole)
	users.Patch("/:id/active", ctrl.SetActive)
}
