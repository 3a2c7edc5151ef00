package details

import (
	userRoute "soalku_backend/internals/features/users/user/route"
	"soalku_backend/internals/helpers/upload"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func UserRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader) {
	userRoute.UserSelfRoutes(user, db, up)
}

func UserAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	userRoute.UserAdminRoutes(admin, db, up)
}
