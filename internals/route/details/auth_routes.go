package details

import (
	authRoute "soalku_backend/internals/features/users/auth/route"
	authService "soalku_backend/internals/features/users/auth/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AuthRoutes(api fiber.Router, db *gorm.DB, svc *authService.AuthService) {
	authRoute.AuthRoutes(api, db, svc)
}
