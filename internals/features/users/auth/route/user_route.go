package route

import (
	controller "soalku_backend/internals/features/users/auth/controller"
	"soalku_backend/internals/features/users/auth/service"
	rateLimiter "soalku_backend/internals/middlewares"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Base: /api/v1/auth
func AuthRoutes(api fiber.Router, db *gorm.DB, svc *service.AuthService) {
	authController := controller.NewAuthController(svc)

	auth := api.Group("/auth")

	// 🔓 Public
	auth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)
	auth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	auth.Post("/login-google", rateLimiter.LoginRateLimiter(), authController.LoginGoogle)

	// 🔒 Protected
	protected := auth.Group("", authMiddleware.AuthMiddleware(db))
	protected.Post("/logout", authController.Logout)
	protected.Get("/me", authController.Me)
	protected.Post("/change-password", authController.ChangePassword)
}
