package routes

import (
	"log"
	"time"

	"soalku_backend/internals/configs"
	attemptService "soalku_backend/internals/features/exams/attempts/service"
	transactionService "soalku_backend/internals/features/finance/transactions/service"
	authService "soalku_backend/internals/features/users/auth/service"
	"soalku_backend/internals/helpers/upload"
	authMiddleware "soalku_backend/internals/middlewares/auth"
	routeDetails "soalku_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

// Deps service yang dibangun di main dan dipakai bersama oleh route.
type Deps struct {
	Config       *configs.Config
	Uploader     *upload.Uploader
	Auth         *authService.AuthService
	Attempts     *attemptService.AttemptService
	Transactions *transactionService.TransactionService
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()
	loc := deps.Config.Location()

	BaseRoutes(app, db)

	if deps.Config.UploadDriver == "local" {
		app.Static(deps.Config.UploadPublicBaseURL, deps.Config.UploadDir, fiber.Static{
			MaxAge: 86400,
		})
	}

	api := app.Group("/api/v1")

	// ===================== PUBLIC =====================
	// Harus didaftarkan sebelum grup ber-JWT: grup itu memasang middleware
	// pada prefix /api/v1 yang sama, dan fiber mencocokkan sesuai urutan.
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(api, db, deps.Auth)

	log.Println("[INFO] Setting up PUBLIC routes...")
	routeDetails.FinancePublicRoutes(api, deps.Transactions)
	routeDetails.MasterPublicRoutes(api, db, deps.Uploader)
	routeDetails.ExamPublicRoutes(api, db, deps.Uploader, loc)

	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	user := api.Group("", authMiddleware.AuthMiddleware(db))

	// ===================== ADMIN =====================
	// JWT sudah terpasang dari grup user; role dicek per fitur.
	log.Println("[INFO] Setting up ADMIN group...")
	admin := user.Group("/admin")

	routeDetails.UserRoutes(user, db, deps.Uploader)
	routeDetails.UserAdminRoutes(admin, db, deps.Uploader)

	routeDetails.MasterAdminRoutes(admin, db, deps.Uploader)

	routeDetails.QuestionUserRoutes(user, db, deps.Uploader)
	routeDetails.QuestionAdminRoutes(admin, db, deps.Uploader)

	routeDetails.ExamUserRoutes(user, db, deps.Uploader, loc, deps.Attempts)
	routeDetails.ExamAdminRoutes(admin, db, deps.Uploader, loc)

	routeDetails.FinanceUserRoutes(user, db, deps.Transactions)
	routeDetails.FinanceAdminRoutes(admin, db, deps.Transactions)
}
