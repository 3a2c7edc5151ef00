package details

import (
	"time"

	attemptRoute "soalku_backend/internals/features/exams/attempts/route"
	attemptService "soalku_backend/internals/features/exams/attempts/service"
	packageRoute "soalku_backend/internals/features/exams/packages/route"
	"soalku_backend/internals/helpers/upload"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ExamPublicRoutes(api fiber.Router, db *gorm.DB, up *upload.Uploader, loc *time.Location) {
	packageRoute.PackagePublicRoutes(api, db, up, loc)
}

func ExamUserRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader, loc *time.Location, attempts *attemptService.AttemptService) {
	packageRoute.PackageUserRoutes(user, db, up, loc)
	attemptRoute.AttemptUserRoutes(user, db, attempts)
}

func ExamAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader, loc *time.Location) {
	packageRoute.PackageAdminRoutes(admin, db, up, loc)
}
