package route

import (
	"time"

	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/exams/packages/controller"
	"soalku_backend/internals/helpers/upload"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Publik: katalog paket
func PackagePublicRoutes(api fiber.Router, db *gorm.DB, up *upload.Uploader, loc *time.Location) {
	ctrl := controller.NewPackageController(db, up, loc)

	pkg := api.Group("/packages")
	pkg.Get("/", ctrl.ListActive)
	pkg.Get("/:id", ctrl.Detail)
}

// Login: isi soal paket (tanpa kunci jawaban)
func PackageUserRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader, loc *time.Location) {
	ctrl := controller.NewPackageController(db, up, loc)

	user.Get("/packages/:id/questions", ctrl.Questions)
}

func PackageAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader, loc *time.Location) {
	ctrl := controller.NewPackageController(db, up, loc)

	pkg := admin.Group("/packages",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola paket"), constants.AdminOnly...),
	)
	pkg.Get("/", ctrl.ListAll)
	pkg.Post("/", ctrl.Create)
	pkg.Get("/:id", ctrl.Detail)
	pkg.Patch("/:id", ctrl.Update)
	pkg.Delete("/:id", ctrl.Delete)
	pkg.Post("/:id/cover", ctrl.UploadCover)

	pkg.Get("/:id/questions", ctrl.AdminQuestions)
	pkg.Post("/:id/questions", ctrl.AddQuestions)
	pkg.Delete("/:id/questions/:question_id", ctrl.RemoveQuestion)
}
