package details

import (
	questionRoute "soalku_backend/internals/features/questions/soal/route"
	"soalku_backend/internals/helpers/upload"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Kontributor + validator sama-sama di grup user, dibedakan role
func QuestionUserRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader) {
	questionRoute.QuestionContributorRoutes(user, db, up)
	questionRoute.QuestionValidatorRoutes(user, db, up)
}

func QuestionAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	questionRoute.QuestionAdminRoutes(admin, db, up)
}
