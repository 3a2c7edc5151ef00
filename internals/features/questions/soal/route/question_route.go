package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/questions/soal/controller"
	"soalku_backend/internals/features/questions/soal/service"
	"soalku_backend/internals/helpers/upload"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func QuestionContributorRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewQuestionController(service.NewQuestionService(db), up)

	g := user.Group("/contributor/questions",
		authMiddleware.OnlyRoles(constants.RoleErrorContributor("membuat soal"), constants.ContributorRole...),
	)
	g.Get("/", ctrl.ListMine)
	g.Post("/", ctrl.Create)
	g.Get("/:id", ctrl.DetailMine)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.DeleteMine)
	g.Post("/:id/image", ctrl.UploadImage)
	g.Post("/:id/submit", ctrl.Submit)
}

func QuestionValidatorRoutes(user fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewQuestionController(service.NewQuestionService(db), up)

	g := user.Group("/validator/questions",
		authMiddleware.OnlyRoles(constants.RoleErrorValidator("review soal"), constants.ValidatorRole...),
	)
	g.Get("/", ctrl.ListForReview)
	g.Get("/:id", ctrl.Detail)
	g.Post("/:id/approve", ctrl.Approve)
	g.Post("/:id/reject", ctrl.Reject)
}

func QuestionAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	ctrl := controller.NewQuestionController(service.NewQuestionService(db), up)

	g := admin.Group("/questions",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola soal"), constants.AdminOnly...),
	)
	g.Get("/", ctrl.ListAll)
	g.Get("/:id", ctrl.Detail)
	g.Delete("/:id", ctrl.Delete)
}
