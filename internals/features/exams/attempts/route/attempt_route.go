package route

import (
	"soalku_backend/internals/constants"
	"soalku_backend/internals/features/exams/attempts/controller"
	"soalku_backend/internals/features/exams/attempts/service"
	authMiddleware "soalku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Pengerjaan ujian (login subscriber)
func AttemptUserRoutes(user fiber.Router, db *gorm.DB, svc *service.AttemptService) {
	ctrl := controller.NewAttemptController(db, svc)

	exams := user.Group("/exams",
		authMiddleware.OnlyRoles(constants.RoleErrorSubscriber("mengerjakan ujian"), constants.SubscriberRole...),
	)

	// /attempts didaftarkan dulu supaya tidak tertangkap :package_id
	exams.Get("/attempts", ctrl.History)
	exams.Get("/attempts/:id", ctrl.Detail)
	exams.Post("/attempts/:id/submit", ctrl.SubmitAttempt)

	exams.Get("/:package_id/attempt", ctrl.CurrentAttempt)
	exams.Post("/:package_id/answers", ctrl.SaveAnswers)
	exams.Post("/:package_id/submit", ctrl.SubmitPackage)
}
