package details

import (
	categoryRoute "soalku_backend/internals/features/master/categories/route"
	levelRoute "soalku_backend/internals/features/master/levels/route"
	subjectRoute "soalku_backend/internals/features/master/subjects/route"
	topicRoute "soalku_backend/internals/features/master/topics/route"
	"soalku_backend/internals/helpers/upload"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Kategori, level, mapel, topik
func MasterPublicRoutes(api fiber.Router, db *gorm.DB, up *upload.Uploader) {
	categoryRoute.CategoryPublicRoutes(api, db, up)
	levelRoute.LevelPublicRoutes(api, db)
	subjectRoute.SubjectPublicRoutes(api, db, up)
	topicRoute.TopicPublicRoutes(api, db)
}

func MasterAdminRoutes(admin fiber.Router, db *gorm.DB, up *upload.Uploader) {
	categoryRoute.CategoryAdminRoutes(admin, db, up)
	levelRoute.LevelAdminRoutes(admin, db)
	subjectRoute.SubjectAdminRoutes(admin, db, up)
	topicRoute.TopicAdminRoutes(admin, db)
}
