package database

import (
	attemptModel "soalku_backend/internals/features/exams/attempts/model"
	packageModel "soalku_backend/internals/features/exams/packages/model"
	subscriptionModel "soalku_backend/internals/features/finance/subscriptions/model"
	transactionModel "soalku_backend/internals/features/finance/transactions/model"
	categoryModel "soalku_backend/internals/features/master/categories/model"
	levelModel "soalku_backend/internals/features/master/levels/model"
	subjectModel "soalku_backend/internals/features/master/subjects/model"
	topicModel "soalku_backend/internals/features/master/topics/model"
	soalModel "soalku_backend/internals/features/questions/soal/model"
	authModel "soalku_backend/internals/features/users/auth/model"
	userModel "soalku_backend/internals/features/users/user/model"

	"gorm.io/gorm"
)

// Urutan penting: tabel induk dulu supaya FK bisa dibuat.
func models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&categoryModel.CategoryModel{},
		&levelModel.LevelModel{},
		&subjectModel.SubjectModel{},
		&topicModel.TopicModel{},
		&topicModel.TopicSubjectModel{},
		&soalModel.QuestionModel{},
		&soalModel.AnswerOptionModel{},
		&packageModel.PackageModel{},
		&packageModel.PackageQuestionModel{},
		&attemptModel.AttemptModel{},
		&attemptModel.AnswerRecordModel{},
		&transactionModel.TransactionModel{},
		&transactionModel.PaymentGatewayEventModel{},
		&subscriptionModel.SubscriptionModel{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models()...)
}
