package model

import (
	"time"

	packageModel "soalku_backend/internals/features/exams/packages/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptModel satu kali pengerjaan paket oleh subscriber.
// Hanya boleh ada satu attempt terbuka (finished_at NULL) per pasangan subscriber+paket.
type AttemptModel struct {
	AttemptID           uuid.UUID  `gorm:"column:attempt_id;type:uuid;primaryKey" json:"attempt_id"`
	AttemptSubscriberID uuid.UUID  `gorm:"column:attempt_subscriber_id;type:uuid;not null;index;uniqueIndex:uq_attempts_open,where:attempt_finished_at IS NULL" json:"attempt_subscriber_id"`
	AttemptPackageID    uuid.UUID  `gorm:"column:attempt_package_id;type:uuid;not null;index;uniqueIndex:uq_attempts_open,where:attempt_finished_at IS NULL" json:"attempt_package_id"`
	AttemptStartedAt    time.Time  `gorm:"column:attempt_started_at;not null" json:"attempt_started_at"`
	AttemptFinishedAt   *time.Time `gorm:"column:attempt_finished_at" json:"attempt_finished_at,omitempty"`

	AttemptScore          *int `gorm:"column:attempt_score" json:"attempt_score,omitempty"`
	AttemptCorrect        int  `gorm:"column:attempt_correct;not null;default:0" json:"attempt_correct"`
	AttemptWrong          int  `gorm:"column:attempt_wrong;not null;default:0" json:"attempt_wrong"`
	AttemptUnanswered     int  `gorm:"column:attempt_unanswered;not null;default:0" json:"attempt_unanswered"`
	AttemptTotalQuestions int  `gorm:"column:attempt_total_questions;not null;default:0" json:"attempt_total_questions"`

	Package *packageModel.PackageModel `gorm:"foreignKey:AttemptPackageID;references:PackageID;constraint:OnDelete:RESTRICT" json:"-"`
	Answers []AnswerRecordModel        `gorm:"foreignKey:AnswerRecordAttemptID;references:AttemptID" json:"answers,omitempty"`
}

func (AttemptModel) TableName() string { return "attempts" }

func (m *AttemptModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttemptID == uuid.Nil {
		m.AttemptID = uuid.New()
	}
	return nil
}

func (m *AttemptModel) IsFinished() bool { return m.AttemptFinishedAt != nil }

// AnswerRecordModel jawaban tercatat; seluruh set per attempt selalu diganti (delete lalu insert).
type AnswerRecordModel struct {
	AnswerRecordID                uuid.UUID `gorm:"column:answer_record_id;type:uuid;primaryKey" json:"answer_record_id"`
	AnswerRecordAttemptID         uuid.UUID `gorm:"column:answer_record_attempt_id;type:uuid;not null;index" json:"answer_record_attempt_id"`
	AnswerRecordSubscriberID      uuid.UUID `gorm:"column:answer_record_subscriber_id;type:uuid;not null;index" json:"answer_record_subscriber_id"`
	AnswerRecordPackageQuestionID uint      `gorm:"column:answer_record_package_question_id;not null" json:"answer_record_package_question_id"`
	AnswerRecordAnswerOptionID    uuid.UUID `gorm:"column:answer_record_answer_option_id;type:uuid;not null" json:"answer_record_answer_option_id"`
	AnswerRecordValue             string    `gorm:"column:answer_record_value;type:text;not null" json:"answer_record_value"`
	AnswerRecordPoints            int       `gorm:"column:answer_record_points;not null;default:0" json:"answer_record_points"`
	AnswerRecordAnsweredAt        time.Time `gorm:"column:answer_record_answered_at;not null" json:"answer_record_answered_at"`
}

func (AnswerRecordModel) TableName() string { return "answer_records" }

func (m *AnswerRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnswerRecordID == uuid.Nil {
		m.AnswerRecordID = uuid.New()
	}
	return nil
}
