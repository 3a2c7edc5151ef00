package model

import (
	"time"

	levelModel "soalku_backend/internals/features/master/levels/model"
	subjectModel "soalku_backend/internals/features/master/subjects/model"
	topicModel "soalku_backend/internals/features/master/topics/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionStatus string

const (
	QuestionStatusDraft     QuestionStatus = "draft"
	QuestionStatusSubmitted QuestionStatus = "submitted"
	QuestionStatusApproved  QuestionStatus = "approved"
	QuestionStatusRejected  QuestionStatus = "rejected"
)

func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusDraft, QuestionStatusSubmitted, QuestionStatusApproved, QuestionStatusRejected:
		return true
	}
	return false
}

// Editable: kontributor hanya boleh mengubah soal yang belum masuk antrian review.
func (s QuestionStatus) Editable() bool {
	return s == QuestionStatusDraft || s == QuestionStatusRejected
}

type QuestionModel struct {
	QuestionID          uuid.UUID      `gorm:"column:question_id;type:uuid;primaryKey" json:"question_id"`
	QuestionSubjectID   uuid.UUID      `gorm:"column:question_subject_id;type:uuid;not null;index" json:"question_subject_id"`
	QuestionTopicID     *uuid.UUID     `gorm:"column:question_topic_id;type:uuid;index" json:"question_topic_id,omitempty"`
	QuestionLevelID     *uuid.UUID     `gorm:"column:question_level_id;type:uuid;index" json:"question_level_id,omitempty"`
	QuestionText        string         `gorm:"column:question_text;type:text;not null" json:"question_text"`
	QuestionExplanation *string        `gorm:"column:question_explanation;type:text" json:"question_explanation,omitempty"`
	QuestionImageURL    *string        `gorm:"column:question_image_url" json:"question_image_url,omitempty"`
	QuestionStatus      QuestionStatus `gorm:"column:question_status;type:varchar(20);not null;default:'draft';index" json:"question_status"`

	QuestionContributorID uuid.UUID  `gorm:"column:question_contributor_id;type:uuid;not null;index" json:"question_contributor_id"`
	QuestionValidatorID   *uuid.UUID `gorm:"column:question_validator_id;type:uuid" json:"question_validator_id,omitempty"`
	QuestionReviewNote    *string    `gorm:"column:question_review_note" json:"question_review_note,omitempty"`
	QuestionReviewedAt    *time.Time `gorm:"column:question_reviewed_at" json:"question_reviewed_at,omitempty"`

	QuestionCreatedAt time.Time `gorm:"column:question_created_at;autoCreateTime" json:"question_created_at"`
	QuestionUpdatedAt time.Time `gorm:"column:question_updated_at;autoUpdateTime" json:"question_updated_at"`

	Options []AnswerOptionModel `gorm:"foreignKey:AnswerOptionQuestionID;references:QuestionID" json:"options,omitempty"`

	Subject *subjectModel.SubjectModel `gorm:"foreignKey:QuestionSubjectID;references:SubjectID;constraint:OnDelete:RESTRICT" json:"-"`
	Topic   *topicModel.TopicModel     `gorm:"foreignKey:QuestionTopicID;references:TopicID;constraint:OnDelete:RESTRICT" json:"-"`
	Level   *levelModel.LevelModel     `gorm:"foreignKey:QuestionLevelID;references:LevelID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (QuestionModel) TableName() string { return "questions" }

func (m *QuestionModel) BeforeCreate(tx *gorm.DB) error {
	if m.QuestionID == uuid.Nil {
		m.QuestionID = uuid.New()
	}
	if m.QuestionStatus == "" {
		m.QuestionStatus = QuestionStatusDraft
	}
	return nil
}

type AnswerOptionModel struct {
	AnswerOptionID         uuid.UUID `gorm:"column:answer_option_id;type:uuid;primaryKey" json:"answer_option_id"`
	AnswerOptionQuestionID uuid.UUID `gorm:"column:answer_option_question_id;type:uuid;not null;index" json:"answer_option_question_id"`
	AnswerOptionText       string    `gorm:"column:answer_option_text;type:text;not null" json:"answer_option_text"`
	AnswerOptionIsCorrect  bool      `gorm:"column:answer_option_is_correct;not null;default:false" json:"answer_option_is_correct"`
	AnswerOptionOrder      int       `gorm:"column:answer_option_order;not null;default:0" json:"answer_option_order"`
}

func (AnswerOptionModel) TableName() string { return "answer_options" }

func (m *AnswerOptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnswerOptionID == uuid.Nil {
		m.AnswerOptionID = uuid.New()
	}
	return nil
}
