package model

import (
	"time"

	subjectModel "soalku_backend/internals/features/master/subjects/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicModel struct {
	TopicID          uuid.UUID `gorm:"column:topic_id;type:uuid;primaryKey" json:"topic_id"`
	TopicName        string    `gorm:"column:topic_name;size:150;not null" json:"topic_name"`
	TopicDescription *string   `gorm:"column:topic_description" json:"topic_description,omitempty"`
	TopicCreatedAt   time.Time `gorm:"column:topic_created_at;autoCreateTime" json:"topic_created_at"`
	TopicUpdatedAt   time.Time `gorm:"column:topic_updated_at;autoUpdateTime" json:"topic_updated_at"`

	Subjects []TopicSubjectModel `gorm:"foreignKey:TopicSubjectTopicID;references:TopicID" json:"-"`
}

func (TopicModel) TableName() string { return "topics" }

func (m *TopicModel) BeforeCreate(tx *gorm.DB) error {
	if m.TopicID == uuid.Nil {
		m.TopicID = uuid.New()
	}
	return nil
}

// TopicSubjectModel pivot topic <-> subject
type TopicSubjectModel struct {
	TopicSubjectTopicID   uuid.UUID `gorm:"column:topic_subject_topic_id;type:uuid;primaryKey" json:"topic_id"`
	TopicSubjectSubjectID uuid.UUID `gorm:"column:topic_subject_subject_id;type:uuid;primaryKey" json:"subject_id"`
	TopicSubjectCreatedAt time.Time `gorm:"column:topic_subject_created_at;autoCreateTime" json:"created_at"`

	Subject *subjectModel.SubjectModel `gorm:"foreignKey:TopicSubjectSubjectID;references:SubjectID;constraint:OnDelete:RESTRICT" json:"subject,omitempty"`
}

func (TopicSubjectModel) TableName() string { return "topic_subjects" }
