package dto

import (
	"time"

	"soalku_backend/internals/features/master/topics/model"

	"github.com/google/uuid"
)

type CreateTopicRequest struct {
	TopicName        string      `json:"topic_name" validate:"required,min=2,max=150"`
	TopicDescription *string     `json:"topic_description"`
	SubjectIDs       []uuid.UUID `json:"subject_ids" validate:"required,min=1,dive,required"`
}

// SubjectIDs non-nil mengganti seluruh tautan subject.
type UpdateTopicRequest struct {
	TopicName        *string     `json:"topic_name" validate:"omitempty,min=2,max=150"`
	TopicDescription *string     `json:"topic_description"`
	SubjectIDs       []uuid.UUID `json:"subject_ids" validate:"omitempty,min=1,dive,required"`
}

type TopicResponse struct {
	TopicID          uuid.UUID   `json:"topic_id"`
	TopicName        string      `json:"topic_name"`
	TopicDescription *string     `json:"topic_description,omitempty"`
	SubjectIDs       []uuid.UUID `json:"subject_ids"`
	TopicCreatedAt   time.Time   `json:"topic_created_at"`
	TopicUpdatedAt   time.Time   `json:"topic_updated_at"`
}

func FromModel(m *model.TopicModel) TopicResponse {
	ids := make([]uuid.UUID, 0, len(m.Subjects))
	for _, s := range m.Subjects {
		ids = append(ids, s.TopicSubjectSubjectID)
	}
	return TopicResponse{
		TopicID:          m.TopicID,
		TopicName:        m.TopicName,
		TopicDescription: m.TopicDescription,
		SubjectIDs:       ids,
		TopicCreatedAt:   m.TopicCreatedAt,
		TopicUpdatedAt:   m.TopicUpdatedAt,
	}
}

func FromModels(rows []model.TopicModel) []TopicResponse {
	out := make([]TopicResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
