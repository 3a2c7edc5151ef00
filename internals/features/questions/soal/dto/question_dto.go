package dto

import (
	"strings"
	"time"

	"soalku_backend/internals/features/questions/soal/model"

	"github.com/google/uuid"
)

/* =========================
   Request
========================= */

type OptionInput struct {
	Text      string `json:"text" validate:"required,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

type CreateQuestionRequest struct {
	SubjectID   uuid.UUID     `json:"subject_id" validate:"required"`
	TopicID     *uuid.UUID    `json:"topic_id"`
	LevelID     *uuid.UUID    `json:"level_id"`
	Text        string        `json:"question_text" validate:"required,min=3"`
	Explanation *string       `json:"question_explanation"`
	Options     []OptionInput `json:"options" validate:"required,min=2,max=10,dive"`
}

// Field nil = tidak diubah. Options non-nil mengganti seluruh set opsi.
type UpdateQuestionRequest struct {
	SubjectID   *uuid.UUID    `json:"subject_id"`
	TopicID     *uuid.UUID    `json:"topic_id"`
	LevelID     *uuid.UUID    `json:"level_id"`
	Text        *string       `json:"question_text" validate:"omitempty,min=3"`
	Explanation *string       `json:"question_explanation"`
	Options     []OptionInput `json:"options" validate:"omitempty,min=2,max=10,dive"`
}

type RejectRequest struct {
	Note string `json:"note" validate:"required,min=3,max=1000"`
}

func (r *CreateQuestionRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	if r.TopicID != nil && *r.TopicID == uuid.Nil {
		r.TopicID = nil
	}
	if r.LevelID != nil && *r.LevelID == uuid.Nil {
		r.LevelID = nil
	}
}

// ToOptionModels urutan opsi mengikuti urutan input.
func ToOptionModels(questionID uuid.UUID, in []OptionInput) []model.AnswerOptionModel {
	out := make([]model.AnswerOptionModel, 0, len(in))
	for i, o := range in {
		out = append(out, model.AnswerOptionModel{
			AnswerOptionQuestionID: questionID,
			AnswerOptionText:       o.Text,
			AnswerOptionIsCorrect:  o.IsCorrect,
			AnswerOptionOrder:      i + 1,
		})
	}
	return out
}

/* =========================
   Response
========================= */

type OptionResponse struct {
	AnswerOptionID uuid.UUID `json:"answer_option_id"`
	Text           string    `json:"text"`
	IsCorrect      bool      `json:"is_correct"`
	Order          int       `json:"order"`
}

type QuestionResponse struct {
	QuestionID            uuid.UUID        `json:"question_id"`
	QuestionSubjectID     uuid.UUID        `json:"subject_id"`
	QuestionTopicID       *uuid.UUID       `json:"topic_id,omitempty"`
	QuestionLevelID       *uuid.UUID       `json:"level_id,omitempty"`
	QuestionText          string           `json:"question_text"`
	QuestionExplanation   *string          `json:"question_explanation,omitempty"`
	QuestionImageURL      *string          `json:"question_image_url,omitempty"`
	QuestionStatus        string           `json:"question_status"`
	QuestionContributorID uuid.UUID        `json:"contributor_id"`
	QuestionValidatorID   *uuid.UUID       `json:"validator_id,omitempty"`
	QuestionReviewNote    *string          `json:"review_note,omitempty"`
	QuestionReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	Options               []OptionResponse `json:"options"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

func FromModel(m *model.QuestionModel) QuestionResponse {
	opts := make([]OptionResponse, 0, len(m.Options))
	for _, o := range m.Options {
		opts = append(opts, OptionResponse{
			AnswerOptionID: o.AnswerOptionID,
			Text:           o.AnswerOptionText,
			IsCorrect:      o.AnswerOptionIsCorrect,
			Order:          o.AnswerOptionOrder,
		})
	}
	return QuestionResponse{
		QuestionID:            m.QuestionID,
		QuestionSubjectID:     m.QuestionSubjectID,
		QuestionTopicID:       m.QuestionTopicID,
		QuestionLevelID:       m.QuestionLevelID,
		QuestionText:          m.QuestionText,
		QuestionExplanation:   m.QuestionExplanation,
		QuestionImageURL:      m.QuestionImageURL,
		QuestionStatus:        string(m.QuestionStatus),
		QuestionContributorID: m.QuestionContributorID,
		QuestionValidatorID:   m.QuestionValidatorID,
		QuestionReviewNote:    m.QuestionReviewNote,
		QuestionReviewedAt:    m.QuestionReviewedAt,
		Options:               opts,
		CreatedAt:             m.QuestionCreatedAt,
		UpdatedAt:             m.QuestionUpdatedAt,
	}
}

func FromModels(rows []model.QuestionModel) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
