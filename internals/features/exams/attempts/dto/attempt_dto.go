package dto

import (
	"time"

	"soalku_backend/internals/features/exams/attempts/model"

	"github.com/google/uuid"
)

// SaveAnswersRequest: {"answers": {"0": "Paris", "1": "42"}}
// key = urutan soal dalam paket (mulai 0), value = teks opsi jawaban.
type SaveAnswersRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// SubmitRequest: answers boleh kosong, nilai dihitung dari jawaban tersimpan.
type SubmitRequest struct {
	Answers map[string]string `json:"answers"`
}

type AnswerRecordResponse struct {
	PackageQuestionID uint      `json:"package_question_id"`
	AnswerOptionID    uuid.UUID `json:"answer_option_id"`
	Value             string    `json:"value"`
	Points            int       `json:"points"`
	AnsweredAt        time.Time `json:"answered_at"`
}

type AttemptResponse struct {
	AttemptID      uuid.UUID              `json:"attempt_id"`
	PackageID      uuid.UUID              `json:"package_id"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     *time.Time             `json:"finished_at,omitempty"`
	Score          *int                   `json:"score,omitempty"`
	Correct        int                    `json:"correct"`
	Wrong          int                    `json:"wrong"`
	Unanswered     int                    `json:"unanswered"`
	TotalQuestions int                    `json:"total_questions"`
	Answers        []AnswerRecordResponse `json:"answers,omitempty"`
}

func FromRecords(rows []model.AnswerRecordModel) []AnswerRecordResponse {
	out := make([]AnswerRecordResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, AnswerRecordResponse{
			PackageQuestionID: r.AnswerRecordPackageQuestionID,
			AnswerOptionID:    r.AnswerRecordAnswerOptionID,
			Value:             r.AnswerRecordValue,
			Points:            r.AnswerRecordPoints,
			AnsweredAt:        r.AnswerRecordAnsweredAt,
		})
	}
	return out
}

func FromModel(m *model.AttemptModel) AttemptResponse {
	out := AttemptResponse{
		AttemptID:      m.AttemptID,
		PackageID:      m.AttemptPackageID,
		StartedAt:      m.AttemptStartedAt,
		FinishedAt:     m.AttemptFinishedAt,
		Score:          m.AttemptScore,
		Correct:        m.AttemptCorrect,
		Wrong:          m.AttemptWrong,
		Unanswered:     m.AttemptUnanswered,
		TotalQuestions: m.AttemptTotalQuestions,
	}
	if len(m.Answers) > 0 {
		out.Answers = FromRecords(m.Answers)
	}
	return out
}

func FromModels(rows []model.AttemptModel) []AttemptResponse {
	out := make([]AttemptResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
