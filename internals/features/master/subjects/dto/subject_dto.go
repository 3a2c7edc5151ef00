package dto

import (
	"strings"
	"time"

	"soalku_backend/internals/features/master/subjects/model"

	"github.com/google/uuid"
)

type CreateSubjectRequest struct {
	SubjectCategoryID  uuid.UUID `json:"subject_category_id" form:"subject_category_id" validate:"required"`
	SubjectName        string    `json:"subject_name" form:"subject_name" validate:"required,min=2,max=120"`
	SubjectDescription *string   `json:"subject_description" form:"subject_description"`
}

func (r *CreateSubjectRequest) ToModel() *model.SubjectModel {
	return &model.SubjectModel{
		SubjectCategoryID:  r.SubjectCategoryID,
		SubjectName:        strings.TrimSpace(r.SubjectName),
		SubjectDescription: r.SubjectDescription,
	}
}

type UpdateSubjectRequest struct {
	SubjectCategoryID  *uuid.UUID `json:"subject_category_id" form:"subject_category_id"`
	SubjectName        *string    `json:"subject_name" form:"subject_name" validate:"omitempty,min=2,max=120"`
	SubjectDescription *string    `json:"subject_description" form:"subject_description"`
}

func (r *UpdateSubjectRequest) Apply(m *model.SubjectModel) {
	if r.SubjectCategoryID != nil && *r.SubjectCategoryID != uuid.Nil {
		m.SubjectCategoryID = *r.SubjectCategoryID
	}
	if r.SubjectName != nil {
		m.SubjectName = strings.TrimSpace(*r.SubjectName)
	}
	if r.SubjectDescription != nil {
		m.SubjectDescription = r.SubjectDescription
	}
}

type SubjectResponse struct {
	SubjectID          uuid.UUID `json:"subject_id"`
	SubjectCategoryID  uuid.UUID `json:"subject_category_id"`
	CategoryName       string    `json:"category_name,omitempty"`
	SubjectName        string    `json:"subject_name"`
	SubjectDescription *string   `json:"subject_description,omitempty"`
	SubjectIconURL     *string   `json:"subject_icon_url,omitempty"`
	SubjectCreatedAt   time.Time `json:"subject_created_at"`
	SubjectUpdatedAt   time.Time `json:"subject_updated_at"`
}

func FromModel(m *model.SubjectModel) SubjectResponse {
	out := SubjectResponse{
		SubjectID:          m.SubjectID,
		SubjectCategoryID:  m.SubjectCategoryID,
		SubjectName:        m.SubjectName,
		SubjectDescription: m.SubjectDescription,
		SubjectIconURL:     m.SubjectIconURL,
		SubjectCreatedAt:   m.SubjectCreatedAt,
		SubjectUpdatedAt:   m.SubjectUpdatedAt,
	}
	if m.Category != nil {
		out.CategoryName = m.Category.CategoryName
	}
	return out
}

func FromModels(rows []model.SubjectModel) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
