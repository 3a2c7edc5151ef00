package dto

import (
	"strings"
	"time"

	"soalku_backend/internals/features/master/categories/model"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	CategoryName        string  `json:"category_name" form:"category_name" validate:"required,min=2,max=100"`
	CategoryDescription *string `json:"category_description" form:"category_description"`
}

func (r *CreateCategoryRequest) ToModel() *model.CategoryModel {
	return &model.CategoryModel{
		CategoryName:        strings.TrimSpace(r.CategoryName),
		CategoryDescription: r.CategoryDescription,
	}
}

type UpdateCategoryRequest struct {
	CategoryName        *string `json:"category_name" form:"category_name" validate:"omitempty,min=2,max=100"`
	CategoryDescription *string `json:"category_description" form:"category_description"`
}

func (r *UpdateCategoryRequest) Apply(m *model.CategoryModel) {
	if r.CategoryName != nil {
		m.CategoryName = strings.TrimSpace(*r.CategoryName)
	}
	if r.CategoryDescription != nil {
		m.CategoryDescription = r.CategoryDescription
	}
}

type CategoryResponse struct {
	CategoryID          uuid.UUID `json:"category_id"`
	CategoryName        string    `json:"category_name"`
	CategoryDescription *string   `json:"category_description,omitempty"`
	CategoryIconURL     *string   `json:"category_icon_url,omitempty"`
	CategoryCreatedAt   time.Time `json:"category_created_at"`
	CategoryUpdatedAt   time.Time `json:"category_updated_at"`
}

func FromModel(m *model.CategoryModel) CategoryResponse {
	return CategoryResponse{
		CategoryID:          m.CategoryID,
		CategoryName:        m.CategoryName,
		CategoryDescription: m.CategoryDescription,
		CategoryIconURL:     m.CategoryIconURL,
		CategoryCreatedAt:   m.CategoryCreatedAt,
		CategoryUpdatedAt:   m.CategoryUpdatedAt,
	}
}

func FromModels(rows []model.CategoryModel) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
