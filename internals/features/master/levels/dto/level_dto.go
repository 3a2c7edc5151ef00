package dto

import (
	"strings"

	"soalku_backend/internals/features/master/levels/model"

	"github.com/google/uuid"
)

type CreateLevelRequest struct {
	LevelName  string `json:"level_name" validate:"required,min=1,max=60"`
	LevelOrder int    `json:"level_order" validate:"gte=0"`
}

type UpdateLevelRequest struct {
	LevelName  *string `json:"level_name" validate:"omitempty,min=1,max=60"`
	LevelOrder *int    `json:"level_order" validate:"omitempty,gte=0"`
}

func (r *UpdateLevelRequest) Apply(m *model.LevelModel) {
	if r.LevelName != nil {
		m.LevelName = strings.TrimSpace(*r.LevelName)
	}
	if r.LevelOrder != nil {
		m.LevelOrder = *r.LevelOrder
	}
}

type LevelResponse struct {
	LevelID    uuid.UUID `json:"level_id"`
	LevelName  string    `json:"level_name"`
	LevelOrder int       `json:"level_order"`
}

func FromModels(rows []model.LevelModel) []LevelResponse {
	out := make([]LevelResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, LevelResponse{LevelID: m.LevelID, LevelName: m.LevelName, LevelOrder: m.LevelOrder})
	}
	return out
}

func FromModel(m *model.LevelModel) LevelResponse {
	return LevelResponse{LevelID: m.LevelID, LevelName: m.LevelName, LevelOrder: m.LevelOrder}
}
