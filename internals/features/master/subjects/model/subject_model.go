package model

import (
	"time"

	categoryModel "soalku_backend/internals/features/master/categories/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectModel struct {
	SubjectID          uuid.UUID `gorm:"column:subject_id;type:uuid;primaryKey" json:"subject_id"`
	SubjectCategoryID  uuid.UUID `gorm:"column:subject_category_id;type:uuid;not null;index" json:"subject_category_id"`
	SubjectName        string    `gorm:"column:subject_name;size:120;not null" json:"subject_name"`
	SubjectDescription *string   `gorm:"column:subject_description" json:"subject_description,omitempty"`
	SubjectIconURL     *string   `gorm:"column:subject_icon_url" json:"subject_icon_url,omitempty"`
	SubjectCreatedAt   time.Time `gorm:"column:subject_created_at;autoCreateTime" json:"subject_created_at"`
	SubjectUpdatedAt   time.Time `gorm:"column:subject_updated_at;autoUpdateTime" json:"subject_updated_at"`

	Category *categoryModel.CategoryModel `gorm:"foreignKey:SubjectCategoryID;references:CategoryID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"category,omitempty"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubjectID == uuid.Nil {
		m.SubjectID = uuid.New()
	}
	return nil
}
