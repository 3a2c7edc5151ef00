package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryModel struct {
	CategoryID          uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	CategoryName        string    `gorm:"column:category_name;size:100;not null;uniqueIndex:uq_categories_name" json:"category_name"`
	CategoryDescription *string   `gorm:"column:category_description" json:"category_description,omitempty"`
	CategoryIconURL     *string   `gorm:"column:category_icon_url" json:"category_icon_url,omitempty"`
	CategoryCreatedAt   time.Time `gorm:"column:category_created_at;autoCreateTime" json:"category_created_at"`
	CategoryUpdatedAt   time.Time `gorm:"column:category_updated_at;autoUpdateTime" json:"category_updated_at"`
}

func (CategoryModel) TableName() string { return "categories" }

func (m *CategoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.CategoryID == uuid.Nil {
		m.CategoryID = uuid.New()
	}
	return nil
}
