package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LevelModel jenjang soal (SD, SMP, SMA, UTBK, ...)
type LevelModel struct {
	LevelID        uuid.UUID `gorm:"column:level_id;type:uuid;primaryKey" json:"level_id"`
	LevelName      string    `gorm:"column:level_name;size:60;not null;uniqueIndex:uq_levels_name" json:"level_name"`
	LevelOrder     int       `gorm:"column:level_order;not null;default:0" json:"level_order"`
	LevelCreatedAt time.Time `gorm:"column:level_created_at;autoCreateTime" json:"level_created_at"`
	LevelUpdatedAt time.Time `gorm:"column:level_updated_at;autoUpdateTime" json:"level_updated_at"`
}

func (LevelModel) TableName() string { return "levels" }

func (m *LevelModel) BeforeCreate(tx *gorm.DB) error {
	if m.LevelID == uuid.Nil {
		m.LevelID = uuid.New()
	}
	return nil
}
