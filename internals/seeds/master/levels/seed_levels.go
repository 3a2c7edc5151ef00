package levels

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"soalku_backend/internals/features/master/levels/model"

	"gorm.io/gorm"
)

type LevelSeed struct {
	LevelName  string `json:"level_name"`
	LevelOrder int    `json:"level_order"`
}

func SeedLevelsFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Membaca file:", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("baca %s: %w", filePath, err)
	}

	var data []LevelSeed
	if err := json.Unmarshal(content, &data); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return SeedLevels(db, data), nil
}

func SeedLevels(db *gorm.DB, data []LevelSeed) int {
	inserted := 0
	for _, item := range data {
		name := strings.TrimSpace(item.LevelName)
		if name == "" {
			continue
		}

		var n int64
		if err := db.Model(&model.LevelModel{}).Where("level_name = ?", name).Count(&n).Error; err != nil {
			log.Printf("❌ Gagal cek level %q: %v", name, err)
			continue
		}
		if n > 0 {
			log.Printf("ℹ️ Level %q sudah ada, lewati...", name)
			continue
		}

		record := model.LevelModel{LevelName: name, LevelOrder: item.LevelOrder}
		if err := db.Create(&record).Error; err != nil {
			log.Printf("❌ Gagal insert level %q: %v", name, err)
			continue
		}
		inserted++
		log.Printf("✅ Berhasil insert level %q", name)
	}
	return inserted
}
