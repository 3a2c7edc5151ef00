package users

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	authHelper "soalku_backend/internals/features/users/auth/helper"
	"soalku_backend/internals/features/users/user/model"

	"gorm.io/gorm"
)

type UserSeed struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func SeedUsersFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Membaca file user:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("baca %s: %w", filePath, err)
	}

	var inputs []UserSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return SeedUsers(db, inputs), nil
}

// SeedUsers insert user yang email-nya belum ada. Mengembalikan jumlah yang diinsert.
func SeedUsers(db *gorm.DB, inputs []UserSeed) int {
	inserted := 0
	for _, data := range inputs {
		email := strings.ToLower(strings.TrimSpace(data.Email))

		var n int64
		if err := db.Model(&model.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
			log.Printf("❌ Gagal cek user '%s': %v", email, err)
			continue
		}
		if n > 0 {
			log.Printf("ℹ️ User dengan email '%s' sudah ada, dilewati.", email)
			continue
		}

		// 🔐 Hash password sebelum disimpan
		hashedPassword, err := authHelper.HashPassword(data.Password)
		if err != nil {
			log.Printf("❌ Gagal hash password untuk '%s': %v", email, err)
			continue
		}

		newUser := model.UserModel{
			UserName: data.UserName,
			Email:    email,
			Password: &hashedPassword,
			Role:     data.Role,
			IsActive: true,
		}
		if err := newUser.Validate(); err != nil {
			log.Printf("❌ Data user '%s' tidak valid: %v", email, err)
			continue
		}

		if err := db.Create(&newUser).Error; err != nil {
			log.Printf("❌ Gagal insert user '%s': %v", email, err)
			continue
		}
		inserted++
		log.Printf("✅ Berhasil insert user '%s' (%s)", email, newUser.Role)
	}
	return inserted
}
