package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "soalku_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

// FindUserByEmailOrUsername email dibandingkan lowercase, username apa adanya.
func FindUserByEmailOrUsername(db *gorm.DB, identifier string) (*userModel.UserModel, error) {
	identifier = strings.TrimSpace(identifier)
	var user userModel.UserModel
	if err := db.Where("email = ? OR user_name = ?", strings.ToLower(identifier), identifier).
		Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByGoogleID(db *gorm.DB, googleID string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("google_id = ?", googleID).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("id = ?", userID).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UserNameTaken(db *gorm.DB, userName string) (bool, error) {
	var n int64
	err := db.Model(&userModel.UserModel{}).Where("user_name = ?", userName).Count(&n).Error
	return n > 0, err
}

func CreateUser(db *gorm.DB, user *userModel.UserModel) error {
	return db.Create(user).Error
}

func LinkGoogleID(db *gorm.DB, userID uuid.UUID, googleID string) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("google_id", googleID).Error
}

func UpdateUserPassword(db *gorm.DB, userID uuid.UUID, hashed string) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("password", hashed).Error
}
