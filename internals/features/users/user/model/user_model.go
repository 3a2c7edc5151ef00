package model

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
	RoleValidator   = "validator"
	RoleSubscriber  = "subscriber"
)

// UserModel merepresentasikan tabel users di database
type UserModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserName  string    `gorm:"column:user_name;size:50;not null;uniqueIndex:uq_users_user_name" json:"user_name" validate:"required,min=3,max=50"`
	Email     string    `gorm:"column:email;size:255;not null;uniqueIndex:uq_users_email" json:"email" validate:"required,email"`
	Password  *string   `gorm:"column:password" json:"-"`
	GoogleID  *string   `gorm:"column:google_id;size:255;uniqueIndex:uq_users_google_id" json:"google_id,omitempty"`
	Role      string    `gorm:"column:role;type:varchar(20);not null;default:'subscriber'" json:"role" validate:"required,oneof=admin contributor validator subscriber"`
	AvatarURL *string   `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetDefaultValues memastikan nilai default sebelum validasi
func (u *UserModel) SetDefaultValues() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UserName = strings.TrimSpace(u.UserName)
	if u.Role == "" {
		u.Role = RoleSubscriber
	}
}

// Validate memeriksa apakah input sesuai aturan yang telah didefinisikan
func (u *UserModel) Validate() error {
	u.SetDefaultValues()
	if err := validate.Struct(u); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleContributor, RoleValidator, RoleSubscriber:
		return true
	}
	return false
}

func formatValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	var b strings.Builder
	for _, fieldErr := range ve {
		switch fieldErr.Tag() {
		case "required":
			b.WriteString(fieldErr.Field() + " wajib diisi. ")
		case "email":
			b.WriteString("Format email tidak valid. ")
		case "min":
			b.WriteString(fieldErr.Field() + " harus minimal " + fieldErr.Param() + " karakter. ")
		case "max":
			b.WriteString(fieldErr.Field() + " harus kurang dari " + fieldErr.Param() + " karakter. ")
		case "oneof":
			b.WriteString(fieldErr.Field() + " harus salah satu dari " + fieldErr.Param() + ". ")
		default:
			b.WriteString(fieldErr.Field() + ": format tidak valid. ")
		}
	}
	return errors.New(strings.TrimSpace(b.String()))
}
