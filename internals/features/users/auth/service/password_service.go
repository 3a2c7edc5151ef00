package service

import (
	"context"
	"log"

	"soalku_backend/internals/features/users/auth/dto"
	authHelper "soalku_backend/internals/features/users/auth/helper"
	authRepo "soalku_backend/internals/features/users/auth/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ========================== CHANGE PASSWORD ==========================
// Akun Google tanpa password boleh set password pertama kali tanpa old_password yang cocok.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	if err := authHelper.ValidatePassword(req.NewPassword); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if user.Password != nil {
		if authHelper.CheckPasswordHash(*user.Password, req.OldPassword) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Password lama salah")
		}
		if req.OldPassword == req.NewPassword {
			return fiber.NewError(fiber.StatusBadRequest, "Password baru harus berbeda")
		}
	}

	hash, err := authHelper.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := authRepo.UpdateUserPassword(s.DB.WithContext(ctx), user.ID, hash); err != nil {
		return err
	}
	log.Printf("[AUTH] password diganti user=%s", user.ID)
	return nil
}
