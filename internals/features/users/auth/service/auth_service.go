package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"soalku_backend/internals/features/users/auth/dto"
	authHelper "soalku_backend/internals/features/users/auth/helper"
	authRepo "soalku_backend/internals/features/users/auth/repository"
	userModel "soalku_backend/internals/features/users/user/model"
	helpers "soalku_backend/internals/helpers"
	blacklist "soalku_backend/internals/helpers/auth"
	"soalku_backend/internals/helpers/dbtime"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBadCredentials = fiber.NewError(fiber.StatusUnauthorized, "Identifier atau password salah")
	ErrUserInactive   = fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	ErrUserTaken      = fiber.NewError(fiber.StatusConflict, "Email atau username sudah terdaftar")
)

/* ==========================
   Google
========================== */

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

// FuturendaVerifier memverifikasi ID token terhadap sertifikat Google.
type FuturendaVerifier struct {
	ClientID string
}

func (f FuturendaVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	if f.ClientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID kosong")
	}
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{f.ClientID}); err != nil {
		return nil, err
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleIdentity{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

/* ==========================
   Service
========================== */

type AuthService struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
	Google    GoogleVerifier
	Clock     dbtime.Clock
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, google GoogleVerifier) *AuthService {
	return &AuthService{DB: db, JWTSecret: secret, TokenTTL: ttl, Google: google, Clock: dbtime.SystemClock}
}

func (s *AuthService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

func (s *AuthService) issue(user *userModel.UserModel) (*dto.LoginResponse, error) {
	token, exp, err := IssueAccessToken(user, s.JWTSecret, s.TokenTTL, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        dto.FromUser(user),
	}, nil
}

// Register pendaftaran mandiri, selalu sebagai subscriber.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*userModel.UserModel, error) {
	req.Normalize()
	if err := authHelper.ValidateUserName(req.UserName); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := authHelper.ValidatePassword(req.Password); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := userModel.UserModel{
		UserName: req.UserName,
		Email:    req.Email,
		Password: &hash,
		Role:     userModel.RoleSubscriber,
		IsActive: true,
	}
	if err := authRepo.CreateUser(s.DB.WithContext(ctx), &user); err != nil {
		if errors.Is(helpers.MapDBError(err), helpers.ErrConflictDuplicate) {
			return nil, ErrUserTaken
		}
		return nil, err
	}
	log.Printf("[AUTH] register user=%s email=%s", user.ID, user.Email)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := authRepo.FindUserByEmailOrUsername(s.DB.WithContext(ctx), req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	// akun Google tanpa password tidak bisa login biasa
	if user.Password == nil || authHelper.CheckPasswordHash(*user.Password, req.Password) != nil {
		return nil, ErrBadCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

// LoginGoogle: cari by google_id, lalu by email (ditautkan), terakhir buat user baru.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*dto.LoginResponse, error) {
	if s.Google == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Login Google belum dikonfigurasi")
	}
	ident, err := s.Google.Verify(strings.TrimSpace(idToken))
	if err != nil {
		log.Printf("[AUTH] google token ditolak: %v", err)
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Google ID token tidak valid")
	}
	if ident.Sub == "" || ident.Email == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Google ID token tidak lengkap")
	}

	db := s.DB.WithContext(ctx)
	user, err := authRepo.FindUserByGoogleID(db, ident.Sub)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.linkOrCreateGoogleUser(db, ident)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

func (s *AuthService) linkOrCreateGoogleUser(db *gorm.DB, ident *GoogleIdentity) (*userModel.UserModel, error) {
	existing, err := authRepo.FindUserByEmail(db, ident.Email)
	if err == nil {
		if existing.GoogleID != nil && *existing.GoogleID != ident.Sub {
			return nil, fiber.NewError(fiber.StatusConflict, "Email sudah tertaut ke akun Google lain")
		}
		if err := authRepo.LinkGoogleID(db, existing.ID, ident.Sub); err != nil {
			return nil, err
		}
		existing.GoogleID = &ident.Sub
		log.Printf("[AUTH] google ditautkan ke user=%s", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := ident.Name
	if strings.TrimSpace(name) == "" {
		name = ident.Email
	}
	userName, err := s.uniqueUserName(db, authHelper.SlugUserName(name))
	if err != nil {
		return nil, err
	}
	sub := ident.Sub
	user := userModel.UserModel{
		UserName: userName,
		Email:    strings.ToLower(strings.TrimSpace(ident.Email)),
		GoogleID: &sub,
		Role:     userModel.RoleSubscriber,
		IsActive: true,
	}
	if err := authRepo.CreateUser(db, &user); err != nil {
		if errors.Is(helpers.MapDBError(err), helpers.ErrConflictDuplicate) {
			return nil, ErrUserTaken
		}
		return nil, err
	}
	log.Printf("[AUTH] user google baru user=%s", user.ID)
	return &user, nil
}

func (s *AuthService) uniqueUserName(db *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := authRepo.UserNameTaken(db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%s", base, uuid.NewString()[:4])
	}
	return "", fiber.NewError(fiber.StatusConflict, "Gagal membuat username unik")
}

// Logout memasukkan token ke blacklist sampai exp-nya lewat.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}
	exp, ok := tokenExpiry(rawToken, s.JWTSecret)
	if !ok {
		exp = s.now().Add(s.ttl())
	}
	if err := blacklist.Add(ctx, s.DB, rawToken, s.JWTSecret, exp); err != nil {
		return err
	}
	log.Printf("[AUTH] token diblacklist s/d %s", exp.Format(time.RFC3339))
	return nil
}

func (s *AuthService) ttl() time.Duration {
	if s.TokenTTL <= 0 {
		return defaultAccessTTL
	}
	return s.TokenTTL
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error) {
	user, err := authRepo.FindUserByID(s.DB.WithContext(ctx), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User tidak ditemukan")
		}
		return nil, err
	}
	return user, nil
}
