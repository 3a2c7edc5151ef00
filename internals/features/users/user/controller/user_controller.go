package controller

import (
	"errors"
	"log"
	"strings"

	authHelper "soalku_backend/internals/features/users/auth/helper"
	"soalku_backend/internals/features/users/user/dto"
	"soalku_backend/internals/features/users/user/model"
	helper "soalku_backend/internals/helpers"
	"soalku_backend/internals/helpers/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Uploader  *upload.Uploader
}

func NewUserController(db *gorm.DB, up *upload.Uploader) *UserController {
	return &UserController{DB: db, Validator: helper.NewValidator(), Uploader: up}
}

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"user_name":  "user_name",
	"email":      "email",
}

func (uc *UserController) findByID(c *fiber.Ctx, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	if err := uc.DB.WithContext(c.UserContext()).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User tidak ditemukan")
		}
		return nil, err
	}
	return &u, nil
}

/* =========================
   Self
========================= */

// PATCH /users/me
func (uc *UserController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := uc.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	u, err := uc.findByID(c, userID)
	if err != nil {
		return helper.FromError(c, err)
	}
	if req.UserName != nil {
		name := strings.TrimSpace(*req.UserName)
		if err := authHelper.ValidateUserName(name); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		if err := uc.DB.WithContext(c.UserContext()).Model(u).Update("user_name", name).Error; err != nil {
			if errors.Is(helper.MapDBError(err), helper.ErrConflictDuplicate) {
				return helper.JsonError(c, fiber.StatusConflict, "Username sudah dipakai")
			}
			return helper.FromError(c, err)
		}
		u.UserName = name
	}
	return helper.JsonUpdated(c, "Profil diperbarui", dto.FromModel(u))
}

// POST /users/me/avatar (multipart: avatar)
func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	u, err := uc.findByID(c, userID)
	if err != nil {
		return helper.FromError(c, err)
	}

	url, err := uc.Uploader.FromForm(c, "avatar")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "File avatar wajib diunggah")
	}

	old := u.AvatarURL
	if err := uc.DB.WithContext(c.UserContext()).Model(u).Update("avatar_url", url).Error; err != nil {
		uc.Uploader.Remove(c.UserContext(), &url)
		return helper.FromError(c, err)
	}
	uc.Uploader.Remove(c.UserContext(), old)
	u.AvatarURL = &url
	return helper.JsonUpdated(c, "Avatar diperbarui", dto.FromModel(u))
}

/* =========================
   Admin
========================= */

// GET /admin/users?q=&role=&is_active=
func (uc *UserController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	q := uc.DB.WithContext(c.UserContext()).Model(&model.UserModel{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(user_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		if !model.IsValidRole(role) {
			return helper.JsonError(c, fiber.StatusBadRequest, "role tidak valid")
		}
		q = q.Where("role = ?", role)
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("is_active"))) {
	case "":
	case "true", "1":
		q = q.Where("is_active = ?", true)
	case "false", "0":
		q = q.Where("is_active = ?", false)
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "is_active harus true/false")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}
	var rows []model.UserModel
	if err := q.Order(helper.SafeOrderClause(c, userSortColumns, "created_at")).
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar user", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /admin/users/:id
func (uc *UserController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	u, err := uc.findByID(c, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail user", dto.FromModel(u))
}

// POST /admin/users — akun staf (contributor/validator/admin)
func (uc *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	req.Normalize()
	if err := uc.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := authHelper.ValidateUserName(req.UserName); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := authHelper.ValidatePassword(req.Password); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return helper.FromError(c, err)
	}
	u := model.UserModel{
		UserName: req.UserName,
		Email:    req.Email,
		Password: &hash,
		Role:     req.Role,
		IsActive: true,
	}
	if err := uc.DB.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		if errors.Is(helper.MapDBError(err), helper.ErrConflictDuplicate) {
			return helper.JsonError(c, fiber.StatusConflict, "Email atau username sudah terdaftar")
		}
		return helper.FromError(c, err)
	}
	log.Printf("[USER] admin membuat user=%s role=%s", u.ID, u.Role)
	return helper.JsonCreated(c, "User berhasil dibuat", dto.FromModel(&u))
}

// PATCH /admin/users/:id/role
func (uc *UserController) UpdateRole(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := uc.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if self, _ := helper.GetUserIDFromToken(c); self == id && req.Role != model.RoleAdmin {
		return helper.JsonError(c, fiber.StatusConflict, "Tidak bisa menurunkan role akun sendiri")
	}

	u, err := uc.findByID(c, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := uc.DB.WithContext(c.UserContext()).Model(u).Update("role", req.Role).Error; err != nil {
		return helper.FromError(c, err)
	}
	log.Printf("[USER] role user=%s %s -> %s", u.ID, u.Role, req.Role)
	u.Role = req.Role
	return helper.JsonUpdated(c, "Role user diperbarui", dto.FromModel(u))
}

// PATCH /admin/users/:id/active {is_active}
func (uc *UserController) SetActive(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := uc.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if self, _ := helper.GetUserIDFromToken(c); self == id && !*req.IsActive {
		return helper.JsonError(c, fiber.StatusConflict, "Tidak bisa menonaktifkan akun sendiri")
	}

	u, err := uc.findByID(c, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := uc.DB.WithContext(c.UserContext()).Model(u).Update("is_active", *req.IsActive).Error; err != nil {
		return helper.FromError(c, err)
	}
	u.IsActive = *req.IsActive
	msg := "User dinonaktifkan"
	if u.IsActive {
		msg = "User diaktifkan"
	}
	return helper.JsonUpdated(c, msg, dto.FromModel(u))
}
