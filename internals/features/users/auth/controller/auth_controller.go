package controller

import (
	"soalku_backend/internals/features/users/auth/dto"
	"soalku_backend/internals/features/users/auth/service"
	helper "soalku_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Service   *service.AuthService
	Validator *validator.Validate
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc, Validator: helper.NewValidator()}
}

// bind parse + validasi body; ok=false berarti response error sudah ditulis.
func (ac *AuthController) bind(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ac.Validator.Struct(out); err != nil {
		return false, helper.ValidationError(c, err)
	}
	return true, nil
}

// POST /auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	user, err := ac.Service.Register(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Registrasi berhasil", dto.FromUser(user))
}

// POST /auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	res, err := ac.Service.Login(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Login berhasil", res)
}

// POST /auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	res, err := ac.Service.LoginGoogle(c.UserContext(), req.IDToken)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Login Google berhasil", res)
}

// POST /auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Service.Logout(c.UserContext(), helper.GetRawAccessToken(c)); err != nil {
		return helper.FromError(c, err)
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "Logout berhasil", nil)
}

// GET /auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	user, err := ac.Service.Me(c.UserContext(), userID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Profil saya", dto.FromUser(user))
}

// POST /auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.ChangePasswordRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	if err := ac.Service.ChangePassword(c.UserContext(), userID, req); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Password berhasil diganti", nil)
}
