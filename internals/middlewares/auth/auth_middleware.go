// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"soalku_backend/internals/configs"
	helper "soalku_backend/internals/helpers"
	blacklist "soalku_backend/internals/helpers/auth"
)

// Public webhook path yang di-skip auth
var skipPaths = map[string]struct{}{
	"/api/v1/payments/notification": {},
}

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Skip path tertentu (webhook dsb.)
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}

		// 2) Ambil Authorization (atau cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET kosong")
			return helper.JsonError(c, fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		// 3) Cek blacklist (sekali per request)
		if c.Locals("token_checked") == nil {
			listed, err := blacklist.IsBlacklisted(c.UserContext(), db, tokenString, secretKey)
			if err != nil {
				log.Println("[ERROR] DB error saat cek blacklist:", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
			}
			if listed {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Sesi sudah keluar. Silakan login lagi.")
			}
			c.Locals("token_checked", true)
		}

		// 4) Parse & verifikasi JWT (exp dicek manual dengan toleransi skew)
		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}); err != nil {
			log.Println("[ERROR] Gagal parse token:", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		// 5) Validasi exp
		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 6) Ambil user_id & validasi user aktif
		userID, err := extractUserID(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		role, err := loadActiveUser(db.WithContext(c.UserContext()), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			if errors.Is(err, errUserInactive) {
				return helper.JsonError(c, fiber.StatusForbidden, "Akun Anda telah dinonaktifkan")
			}
			log.Println("[ERROR] loadActiveUser:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
		}

		// 7) Simpan info klaim ke context
		c.Locals("user_id", userID.String())
		helper.SetRawAccessToken(c, tokenString)
		storeBasicClaimsToLocals(c, claims)
		c.Locals("userRole", role)
		return c.Next()
	}
}
