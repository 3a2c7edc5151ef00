package service

import (
	"errors"
	"time"

	userModel "soalku_backend/internals/features/users/user/model"

	"github.com/golang-jwt/jwt/v4"
)

const defaultAccessTTL = 24 * time.Hour

// buildAccessClaims payload access token: {id, role, user_name, iat, exp}
func buildAccessClaims(user *userModel.UserModel, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"id":        user.ID.String(),
		"role":      user.Role,
		"user_name": user.UserName,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
}

// IssueAccessToken HS256.
func IssueAccessToken(user *userModel.UserModel, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("JWT_SECRET kosong")
	}
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	claims := buildAccessClaims(user, now, ttl)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now.Add(ttl), nil
}

// tokenExpiry membaca exp dari token bertanda tangan valid; exp boleh sudah lewat.
func tokenExpiry(raw, secret string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0).UTC(), true
}
