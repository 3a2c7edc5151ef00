package helpers

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	reLetter   = regexp.MustCompile(`[A-Za-z]`)
	reNumber   = regexp.MustCompile(`[0-9]`)
	reUserName = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,50}$`)
)

func isAlphaNumeric(s string) bool {
	return reLetter.MatchString(s) && reNumber.MatchString(s)
}

// ValidatePassword minimal 8 karakter, wajib ada huruf dan angka.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("Password minimal 8 karakter")
	}
	if len(pw) > 72 {
		return errors.New("Password maksimal 72 karakter")
	}
	if !isAlphaNumeric(pw) {
		return errors.New("Password harus mengandung huruf dan angka")
	}
	return nil
}

func ValidateUserName(name string) error {
	if !reUserName.MatchString(strings.TrimSpace(name)) {
		return errors.New("Username 3-50 karakter, hanya huruf, angka, titik, dan underscore")
	}
	return nil
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPasswordHash(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

// SlugUserName membentuk kandidat username dari nama/email Google.
func SlugUserName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '@'); i > 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_.")
	if len(out) > 40 {
		out = out[:40]
	}
	for len(out) < 3 {
		out += "x"
	}
	return out
}
