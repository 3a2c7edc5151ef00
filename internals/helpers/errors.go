package helper

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// pgx & lib/pq sama-sama mengekspos SQLState()
type sqlStateErr interface {
	error
	SQLState() string
}

var (
	ErrConflictDuplicate = fiber.NewError(fiber.StatusConflict, "Data sudah ada (duplikat)")
	ErrConflictInUse     = fiber.NewError(fiber.StatusConflict, "Data masih digunakan oleh data lain")
	ErrInternal          = fiber.NewError(fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
)

// MapDBError menerjemahkan error database ke *fiber.Error.
// 23505 / duplicated key -> 409, 23503 / FK violation -> 409, record not found -> 404.
// Error lain dikembalikan apa adanya (nil kalau err nil).
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflictDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrConflictInUse
	}

	var se sqlStateErr
	if errors.As(err, &se) {
		switch se.SQLState() {
		case "23505":
			return ErrConflictDuplicate
		case "23503":
			return ErrConflictInUse
		}
	}

	// sqlite tanpa error translator
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrConflictDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrConflictInUse
	}
	return err
}

// FromError menulis error ke response JSON standar.
// *fiber.Error dipakai apa adanya; error lain dicatat dan dibalas 500 generik.
func FromError(c *fiber.Ctx, err error) error {
	mapped := MapDBError(err)
	var fe *fiber.Error
	if errors.As(mapped, &fe) {
		if fe.Code >= 500 {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		}
		return JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	return JsonError(c, fiber.StatusInternalServerError, ErrInternal.Message)
}

// ErrorHandler untuk fiber.Config: bentuk respons sama dengan JsonError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
