package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type fakeSQLState struct{ code string }

func (e fakeSQLState) Error() string    { return "pg error " + e.code }
func (e fakeSQLState) SQLState() string { return e.code }

func TestMapDBError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"duplicated", gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{"fk", fmt.Errorf("delete: %w", gorm.ErrForeignKeyViolated), fiber.StatusConflict},
		{"pg unique", fakeSQLState{"23505"}, fiber.StatusConflict},
		{"pg fk", fakeSQLState{"23503"}, fiber.StatusConflict},
		{"sqlite fk", errors.New("FOREIGN KEY constraint failed (787)"), fiber.StatusConflict},
		{"fiber passthrough", fiber.NewError(fiber.StatusForbidden, "x"), fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var fe *fiber.Error
			if !errors.As(MapDBError(tc.err), &fe) {
				t.Fatalf("expected *fiber.Error for %v", tc.err)
			}
			if fe.Code != tc.want {
				t.Fatalf("want %d, got %d", tc.want, fe.Code)
			}
		})
	}
}

func TestMapDBError_UnknownPassesThrough(t *testing.T) {
	raw := errors.New("connection reset")
	if got := MapDBError(raw); got != raw {
		t.Fatalf("expected raw error back, got %v", got)
	}
	if MapDBError(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
