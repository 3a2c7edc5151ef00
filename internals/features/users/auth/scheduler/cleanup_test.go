package scheduler

import (
	"context"
	"testing"
	"time"

	database "soalku_backend/internals/databases"
	authModel "soalku_backend/internals/features/users/auth/model"
	authHelper "soalku_backend/internals/helpers/auth"
)

func TestRunBlacklistCleanup(t *testing.T) {
	db := database.OpenTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 3, 0, 0, 0, time.UTC)

	if err := authHelper.Add(ctx, db, "token-lama", "secret", now.AddDate(0, 0, -10)); err != nil {
		t.Fatal(err)
	}
	if err := authHelper.Add(ctx, db, "token-baru", "secret", now.AddDate(0, 0, -2)); err != nil {
		t.Fatal(err)
	}

	if n := RunBlacklistCleanup(ctx, db, now, 7); n != 1 {
		t.Fatalf("expected 1 purged token, got %d", n)
	}

	var left int64
	db.Model(&authModel.TokenBlacklist{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 remaining token, got %d", left)
	}
	if ok, _ := authHelper.IsBlacklisted(ctx, db, "token-baru", "secret"); !ok {
		t.Fatal("recent token should still be blacklisted")
	}
}
