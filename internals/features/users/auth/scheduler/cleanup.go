package scheduler

import (
	"context"
	"log"
	"time"

	authHelper "soalku_backend/internals/helpers/auth"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RegisterBlacklistCleanup mendaftarkan pembersihan token_blacklist ke cron.
// Token yang expired lebih dari ttlDays hari lalu dihapus (soft delete).
func RegisterBlacklistCleanup(c *cron.Cron, db *gorm.DB, spec string, ttlDays int) (cron.EntryID, error) {
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return c.AddFunc(spec, func() {
		RunBlacklistCleanup(context.Background(), db, time.Now(), ttlDays)
	})
}

func RunBlacklistCleanup(ctx context.Context, db *gorm.DB, now time.Time, ttlDays int) int64 {
	log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")

	deleteBefore := now.Add(-time.Duration(ttlDays) * 24 * time.Hour)
	n, err := authHelper.PurgeExpired(ctx, db, deleteBefore)
	switch {
	case err != nil:
		log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
	case n > 0:
		log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
	default:
		log.Println("[CLEANUP] Tidak ada token yang memenuhi syarat dihapus")
	}
	return n
}
