package scheduler

import (
	"context"
	"log"
	"time"

	"soalku_backend/internals/features/finance/subscriptions/service"
	"soalku_backend/internals/helpers/dbtime"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RegisterExpirySweep menonaktifkan grant yang sudah lewat tanggal berakhir.
func RegisterExpirySweep(c *cron.Cron, db *gorm.DB, spec string, loc *time.Location) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		RunExpirySweep(ctx, db, time.Now(), loc)
	})
}

func RunExpirySweep(ctx context.Context, db *gorm.DB, now time.Time, loc *time.Location) int64 {
	today := dbtime.DateOf(now, loc)
	n, err := service.ExpireDue(ctx, db, today)
	if err != nil {
		log.Printf("[SUBSCRIPTION EXPIRY ERROR] %v", err)
		return 0
	}
	log.Printf("[SUBSCRIPTION EXPIRY] %d grant dinonaktifkan (today=%s)", n, today.Format("2006-01-02"))
	return n
}
