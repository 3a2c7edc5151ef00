package service

import (
	"context"
	"time"

	"soalku_backend/internals/features/finance/subscriptions/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HasActiveSubscription true kalau ada grant aktif yang belum lewat tanggal berakhir.
func HasActiveSubscription(ctx context.Context, db *gorm.DB, subscriberID, packageID uuid.UUID, today time.Time) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.SubscriptionModel{}).
		Where("subscription_subscriber_id = ? AND subscription_package_id = ? AND subscription_status = ? AND subscription_end_date >= ?",
			subscriberID, packageID, model.SubscriptionActive, today).
		Count(&n).Error
	return n > 0, err
}

// ExpireDue menonaktifkan grant yang tanggal berakhirnya sebelum today.
func ExpireDue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&model.SubscriptionModel{}).
		Where("subscription_status = ? AND subscription_end_date < ?", model.SubscriptionActive, today).
		Update("subscription_status", model.SubscriptionInactive)
	return res.RowsAffected, res.Error
}
