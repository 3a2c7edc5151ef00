package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	packageModel "soalku_backend/internals/features/exams/packages/model"
	"soalku_backend/internals/features/finance/subscriptions/model"
	"soalku_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DuplicateWindow rentang waktu grant manual dianggap duplikat.
const DuplicateWindow = 5 * time.Minute

var ErrInvalidDuration = errors.New("durasi paket tidak valid")

// ComputeEndDate tanggal berakhir = start + durasi.
// Bulan & tahun di-clamp ke akhir bulan (31 Jan + 1 bulan = 29 Feb 2024).
func ComputeEndDate(start time.Time, duration int, unit packageModel.DurationUnit) (time.Time, error) {
	if duration <= 0 {
		return time.Time{}, ErrInvalidDuration
	}
	switch unit {
	case packageModel.DurationDays:
		return start.AddDate(0, 0, duration), nil
	case packageModel.DurationWeeks:
		return start.AddDate(0, 0, duration*7), nil
	case packageModel.DurationMonths:
		return dbtime.AddMonthsClamped(start, duration), nil
	case packageModel.DurationYears:
		return dbtime.AddYearsClamped(start, duration), nil
	}
	return time.Time{}, fmt.Errorf("%w: unit %q", ErrInvalidDuration, unit)
}

type Activator struct {
	Clock    dbtime.Clock
	Location *time.Location
	Window   time.Duration
}

func NewActivator(loc *time.Location) *Activator {
	return &Activator{Clock: dbtime.SystemClock, Location: loc, Window: DuplicateWindow}
}

type ActivateInput struct {
	SubscriberID  uuid.UUID
	Package       *packageModel.PackageModel
	TransactionID *string // nil = grant manual oleh admin
}

type ActivateResult struct {
	Subscription model.SubscriptionModel
	Created      bool
}

func (a *Activator) now() time.Time {
	if a.Clock == nil {
		return dbtime.SystemClock()
	}
	return a.Clock().UTC()
}

// Activate membuat grant aktif untuk subscriber+paket.
// db boleh berupa transaksi yang sedang berjalan.
//
// Dengan TransactionID: insert-if-absent pada (subscriber, package, transaction),
// notifikasi berulang untuk pembayaran yang sama tidak membuat grant baru.
// Tanpa TransactionID: grant aktif yang dibuat dalam Window terakhir dianggap duplikat.
func (a *Activator) Activate(ctx context.Context, db *gorm.DB, in ActivateInput) (*ActivateResult, error) {
	if in.Package == nil {
		return nil, errors.New("package wajib diisi")
	}
	if in.SubscriberID == uuid.Nil {
		return nil, errors.New("subscriber wajib diisi")
	}

	now := a.now()
	start := dbtime.DateOf(now, a.Location)
	end, err := ComputeEndDate(start, in.Package.PackageDuration, in.Package.PackageDurationUnit)
	if err != nil {
		return nil, err
	}

	row := model.SubscriptionModel{
		SubscriptionSubscriberID:  in.SubscriberID,
		SubscriptionPackageID:     in.Package.PackageID,
		SubscriptionTransactionID: in.TransactionID,
		SubscriptionSubscribedAt:  now,
		SubscriptionStartDate:     start,
		SubscriptionEndDate:       end,
		SubscriptionStatus:        model.SubscriptionActive,
	}

	if in.TransactionID != nil {
		return a.activateFromTransaction(ctx, db, row)
	}
	return a.activateManual(ctx, db, row)
}

func (a *Activator) activateFromTransaction(ctx context.Context, db *gorm.DB, row model.SubscriptionModel) (*ActivateResult, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "subscription_subscriber_id"},
				{Name: "subscription_package_id"},
				{Name: "subscription_transaction_id"},
			},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[SUBSCRIPTION] aktif subscriber=%s package=%s trx=%s s/d %s",
			row.SubscriptionSubscriberID, row.SubscriptionPackageID, *row.SubscriptionTransactionID, row.SubscriptionEndDate.Format("2006-01-02"))
		return &ActivateResult{Subscription: row, Created: true}, nil
	}

	var existing model.SubscriptionModel
	if err := db.WithContext(ctx).
		Where("subscription_subscriber_id = ? AND subscription_package_id = ? AND subscription_transaction_id = ?",
			row.SubscriptionSubscriberID, row.SubscriptionPackageID, *row.SubscriptionTransactionID).
		Take(&existing).Error; err != nil {
		return nil, err
	}
	log.Printf("[SUBSCRIPTION] skip duplikat trx=%s", *row.SubscriptionTransactionID)
	return &ActivateResult{Subscription: existing, Created: false}, nil
}

func (a *Activator) activateManual(ctx context.Context, db *gorm.DB, row model.SubscriptionModel) (*ActivateResult, error) {
	window := a.Window
	if window <= 0 {
		window = DuplicateWindow
	}

	var out *ActivateResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.SubscriptionModel
		err := tx.
			Where("subscription_subscriber_id = ? AND subscription_package_id = ? AND subscription_status = ? AND subscription_subscribed_at >= ?",
				row.SubscriptionSubscriberID, row.SubscriptionPackageID, model.SubscriptionActive, row.SubscriptionSubscribedAt.Add(-window)).
			Order("subscription_subscribed_at DESC").
			Take(&existing).Error
		switch {
		case err == nil:
			out = &ActivateResult{Subscription: existing, Created: false}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		out = &ActivateResult{Subscription: row, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Created {
		log.Printf("[SUBSCRIPTION] skip grant manual duplikat subscriber=%s package=%s", row.SubscriptionSubscriberID, row.SubscriptionPackageID)
	}
	return out, nil
}
