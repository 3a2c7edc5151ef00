package scheduler

import (
	"context"
	"testing"
	"time"

	database "soalku_backend/internals/databases"
	packageModel "soalku_backend/internals/features/exams/packages/model"
	"soalku_backend/internals/features/finance/subscriptions/model"
	"soalku_backend/internals/features/finance/subscriptions/service"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

func TestRunExpirySweep(t *testing.T) {
	db := database.OpenTestDB(t)
	pkg := &packageModel.PackageModel{
		PackageName:         "Paket Harian",
		PackageDuration:     1,
		PackageDurationUnit: packageModel.DurationDays,
	}
	if err := db.Create(pkg).Error; err != nil {
		t.Fatal(err)
	}

	grantedAt := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	act := &service.Activator{Clock: func() time.Time { return grantedAt }, Location: time.UTC}
	if _, err := act.Activate(context.Background(), db, service.ActivateInput{SubscriberID: uuid.New(), Package: pkg}); err != nil {
		t.Fatal(err)
	}

	// berakhir 2024-07-02, masih aktif di hari itu
	if n := RunExpirySweep(context.Background(), db, time.Date(2024, 7, 2, 23, 0, 0, 0, time.UTC), time.UTC); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if n := RunExpirySweep(context.Background(), db, time.Date(2024, 7, 3, 0, 5, 0, 0, time.UTC), time.UTC); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}

	var sub model.SubscriptionModel
	if err := db.First(&sub).Error; err != nil {
		t.Fatal(err)
	}
	if sub.SubscriptionStatus != model.SubscriptionInactive {
		t.Fatalf("status %q", sub.SubscriptionStatus)
	}
}

func TestRegisterExpirySweepRejectsBadSpec(t *testing.T) {
	c := cron.New()
	if _, err := RegisterExpirySweep(c, nil, "bukan cron", time.UTC); err == nil {
		t.Fatal("expected invalid schedule error")
	}
	if _, err := RegisterExpirySweep(c, nil, "5 0 * * *", time.UTC); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
}
