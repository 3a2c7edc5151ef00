package service

import (
	"context"
	"testing"
	"time"

	database "soalku_backend/internals/databases"
	packageModel "soalku_backend/internals/features/exams/packages/model"
	"soalku_backend/internals/features/finance/subscriptions/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func seedPackage(t *testing.T, db *gorm.DB, duration int, unit packageModel.DurationUnit) *packageModel.PackageModel {
	t.Helper()
	p := &packageModel.PackageModel{
		PackageName:         "Paket " + uuid.NewString()[:8],
		PackagePriceIDR:     50000,
		PackageDuration:     duration,
		PackageDurationUnit: unit,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}
	return p
}

func fixedClock(t *time.Time) func() time.Time { return func() time.Time { return *t } }

func countGrants(t *testing.T, db *gorm.DB, subscriber, pkg uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.SubscriptionModel{}).
		Where("subscription_subscriber_id = ? AND subscription_package_id = ?", subscriber, pkg).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestComputeEndDate(t *testing.T) {
	cases := []struct {
		name     string
		start    time.Time
		duration int
		unit     packageModel.DurationUnit
		want     time.Time
	}{
		{"days across month", date(2024, 1, 30), 5, packageModel.DurationDays, date(2024, 2, 4)},
		{"days across year", date(2023, 12, 30), 3, packageModel.DurationDays, date(2024, 1, 2)},
		{"weeks", date(2024, 2, 20), 2, packageModel.DurationWeeks, date(2024, 3, 5)},
		{"month clamps to leap day", date(2024, 1, 31), 1, packageModel.DurationMonths, date(2024, 2, 29)},
		{"month clamps non leap", date(2023, 1, 31), 1, packageModel.DurationMonths, date(2023, 2, 28)},
		{"months plain", date(2024, 5, 10), 6, packageModel.DurationMonths, date(2024, 11, 10)},
		{"year from leap day", date(2024, 2, 29), 1, packageModel.DurationYears, date(2025, 2, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeEndDate(tc.start, tc.duration, tc.unit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %s, want %s", got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
			}
		})
	}
}

func TestComputeEndDate_DaysAreExactCalendarDays(t *testing.T) {
	for start := date(2023, 1, 1); start.Before(date(2025, 1, 1)); start = start.AddDate(0, 0, 1) {
		for _, n := range []int{1, 7, 28, 29, 30, 31, 365, 366} {
			got, err := ComputeEndDate(start, n, packageModel.DurationDays)
			if err != nil {
				t.Fatal(err)
			}
			if got.Sub(start) != time.Duration(n)*24*time.Hour {
				t.Fatalf("start %s + %d days = %s", start.Format("2006-01-02"), n, got.Format("2006-01-02"))
			}
		}
	}
}

func TestComputeEndDate_LegacyUnitSpelling(t *testing.T) {
	unit, err := packageModel.ParseDurationUnit("Bulan")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := ComputeEndDate(date(2024, 1, 31), 1, unit)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(date(2024, 2, 29)) {
		t.Fatalf("got %s, want 2024-02-29", got.Format("2006-01-02"))
	}

	for _, s := range []string{"hari", "3 Hari", "day", "Days"} {
		u, err := packageModel.ParseDurationUnit(s)
		if err != nil || u != packageModel.DurationDays {
			t.Fatalf("ParseDurationUnit(%q) = %q, %v", s, u, err)
		}
	}
}

func TestComputeEndDate_RejectsInvalid(t *testing.T) {
	if _, err := ComputeEndDate(date(2024, 1, 1), 0, packageModel.DurationDays); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := ComputeEndDate(date(2024, 1, 1), 1, packageModel.DurationUnit("fortnight")); err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if _, err := packageModel.ParseDurationUnit("dekade"); err == nil {
		t.Fatal("expected unknown unit to be rejected")
	}
}

func TestActivate_SameTransactionIsIdempotent(t *testing.T) {
	db := database.OpenTestDB(t)
	pkg := seedPackage(t, db, 1, packageModel.DurationMonths)
	subscriber := uuid.New()
	now := time.Date(2024, 1, 31, 2, 0, 0, 0, time.UTC)
	act := &Activator{Clock: fixedClock(&now), Location: time.UTC, Window: DuplicateWindow}
	trx := "SOAL-1"

	first, err := act.Activate(context.Background(), db, ActivateInput{SubscriberID: subscriber, Package: pkg, TransactionID: &trx})
	if err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if !first.Created {
		t.Fatal("first activation should create a grant")
	}
	if !first.Subscription.SubscriptionEndDate.Equal(date(2024, 2, 29)) {
		t.Fatalf("end date %s", first.Subscription.SubscriptionEndDate)
	}

	// notifikasi berulang jauh setelah window tetap tidak menggandakan
	now = now.Add(2 * time.Hour)
	second, err := act.Activate(context.Background(), db, ActivateInput{SubscriberID: subscriber, Package: pkg, TransactionID: &trx})
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if second.Created {
		t.Fatal("replayed transaction must not create a grant")
	}
	if second.Subscription.SubscriptionID != first.Subscription.SubscriptionID {
		t.Fatal("expected existing grant back")
	}
	if n := countGrants(t, db, subscriber, pkg.PackageID); n != 1 {
		t.Fatalf("expected 1 grant, got %d", n)
	}
}

func TestActivate_DifferentTransactionsCreateSeparateGrants(t *testing.T) {
	db := database.OpenTestDB(t)
	pkg := seedPackage(t, db, 7, packageModel.DurationDays)
	subscriber := uuid.New()
	act := NewActivator(time.UTC)

	for _, trx := range []string{"SOAL-A", "SOAL-B"} {
		id := trx
		if _, err := act.Activate(context.Background(), db, ActivateInput{SubscriberID: subscriber, Package: pkg, TransactionID: &id}); err != nil {
			t.Fatalf("activate %s: %v", trx, err)
		}
	}
	if n := countGrants(t, db, subscriber, pkg.PackageID); n != 2 {
		t.Fatalf("expected 2 grants, got %d", n)
	}
}

func TestActivate_ManualGrantWindow(t *testing.T) {
	db := database.OpenTestDB(t)
	pkg := seedPackage(t, db, 30, packageModel.DurationDays)
	subscriber := uuid.New()
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	act := &Activator{Clock: fixedClock(&now), Location: time.UTC, Window: DuplicateWindow}
	in := ActivateInput{SubscriberID: subscriber, Package: pkg}

	if _, err := act.Activate(context.Background(), db, in); err != nil {
		t.Fatal(err)
	}

	now = now.Add(4 * time.Minute)
	res, err := act.Activate(context.Background(), db, in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created {
		t.Fatal("activation within 5 minutes must be skipped")
	}
	if n := countGrants(t, db, subscriber, pkg.PackageID); n != 1 {
		t.Fatalf("expected 1 grant, got %d", n)
	}

	now = now.Add(6 * time.Minute)
	res, err = act.Activate(context.Background(), db, in)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Created {
		t.Fatal("activation outside the window should create a new grant")
	}
	if n := countGrants(t, db, subscriber, pkg.PackageID); n != 2 {
		t.Fatalf("expected 2 grants, got %d", n)
	}
}

func TestActivate_StartDateFollowsLocation(t *testing.T) {
	db := database.OpenTestDB(t)
	pkg := seedPackage(t, db, 1, packageModel.DurationMonths)
	jkt, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skip("tzdata tidak tersedia")
	}
	// 20:00 UTC tanggal 30 = tanggal 31 di WIB
	now := time.Date(2024, 1, 30, 20, 0, 0, 0, time.UTC)
	act := &Activator{Clock: fixedClock(&now), Location: jkt}

	res, err := act.Activate(context.Background(), db, ActivateInput{SubscriberID: uuid.New(), Package: pkg})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Subscription.SubscriptionStartDate.Equal(date(2024, 1, 31)) {
		t.Fatalf("start %s", res.Subscription.SubscriptionStartDate)
	}
	if !res.Subscription.SubscriptionEndDate.Equal(date(2024, 2, 29)) {
		t.Fatalf("end %s", res.Subscription.SubscriptionEndDate)
	}
}

func TestExpireDueAndHasActive(t *testing.T) {
	db := database.OpenTestDB(t)
	pkg := seedPackage(t, db, 3, packageModel.DurationDays)
	subscriber := uuid.New()
	now := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	act := &Activator{Clock: fixedClock(&now), Location: time.UTC}
	ctx := context.Background()

	if _, err := act.Activate(ctx, db, ActivateInput{SubscriberID: subscriber, Package: pkg}); err != nil {
		t.Fatal(err)
	}

	ok, err := HasActiveSubscription(ctx, db, subscriber, pkg.PackageID, date(2024, 6, 4))
	if err != nil || !ok {
		t.Fatalf("expected active on end date, got %v %v", ok, err)
	}

	n, err := ExpireDue(ctx, db, date(2024, 6, 4))
	if err != nil || n != 0 {
		t.Fatalf("nothing should expire on end date: n=%d err=%v", n, err)
	}
	n, err = ExpireDue(ctx, db, date(2024, 6, 5))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 expired, n=%d err=%v", n, err)
	}

	ok, err = HasActiveSubscription(ctx, db, subscriber, pkg.PackageID, date(2024, 6, 5))
	if err != nil || ok {
		t.Fatalf("expected no active grant, got %v %v", ok, err)
	}
}
