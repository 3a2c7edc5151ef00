package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	database "soalku_backend/internals/databases"
	packageModel "soalku_backend/internals/features/exams/packages/model"
	subModel "soalku_backend/internals/features/finance/subscriptions/model"
	"soalku_backend/internals/features/finance/transactions/model"
	userModel "soalku_backend/internals/features/users/user/model"
	"soalku_backend/internals/helpers/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testServerKey = "SB-Mid-server-test"

type stubSnap struct {
	err  error
	reqs []SnapRequest
}

func (s *stubSnap) CreateSnap(r SnapRequest) (*SnapResult, error) {
	s.reqs = append(s.reqs, r)
	if s.err != nil {
		return nil, s.err
	}
	return &SnapResult{Token: "tok-" + r.OrderID, RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + r.OrderID}, nil
}

type stubNotifier struct {
	mu   sync.Mutex
	err  error
	sent []mailer.Invoice
}

func (s *stubNotifier) SendInvoice(_ context.Context, inv mailer.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, inv)
	return s.err
}

func (s *stubNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fixture struct {
	db   *gorm.DB
	svc  *TransactionService
	snap *stubSnap
	mail *stubNotifier
	user userModel.UserModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.OpenTestDB(t)
	f := &fixture{db: db, snap: &stubSnap{}, mail: &stubNotifier{}}
	f.svc = NewTransactionService(db, Options{
		Snap:            f.snap,
		Notifier:        f.mail,
		Location:        time.UTC,
		ServerKey:       testServerKey,
		BypassSignature: "bypass-dev",
	})

	f.user = userModel.UserModel{UserName: "budi", Email: "budi@example.com", Role: userModel.RoleSubscriber, IsActive: true}
	if err := db.Create(&f.user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return f
}

func (f *fixture) seedPackage(t *testing.T, price, discount int) *packageModel.PackageModel {
	t.Helper()
	p := &packageModel.PackageModel{
		PackageName:         "Paket " + uuid.NewString()[:8],
		PackagePriceIDR:     price,
		PackageDiscountIDR:  discount,
		PackageDuration:     1,
		PackageDurationUnit: packageModel.DurationMonths,
	}
	if err := f.db.Create(p).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}
	return p
}

func (f *fixture) reload(t *testing.T, id string) model.TransactionModel {
	t.Helper()
	var trx model.TransactionModel
	if err := f.db.First(&trx, "transaction_id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	return trx
}

func (f *fixture) grants(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&subModel.SubscriptionModel{}).
		Where("subscription_subscriber_id = ?", f.user.ID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func signed(orderID, status, gross string) Notification {
	return Notification{
		OrderID:           orderID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       gross,
		PaymentType:       "bank_transfer",
		TransactionID:     "mid-" + orderID,
		SignatureKey:      Signature(orderID, "200", gross, testServerKey),
	}
}

func statusCode(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}

func TestMapGatewayStatus(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          model.TransactionStatus
		ok            bool
	}{
		{"capture", "accept", model.TransactionSuccess, true},
		{"capture", "challenge", model.TransactionPending, false},
		{"settlement", "", model.TransactionSuccess, true},
		{"cancel", "", model.TransactionFailed, true},
		{"deny", "", model.TransactionFailed, true},
		{"expire", "", model.TransactionFailed, true},
		{"pending", "", model.TransactionPending, true},
		{"refund", "", model.TransactionPending, false},
		{"SETTLEMENT", "", model.TransactionSuccess, true},
	}
	for _, tc := range cases {
		got, ok := MapGatewayStatus(model.TransactionPending, tc.status, tc.fraud)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s/%s: got %s %v, want %s %v", tc.status, tc.fraud, got, ok, tc.want, tc.ok)
		}
	}
}

func TestVerifySignature(t *testing.T) {
	n := signed("SOAL-1", "settlement", "50000.00")
	if !VerifySignature(n, testServerKey, "", true) {
		t.Fatal("valid signature rejected")
	}
	n.SignatureKey = strings.ToUpper(n.SignatureKey)
	if !VerifySignature(n, testServerKey, "", true) {
		t.Fatal("signature compare should ignore case")
	}
	n.GrossAmount = "1.00"
	if VerifySignature(n, testServerKey, "", true) {
		t.Fatal("tampered amount accepted")
	}

	n.SignatureKey = "bypass-dev"
	if !VerifySignature(n, testServerKey, "bypass-dev", false) {
		t.Fatal("bypass should work outside production")
	}
	if VerifySignature(n, testServerKey, "bypass-dev", true) {
		t.Fatal("bypass must not work in production")
	}
}

func TestGenOrderID(t *testing.T) {
	id := GenOrderID(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC))
	if !strings.HasPrefix(id, "SOAL-20240309-140507-") || len(id) != len("SOAL-20240309-140507-")+8 {
		t.Fatalf("order id %q", id)
	}
	if GenOrderID(time.Now()) == GenOrderID(time.Now()) {
		t.Fatal("order ids should be unique")
	}
}

func TestCheckout_PaidPackage(t *testing.T) {
	f := newFixture(t)
	pkg := f.seedPackage(t, 100000, 25000)

	res, err := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Subscription != nil {
		t.Fatal("paid checkout must not activate")
	}
	if len(f.snap.reqs) != 1 || f.snap.reqs[0].AmountIDR != 75000 {
		t.Fatalf("snap request %+v", f.snap.reqs)
	}

	trx := f.reload(t, res.Transaction.TransactionID)
	if trx.TransactionStatus != model.TransactionPending || trx.TransactionAmountIDR != 75000 {
		t.Fatalf("trx %+v", trx)
	}
	if trx.TransactionSnapToken == nil || *trx.TransactionSnapToken != "tok-"+trx.TransactionID {
		t.Fatal("snap token not stored")
	}
}

func TestCheckout_FreePackageActivatesImmediately(t *testing.T) {
	f := newFixture(t)
	pkg := f.seedPackage(t, 20000, 50000)

	res, err := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	f.svc.Wait()

	if res.Subscription == nil || res.Transaction.TransactionStatus != model.TransactionSuccess {
		t.Fatalf("free checkout should succeed: %+v", res)
	}
	if len(f.snap.reqs) != 0 {
		t.Fatal("free checkout must not call the gateway")
	}
	if f.grants(t) != 1 {
		t.Fatal("expected 1 grant")
	}
	if f.mail.count() != 1 || f.mail.sent[0].TotalIDR != 0 {
		t.Fatalf("invoice %+v", f.mail.sent)
	}
}

func TestCheckout_Errors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Checkout(context.Background(), f.user.ID, uuid.New()); statusCode(err) != fiber.StatusNotFound {
		t.Fatalf("unknown package: %v", err)
	}

	inactive := f.seedPackage(t, 10000, 0)
	f.db.Model(inactive).Update("package_status", packageModel.PackageStatusInactive)
	if _, err := f.svc.Checkout(context.Background(), f.user.ID, inactive.PackageID); statusCode(err) != fiber.StatusNotFound {
		t.Fatalf("inactive package: %v", err)
	}

	pkg := f.seedPackage(t, 10000, 0)
	f.snap.err = errors.New("midtrans down")
	_, err := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	if statusCode(err) != fiber.StatusBadGateway {
		t.Fatalf("gateway failure: %v", err)
	}
	var failed int64
	f.db.Model(&model.TransactionModel{}).Where("transaction_status = ?", model.TransactionFailed).Count(&failed)
	if failed != 1 {
		t.Fatalf("expected failed transaction recorded, got %d", failed)
	}
}

func TestNotification_SettlementActivatesOnce(t *testing.T) {
	f := newFixture(t)
	pkg := f.seedPackage(t, 50000, 0)
	res, err := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	if err != nil {
		t.Fatal(err)
	}
	orderID := res.Transaction.TransactionID
	n := signed(orderID, "settlement", "50000.00")

	out, err := f.svc.HandleNotification(context.Background(), n, map[string]string{"Content-Type": "application/json"}, nil)
	if err != nil {
		t.Fatalf("notification: %v", err)
	}
	if !out.Changed || !out.Activated || out.Status != model.TransactionSuccess {
		t.Fatalf("result %+v", out)
	}

	// replay dari gateway
	out, err = f.svc.HandleNotification(context.Background(), n, nil, nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if out.Activated {
		t.Fatal("replay must not create a second grant")
	}
	f.svc.Wait()

	if f.grants(t) != 1 {
		t.Fatalf("expected 1 grant, got %d", f.grants(t))
	}
	if f.mail.count() != 1 {
		t.Fatalf("expected 1 invoice, got %d", f.mail.count())
	}
	inv := f.mail.sent[0]
	if inv.InvoiceNo != orderID || inv.CustomerEmail != f.user.Email || inv.PaymentMethod != "bank_transfer" {
		t.Fatalf("invoice %+v", inv)
	}

	trx := f.reload(t, orderID)
	if trx.TransactionPaidAt == nil || trx.TransactionGatewayRef == nil || *trx.TransactionGatewayRef != "mid-"+orderID {
		t.Fatalf("trx %+v", trx)
	}

	var events int64
	f.db.Model(&model.PaymentGatewayEventModel{}).
		Where("gateway_event_external_id = ? AND gateway_event_status = ?", orderID, model.GatewayEventProcessed).
		Count(&events)
	if events != 2 {
		t.Fatalf("expected 2 processed events, got %d", events)
	}
}

func TestNotification_FailureAndNoDowngrade(t *testing.T) {
	f := newFixture(t)
	pkg := f.seedPackage(t, 50000, 0)
	res, _ := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	orderID := res.Transaction.TransactionID

	if _, err := f.svc.HandleNotification(context.Background(), signed(orderID, "settlement", "50000.00"), nil, nil); err != nil {
		t.Fatal(err)
	}
	out, err := f.svc.HandleNotification(context.Background(), signed(orderID, "expire", "50000.00"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Changed || out.Status != model.TransactionSuccess {
		t.Fatalf("success must not be downgraded: %+v", out)
	}

	res2, _ := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	out, err = f.svc.HandleNotification(context.Background(), signed(res2.Transaction.TransactionID, "deny", "50000.00"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != model.TransactionFailed || out.Activated {
		t.Fatalf("deny: %+v", out)
	}

	// failed itu terminal: pending / settlement berikutnya tidak membuka lagi transaksi
	res3, _ := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)
	expired := res3.Transaction.TransactionID
	if _, err := f.svc.HandleNotification(context.Background(), signed(expired, "expire", "50000.00"), nil, nil); err != nil {
		t.Fatal(err)
	}
	for _, st := range []string{"pending", "settlement"} {
		out, err = f.svc.HandleNotification(context.Background(), signed(expired, st, "50000.00"), nil, nil)
		if err != nil {
			t.Fatalf("%s after expire: %v", st, err)
		}
		if out.Changed || out.Activated || out.Status != model.TransactionFailed {
			t.Fatalf("%s after expire reopened the transaction: %+v", st, out)
		}
	}
	if got := f.reload(t, expired).TransactionStatus; got != model.TransactionFailed {
		t.Fatalf("expired transaction status = %s, want failed", got)
	}

	f.svc.Wait()
	if f.grants(t) != 1 {
		t.Fatalf("expected 1 grant, got %d", f.grants(t))
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	name := strings.Repeat("é", 30) // 60 byte
	got := truncate(name, 50)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 30 {
		t.Fatalf("30 rune <= 50 must stay whole, got %d runes", n)
	}
	if got := truncate(strings.Repeat("界", 60), 50); utf8.RuneCountInString(got) != 50 || !utf8.ValidString(got) {
		t.Fatalf("expected 50 valid runes, got %q", got)
	}
	if got := truncate("Paket UTBK", 50); got != "Paket UTBK" {
		t.Fatalf("short name changed: %q", got)
	}
}

func TestNotification_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.HandleNotification(ctx, signed("SOAL-UNKNOWN", "settlement", "1000.00"), nil, nil)
	if statusCode(err) != fiber.StatusNotFound {
		t.Fatalf("unknown order: %v", err)
	}
	var ignored int64
	f.db.Model(&model.PaymentGatewayEventModel{}).Where("gateway_event_status = ?", model.GatewayEventIgnored).Count(&ignored)
	if ignored != 1 {
		t.Fatalf("unknown order should be logged as ignored, got %d", ignored)
	}

	pkg := f.seedPackage(t, 50000, 0)
	res, _ := f.svc.Checkout(ctx, f.user.ID, pkg.PackageID)
	bad := signed(res.Transaction.TransactionID, "settlement", "50000.00")
	bad.SignatureKey = "deadbeef"
	if _, err := f.svc.HandleNotification(ctx, bad, nil, nil); statusCode(err) != fiber.StatusUnauthorized {
		t.Fatalf("bad signature: %v", err)
	}
	if got := f.reload(t, res.Transaction.TransactionID).TransactionStatus; got != model.TransactionPending {
		t.Fatalf("status changed despite bad signature: %s", got)
	}
	if f.grants(t) != 0 {
		t.Fatal("no grant expected")
	}
}

func TestNotification_InvoiceFailureIsNotPropagated(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("smtp down")
	pkg := f.seedPackage(t, 50000, 0)
	res, _ := f.svc.Checkout(context.Background(), f.user.ID, pkg.PackageID)

	// capture tanpa fraud accept: status tetap
	out, err := f.svc.HandleNotification(context.Background(), signed(res.Transaction.TransactionID, "capture", "50000.00"), nil, nil)
	if err != nil || out.Changed || out.Status != model.TransactionPending {
		t.Fatalf("challenge capture: %+v %v", out, err)
	}

	n := signed(res.Transaction.TransactionID, "capture", "50000.00")
	n.FraudStatus = "accept"
	out, err = f.svc.HandleNotification(context.Background(), n, nil, nil)
	f.svc.Wait()
	if err != nil || !out.Activated {
		t.Fatalf("capture accept: %+v %v", out, err)
	}
	if f.mail.count() != 1 {
		t.Fatal("invoice send should be attempted")
	}
}

func TestSetStatus_ManualConfirmationAndSuspend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pkg := f.seedPackage(t, 50000, 0)
	res, _ := f.svc.Checkout(ctx, f.user.ID, pkg.PackageID)
	id := res.Transaction.TransactionID

	if _, err := f.svc.SetStatus(ctx, id, model.TransactionStatus("lunas"), ""); statusCode(err) != fiber.StatusBadRequest {
		t.Fatalf("invalid status: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, id, model.TransactionPending, ""); statusCode(err) != fiber.StatusConflict {
		t.Fatalf("same status: %v", err)
	}

	ch, err := f.svc.SetStatus(ctx, id, model.TransactionSuccess, "transfer manual BCA")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	f.svc.Wait()
	if !ch.Created || ch.Subscription == nil {
		t.Fatal("manual confirmation should activate")
	}
	trx := f.reload(t, id)
	if trx.TransactionPaymentMethod == nil || *trx.TransactionPaymentMethod != PaymentMethodManual {
		t.Fatal("payment method should default to manual")
	}
	if !strings.Contains(string(trx.TransactionMeta), "transfer manual BCA") {
		t.Fatalf("note not stored in meta: %s", trx.TransactionMeta)
	}

	if _, err := f.svc.SetStatus(ctx, id, model.TransactionSuspended, ""); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	var sub subModel.SubscriptionModel
	f.db.First(&sub, "subscription_transaction_id = ?", id)
	if sub.SubscriptionStatus != subModel.SubscriptionInactive {
		t.Fatalf("grant should be inactive after suspend, got %s", sub.SubscriptionStatus)
	}

	// gateway tidak boleh menghidupkan transaksi yang di-suspend
	out, err := f.svc.HandleNotification(ctx, signed(id, "settlement", "50000.00"), nil, nil)
	if err != nil || out.Changed || out.Status != model.TransactionSuspended {
		t.Fatalf("suspended transaction touched by webhook: %+v %v", out, err)
	}
}

func TestGetOwnAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pkg := f.seedPackage(t, 50000, 0)
	a, _ := f.svc.Checkout(ctx, f.user.ID, pkg.PackageID)
	if _, err := f.svc.Checkout(ctx, f.user.ID, pkg.PackageID); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.GetOwn(ctx, a.Transaction.TransactionID, uuid.New()); statusCode(err) != fiber.StatusNotFound {
		t.Fatalf("other user's transaction: %v", err)
	}
	got, err := f.svc.GetOwn(ctx, a.Transaction.TransactionID, f.user.ID)
	if err != nil || got.Package == nil || got.Package.PackageID != pkg.PackageID {
		t.Fatalf("own transaction: %+v %v", got, err)
	}

	rows, total, err := f.svc.List(ctx, ListFilter{SubscriberID: &f.user.ID, Status: model.TransactionPending, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 1 {
		t.Fatalf("total=%d rows=%d", total, len(rows))
	}
}
