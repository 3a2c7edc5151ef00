package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	packageModel "soalku_backend/internals/features/exams/packages/model"
	subModel "soalku_backend/internals/features/finance/subscriptions/model"
	subService "soalku_backend/internals/features/finance/subscriptions/service"
	"soalku_backend/internals/features/finance/transactions/model"
	userModel "soalku_backend/internals/features/users/user/model"
	"soalku_backend/internals/helpers/dbtime"
	"soalku_backend/internals/helpers/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = fiber.NewError(fiber.StatusNotFound, "Transaksi tidak ditemukan")
	ErrPackageNotFound     = fiber.NewError(fiber.StatusNotFound, "Paket tidak ditemukan")
	ErrInvalidSignature    = fiber.NewError(fiber.StatusUnauthorized, "Signature tidak valid")
	ErrGatewayDisabled     = fiber.NewError(fiber.StatusServiceUnavailable, "Pembayaran belum dikonfigurasi")
)

const (
	PaymentMethodFree   = "free"
	PaymentMethodManual = "manual"
)

// InvoiceNotifier diimplementasikan mailer.InvoiceMailer dan rabbitmq.InvoicePublisher.
type InvoiceNotifier interface {
	SendInvoice(ctx context.Context, inv mailer.Invoice) error
}

type TransactionService struct {
	DB        *gorm.DB
	Snap      SnapCreator
	Activator *subService.Activator
	Notifier  InvoiceNotifier
	Clock     dbtime.Clock
	Location  *time.Location

	ServerKey       string
	BypassSignature string
	Production      bool

	NotifyTimeout time.Duration
	pending       sync.WaitGroup
}

type Options struct {
	Snap            SnapCreator
	Notifier        InvoiceNotifier
	Location        *time.Location
	ServerKey       string
	BypassSignature string
	Production      bool
}

func NewTransactionService(db *gorm.DB, opt Options) *TransactionService {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{
		DB:              db,
		Snap:            opt.Snap,
		Activator:       subService.NewActivator(loc),
		Notifier:        opt.Notifier,
		Clock:           dbtime.SystemClock,
		Location:        loc,
		ServerKey:       opt.ServerKey,
		BypassSignature: opt.BypassSignature,
		Production:      opt.Production,
		NotifyTimeout:   30 * time.Second,
	}
}

func (s *TransactionService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// Wait menunggu pengiriman invoice yang masih berjalan (graceful shutdown & test).
func (s *TransactionService) Wait() { s.pending.Wait() }

/* =========================
   Checkout
========================= */

type CheckoutResult struct {
	Transaction  model.TransactionModel
	Subscription *subModel.SubscriptionModel
}

type transactionMeta struct {
	PackageName string `json:"package_name"`
	PriceIDR    int    `json:"price_idr"`
	DiscountIDR int    `json:"discount_idr"`
	Note        string `json:"note,omitempty"`
}

func (s *TransactionService) Checkout(ctx context.Context, subscriberID, packageID uuid.UUID) (*CheckoutResult, error) {
	db := s.DB.WithContext(ctx)

	var user userModel.UserModel
	if err := db.First(&user, "id = ?", subscriberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User tidak ditemukan")
		}
		return nil, err
	}

	var pkg packageModel.PackageModel
	if err := db.First(&pkg, "package_id = ? AND package_status = ?", packageID, packageModel.PackageStatusActive).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	now := s.now()
	meta, _ := json.Marshal(transactionMeta{
		PackageName: pkg.PackageName,
		PriceIDR:    pkg.PackagePriceIDR,
		DiscountIDR: pkg.PackageDiscountIDR,
	})
	trx := model.TransactionModel{
		TransactionID:           GenOrderID(now.In(s.Location)),
		TransactionSubscriberID: user.ID,
		TransactionPackageID:    pkg.PackageID,
		TransactionAmountIDR:    pkg.PayableIDR(),
		TransactionStatus:       model.TransactionPending,
		TransactionMeta:         datatypes.JSON(meta),
	}

	if trx.TransactionAmountIDR == 0 {
		return s.checkoutFree(ctx, trx, &pkg, &user)
	}
	if s.Snap == nil {
		return nil, ErrGatewayDisabled
	}

	if err := db.Create(&trx).Error; err != nil {
		return nil, err
	}

	snapRes, err := s.Snap.CreateSnap(SnapRequest{
		OrderID:       trx.TransactionID,
		AmountIDR:     trx.TransactionAmountIDR,
		ItemID:        pkg.PackageID.String(),
		ItemName:      pkg.PackageName,
		CustomerName:  user.UserName,
		CustomerEmail: user.Email,
	})
	if err != nil {
		log.Printf("[TRANSACTION] snap gagal order=%s: %v", trx.TransactionID, err)
		if uErr := db.Model(&model.TransactionModel{}).
			Where("transaction_id = ?", trx.TransactionID).
			Update("transaction_status", model.TransactionFailed).Error; uErr != nil {
			log.Printf("[TRANSACTION] gagal tandai failed order=%s: %v", trx.TransactionID, uErr)
		}
		return nil, fiber.NewError(fiber.StatusBadGateway, "Gagal membuat sesi pembayaran")
	}

	trx.TransactionSnapToken = &snapRes.Token
	trx.TransactionRedirectURL = &snapRes.RedirectURL
	if err := db.Model(&model.TransactionModel{}).
		Where("transaction_id = ?", trx.TransactionID).
		Updates(map[string]any{
			"transaction_snap_token":   snapRes.Token,
			"transaction_redirect_url": snapRes.RedirectURL,
		}).Error; err != nil {
		return nil, err
	}

	log.Printf("[TRANSACTION] checkout order=%s subscriber=%s amount=%d", trx.TransactionID, user.ID, trx.TransactionAmountIDR)
	return &CheckoutResult{Transaction: trx}, nil
}

func (s *TransactionService) checkoutFree(ctx context.Context, trx model.TransactionModel, pkg *packageModel.PackageModel, user *userModel.UserModel) (*CheckoutResult, error) {
	now := s.now()
	method := PaymentMethodFree
	trx.TransactionStatus = model.TransactionSuccess
	trx.TransactionPaymentMethod = &method
	trx.TransactionPaidAt = &now

	var act *subService.ActivateResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}
		var err error
		act, err = s.Activator.Activate(ctx, tx, subService.ActivateInput{
			SubscriberID:  trx.TransactionSubscriberID,
			Package:       pkg,
			TransactionID: &trx.TransactionID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TRANSACTION] paket gratis order=%s langsung aktif", trx.TransactionID)
	if act.Created {
		s.dispatchInvoice(buildInvoice(&trx, pkg, user, &act.Subscription))
	}
	return &CheckoutResult{Transaction: trx, Subscription: &act.Subscription}, nil
}

/* =========================
   Webhook
========================= */

type WebhookResult struct {
	OrderID   string                  `json:"order_id"`
	Status    model.TransactionStatus `json:"transaction_status"`
	Changed   bool                    `json:"changed"`
	Activated bool                    `json:"activated"`
}

// HandleNotification: log event -> verifikasi -> update status (+ aktivasi) dalam satu transaksi DB.
// Invoice dikirim async setelah commit, hanya kalau grant baru dibuat.
func (s *TransactionService) HandleNotification(ctx context.Context, n Notification, headers map[string]string, rawPayload []byte) (*WebhookResult, error) {
	ev, err := s.logGatewayEvent(ctx, n, headers, rawPayload)
	if err != nil {
		return nil, err
	}

	if !VerifySignature(n, s.ServerKey, s.BypassSignature, s.Production) {
		s.finishEvent(ctx, ev, model.GatewayEventFailed, "invalid signature")
		log.Printf("[WEBHOOK] signature tidak valid order=%s", n.OrderID)
		return nil, ErrInvalidSignature
	}

	var (
		out      WebhookResult
		trx      model.TransactionModel
		pkg      packageModel.PackageModel
		activate *subService.ActivateResult
	)
	out.OrderID = n.OrderID

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Package").First(&trx, "transaction_id = ?", n.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if trx.Package != nil {
			pkg = *trx.Package
		}
		out.Status = trx.TransactionStatus

		next, ok := MapGatewayStatus(trx.TransactionStatus, n.TransactionStatus, n.FraudStatus)
		if !ok || !allowGatewayTransition(trx.TransactionStatus, next) {
			return nil
		}

		updates := map[string]any{"transaction_status": next}
		if n.PaymentType != "" {
			updates["transaction_payment_method"] = n.PaymentType
		}
		if n.TransactionID != "" {
			updates["transaction_gateway_ref"] = n.TransactionID
		}
		if next == model.TransactionSuccess && trx.TransactionPaidAt == nil {
			paidAt := s.now()
			updates["transaction_paid_at"] = paidAt
			trx.TransactionPaidAt = &paidAt
		}

		res := tx.Model(&model.TransactionModel{}).
			Where("transaction_id = ? AND transaction_status = ?", trx.TransactionID, trx.TransactionStatus).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Status transaksi berubah bersamaan, coba lagi")
		}
		out.Changed = next != trx.TransactionStatus
		out.Status = next
		trx.TransactionStatus = next
		if n.PaymentType != "" {
			pt := n.PaymentType
			trx.TransactionPaymentMethod = &pt
		}

		if next != model.TransactionSuccess {
			return nil
		}
		var err error
		activate, err = s.Activator.Activate(ctx, tx, subService.ActivateInput{
			SubscriberID:  trx.TransactionSubscriberID,
			Package:       &pkg,
			TransactionID: &trx.TransactionID,
		})
		return err
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code == fiber.StatusNotFound {
			s.finishEvent(ctx, ev, model.GatewayEventIgnored, "order_id tidak dikenal")
		} else {
			s.finishEvent(ctx, ev, model.GatewayEventFailed, err.Error())
		}
		return nil, err
	}

	evStatus := model.GatewayEventProcessed
	if !out.Changed && activate == nil {
		evStatus = model.GatewayEventIgnored
	}
	s.finishEvent(ctx, ev, evStatus, "")

	if activate != nil && activate.Created {
		out.Activated = true
		var user userModel.UserModel
		if err := s.DB.WithContext(ctx).First(&user, "id = ?", trx.TransactionSubscriberID).Error; err != nil {
			log.Printf("[WEBHOOK] user %s tidak ditemukan untuk invoice: %v", trx.TransactionSubscriberID, err)
		} else {
			s.dispatchInvoice(buildInvoice(&trx, &pkg, &user, &activate.Subscription))
		}
	}

	log.Printf("[WEBHOOK] order=%s gateway=%s -> %s changed=%v activated=%v",
		n.OrderID, n.TransactionStatus, out.Status, out.Changed, out.Activated)
	return &out, nil
}

// allowGatewayTransition: notifikasi gateway tidak menurunkan transaksi yang sudah success,
// tidak membuka lagi transaksi failed (terminal), dan tidak menyentuh transaksi yang di-suspend admin.
// Replay success tetap lewat (aktivasi idempoten). Koreksi manual lewat SetStatus.
func allowGatewayTransition(cur, next model.TransactionStatus) bool {
	switch cur {
	case model.TransactionSuspended, model.TransactionFailed:
		return false
	case model.TransactionSuccess:
		return next == model.TransactionSuccess
	}
	return true
}

func (s *TransactionService) logGatewayEvent(ctx context.Context, n Notification, headers map[string]string, raw []byte) (*model.PaymentGatewayEventModel, error) {
	headersJSON, _ := json.Marshal(headers)
	payload := raw
	if len(payload) == 0 || !json.Valid(payload) {
		payload, _ = json.Marshal(n)
	}

	ev := model.PaymentGatewayEventModel{
		GatewayEventProvider:    model.GatewayProviderMidtrans,
		GatewayEventType:        strPtr(n.TransactionStatus),
		GatewayEventExternalID:  strPtr(n.OrderID),
		GatewayEventExternalRef: strPtr(n.TransactionID),
		GatewayEventHeaders:     datatypes.JSON(headersJSON),
		GatewayEventPayload:     datatypes.JSON(payload),
		GatewayEventSignature:   strPtr(n.SignatureKey),
		GatewayEventStatus:      model.GatewayEventReceived,
		GatewayEventReceivedAt:  s.now(),
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *TransactionService) finishEvent(ctx context.Context, ev *model.PaymentGatewayEventModel, st model.GatewayEventStatus, errMsg string) {
	updates := map[string]any{
		"gateway_event_status":       st,
		"gateway_event_processed_at": s.now(),
	}
	if errMsg != "" {
		updates["gateway_event_error"] = errMsg
	}
	if st == model.GatewayEventProcessed || st == model.GatewayEventIgnored {
		if ev.GatewayEventExternalID != nil {
			var n int64
			s.DB.WithContext(ctx).Model(&model.TransactionModel{}).
				Where("transaction_id = ?", *ev.GatewayEventExternalID).Count(&n)
			if n > 0 {
				updates["gateway_event_transaction_id"] = *ev.GatewayEventExternalID
			}
		}
	}
	if err := s.DB.WithContext(ctx).Model(&model.PaymentGatewayEventModel{}).
		Where("gateway_event_id = ?", ev.GatewayEventID).
		Updates(updates).Error; err != nil {
		log.Printf("[WEBHOOK] gagal update gateway event %s: %v", ev.GatewayEventID, err)
	}
}

/* =========================
   Admin: status manual
========================= */

type StatusChange struct {
	Transaction  model.TransactionModel
	Subscription *subModel.SubscriptionModel
	Created      bool
}

// SetStatus konfirmasi manual oleh admin.
// success -> aktivasi; suspended/failed -> grant dari transaksi ini dinonaktifkan.
func (s *TransactionService) SetStatus(ctx context.Context, id string, next model.TransactionStatus, note string) (*StatusChange, error) {
	if !next.Valid() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Status tidak valid")
	}

	var (
		out StatusChange
		pkg packageModel.PackageModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trx, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if trx.TransactionStatus == next {
			return fiber.NewError(fiber.StatusConflict, "Status transaksi sudah "+string(next))
		}
		if trx.Package != nil {
			pkg = *trx.Package
		}

		updates := map[string]any{"transaction_status": next}
		if next == model.TransactionSuccess {
			if trx.TransactionPaidAt == nil {
				paidAt := s.now()
				updates["transaction_paid_at"] = paidAt
				trx.TransactionPaidAt = &paidAt
			}
			if trx.TransactionPaymentMethod == nil {
				updates["transaction_payment_method"] = PaymentMethodManual
				m := PaymentMethodManual
				trx.TransactionPaymentMethod = &m
			}
		}
		if note = strings.TrimSpace(note); note != "" {
			var meta map[string]any
			_ = json.Unmarshal(trx.TransactionMeta, &meta)
			if meta == nil {
				meta = map[string]any{}
			}
			meta["note"] = note
			b, _ := json.Marshal(meta)
			updates["transaction_meta"] = datatypes.JSON(b)
			trx.TransactionMeta = datatypes.JSON(b)
		}

		res := tx.Model(&model.TransactionModel{}).
			Where("transaction_id = ? AND transaction_status = ?", trx.TransactionID, trx.TransactionStatus).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Status transaksi berubah bersamaan, coba lagi")
		}
		trx.TransactionStatus = next
		out.Transaction = *trx

		switch next {
		case model.TransactionSuccess:
			act, err := s.Activator.Activate(ctx, tx, subService.ActivateInput{
				SubscriberID:  trx.TransactionSubscriberID,
				Package:       &pkg,
				TransactionID: &trx.TransactionID,
			})
			if err != nil {
				return err
			}
			out.Subscription = &act.Subscription
			out.Created = act.Created
		case model.TransactionSuspended, model.TransactionFailed:
			if err := tx.Model(&subModel.SubscriptionModel{}).
				Where("subscription_transaction_id = ? AND subscription_status = ?", trx.TransactionID, subModel.SubscriptionActive).
				Update("subscription_status", subModel.SubscriptionInactive).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, subService.ErrInvalidDuration) {
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return nil, err
	}

	log.Printf("[TRANSACTION] admin set order=%s -> %s", id, next)
	if out.Created {
		var user userModel.UserModel
		if err := s.DB.WithContext(ctx).First(&user, "id = ?", out.Transaction.TransactionSubscriberID).Error; err == nil {
			s.dispatchInvoice(buildInvoice(&out.Transaction, &pkg, &user, out.Subscription))
		}
	}
	return &out, nil
}

/* =========================
   Query
========================= */

func (s *TransactionService) get(db *gorm.DB, id string) (*model.TransactionModel, error) {
	var trx model.TransactionModel
	if err := db.Preload("Package").First(&trx, "transaction_id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (*model.TransactionModel, error) {
	return s.get(s.DB.WithContext(ctx), id)
}

// GetOwn transaksi milik orang lain dibalas 404.
func (s *TransactionService) GetOwn(ctx context.Context, id string, subscriberID uuid.UUID) (*model.TransactionModel, error) {
	trx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if trx.TransactionSubscriberID != subscriberID {
		return nil, ErrTransactionNotFound
	}
	return trx, nil
}

type ListFilter struct {
	SubscriberID *uuid.UUID
	PackageID    *uuid.UUID
	Status       model.TransactionStatus
	From, To     *time.Time
	Offset       int
	Limit        int
}

func (s *TransactionService) List(ctx context.Context, f ListFilter) ([]model.TransactionModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.TransactionModel{})
	if f.SubscriberID != nil {
		q = q.Where("transaction_subscriber_id = ?", *f.SubscriberID)
	}
	if f.PackageID != nil {
		q = q.Where("transaction_package_id = ?", *f.PackageID)
	}
	if f.Status != "" {
		q = q.Where("transaction_status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("transaction_created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("transaction_created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var rows []model.TransactionModel
	if err := q.Preload("Package").
		Order("transaction_created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

/* =========================
   Invoice
========================= */

func buildInvoice(trx *model.TransactionModel, pkg *packageModel.PackageModel, user *userModel.UserModel, sub *subModel.SubscriptionModel) mailer.Invoice {
	inv := mailer.Invoice{
		InvoiceNo:     trx.TransactionID,
		CustomerName:  user.UserName,
		CustomerEmail: user.Email,
		PackageName:   pkg.PackageName,
		TotalIDR:      trx.TransactionAmountIDR,
	}

	var meta transactionMeta
	if err := json.Unmarshal(trx.TransactionMeta, &meta); err == nil && meta.PriceIDR > 0 {
		inv.PriceIDR = meta.PriceIDR
		inv.DiscountIDR = meta.DiscountIDR
	} else {
		inv.PriceIDR = pkg.PackagePriceIDR
		inv.DiscountIDR = pkg.PackageDiscountIDR
	}
	if inv.DiscountIDR > inv.PriceIDR {
		inv.DiscountIDR = inv.PriceIDR
	}
	if trx.TransactionPaymentMethod != nil {
		inv.PaymentMethod = *trx.TransactionPaymentMethod
	}
	if trx.TransactionPaidAt != nil {
		inv.PaidAt = *trx.TransactionPaidAt
	}
	if sub != nil {
		inv.ValidFrom = sub.SubscriptionStartDate
		inv.ValidUntil = sub.SubscriptionEndDate
	}
	return inv
}

// dispatchInvoice best-effort: error hanya dicatat.
func (s *TransactionService) dispatchInvoice(inv mailer.Invoice) {
	if s.Notifier == nil {
		log.Printf("[INVOICE] notifier tidak diset, invoice %s tidak dikirim", inv.InvoiceNo)
		return
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[INVOICE] panic kirim invoice %s: %v", inv.InvoiceNo, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.Notifier.SendInvoice(ctx, inv); err != nil {
			log.Printf("[INVOICE] gagal kirim invoice %s ke %s: %v", inv.InvoiceNo, inv.CustomerEmail, err)
			return
		}
		log.Printf("[INVOICE] invoice %s terkirim", inv.InvoiceNo)
	}()
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
