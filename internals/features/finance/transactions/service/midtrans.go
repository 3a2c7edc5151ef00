package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

/* =========================================================
   Snap
========================================================= */

type SnapRequest struct {
	OrderID       string
	AmountIDR     int
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
}

type SnapResult struct {
	Token       string
	RedirectURL string
}

// SnapCreator dipisah dari Midtrans supaya checkout bisa dites tanpa gateway.
type SnapCreator interface {
	CreateSnap(req SnapRequest) (*SnapResult, error)
}

type MidtransSnap struct {
	client snap.Client
}

// InitMidtrans dipanggil saat bootstrap. useProduction=false -> Sandbox.
func InitMidtrans(serverKey string, useProduction bool) *MidtransSnap {
	s := &MidtransSnap{}
	if useProduction {
		s.client.New(serverKey, midtrans.Production)
	} else {
		s.client.New(serverKey, midtrans.Sandbox)
	}
	return s
}

func (s *MidtransSnap) CreateSnap(r SnapRequest) (*SnapResult, error) {
	if r.AmountIDR <= 0 {
		return nil, errors.New("amount harus > 0")
	}
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  r.OrderID,
			GrossAmt: int64(r.AmountIDR),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: r.CustomerName,
			Email: r.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       r.ItemID,
				Name:     truncate(r.ItemName, 50),
				Price:    int64(r.AmountIDR),
				Qty:      1,
				Category: "Paket Soal",
			},
		},
	}

	resp, mErr := s.client.CreateTransaction(req)
	if mErr != nil {
		return nil, mErr
	}
	return &SnapResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// GenOrderID SOAL-YYYYMMDD-HHMMSS-XXXXXXXX
func GenOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "SOAL-" + now.Format("20060102-150405") + "-" + suffix
}

// truncate memotong per rune supaya nama multi-byte tetap UTF-8 valid.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
