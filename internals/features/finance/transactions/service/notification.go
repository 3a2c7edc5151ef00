package service

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"soalku_backend/internals/features/finance/transactions/model"
)

// Notification payload HTTP notification Midtrans; field lain diabaikan.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	SettlementTime    string `json:"settlement_time"`
}

// Signature SHA512(order_id + status_code + gross_amount + server_key), hex lowercase.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// VerifySignature. bypass hanya berlaku di luar production.
func VerifySignature(n Notification, serverKey, bypass string, production bool) bool {
	got := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if got == "" {
		return false
	}
	if !production && bypass != "" && n.SignatureKey == bypass {
		return true
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// MapGatewayStatus status Midtrans -> status internal.
// ok=false kalau status gateway tidak dikenal atau tidak mengubah apa pun.
func MapGatewayStatus(current model.TransactionStatus, transactionStatus, fraudStatus string) (model.TransactionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture":
		if strings.EqualFold(strings.TrimSpace(fraudStatus), "accept") {
			return model.TransactionSuccess, true
		}
		// challenge: tunggu keputusan fraud berikutnya
		return current, false
	case "settlement":
		return model.TransactionSuccess, true
	case "cancel", "deny", "expire":
		return model.TransactionFailed, true
	case "pending":
		return model.TransactionPending, true
	}
	return current, false
}
