package dto

import (
	"encoding/json"
	"time"

	"soalku_backend/internals/features/finance/transactions/model"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	PackageID uuid.UUID `json:"package_id" validate:"required"`
}

// UpdateStatusRequest konfirmasi manual oleh admin
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending success failed suspended"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

type TransactionResponse struct {
	TransactionID            string          `json:"transaction_id"`
	TransactionSubscriberID  uuid.UUID       `json:"transaction_subscriber_id"`
	TransactionPackageID     uuid.UUID       `json:"transaction_package_id"`
	PackageName              string          `json:"package_name,omitempty"`
	TransactionAmountIDR     int             `json:"transaction_amount_idr"`
	TransactionStatus        string          `json:"transaction_status"`
	TransactionPaymentMethod *string         `json:"transaction_payment_method,omitempty"`
	TransactionSnapToken     *string         `json:"transaction_snap_token,omitempty"`
	TransactionRedirectURL   *string         `json:"transaction_redirect_url,omitempty"`
	TransactionGatewayRef    *string         `json:"transaction_gateway_ref,omitempty"`
	TransactionPaidAt        *time.Time      `json:"transaction_paid_at,omitempty"`
	TransactionMeta          json.RawMessage `json:"transaction_meta,omitempty"`
	TransactionCreatedAt     time.Time       `json:"transaction_created_at"`
	TransactionUpdatedAt     time.Time       `json:"transaction_updated_at"`
}

func FromModel(m *model.TransactionModel) TransactionResponse {
	out := TransactionResponse{
		TransactionID:            m.TransactionID,
		TransactionSubscriberID:  m.TransactionSubscriberID,
		TransactionPackageID:     m.TransactionPackageID,
		TransactionAmountIDR:     m.TransactionAmountIDR,
		TransactionStatus:        string(m.TransactionStatus),
		TransactionPaymentMethod: m.TransactionPaymentMethod,
		TransactionSnapToken:     m.TransactionSnapToken,
		TransactionRedirectURL:   m.TransactionRedirectURL,
		TransactionGatewayRef:    m.TransactionGatewayRef,
		TransactionPaidAt:        m.TransactionPaidAt,
		TransactionCreatedAt:     m.TransactionCreatedAt,
		TransactionUpdatedAt:     m.TransactionUpdatedAt,
	}
	if len(m.TransactionMeta) > 0 {
		out.TransactionMeta = json.RawMessage(m.TransactionMeta)
	}
	if m.Package != nil {
		out.PackageName = m.Package.PackageName
	}
	return out
}

func FromModels(rows []model.TransactionModel) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
