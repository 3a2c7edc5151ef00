package dto

import (
	"time"

	"soalku_backend/internals/features/finance/subscriptions/model"

	"github.com/google/uuid"
)

// ManualGrantRequest: admin memberi akses paket tanpa transaksi
type ManualGrantRequest struct {
	SubscriberID uuid.UUID `json:"subscriber_id" validate:"required"`
	PackageID    uuid.UUID `json:"package_id" validate:"required"`
}

type SubscriptionResponse struct {
	SubscriptionID            uuid.UUID `json:"subscription_id"`
	SubscriptionSubscriberID  uuid.UUID `json:"subscription_subscriber_id"`
	SubscriptionPackageID     uuid.UUID `json:"subscription_package_id"`
	PackageName               string    `json:"package_name,omitempty"`
	SubscriptionTransactionID *string   `json:"subscription_transaction_id,omitempty"`
	SubscriptionSubscribedAt  time.Time `json:"subscription_subscribed_at"`
	SubscriptionStartDate     string    `json:"subscription_start_date"`
	SubscriptionEndDate       string    `json:"subscription_end_date"`
	SubscriptionStatus        string    `json:"subscription_status"`
}

func FromModel(m *model.SubscriptionModel) SubscriptionResponse {
	out := SubscriptionResponse{
		SubscriptionID:            m.SubscriptionID,
		SubscriptionSubscriberID:  m.SubscriptionSubscriberID,
		SubscriptionPackageID:     m.SubscriptionPackageID,
		SubscriptionTransactionID: m.SubscriptionTransactionID,
		SubscriptionSubscribedAt:  m.SubscriptionSubscribedAt,
		SubscriptionStartDate:     m.SubscriptionStartDate.Format("2006-01-02"),
		SubscriptionEndDate:       m.SubscriptionEndDate.Format("2006-01-02"),
		SubscriptionStatus:        string(m.SubscriptionStatus),
	}
	if m.Package != nil {
		out.PackageName = m.Package.PackageName
	}
	return out
}

func FromModels(rows []model.SubscriptionModel) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
