package model

import (
	"time"

	packageModel "soalku_backend/internals/features/exams/packages/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionSuccess   TransactionStatus = "success"
	TransactionFailed    TransactionStatus = "failed"
	TransactionSuspended TransactionStatus = "suspended"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionSuccess, TransactionFailed, TransactionSuspended:
		return true
	}
	return false
}

// TransactionModel pembelian paket. ID = order_id yang dikirim ke gateway.
type TransactionModel struct {
	TransactionID            string            `gorm:"column:transaction_id;type:varchar(64);primaryKey" json:"transaction_id"`
	TransactionSubscriberID  uuid.UUID         `gorm:"column:transaction_subscriber_id;type:uuid;not null;index" json:"transaction_subscriber_id"`
	TransactionPackageID     uuid.UUID         `gorm:"column:transaction_package_id;type:uuid;not null;index" json:"transaction_package_id"`
	TransactionAmountIDR     int               `gorm:"column:transaction_amount_idr;not null" json:"transaction_amount_idr"`
	TransactionStatus        TransactionStatus `gorm:"column:transaction_status;type:varchar(12);not null;default:'pending';index" json:"transaction_status"`
	TransactionPaymentMethod *string           `gorm:"column:transaction_payment_method" json:"transaction_payment_method,omitempty"`
	TransactionSnapToken     *string           `gorm:"column:transaction_snap_token" json:"transaction_snap_token,omitempty"`
	TransactionRedirectURL   *string           `gorm:"column:transaction_redirect_url" json:"transaction_redirect_url,omitempty"`
	TransactionGatewayRef    *string           `gorm:"column:transaction_gateway_ref" json:"transaction_gateway_ref,omitempty"`
	TransactionPaidAt        *time.Time        `gorm:"column:transaction_paid_at" json:"transaction_paid_at,omitempty"`
	TransactionMeta          datatypes.JSON    `gorm:"column:transaction_meta" json:"transaction_meta,omitempty"`
	TransactionCreatedAt     time.Time         `gorm:"column:transaction_created_at;autoCreateTime" json:"transaction_created_at"`
	TransactionUpdatedAt     time.Time         `gorm:"column:transaction_updated_at;autoUpdateTime" json:"transaction_updated_at"`

	Package *packageModel.PackageModel `gorm:"foreignKey:TransactionPackageID;references:PackageID;constraint:OnDelete:RESTRICT" json:"package,omitempty"`
}

func (TransactionModel) TableName() string { return "transactions" }
