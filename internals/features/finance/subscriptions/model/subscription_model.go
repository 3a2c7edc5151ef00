package model

import (
	"time"

	packageModel "soalku_backend/internals/features/exams/packages/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// SubscriptionModel hak akses paket berbatas waktu.
// (subscriber, package, transaction) unik; grant manual (transaction NULL) tidak terkena index ini.
type SubscriptionModel struct {
	SubscriptionID            uuid.UUID          `gorm:"column:subscription_id;type:uuid;primaryKey" json:"subscription_id"`
	SubscriptionSubscriberID  uuid.UUID          `gorm:"column:subscription_subscriber_id;type:uuid;not null;index;uniqueIndex:uq_subscriptions_source" json:"subscription_subscriber_id"`
	SubscriptionPackageID     uuid.UUID          `gorm:"column:subscription_package_id;type:uuid;not null;index;uniqueIndex:uq_subscriptions_source" json:"subscription_package_id"`
	SubscriptionTransactionID *string            `gorm:"column:subscription_transaction_id;type:varchar(64);uniqueIndex:uq_subscriptions_source" json:"subscription_transaction_id,omitempty"`
	SubscriptionSubscribedAt  time.Time          `gorm:"column:subscription_subscribed_at;not null" json:"subscription_subscribed_at"`
	SubscriptionStartDate     time.Time          `gorm:"column:subscription_start_date;not null" json:"subscription_start_date"`
	SubscriptionEndDate       time.Time          `gorm:"column:subscription_end_date;not null;index" json:"subscription_end_date"`
	SubscriptionStatus        SubscriptionStatus `gorm:"column:subscription_status;type:varchar(10);not null;default:'active';index" json:"subscription_status"`
	SubscriptionCreatedAt     time.Time          `gorm:"column:subscription_created_at;autoCreateTime" json:"subscription_created_at"`

	Package *packageModel.PackageModel `gorm:"foreignKey:SubscriptionPackageID;references:PackageID;constraint:OnDelete:RESTRICT" json:"package,omitempty"`
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

func (m *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubscriptionID == uuid.Nil {
		m.SubscriptionID = uuid.New()
	}
	return nil
}
