package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  payment_gateway_events = LOG WEBHOOK / CALLBACK PAYMENT GATEWAY
  - Bisa banyak row per 1 transaksi (tiap notifikasi)
  - Nyimpen raw headers, payload, signature, status processing.
*/

type GatewayEventStatus string

const (
	GatewayEventReceived  GatewayEventStatus = "received"
	GatewayEventProcessed GatewayEventStatus = "processed"
	GatewayEventFailed    GatewayEventStatus = "failed"
	GatewayEventIgnored   GatewayEventStatus = "ignored"
)

const GatewayProviderMidtrans = "midtrans"

type PaymentGatewayEventModel struct {
	GatewayEventID            uuid.UUID `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`
	GatewayEventTransactionID *string   `gorm:"column:gateway_event_transaction_id;type:varchar(64);index" json:"gateway_event_transaction_id"`

	GatewayEventProvider    string  `gorm:"column:gateway_event_provider;type:varchar(20);not null" json:"gateway_event_provider"`
	GatewayEventType        *string `gorm:"column:gateway_event_type" json:"gateway_event_type"`
	GatewayEventExternalID  *string `gorm:"column:gateway_event_external_id;index" json:"gateway_event_external_id"`
	GatewayEventExternalRef *string `gorm:"column:gateway_event_external_ref" json:"gateway_event_external_ref"`

	GatewayEventHeaders   datatypes.JSON `gorm:"column:gateway_event_headers" json:"gateway_event_headers"`
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload" json:"gateway_event_payload"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"gateway_event_signature"`

	GatewayEventStatus GatewayEventStatus `gorm:"column:gateway_event_status;type:varchar(12);not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError  *string            `gorm:"column:gateway_event_error" json:"gateway_event_error"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at"`
}

func (PaymentGatewayEventModel) TableName() string {
	return "payment_gateway_events"
}

func (m *PaymentGatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.GatewayEventID == uuid.Nil {
		m.GatewayEventID = uuid.New()
	}
	if m.GatewayEventReceivedAt.IsZero() {
		m.GatewayEventReceivedAt = time.Now().UTC()
	}
	return nil
}
