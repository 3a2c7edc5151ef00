package rabbitmq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"soalku_backend/internals/helpers/mailer"
)

type invoiceSender interface {
	SendInvoice(ctx context.Context, inv mailer.Invoice) error
}

// InvoicePublisher mengantrikan invoice; kalau publish gagal langsung kirim lewat Fallback.
type InvoicePublisher struct {
	Publisher Publisher
	Fallback  invoiceSender
}

func NewInvoicePublisher(p Publisher, fallback invoiceSender) *InvoicePublisher {
	return &InvoicePublisher{Publisher: p, Fallback: fallback}
}

func (ip *InvoicePublisher) SendInvoice(ctx context.Context, inv mailer.Invoice) error {
	err := ip.Publisher.Publish(ctx, ExchangeNotifications, RoutingInvoiceSend, inv)
	if err == nil {
		log.Printf("[AMQP] invoice %s diantrikan", inv.InvoiceNo)
		return nil
	}
	log.Printf("[AMQP] gagal antri invoice %s: %v", inv.InvoiceNo, err)
	if ip.Fallback == nil {
		return err
	}
	return ip.Fallback.SendInvoice(ctx, inv)
}

// InvoiceHandler handler consumer untuk invoice.send.
// Payload rusak di-ack (tidak akan pernah berhasil), gagal kirim di-nack.
func InvoiceHandler(sender invoiceSender) Handler {
	return func(body []byte) bool {
		var inv mailer.Invoice
		if err := json.Unmarshal(body, &inv); err != nil {
			log.Printf("[AMQP] payload invoice tidak valid: %v", err)
			return true
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sender.SendInvoice(ctx, inv); err != nil {
			log.Printf("[AMQP] kirim invoice %s gagal: %v", inv.InvoiceNo, err)
			return false
		}
		return true
	}
}

// StartInvoiceConsumer memasang consumer invoice.send di proses yang sama.
func StartInvoiceConsumer(c *Consumer, sender invoiceSender) error {
	return c.ConsumeWithBindings(ExchangeNotifications, QueueInvoice, map[string]Handler{
		RoutingInvoiceSend: InvoiceHandler(sender),
	})
}
