package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeNotifications = "soalku.notifications"
	RoutingInvoiceSend    = "invoice.send"
	QueueInvoice          = "soalku.invoice"
)

// Publisher diimplementasikan Producer; test memakai stub.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body any) error
}

type Producer struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func sanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP_URL harus diawali amqp:// atau amqps://")
	}
	return clean, nil
}

func dial(raw string) (*amqp.Connection, error) {
	clean, err := sanitizeURL(raw)
	if err != nil {
		return nil, err
	}
	return amqp.DialConfig(clean, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
}

func NewProducer(amqpURL string) (*Producer, error) {
	conn, err := dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(ExchangeNotifications, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Producer{conn: conn, ch: ch}, nil
}

// Publish JSON persistent; channel dibuka ulang sekali kalau publish gagal.
func (p *Producer) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
	if err == nil {
		return nil
	}
	log.Printf("[AMQP] publish gagal, buka ulang channel: %v", err)
	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return err
	}
	p.ch = ch
	return p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
}

func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
