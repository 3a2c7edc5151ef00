package rabbitmq

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler true = ack, false = nack + requeue.
type Handler func(body []byte) bool

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	done chan struct{}
}

func NewConsumer(amqpURL string) (*Consumer, error) {
	conn, err := dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.Qos(4, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, done: make(chan struct{})}, nil
}

// ConsumeWithBindings declare exchange+queue, bind semua routing key, lalu proses di goroutine.
func (c *Consumer) ConsumeWithBindings(exchange, queue string, bindings map[string]Handler) error {
	if len(bindings) == 0 {
		return fmt.Errorf("binding kosong")
	}
	if err := c.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	q, err := c.ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	for key := range bindings {
		if err := c.ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return err
		}
	}
	msgs, err := c.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		defer close(c.done)
		for d := range msgs {
			h, ok := bindings[d.RoutingKey]
			if !ok {
				log.Printf("[AMQP] tidak ada handler untuk %s, drop", d.RoutingKey)
				_ = d.Ack(false)
				continue
			}
			if h(d.Body) {
				_ = d.Ack(false)
				continue
			}
			// sekali requeue; redelivery yang gagal lagi dibuang
			_ = d.Nack(false, !d.Redelivered)
		}
	}()
	return nil
}

// Close menutup channel lalu menunggu loop consumer selesai.
func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	select {
	case <-c.done:
	default:
	}
}
