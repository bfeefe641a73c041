package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/journal"
)

const SaleCompletedQueue = "sale.completed"

// SaleCompleted is emitted after a sale commits, for downstream consumers
// (reporting, loyalty, reconciliation).
type SaleCompleted struct {
	EventType     string        `json:"eventType"`
	SaleID        string        `json:"saleId"`
	SessionID     string        `json:"sessionId"`
	OrderID       string        `json:"orderId"`
	TransactionID string        `json:"transactionId"`
	Total         string        `json:"total"`
	Currency      string        `json:"currency"`
	PaymentMethod string        `json:"paymentMethod"`
	Items         []SaleLineRef `json:"items"`
	Timestamp     time.Time     `json:"timestamp"`
}

type SaleLineRef struct {
	ProductID  string `json:"productId"`
	VariantSKU string `json:"variantSku,omitempty"`
	Quantity   int    `json:"quantity"`
}

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	_, err = ch.QueueDeclare(SaleCompletedQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", SaleCompletedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishSaleCompleted(ctx context.Context, e journal.Entry) error {
	ev := SaleCompleted{
		EventType:     "SaleCompleted",
		SaleID:        e.ID,
		SessionID:     e.SessionID,
		OrderID:       e.OrderID,
		TransactionID: e.TransactionID,
		Total:         e.Total.StringFixed(2),
		Currency:      e.Currency,
		PaymentMethod: e.PaymentMethod,
		Timestamp:     time.Now().UTC(),
	}
	for _, ln := range e.Lines {
		ev.Items = append(ev.Items, SaleLineRef{
			ProductID:  ln.ProductID,
			VariantSKU: ln.VariantSKU,
			Quantity:   ln.Quantity,
		})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal SaleCompleted: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",                 // default exchange
		SaleCompletedQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
