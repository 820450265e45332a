// Package events announces settled orders on Kafka so downstream consumers
// (receipts, analytics) can react without being called inline. Publishing
// is best-effort: the settlement flow logs a failure and moves on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/orders"
	"github.com/segmentio/kafka-go"
)

const Topic = "order-settled"

type orderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type orderSettledEvent struct {
	OrderID       string      `json:"order_id"`
	UserID        string      `json:"user_id"`
	Email         string      `json:"email"`
	Lines         []orderLine `json:"lines"`
	Subtotal      int64       `json:"subtotal"`
	Commission    int64       `json:"commission"`
	Total         int64       `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	SettledAt     time.Time   `json:"settled_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) OrderSettled(ctx context.Context, o orders.Order) error {
	lines := make([]orderLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
	}

	payload, err := json.Marshal(orderSettledEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Email:         o.Email,
		Lines:         lines,
		Subtotal:      o.Subtotal,
		Commission:    o.Commission,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		SettledAt:     o.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal settled order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(o.ID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order_settled")},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
