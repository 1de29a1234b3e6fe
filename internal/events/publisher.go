package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderPlaced     = "orders-placed"
	EventTypeOrderPlaced = "OrderPlaced"
)

// OrderPlaced is the payload written for every submitted order.
type OrderPlaced struct {
	OrderID       string               `json:"order_id"`
	RestaurantID  string               `json:"restaurant_id"`
	OrderNumber   string               `json:"order_number"`
	Items         []domain.LineItem    `json:"items"`
	DeliveryTax   string               `json:"delivery_tax"`
	Total         string               `json:"total"`
	Delivery      bool                 `json:"delivery"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time            `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
}

// NewPublisher returns a Kafka-backed publisher. With no brokers it returns
// a publisher that drops events.
func NewPublisher(brokers ...string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicOrderPlaced,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &Publisher{writer: w}
}

func NewOrderPlaced(order domain.Order) OrderPlaced {
	return OrderPlaced{
		OrderID:       order.ID.String(),
		RestaurantID:  order.RestaurantID,
		OrderNumber:   order.OrderNumber,
		Items:         order.Items,
		DeliveryTax:   order.DeliveryTax.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		Delivery:      order.Address != nil,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	if p.writer == nil {
		return nil
	}

	payload, err := json.Marshal(NewOrderPlaced(order))
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
