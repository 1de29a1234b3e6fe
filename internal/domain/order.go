package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the persisted record of a submitted draft.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	RestaurantID  string          `json:"restaurant_id"`
	OrderNumber   string          `json:"order_number"`
	Items         []LineItem      `json:"items"`
	DeliveryTax   decimal.Decimal `json:"delivery_tax"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	Address       *Address        `json:"address"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}
