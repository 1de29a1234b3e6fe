package domain

import "github.com/shopspring/decimal"

type Stage int

const (
	StageCart Stage = iota
	StageDelivery
	StagePayment
	StageSummary
)

func (s Stage) String() string {
	switch s {
	case StageCart:
		return "cart"
	case StageDelivery:
		return "delivery"
	case StagePayment:
		return "payment"
	case StageSummary:
		return "summary"
	default:
		return "unknown"
	}
}

type Fulfillment string

const (
	FulfillmentUnset    Fulfillment = ""
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// Draft is the order-in-progress of one menu session.
type Draft struct {
	RestaurantID  string          `json:"restaurant_id,omitempty"`
	Items         []LineItem      `json:"items"`
	Stage         Stage           `json:"stage"`
	Fulfillment   Fulfillment     `json:"fulfillment,omitempty"`
	Address       *Address        `json:"address,omitempty"`
	DeliveryTax   decimal.Decimal `json:"delivery_tax"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	OrderNumber   string          `json:"order_number,omitempty"`

	// Submitting is set while an order write is in flight. It is never
	// stored, so a restored draft can always be submitted again.
	Submitting bool `json:"-"`
}

// HasDeliveryAddress reports whether the delivery tax applies to the total.
func (d *Draft) HasDeliveryAddress() bool {
	return d.Address != nil
}

func (d *Draft) Clone() Draft {
	out := *d
	out.Items = CloneItems(d.Items)
	if d.Address != nil {
		addr := *d.Address
		out.Address = &addr
	}
	return out
}

// Reset drops everything but the restaurant binding.
func (d *Draft) Reset() {
	*d = Draft{RestaurantID: d.RestaurantID}
}
