package domain

import "github.com/shopspring/decimal"

// Option is an add-on a product can be ordered with.
type Option struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Product struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	CategoryID         string          `json:"category_id"`
	Options            []Option        `json:"options,omitempty"`
	ObservationEnabled bool            `json:"observation_enabled"`
	Featured           bool            `json:"featured"`
}

func (p Product) Option(id string) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

type DeliveryConfig struct {
	Enabled bool            `json:"enabled"`
	Takeout bool            `json:"takeout"`
	Tax     decimal.Decimal `json:"tax"`
}

// Restaurant is the read-only catalog view the order engine works against.
type Restaurant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Delivery       DeliveryConfig  `json:"delivery"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
	Products       []Product       `json:"products"`
}

func (r Restaurant) Product(id string) (Product, bool) {
	for _, p := range r.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// AcceptsPayment reports whether m is currently enabled by the restaurant.
func (r Restaurant) AcceptsPayment(m PaymentMethod) bool {
	for _, enabled := range r.PaymentMethods {
		if enabled == m {
			return true
		}
	}
	return false
}
