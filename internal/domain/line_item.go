package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectedOption is an Option attached to every unit of a line item.
type SelectedOption struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type LineItem struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Quantity    int              `json:"quantity"`
	Observation string           `json:"observation,omitempty"`
	Options     []SelectedOption `json:"options,omitempty"`
}

// Clone returns a copy that shares no option storage with item.
func (item LineItem) Clone() LineItem {
	if item.Options != nil {
		item.Options = append([]SelectedOption(nil), item.Options...)
	}
	return item
}

func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// NewLineID returns a rendering key for a freshly added line.
func NewLineID() string {
	return uuid.NewString()
}

// LegacyLineID builds the "<productId>-<unix millis>" keys older clients stored.
func LegacyLineID(productID string, at time.Time) string {
	return fmt.Sprintf("%s-%d", productID, at.UnixMilli())
}
