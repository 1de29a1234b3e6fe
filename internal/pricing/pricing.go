package pricing

import (
	"strings"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/shopspring/decimal"
)

// LineUnitPrice is the base price plus every selected option times its quantity.
func LineUnitPrice(item domain.LineItem) decimal.Decimal {
	unit := item.Price
	for _, o := range item.Options {
		unit = unit.Add(o.Price.Mul(decimal.NewFromInt(int64(o.Quantity))))
	}
	return unit
}

func LineSubtotal(item domain.LineItem) decimal.Decimal {
	return LineUnitPrice(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func CartSubtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineSubtotal(item))
	}
	return total
}

// OrderTotal adds deliveryTax only when the order goes to an address.
func OrderTotal(items []domain.LineItem, deliveryTax decimal.Decimal, hasDeliveryAddress bool) decimal.Decimal {
	total := CartSubtotal(items)
	if hasDeliveryAddress {
		total = total.Add(deliveryTax)
	}
	return total
}

func DraftTotal(d *domain.Draft) decimal.Decimal {
	return OrderTotal(d.Items, d.DeliveryTax, d.HasDeliveryAddress())
}

// Format renders an amount as Brazilian currency, e.g. "R$ 1.234,50".
func Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	if amount.Round(2).IsZero() {
		fixed = "0.00"
	}

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "R$ " + grouped.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
