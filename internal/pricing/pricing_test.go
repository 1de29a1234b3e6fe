package pricing

import (
	"testing"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func burgerWithBacon(qty int) domain.LineItem {
	return domain.LineItem{
		ProductID: "burger",
		Name:      "Burger",
		Price:     dec("20.00"),
		Quantity:  qty,
		Options: []domain.SelectedOption{
			{ID: "bacon", Name: "Bacon", Price: dec("5.00"), Quantity: 1},
		},
	}
}

func TestLineUnitPrice(t *testing.T) {
	item := burgerWithBacon(3)
	assert.True(t, dec("25").Equal(LineUnitPrice(item)))
	assert.True(t, dec("75").Equal(LineSubtotal(item)))
}

func TestLineUnitPrice_OptionQuantity(t *testing.T) {
	item := domain.LineItem{
		Price:    dec("10.10"),
		Quantity: 2,
		Options: []domain.SelectedOption{
			{ID: "cheese", Price: dec("0.10"), Quantity: 3},
			{ID: "egg", Price: dec("1.05"), Quantity: 1},
		},
	}
	assert.Equal(t, "11.45", LineUnitPrice(item).StringFixed(2))
	assert.Equal(t, "22.90", LineSubtotal(item).StringFixed(2))
}

func TestLineUnitPrice_NoFloatDrift(t *testing.T) {
	item := domain.LineItem{
		Price:    dec("0.10"),
		Quantity: 3,
		Options:  []domain.SelectedOption{{ID: "x", Price: dec("0.20"), Quantity: 1}},
	}
	assert.True(t, dec("0.90").Equal(LineSubtotal(item)))
}

func TestOrderTotal(t *testing.T) {
	items := []domain.LineItem{burgerWithBacon(3)}

	assert.Equal(t, "83.00", OrderTotal(items, dec("8"), true).StringFixed(2))
	assert.Equal(t, "75.00", OrderTotal(items, dec("8"), false).StringFixed(2))
}

func TestOrderTotal_Empty(t *testing.T) {
	assert.True(t, OrderTotal(nil, dec("8"), false).IsZero())
	assert.Equal(t, "8.00", OrderTotal(nil, dec("8"), true).StringFixed(2))
}

func TestOrderTotal_OrderIndependent(t *testing.T) {
	a := burgerWithBacon(1)
	b := domain.LineItem{ProductID: "soda", Price: dec("6.50"), Quantity: 2}
	c := domain.LineItem{ProductID: "fries", Price: dec("12.35"), Quantity: 1}

	first := OrderTotal([]domain.LineItem{a, b, c}, dec("5"), true)
	second := OrderTotal([]domain.LineItem{c, a, b}, dec("5"), true)
	assert.True(t, first.Equal(second))
}

func TestDraftTotal(t *testing.T) {
	d := &domain.Draft{
		Items:       []domain.LineItem{burgerWithBacon(3)},
		DeliveryTax: dec("8"),
	}
	assert.Equal(t, "75.00", DraftTotal(d).StringFixed(2))

	d.Address = &domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro"}
	assert.Equal(t, "83.00", DraftTotal(d).StringFixed(2))
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":       "R$ 0,00",
		"25":      "R$ 25,00",
		"1234.5":  "R$ 1.234,50",
		"999.999": "R$ 1.000,00",
		"1000000": "R$ 1.000.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(dec(in)), in)
	}
}
