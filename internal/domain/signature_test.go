package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSignature_Format(t *testing.T) {
	item := LineItem{
		ProductID:   "burger",
		Observation: "no onions",
		Options: []SelectedOption{
			{ID: "egg", Quantity: 2},
			{ID: "bacon", Quantity: 1},
		},
	}
	assert.Equal(t, "burger|obs:no onions|opts:bacon:1,egg:2", Signature(item))
}

func TestSignature_OptionOrderIndependent(t *testing.T) {
	a := LineItem{ProductID: "p1", Options: []SelectedOption{
		{ID: "b", Quantity: 1}, {ID: "a", Quantity: 3}, {ID: "c", Quantity: 2},
	}}
	b := LineItem{ProductID: "p1", Options: []SelectedOption{
		{ID: "c", Quantity: 2}, {ID: "b", Quantity: 1}, {ID: "a", Quantity: 3},
	}}
	assert.Equal(t, Signature(a), Signature(b))
}

func TestSignature_IgnoresNonIdentityFields(t *testing.T) {
	a := LineItem{ID: "x", ProductID: "p1", Name: "Burger", Price: decimal.NewFromInt(20), Quantity: 1}
	b := LineItem{ID: "y", ProductID: "p1", Name: "Burger v2", Price: decimal.NewFromInt(22), Quantity: 7}
	assert.Equal(t, Signature(a), Signature(b))
}

func TestSignature_Distinguishes(t *testing.T) {
	base := LineItem{ProductID: "p1", Options: []SelectedOption{{ID: "a", Quantity: 1}}}

	obs := base.Clone()
	obs.Observation = "well done"
	assert.NotEqual(t, Signature(base), Signature(obs))

	qty := base.Clone()
	qty.Options[0].Quantity = 2
	assert.NotEqual(t, Signature(base), Signature(qty))

	other := base.Clone()
	other.ProductID = "p2"
	assert.NotEqual(t, Signature(base), Signature(other))
}

func TestSignature_EmptyFields(t *testing.T) {
	assert.Equal(t, "|obs:|opts:", Signature(LineItem{}))
	assert.Equal(t, "p1|obs:|opts:", Signature(LineItem{ProductID: "p1", Options: []SelectedOption{}}))
}

func TestSignature_DoesNotReorderInput(t *testing.T) {
	item := LineItem{ProductID: "p1", Options: []SelectedOption{{ID: "z"}, {ID: "a"}}}
	Signature(item)
	assert.Equal(t, "z", item.Options[0].ID)
}

func TestLegacyLineID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "burger-1700000000123", LegacyLineID("burger", at))
}

func TestNewLineID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewLineID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
