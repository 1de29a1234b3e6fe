package message

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDraft() domain.Draft {
	return domain.Draft{
		RestaurantID: "r1",
		OrderNumber:  "20240517-4821",
		Items: []domain.LineItem{
			{
				ProductID:   "burger",
				Name:        "Burger",
				Price:       decimal.RequireFromString("20"),
				Quantity:    3,
				Observation: "sem cebola",
				Options: []domain.SelectedOption{
					{ID: "bacon", Name: "Bacon", Price: decimal.RequireFromString("5"), Quantity: 1},
				},
			},
		},
		Fulfillment:   domain.FulfillmentDelivery,
		Address:       &domain.Address{Street: "Rua das Flores", Number: "10", Neighborhood: "Centro", Reference: "Portão azul"},
		DeliveryTax:   decimal.RequireFromString("8"),
		PaymentMethod: domain.PaymentPix,
	}
}

func TestRender_Delivery(t *testing.T) {
	msg, err := Render("Casa do Burger", testDraft())
	require.NoError(t, err)

	expected := "*Pedido #20240517-4821*\n" +
		"Casa do Burger\n" +
		"\n" +
		"3x Burger - R$ 25,00\n" +
		"   + 1x Bacon (R$ 5,00)\n" +
		"   Obs: sem cebola\n" +
		"   Subtotal: R$ 75,00\n" +
		"\n" +
		"Taxa de entrega: R$ 8,00\n" +
		"*Total: R$ 83,00*\n" +
		"\n" +
		"*Entrega:* Rua das Flores, 10 - Centro\n" +
		"Referência: Portão azul\n" +
		"*Pagamento:* Pix\n"
	assert.Equal(t, expected, msg)
}

func TestRender_Pickup(t *testing.T) {
	d := testDraft()
	d.Address = nil
	d.Fulfillment = domain.FulfillmentPickup
	d.PaymentMethod = domain.PaymentCash

	msg, err := Render("", d)
	require.NoError(t, err)
	assert.Contains(t, msg, "*Total: R$ 75,00*")
	assert.Contains(t, msg, "*Retirada no local*")
	assert.Contains(t, msg, "*Pagamento:* Dinheiro")
	assert.NotContains(t, msg, "Taxa de entrega")
}

func TestRender_Empty(t *testing.T) {
	_, err := Render("Casa", domain.Draft{})
	assert.ErrorIs(t, err, ErrNothingToSend)
}

func TestWhatsAppURL(t *testing.T) {
	link, err := WhatsAppURL("", "+55 (11) 98888-7777", "Olá & bem-vindo +1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511988887777?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Olá & bem-vindo +1", u.Query().Get("text"))
	assert.NotContains(t, link, "+")
}

func TestWhatsAppURL_InvalidPhone(t *testing.T) {
	_, err := WhatsAppURL("api.whatsapp.com", "n/a", "hi")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 5, 17, 15, 4, 5, 0, time.FixedZone("BRT", -3*3600))
	d := testDraft()

	rec := NewRecord("r1", d, now)

	assert.Equal(t, domain.OrderStatusPending, rec.Status)
	assert.Equal(t, "20240517-4821", rec.OrderNumber)
	assert.Equal(t, "83.00", rec.Total.StringFixed(2))
	assert.Equal(t, domain.PaymentPix, rec.PaymentMethod)
	require.NotNil(t, rec.Address)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())

	d.Items[0].Quantity = 99
	d.Address.Street = "changed"
	assert.Equal(t, 3, rec.Items[0].Quantity)
	assert.Equal(t, "Rua das Flores", rec.Address.Street)
}

func TestNewRecord_PickupDropsTax(t *testing.T) {
	d := testDraft()
	d.Address = nil

	rec := NewRecord("r1", d, time.Now())
	assert.Nil(t, rec.Address)
	assert.True(t, rec.DeliveryTax.IsZero())
	assert.Equal(t, "75.00", rec.Total.StringFixed(2))
}
