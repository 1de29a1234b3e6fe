package message

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultHost = "wa.me"

var (
	ErrNothingToSend = errors.New("order has no items")
	ErrInvalidPhone  = errors.New("restaurant phone has no digits")
)

var nonDigits = regexp.MustCompile(`\D`)

// Render writes the customer's order as the plain-text message sent to the
// restaurant.
func Render(restaurantName string, d domain.Draft) (string, error) {
	if len(d.Items) == 0 {
		return "", ErrNothingToSend
	}

	var b strings.Builder
	if d.OrderNumber != "" {
		fmt.Fprintf(&b, "*Pedido #%s*\n", d.OrderNumber)
	} else {
		b.WriteString("*Novo pedido*\n")
	}
	if restaurantName != "" {
		fmt.Fprintf(&b, "%s\n", restaurantName)
	}
	b.WriteString("\n")

	for _, item := range d.Items {
		fmt.Fprintf(&b, "%dx %s - %s\n", item.Quantity, item.Name, pricing.Format(pricing.LineUnitPrice(item)))
		for _, o := range item.Options {
			fmt.Fprintf(&b, "   + %dx %s (%s)\n", o.Quantity, o.Name, pricing.Format(o.Price))
		}
		if obs := strings.TrimSpace(item.Observation); obs != "" {
			fmt.Fprintf(&b, "   Obs: %s\n", obs)
		}
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", pricing.Format(pricing.LineSubtotal(item)))
	}

	if d.HasDeliveryAddress() {
		fmt.Fprintf(&b, "Taxa de entrega: %s\n", pricing.Format(d.DeliveryTax))
	}
	fmt.Fprintf(&b, "*Total: %s*\n\n", pricing.Format(pricing.DraftTotal(&d)))

	if d.HasDeliveryAddress() {
		a := d.Address
		fmt.Fprintf(&b, "*Entrega:* %s, %s - %s\n", a.Street, a.Number, a.Neighborhood)
		if a.Reference != "" {
			fmt.Fprintf(&b, "Referência: %s\n", a.Reference)
		}
		if a.ZipCode != "" {
			fmt.Fprintf(&b, "CEP: %s\n", a.ZipCode)
		}
	} else {
		b.WriteString("*Retirada no local*\n")
	}

	if d.PaymentMethod != "" {
		fmt.Fprintf(&b, "*Pagamento:* %s\n", d.PaymentMethod.Label())
	}
	return b.String(), nil
}

// WhatsAppURL builds the deep link that opens a chat with phone prefilled
// with text.
func WhatsAppURL(host, phone, text string) (string, error) {
	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return "", ErrInvalidPhone
	}
	if host == "" {
		host = DefaultHost
	}
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("https://%s/%s?text=%s", host, digits, encoded), nil
}

// NewRecord snapshots d as a pending order.
func NewRecord(restaurantID string, d domain.Draft, now time.Time) domain.Order {
	var addr *domain.Address
	if d.Address != nil {
		a := *d.Address
		addr = &a
	}
	tax := d.DeliveryTax
	if addr == nil {
		tax = decimal.Zero
	}
	return domain.Order{
		ID:            uuid.New(),
		RestaurantID:  restaurantID,
		OrderNumber:   d.OrderNumber,
		Items:         domain.CloneItems(d.Items),
		DeliveryTax:   tax,
		Total:         pricing.DraftTotal(&d),
		Status:        domain.OrderStatusPending,
		Address:       addr,
		PaymentMethod: d.PaymentMethod,
		CreatedAt:     now.UTC(),
	}
}
