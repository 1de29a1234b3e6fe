package domain

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
	PaymentPix  PaymentMethod = "pix"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentPix:
		return true
	}
	return false
}

// Label is the customer-facing name used in order messages.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Cartão"
	case PaymentCash:
		return "Dinheiro"
	case PaymentPix:
		return "Pix"
	default:
		return string(m)
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}
