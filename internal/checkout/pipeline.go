package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/menu-order/internal/cart"
	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/pricing"
	"github.com/fjod/go_cart/menu-order/internal/session"
	"github.com/shopspring/decimal"
)

// RestaurantProvider is the read-only catalog the pipeline checks choices
// against.
type RestaurantProvider interface {
	Restaurant(ctx context.Context, id string) (*domain.Restaurant, error)
}

// Pipeline walks a session draft through Cart → Delivery → Payment → Summary.
// Progress lives in the draft, so a pipeline rebuilt for a restored session
// resumes where the customer left.
type Pipeline struct {
	s            *session.Session
	cart         *cart.Cart
	restaurants  RestaurantProvider
	restaurantID string
}

type Summary struct {
	Stage         domain.Stage         `json:"stage"`
	Items         []domain.LineItem    `json:"items"`
	Fulfillment   domain.Fulfillment   `json:"fulfillment,omitempty"`
	Address       *domain.Address      `json:"address,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"payment_method,omitempty"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	DeliveryTax   decimal.Decimal      `json:"delivery_tax"`
	Total         decimal.Decimal      `json:"total"`
	OrderNumber   string               `json:"order_number,omitempty"`
}

func NewPipeline(s *session.Session, c *cart.Cart, restaurants RestaurantProvider, restaurantID string) *Pipeline {
	p := &Pipeline{
		s:            s,
		cart:         c,
		restaurants:  restaurants,
		restaurantID: restaurantID,
	}
	p.resume()
	return p
}

func (p *Pipeline) Cart() *cart.Cart {
	return p.cart
}

// Draft returns a copy of the order-in-progress.
func (p *Pipeline) Draft() domain.Draft {
	return p.s.Snapshot()
}

func (p *Pipeline) Stage() domain.Stage {
	var stage domain.Stage
	p.s.View(func(d *domain.Draft) {
		stage = d.Stage
	})
	return stage
}

// Next advances one stage when the current stage's guard passes. At Summary
// it stays put.
func (p *Pipeline) Next(ctx context.Context) (domain.Stage, error) {
	r, err := p.restaurant(ctx)
	if err != nil {
		return p.Stage(), err
	}

	var stage domain.Stage
	err = p.s.Mutate(func(d *domain.Draft) error {
		if errGuard := guard(d, r); errGuard != nil {
			return errGuard
		}
		switch d.Stage {
		case domain.StageDelivery:
			snapshotTax(d, r)
			d.Stage = domain.StagePayment
			reconcilePayment(d, r)
		case domain.StageSummary:
		default:
			d.Stage++
		}
		stage = d.Stage
		return nil
	})
	if err != nil {
		return p.Stage(), err
	}
	return stage, nil
}

// Back retreats one stage, stopping at Cart.
func (p *Pipeline) Back() domain.Stage {
	var stage domain.Stage
	_ = p.s.Mutate(func(d *domain.Draft) error {
		if d.Stage > domain.StageCart {
			d.Stage--
		}
		stage = d.Stage
		return nil
	})
	return stage
}

// ChoosePickup switches the order to takeout and drops any address.
func (p *Pipeline) ChoosePickup(ctx context.Context) error {
	r, err := p.restaurant(ctx)
	if err != nil {
		return err
	}
	if !r.Delivery.Takeout {
		return blocked(domain.StageDelivery, "restaurant does not offer pickup")
	}
	return p.s.Mutate(func(d *domain.Draft) error {
		d.Fulfillment = domain.FulfillmentPickup
		d.Address = nil
		d.DeliveryTax = decimal.Zero
		return nil
	})
}

// ChooseDelivery records the delivery address. The tax is only captured
// when the Delivery stage is confirmed with Next.
func (p *Pipeline) ChooseDelivery(ctx context.Context, addr domain.Address) error {
	r, err := p.restaurant(ctx)
	if err != nil {
		return err
	}
	if !r.Delivery.Enabled {
		return blocked(domain.StageDelivery, "restaurant does not deliver")
	}
	return p.s.Mutate(func(d *domain.Draft) error {
		d.Fulfillment = domain.FulfillmentDelivery
		d.Address = &addr
		d.DeliveryTax = decimal.Zero
		if d.Stage > domain.StageDelivery {
			d.Stage = domain.StageDelivery
		}
		return nil
	})
}

func (p *Pipeline) SelectPayment(ctx context.Context, m domain.PaymentMethod) error {
	r, err := p.restaurant(ctx)
	if err != nil {
		return err
	}
	if !m.Valid() || !r.AcceptsPayment(m) {
		return blocked(domain.StagePayment, fmt.Sprintf("payment method %q is not accepted", m))
	}
	return p.s.Mutate(func(d *domain.Draft) error {
		d.PaymentMethod = m
		return nil
	})
}

// Payment returns the current selection and the enabled methods, replacing
// a selection the restaurant has disabled since it was made.
func (p *Pipeline) Payment(ctx context.Context) (domain.PaymentMethod, []domain.PaymentMethod, error) {
	r, err := p.restaurant(ctx)
	if err != nil {
		return "", nil, err
	}

	var selected domain.PaymentMethod
	if stale(p.s, r) {
		_ = p.s.Mutate(func(d *domain.Draft) error {
			reconcilePayment(d, r)
			return nil
		})
	}
	p.s.View(func(d *domain.Draft) {
		selected = d.PaymentMethod
	})
	return selected, append([]domain.PaymentMethod(nil), r.PaymentMethods...), nil
}

func (p *Pipeline) Summary() Summary {
	var sum Summary
	p.s.View(func(d *domain.Draft) {
		sum = summarize(d)
	})
	return sum
}

func summarize(d *domain.Draft) Summary {
	sum := Summary{
		Stage:         d.Stage,
		Items:         domain.CloneItems(d.Items),
		Fulfillment:   d.Fulfillment,
		PaymentMethod: d.PaymentMethod,
		Subtotal:      pricing.CartSubtotal(d.Items),
		Total:         pricing.DraftTotal(d),
		OrderNumber:   d.OrderNumber,
	}
	if d.Address != nil {
		addr := *d.Address
		sum.Address = &addr
		sum.DeliveryTax = d.DeliveryTax
	}
	return sum
}

func (p *Pipeline) restaurant(ctx context.Context) (*domain.Restaurant, error) {
	return p.restaurants.Restaurant(ctx, p.restaurantID)
}

// resume pulls a restored stage back to the first one whose guard fails.
func (p *Pipeline) resume() {
	var want domain.Stage
	var current domain.Stage
	p.s.View(func(d *domain.Draft) {
		current = d.Stage
		want = resumableStage(d)
	})
	if want == current {
		return
	}
	_ = p.s.Mutate(func(d *domain.Draft) error {
		d.Stage = resumableStage(d)
		return nil
	})
}

func resumableStage(d *domain.Draft) domain.Stage {
	switch {
	case d.Stage <= domain.StageCart || len(d.Items) == 0:
		return domain.StageCart
	case d.Fulfillment == domain.FulfillmentUnset,
		d.Fulfillment == domain.FulfillmentDelivery && (d.Address == nil || !d.Address.Complete()):
		return domain.StageDelivery
	case d.Stage > domain.StagePayment && d.PaymentMethod == "":
		return domain.StagePayment
	case d.Stage > domain.StageSummary:
		return domain.StageSummary
	}
	return d.Stage
}

func guard(d *domain.Draft, r *domain.Restaurant) error {
	switch d.Stage {
	case domain.StageCart:
		if len(d.Items) == 0 {
			return blocked(domain.StageCart, "add at least one item")
		}
	case domain.StageDelivery:
		switch d.Fulfillment {
		case domain.FulfillmentPickup:
			if !r.Delivery.Takeout {
				return blocked(domain.StageDelivery, "restaurant does not offer pickup")
			}
		case domain.FulfillmentDelivery:
			if !r.Delivery.Enabled {
				return blocked(domain.StageDelivery, "restaurant does not deliver")
			}
			if d.Address == nil {
				return blocked(domain.StageDelivery, "delivery address is incomplete", domain.Address{}.MissingFields()...)
			}
			if missing := d.Address.MissingFields(); len(missing) > 0 {
				return blocked(domain.StageDelivery, "delivery address is incomplete", missing...)
			}
		default:
			return blocked(domain.StageDelivery, "choose pickup or delivery")
		}
	case domain.StagePayment:
		reconcilePayment(d, r)
		if d.PaymentMethod == "" {
			return blocked(domain.StagePayment, "select a payment method")
		}
	}
	return nil
}

// snapshotTax freezes the restaurant's current delivery fee into the draft.
func snapshotTax(d *domain.Draft, r *domain.Restaurant) {
	if d.Fulfillment == domain.FulfillmentDelivery && d.Address != nil {
		d.DeliveryTax = r.Delivery.Tax
		return
	}
	d.DeliveryTax = decimal.Zero
}

// reconcilePayment replaces a disabled selection with the first method the
// restaurant still accepts.
func reconcilePayment(d *domain.Draft, r *domain.Restaurant) {
	if d.PaymentMethod == "" || r.AcceptsPayment(d.PaymentMethod) {
		return
	}
	d.PaymentMethod = ""
	for _, m := range r.PaymentMethods {
		if m.Valid() {
			d.PaymentMethod = m
			return
		}
	}
}

func stale(s *session.Session, r *domain.Restaurant) bool {
	var out bool
	s.View(func(d *domain.Draft) {
		out = d.PaymentMethod != "" && !r.AcceptsPayment(d.PaymentMethod)
	})
	return out
}
