package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/message"
	"github.com/fjod/go_cart/menu-order/internal/repository"
	"github.com/fjod/go_cart/menu-order/pkg/circuitbreaker"
	"github.com/fjod/go_cart/menu-order/pkg/logger"
	"go.uber.org/zap"
)

const maxNumberAttempts = 3

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

// Submission is what the customer's browser needs to hand the order off.
type Submission struct {
	Order       domain.Order `json:"order"`
	Message     string       `json:"message"`
	WhatsAppURL string       `json:"whatsapp_url"`
}

type Submitter struct {
	orders       OrderStore
	events       EventPublisher
	breaker      *circuitbreaker.Breaker
	whatsappHost string
	log          *zap.Logger

	now         func() time.Time
	orderNumber func(time.Time) string
}

// NewSubmitter wires the hand-off. orders and events may be nil, in which
// case the order is only sent through the messaging link.
func NewSubmitter(orders OrderStore, events EventPublisher, breaker *circuitbreaker.Breaker, whatsappHost string, log *zap.Logger) *Submitter {
	return &Submitter{
		orders:       orders,
		events:       events,
		breaker:      breaker,
		whatsappHost: whatsappHost,
		log:          log,
		now:          time.Now,
		orderNumber:  NewOrderNumber,
	}
}

// Submit finalizes the pipeline's order: it persists the record, renders the
// message link and takes the submitted lines out of the cart. On any failure
// the draft is kept so the customer can retry. An empty cart yields
// ErrEmptyCart and changes nothing. Only one submission per session runs at
// a time; a concurrent call gets ErrSubmitInProgress.
func (s *Submitter) Submit(ctx context.Context, p *Pipeline) (*Submission, error) {
	log := logger.FromContext(ctx, s.log)

	if p.cart.Empty() {
		return nil, ErrEmptyCart
	}

	r, err := p.restaurant(ctx)
	if err != nil {
		return nil, err
	}

	draft, err := s.claim(p, r)
	if err != nil {
		return nil, err
	}

	order, text, link, err := s.place(ctx, log, p.restaurantID, r, &draft)

	number := draft.OrderNumber
	if err != nil {
		_ = p.s.Mutate(func(d *domain.Draft) error {
			// a cart cleared meanwhile has nothing left to retry
			if d.Submitting {
				d.Submitting = false
				d.OrderNumber = number
			}
			return nil
		})
		log.Error("failed to persist order", zap.String("order_number", number), zap.Error(err))
		return nil, err
	}

	_ = p.s.Mutate(func(d *domain.Draft) error {
		settle(d, draft.Items)
		return nil
	})

	if s.events != nil {
		if errPublish := s.events.PublishOrderPlaced(ctx, order); errPublish != nil {
			log.Warn("failed to publish order event", zap.String("order_id", order.ID.String()), zap.Error(errPublish))
		}
	}

	log.Info("order submitted",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)))

	return &Submission{Order: order, Message: text, WhatsAppURL: link}, nil
}

// claim checks the draft is ready, assigns its order number and marks it as
// submitting in one step. It returns the draft as it will be submitted.
func (s *Submitter) claim(p *Pipeline, r *domain.Restaurant) (domain.Draft, error) {
	var (
		draft         domain.Draft
		paymentMissed bool
	)
	err := p.s.Mutate(func(d *domain.Draft) error {
		switch {
		case len(d.Items) == 0:
			return ErrEmptyCart
		case d.Submitting:
			return ErrSubmitInProgress
		case d.Stage != domain.StageSummary:
			return blocked(d.Stage, "finish the previous steps before submitting")
		case d.PaymentMethod == "" || !r.AcceptsPayment(d.PaymentMethod):
			paymentMissed = true
			return blocked(domain.StagePayment, "payment method is no longer accepted")
		}
		if d.OrderNumber == "" {
			d.OrderNumber = s.orderNumber(s.now())
		}
		d.Submitting = true
		draft = d.Clone()
		return nil
	})
	if paymentMissed {
		_ = p.s.Mutate(func(d *domain.Draft) error {
			reconcilePayment(d, r)
			d.Stage = domain.StagePayment
			return nil
		})
	}
	return draft, err
}

// place renders and stores the order, drawing a new number when the current
// one is already taken. draft.OrderNumber holds the last number tried.
func (s *Submitter) place(ctx context.Context, log *zap.Logger, restaurantID string, r *domain.Restaurant, draft *domain.Draft) (domain.Order, string, string, error) {
	for attempt := 1; ; attempt++ {
		text, err := message.Render(r.Name, *draft)
		if err != nil {
			return domain.Order{}, "", "", err
		}
		link, err := message.WhatsAppURL(s.whatsappHost, r.Phone, text)
		if err != nil {
			return domain.Order{}, "", "", fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		}

		order := message.NewRecord(restaurantID, *draft, s.now())
		err = s.store(ctx, &order)
		switch {
		case err == nil:
			return order, text, link, nil
		case !errors.Is(err, repository.ErrDuplicateOrder) || attempt == maxNumberAttempts:
			return domain.Order{}, "", "", fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		}
		log.Info("order number collision, retrying", zap.String("order_number", draft.OrderNumber))
		draft.OrderNumber = s.orderNumber(s.now())
	}
}

// settle takes the submitted quantities out of the draft. Lines added or
// increased while the order was being written stay in the cart; when nothing
// is left the draft starts over.
func settle(d *domain.Draft, submitted []domain.LineItem) {
	sent := make(map[string]int, len(submitted))
	for _, item := range submitted {
		sent[item.ID] += item.Quantity
	}

	kept := make([]domain.LineItem, 0, len(d.Items))
	for _, item := range d.Items {
		item.Quantity -= sent[item.ID]
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		d.Reset()
		return
	}

	d.Items = kept
	d.Submitting = false
	d.OrderNumber = ""
	d.Stage = domain.StageCart
}

func (s *Submitter) store(ctx context.Context, order *domain.Order) error {
	if s.orders == nil {
		return nil
	}
	write := func() error { return s.orders.CreateOrder(ctx, order) }
	if s.breaker == nil {
		return write()
	}
	return s.breaker.Do(write)
}
