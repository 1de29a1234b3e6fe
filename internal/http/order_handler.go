package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/cart"
	"github.com/fjod/go_cart/menu-order/internal/checkout"
	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/message"
	"github.com/fjod/go_cart/menu-order/internal/pricing"
	"github.com/fjod/go_cart/menu-order/internal/session"
	"github.com/fjod/go_cart/menu-order/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxLineQuantity = 99

type Catalog interface {
	Restaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	Product(ctx context.Context, restaurantID, productID string) (domain.Product, error)
}

type Submitter interface {
	Submit(ctx context.Context, p *checkout.Pipeline) (*checkout.Submission, error)
}

// OrderHandler serves the order-in-progress of the calling browser session.
type OrderHandler struct {
	sessions  *session.Registry
	catalog   Catalog
	submitter Submitter
	timeout   time.Duration
	log       *zap.Logger
}

func NewOrderHandler(sessions *session.Registry, catalog Catalog, submitter Submitter, timeout time.Duration, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		sessions:  sessions,
		catalog:   catalog,
		submitter: submitter,
		timeout:   timeout,
		log:       log,
	}
}

type OptionSelectionDTO struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type AddItemRequestDTO struct {
	ProductID   string               `json:"product_id"`
	Quantity    int                  `json:"quantity"`
	Observation string               `json:"observation"`
	Options     []OptionSelectionDTO `json:"options"`
}

type DeliveryRequestDTO struct {
	Pickup  bool            `json:"pickup"`
	Address *domain.Address `json:"address"`
}

type PaymentRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

type LineItemDTO struct {
	domain.LineItem
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderResponseDTO struct {
	Stage         string               `json:"stage"`
	Items         []LineItemDTO        `json:"items"`
	ItemCount     int                  `json:"item_count"`
	Fulfillment   domain.Fulfillment   `json:"fulfillment,omitempty"`
	Address       *domain.Address      `json:"address,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"payment_method,omitempty"`
	Subtotal      string               `json:"subtotal"`
	DeliveryTax   string               `json:"delivery_tax"`
	Total         string               `json:"total"`
	TotalDisplay  string               `json:"total_display"`
	OrderNumber   string               `json:"order_number,omitempty"`
}

type SummaryResponseDTO struct {
	OrderResponseDTO
	Message string `json:"message,omitempty"`
}

type PaymentMethodDTO struct {
	ID    domain.PaymentMethod `json:"id"`
	Label string               `json:"label"`
}

type PaymentResponseDTO struct {
	Selected domain.PaymentMethod `json:"selected,omitempty"`
	Methods  []PaymentMethodDTO   `json:"methods"`
}

type SubmitResponseDTO struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       string `json:"total"`
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// GET /api/v1/restaurants/{restaurant_id}/order
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(_ context.Context, p *checkout.Pipeline) {
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/items
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > maxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		product, err := h.catalog.Product(ctx, chi.URLParam(r, "restaurant_id"), req.ProductID)
		if err != nil {
			handleError(w, err)
			return
		}

		item, errOpt := lineFromProduct(product, req)
		if errOpt != "" {
			respondError(w, http.StatusUnprocessableEntity, "invalid_option", errOpt)
			return
		}

		if _, err := p.Cart().Add(item); err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, toOrderDTO(p.Summary()))
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/items/{product_id}/increment
func (h *OrderHandler) IncrementProduct(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(_ context.Context, p *checkout.Pipeline) {
		p.Cart().Increment(chi.URLParam(r, "product_id"))
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/items/{product_id}/decrement
func (h *OrderHandler) DecrementProduct(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(_ context.Context, p *checkout.Pipeline) {
		p.Cart().Decrement(chi.URLParam(r, "product_id"))
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/lines/{line_id}/increment
func (h *OrderHandler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, (*cart.Cart).IncrementLine)
}

// POST /api/v1/restaurants/{restaurant_id}/order/lines/{line_id}/decrement
func (h *OrderHandler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, (*cart.Cart).DecrementLine)
}

// DELETE /api/v1/restaurants/{restaurant_id}/order/lines/{line_id}
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, (*cart.Cart).RemoveLine)
}

// DELETE /api/v1/restaurants/{restaurant_id}/order
func (h *OrderHandler) ClearOrder(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(_ context.Context, p *checkout.Pipeline) {
		p.Cart().Clear()
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/checkout/next
func (h *OrderHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		if _, err := p.Next(ctx); err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/checkout/back
func (h *OrderHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(_ context.Context, p *checkout.Pipeline) {
		p.Back()
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// PUT /api/v1/restaurants/{restaurant_id}/order/checkout/delivery
func (h *OrderHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	var req DeliveryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.Pickup && req.Address == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "either pickup or address is required")
		return
	}

	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		var err error
		if req.Pickup {
			err = p.ChoosePickup(ctx)
		} else {
			err = p.ChooseDelivery(ctx, *req.Address)
		}
		if err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// GET /api/v1/restaurants/{restaurant_id}/order/checkout/payment
func (h *OrderHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		selected, methods, err := p.Payment(ctx)
		if err != nil {
			handleError(w, err)
			return
		}
		resp := PaymentResponseDTO{Selected: selected, Methods: make([]PaymentMethodDTO, 0, len(methods))}
		for _, m := range methods {
			if m.Valid() {
				resp.Methods = append(resp.Methods, PaymentMethodDTO{ID: m, Label: m.Label()})
			}
		}
		respondJSON(w, http.StatusOK, resp)
	})
}

// PUT /api/v1/restaurants/{restaurant_id}/order/checkout/payment
func (h *OrderHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		if err := p.SelectPayment(ctx, req.Method); err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// GET /api/v1/restaurants/{restaurant_id}/order/checkout/summary
func (h *OrderHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		resp := SummaryResponseDTO{OrderResponseDTO: toOrderDTO(p.Summary())}

		restaurant, err := h.catalog.Restaurant(ctx, chi.URLParam(r, "restaurant_id"))
		if err != nil {
			handleError(w, err)
			return
		}
		if text, errRender := message.Render(restaurant.Name, p.Draft()); errRender == nil {
			resp.Message = text
		}
		respondJSON(w, http.StatusOK, resp)
	})
}

// POST /api/v1/restaurants/{restaurant_id}/order/checkout/submit
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.withPipeline(w, r, func(ctx context.Context, p *checkout.Pipeline) {
		sub, err := h.submitter.Submit(ctx, p)
		if err != nil {
			if errors.Is(err, checkout.ErrEmptyCart) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SubmitResponseDTO{
			OrderID:     sub.Order.ID.String(),
			OrderNumber: sub.Order.OrderNumber,
			Total:       sub.Order.Total.StringFixed(2),
			Message:     sub.Message,
			WhatsAppURL: sub.WhatsAppURL,
		})
	})
}

func (h *OrderHandler) lineOp(w http.ResponseWriter, r *http.Request, op func(*cart.Cart, string) error) {
	h.withPipeline(w, r, func(_ context.Context, p *checkout.Pipeline) {
		if err := op(p.Cart(), chi.URLParam(r, "line_id")); err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toOrderDTO(p.Summary()))
	})
}

// withPipeline resolves the restaurant and the caller's session, then runs fn
// under the request timeout.
func (h *OrderHandler) withPipeline(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p *checkout.Pipeline)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", HeaderSessionID+" header is required")
		return
	}

	restaurantID := chi.URLParam(r, "restaurant_id")
	if _, err := h.catalog.Restaurant(ctx, restaurantID); err != nil {
		logger.FromContext(ctx, h.log).Debug("restaurant lookup failed",
			zap.String("restaurant_id", restaurantID), zap.Error(err))
		handleError(w, err)
		return
	}

	s := h.sessions.Get(ctx, sessionID, restaurantID)
	fn(ctx, checkout.NewPipeline(s, cart.New(s), h.catalog, restaurantID))
}

// lineFromProduct snapshots the catalog product into a line item. It returns
// a non-empty reason when an option does not belong to the product.
func lineFromProduct(product domain.Product, req AddItemRequestDTO) (domain.LineItem, string) {
	item := domain.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  req.Quantity,
	}
	if product.ObservationEnabled {
		item.Observation = strings.TrimSpace(req.Observation)
	}

	// repeated option ids are one selection
	seen := make(map[string]int, len(req.Options))
	for _, sel := range req.Options {
		opt, ok := product.Option(sel.ID)
		if !ok {
			return domain.LineItem{}, "option " + sel.ID + " is not available for " + product.Name
		}
		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		if i, dup := seen[opt.ID]; dup {
			item.Options[i].Quantity += qty
			continue
		}
		seen[opt.ID] = len(item.Options)
		item.Options = append(item.Options, domain.SelectedOption{
			ID:       opt.ID,
			Name:     opt.Name,
			Price:    opt.Price,
			Quantity: qty,
		})
	}
	return item, ""
}

func toOrderDTO(sum checkout.Summary) OrderResponseDTO {
	dto := OrderResponseDTO{
		Stage:         sum.Stage.String(),
		Items:         make([]LineItemDTO, 0, len(sum.Items)),
		Fulfillment:   sum.Fulfillment,
		Address:       sum.Address,
		PaymentMethod: sum.PaymentMethod,
		Subtotal:      sum.Subtotal.StringFixed(2),
		DeliveryTax:   sum.DeliveryTax.StringFixed(2),
		Total:         sum.Total.StringFixed(2),
		TotalDisplay:  pricing.Format(sum.Total),
		OrderNumber:   sum.OrderNumber,
	}
	for _, item := range sum.Items {
		dto.ItemCount += item.Quantity
		dto.Items = append(dto.Items, toLineItemDTO(item))
	}
	return dto
}

func toLineItemDTO(item domain.LineItem) LineItemDTO {
	return LineItemDTO{
		LineItem:  item,
		UnitPrice: pricing.LineUnitPrice(item).StringFixed(2),
		Subtotal:  pricing.LineSubtotal(item).StringFixed(2),
	}
}
