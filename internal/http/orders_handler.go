package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*domain.Order, error)
}

// OrdersHandler exposes submitted orders to the restaurant.
type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(orders OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type SubmittedOrderDTO struct {
	ID            string               `json:"id"`
	RestaurantID  string               `json:"restaurant_id"`
	OrderNumber   string               `json:"order_number"`
	Status        domain.OrderStatus   `json:"status"`
	Items         []LineItemDTO        `json:"items"`
	DeliveryTax   string               `json:"delivery_tax"`
	Total         string               `json:"total"`
	Address       *domain.Address      `json:"address,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	CreatedAt     string               `json:"created_at"`
}

// GET /api/v1/restaurants/{restaurant_id}/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	orders, err := h.orders.ListOrdersByRestaurant(ctx, chi.URLParam(r, "restaurant_id"), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	dtos := make([]SubmittedOrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toSubmittedOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSubmittedOrderDTO(order))
}

func toSubmittedOrderDTO(o *domain.Order) SubmittedOrderDTO {
	dto := SubmittedOrderDTO{
		ID:            o.ID.String(),
		RestaurantID:  o.RestaurantID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		Items:         make([]LineItemDTO, 0, len(o.Items)),
		DeliveryTax:   o.DeliveryTax.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, toLineItemDTO(item))
	}
	return dto
}
