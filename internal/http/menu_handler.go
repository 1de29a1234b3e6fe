package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/go-chi/chi/v5"
)

type MenuHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewMenuHandler(catalog Catalog, timeout time.Duration) *MenuHandler {
	return &MenuHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type OptionDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type ProductDTO struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Price              string      `json:"price"`
	CategoryID         string      `json:"category_id,omitempty"`
	Options            []OptionDTO `json:"options"`
	ObservationEnabled bool        `json:"observation_enabled"`
	Featured           bool        `json:"featured"`
}

type MenuResponseDTO struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Delivery       bool               `json:"delivery"`
	Takeout        bool               `json:"takeout"`
	DeliveryTax    string             `json:"delivery_tax"`
	PaymentMethods []PaymentMethodDTO `json:"payment_methods"`
	Products       []ProductDTO       `json:"products"`
}

// GET /api/v1/restaurants/{restaurant_id}/menu
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	restaurant, err := h.catalog.Restaurant(ctx, chi.URLParam(r, "restaurant_id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMenuDTO(restaurant))
}

func toMenuDTO(r *domain.Restaurant) MenuResponseDTO {
	dto := MenuResponseDTO{
		ID:             r.ID,
		Name:           r.Name,
		Delivery:       r.Delivery.Enabled,
		Takeout:        r.Delivery.Takeout,
		DeliveryTax:    r.Delivery.Tax.StringFixed(2),
		PaymentMethods: make([]PaymentMethodDTO, 0, len(r.PaymentMethods)),
		Products:       make([]ProductDTO, 0, len(r.Products)),
	}
	for _, m := range r.PaymentMethods {
		dto.PaymentMethods = append(dto.PaymentMethods, PaymentMethodDTO{ID: m, Label: m.Label()})
	}
	for _, p := range r.Products {
		pd := ProductDTO{
			ID:                 p.ID,
			Name:               p.Name,
			Price:              p.Price.StringFixed(2),
			CategoryID:         p.CategoryID,
			Options:            make([]OptionDTO, 0, len(p.Options)),
			ObservationEnabled: p.ObservationEnabled,
			Featured:           p.Featured,
		}
		for _, o := range p.Options {
			pd.Options = append(pd.Options, OptionDTO{ID: o.ID, Name: o.Name, Price: o.Price.StringFixed(2)})
		}
		dto.Products = append(dto.Products, pd)
	}
	return dto
}
