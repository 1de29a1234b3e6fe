package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Orders         *OrderHandler
	History        *OrdersHandler
	Menu           *MenuHandler
	Health         http.HandlerFunc
	RequestTimeout time.Duration
}

// NewRouter mounts the public API under /api/v1 and wraps it with tracing.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	health := cfg.Health
	if health == nil {
		health = HealthHandler(nil, nil)
	}
	r.Get("/health", health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/restaurants/{restaurant_id}", func(r chi.Router) {
			if cfg.Menu != nil {
				r.Get("/menu", cfg.Menu.GetMenu)
			}
			if cfg.History != nil {
				r.Get("/orders", cfg.History.ListOrders)
			}
			if cfg.Orders != nil {
				r.Route("/order", func(r chi.Router) {
					r.Use(SessionMiddleware)
					r.Get("/", cfg.Orders.GetOrder)
					r.Delete("/", cfg.Orders.ClearOrder)
					r.Post("/items", cfg.Orders.AddItem)
					r.Post("/items/{product_id}/increment", cfg.Orders.IncrementProduct)
					r.Post("/items/{product_id}/decrement", cfg.Orders.DecrementProduct)
					r.Post("/lines/{line_id}/increment", cfg.Orders.IncrementLine)
					r.Post("/lines/{line_id}/decrement", cfg.Orders.DecrementLine)
					r.Delete("/lines/{line_id}", cfg.Orders.RemoveLine)

					r.Route("/checkout", func(r chi.Router) {
						r.Post("/next", cfg.Orders.Next)
						r.Post("/back", cfg.Orders.Back)
						r.Put("/delivery", cfg.Orders.SetDelivery)
						r.Get("/payment", cfg.Orders.GetPayment)
						r.Put("/payment", cfg.Orders.SetPayment)
						r.Get("/summary", cfg.Orders.GetSummary)
						r.Post("/submit", cfg.Orders.Submit)
					})
				})
			}
		})
		if cfg.History != nil {
			r.Get("/orders/{order_id}", cfg.History.GetOrder)
		}
	})

	return otelhttp.NewHandler(r, "menu-order")
}
