package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateOrder     = errors.New("order number already used by this restaurant")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// OrderRepository stores submitted orders. Consumers depend on this, not on
// a concrete driver.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*domain.Order, error)
	Close() error
}

type CatalogRepository interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	UpsertRestaurant(ctx context.Context, restaurant *domain.Restaurant) error
}

type Credentials struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	// SQLitePath is used when Driver is "sqlite".
	SQLitePath string
}
