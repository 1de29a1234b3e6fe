package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/menu-order/internal/domain"
)

// DraftCache is the durable storage behind a menu session.
type DraftCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Draft, error)
	Set(ctx context.Context, sessionID string, draft *domain.Draft) error
	Delete(ctx context.Context, sessionID string) error
}

type MenuCache interface {
	GetMenu(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	SetMenu(ctx context.Context, restaurant *domain.Restaurant) error
	DeleteMenu(ctx context.Context, restaurantID string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCorrupted = errors.New("cached value is corrupted")
)
