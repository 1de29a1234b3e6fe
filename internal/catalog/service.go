package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/cache"
	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

// Service serves restaurant menus, read-through the Redis menu cache.
type Service struct {
	repo  repository.CatalogRepository
	cache cache.MenuCache
	log   *zap.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo repository.CatalogRepository, menus cache.MenuCache, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: menus,
		log:   log,
	}
}

func (s *Service) Restaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	v, err, _ := s.sfg.Do(restaurantID, func() (interface{}, error) {
		r, err := s.cache.GetMenu(ctx, restaurantID)
		if err == nil {
			return r, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("menu cache get error", zap.String("restaurant_id", restaurantID), zap.Error(err))
		}

		r, errGet := s.repo.GetRestaurant(ctx, restaurantID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.SetMenu(setCtx, r); errSet != nil {
				s.log.Warn("menu cache set error", zap.String("restaurant_id", restaurantID), zap.Error(errSet))
			}
		}()

		return r, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Restaurant), nil
}

func (s *Service) Product(ctx context.Context, restaurantID, productID string) (domain.Product, error) {
	r, err := s.Restaurant(ctx, restaurantID)
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := r.Product(productID)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return p, nil
}

// Publish stores a menu and drops the cached copy so the next read sees it.
func (s *Service) Publish(ctx context.Context, r *domain.Restaurant) error {
	if err := s.repo.UpsertRestaurant(ctx, r); err != nil {
		s.log.Error("upsert restaurant", zap.String("restaurant_id", r.ID), zap.Error(err))
		return err
	}
	s.invalidate(r.ID)
	return nil
}

func (s *Service) invalidate(restaurantID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.DeleteMenu(ctx, restaurantID); err != nil {
		s.log.Warn("menu cache invalidate error", zap.String("restaurant_id", restaurantID), zap.Error(err))
	}
}
