package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultDraftTTL = 7 * 24 * time.Hour
	defaultMenuTTL  = 15 * time.Minute
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:   client,
		draftTTL: defaultDraftTTL,
		menuTTL:  defaultMenuTTL,
	}
}

type RedisCache struct {
	client   *redis.Client
	draftTTL time.Duration
	menuTTL  time.Duration
}

// WithDraftTTL overrides how long an idle session draft is kept.
func (r *RedisCache) WithDraftTTL(ttl time.Duration) *RedisCache {
	if ttl > 0 {
		r.draftTTL = ttl
	}
	return r
}

func (r *RedisCache) Get(ctx context.Context, sessionID string) (*domain.Draft, error) {
	var draft domain.Draft
	if err := r.get(ctx, draftKey(sessionID), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *RedisCache) Set(ctx context.Context, sessionID string, draft *domain.Draft) error {
	return r.set(ctx, draftKey(sessionID), draft, r.draftTTL)
}

func (r *RedisCache) Delete(ctx context.Context, sessionID string) error {
	return r.del(ctx, draftKey(sessionID))
}

func (r *RedisCache) GetMenu(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	if err := r.get(ctx, menuKey(restaurantID), &restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *RedisCache) SetMenu(ctx context.Context, restaurant *domain.Restaurant) error {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.set(ctx, menuKey(restaurant.ID), restaurant, r.menuTTL+jitter)
}

func (r *RedisCache) DeleteMenu(ctx context.Context, restaurantID string) error {
	return r.del(ctx, menuKey(restaurantID))
}

func (r *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if errUnmarshal := json.Unmarshal(data, dst); errUnmarshal != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, errUnmarshal)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	if errSet := r.client.Set(ctx, key, data, ttl).Err(); errSet != nil {
		return fmt.Errorf("redis set failed: %w", errSet)
	}
	return nil
}

func (r *RedisCache) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("order:%s", sessionID)
}

func menuKey(restaurantID string) string {
	return fmt.Sprintf("menu:%s", restaurantID)
}
