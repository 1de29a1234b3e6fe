package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/cache"
	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	m           sync.Mutex
	restaurants map[string]*domain.Restaurant
	err         error
	calls       atomic.Int32
	delay       time.Duration
}

func (m *mockRepository) GetRestaurant(_ context.Context, id string) (*domain.Restaurant, error) {
	m.calls.Add(1)
	time.Sleep(m.delay)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.restaurants[id]
	if !ok {
		return nil, repository.ErrRestaurantNotFound
	}
	return r, nil
}

func (m *mockRepository) UpsertRestaurant(_ context.Context, r *domain.Restaurant) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.restaurants == nil {
		m.restaurants = map[string]*domain.Restaurant{}
	}
	m.restaurants[r.ID] = r
	return nil
}

type mockMenuCache struct {
	m       sync.Mutex
	menus   map[string]*domain.Restaurant
	getErr  error
	deleted []string
}

func (c *mockMenuCache) GetMenu(_ context.Context, id string) (*domain.Restaurant, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	r, ok := c.menus[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return r, nil
}

func (c *mockMenuCache) SetMenu(_ context.Context, r *domain.Restaurant) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.menus == nil {
		c.menus = map[string]*domain.Restaurant{}
	}
	c.menus[r.ID] = r
	return nil
}

func (c *mockMenuCache) DeleteMenu(_ context.Context, id string) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.menus, id)
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *mockMenuCache) cached(id string) bool {
	c.m.Lock()
	defer c.m.Unlock()
	_, ok := c.menus[id]
	return ok
}

func restaurant() *domain.Restaurant {
	return &domain.Restaurant{
		ID:   "r1",
		Name: "Lanchonete",
		Products: []domain.Product{
			{ID: "burger", Name: "Burger", Price: decimal.NewFromInt(20)},
		},
	}
}

func TestRestaurant_CacheHit(t *testing.T) {
	repo := &mockRepository{}
	menus := &mockMenuCache{menus: map[string]*domain.Restaurant{"r1": restaurant()}}
	svc := NewService(repo, menus, zap.NewNop())

	r, err := svc.Restaurant(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Lanchonete", r.Name)
	assert.Equal(t, int32(0), repo.calls.Load())
}

func TestRestaurant_MissFillsCache(t *testing.T) {
	repo := &mockRepository{restaurants: map[string]*domain.Restaurant{"r1": restaurant()}}
	menus := &mockMenuCache{}
	svc := NewService(repo, menus, zap.NewNop())

	r, err := svc.Restaurant(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)

	assert.Eventually(t, func() bool { return menus.cached("r1") }, time.Second, 10*time.Millisecond)
}

func TestRestaurant_CacheErrorFallsBackToRepository(t *testing.T) {
	repo := &mockRepository{restaurants: map[string]*domain.Restaurant{"r1": restaurant()}}
	menus := &mockMenuCache{getErr: errors.New("redis down")}
	svc := NewService(repo, menus, zap.NewNop())

	r, err := svc.Restaurant(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
}

func TestRestaurant_NotFound(t *testing.T) {
	svc := NewService(&mockRepository{}, &mockMenuCache{}, zap.NewNop())

	r, err := svc.Restaurant(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrRestaurantNotFound)
	assert.Nil(t, r)
}

func TestRestaurant_ConcurrentMissesShareLookup(t *testing.T) {
	repo := &mockRepository{
		restaurants: map[string]*domain.Restaurant{"r1": restaurant()},
		delay:       50 * time.Millisecond,
	}
	svc := NewService(repo, &mockMenuCache{}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Restaurant(context.Background(), "r1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, repo.calls.Load(), int32(10))
}

func TestProduct(t *testing.T) {
	repo := &mockRepository{restaurants: map[string]*domain.Restaurant{"r1": restaurant()}}
	svc := NewService(repo, &mockMenuCache{}, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Product(ctx, "r1", "burger")
	require.NoError(t, err)
	assert.Equal(t, "Burger", p.Name)

	_, err = svc.Product(ctx, "r1", "pizza")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPublish_InvalidatesCache(t *testing.T) {
	repo := &mockRepository{}
	menus := &mockMenuCache{menus: map[string]*domain.Restaurant{"r1": restaurant()}}
	svc := NewService(repo, menus, zap.NewNop())

	updated := restaurant()
	updated.Name = "Lanchonete Nova"
	require.NoError(t, svc.Publish(context.Background(), updated))

	assert.Equal(t, []string{"r1"}, menus.deleted)
	r, err := svc.Restaurant(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Lanchonete Nova", r.Name)
}

func TestPublish_RepositoryError(t *testing.T) {
	repo := &mockRepository{err: errors.New("mongo down")}
	menus := &mockMenuCache{}
	svc := NewService(repo, menus, zap.NewNop())

	assert.Error(t, svc.Publish(context.Background(), restaurant()))
	assert.Empty(t, menus.deleted)
}
