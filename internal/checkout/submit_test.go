package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/fjod/go_cart/menu-order/internal/repository"
	"github.com/fjod/go_cart/menu-order/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderStoreMock struct {
	m       sync.Mutex
	orders  []domain.Order
	errs    []error // consumed one per call; the last one repeats
	attempt int
}

func (s *orderStoreMock) CreateOrder(_ context.Context, order *domain.Order) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.attempt++
	if len(s.errs) > 0 {
		err := s.errs[0]
		if len(s.errs) > 1 {
			s.errs = s.errs[1:]
		}
		if err != nil {
			return err
		}
	}
	s.orders = append(s.orders, *order)
	return nil
}

type publisherMock struct {
	published []domain.Order
	err       error
}

func (p *publisherMock) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	p.published = append(p.published, order)
	return p.err
}

var submitTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newSubmitter(store OrderStore, events EventPublisher, breaker *circuitbreaker.Breaker) *Submitter {
	s := NewSubmitter(store, events, breaker, "wa.me", zap.NewNop())
	s.now = func() time.Time { return submitTime }
	n := 1233
	s.orderNumber = func(now time.Time) string {
		n++
		return fmt.Sprintf("%s-%d", now.Format("20060102"), n)
	}
	return s
}

// readyPipeline returns a pipeline at Summary: 3 burgers with bacon, delivered, paid with pix.
func readyPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, _ := newPipeline(t, domain.Draft{}, &providerMock{restaurant: testRestaurant()})
	toPayment(t, p)
	require.NoError(t, p.SelectPayment(context.Background(), domain.PaymentPix))
	stage, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageSummary, stage)
	return p
}

func TestSubmit_EmptyCart(t *testing.T) {
	store := &orderStoreMock{}
	p, _ := newPipeline(t, domain.Draft{}, &providerMock{restaurant: testRestaurant()})

	sub, err := newSubmitter(store, nil, nil).Submit(context.Background(), p)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, sub)
	assert.Equal(t, 0, store.attempt)
}

func TestSubmit_RequiresSummaryStage(t *testing.T) {
	store := &orderStoreMock{}
	p, _ := newPipeline(t, domain.Draft{}, &providerMock{restaurant: testRestaurant()})
	toPayment(t, p)

	_, err := newSubmitter(store, nil, nil).Submit(context.Background(), p)

	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, store.attempt)
}

func TestSubmit_Success(t *testing.T) {
	store := &orderStoreMock{}
	events := &publisherMock{}
	p := readyPipeline(t)

	sub, err := newSubmitter(store, events, nil).Submit(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "20240101-1234", sub.Order.OrderNumber)
	assert.Equal(t, "83.00", sub.Order.Total.StringFixed(2))
	assert.Equal(t, "8.00", sub.Order.DeliveryTax.StringFixed(2))
	assert.Equal(t, domain.OrderStatusPending, sub.Order.Status)
	assert.Equal(t, "r1", sub.Order.RestaurantID)
	assert.Equal(t, submitTime, sub.Order.CreatedAt)

	assert.True(t, strings.HasPrefix(sub.Message, "*Pedido #20240101-1234*"))
	assert.True(t, strings.HasPrefix(sub.WhatsAppURL, "https://wa.me/5511999990000?text="))

	require.Len(t, store.orders, 1)
	assert.Equal(t, sub.Order.ID, store.orders[0].ID)
	require.Len(t, events.published, 1)

	assert.True(t, p.Cart().Empty())
	assert.Equal(t, domain.StageCart, p.Stage())
	assert.Empty(t, p.Draft().OrderNumber)
}

func TestSubmit_WithoutOrderStoreStillBuildsLink(t *testing.T) {
	p := readyPipeline(t)

	sub, err := newSubmitter(nil, nil, nil).Submit(context.Background(), p)

	require.NoError(t, err)
	assert.NotEmpty(t, sub.WhatsAppURL)
	assert.True(t, p.Cart().Empty())
}

func TestSubmit_StoreFailureKeepsDraft(t *testing.T) {
	store := &orderStoreMock{errs: []error{errors.New("connection refused")}}
	p := readyPipeline(t)

	sub, err := newSubmitter(store, nil, nil).Submit(context.Background(), p)

	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Nil(t, sub)
	assert.Equal(t, 3, p.Cart().Count())
	assert.Equal(t, domain.StageSummary, p.Stage())
	assert.Equal(t, "20240101-1234", p.Draft().OrderNumber)
}

func TestSubmit_RetryReusesOrderNumber(t *testing.T) {
	store := &orderStoreMock{errs: []error{errors.New("timeout"), nil}}
	p := readyPipeline(t)
	s := newSubmitter(store, nil, nil)

	_, err := s.Submit(context.Background(), p)
	require.Error(t, err)

	sub, err := s.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "20240101-1234", sub.Order.OrderNumber)
}

func TestSubmit_OrderNumberCollisionIsRetried(t *testing.T) {
	store := &orderStoreMock{errs: []error{repository.ErrDuplicateOrder, nil}}
	p := readyPipeline(t)

	sub, err := newSubmitter(store, nil, nil).Submit(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, "20240101-1235", sub.Order.OrderNumber)
	assert.True(t, strings.HasPrefix(sub.Message, "*Pedido #20240101-1235*"))
	assert.Equal(t, 2, store.attempt)
}

func TestSubmit_OrderNumberCollisionsExhausted(t *testing.T) {
	store := &orderStoreMock{errs: []error{repository.ErrDuplicateOrder}}
	p := readyPipeline(t)

	_, err := newSubmitter(store, nil, nil).Submit(context.Background(), p)

	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.ErrorIs(t, err, repository.ErrDuplicateOrder)
	assert.Equal(t, maxNumberAttempts, store.attempt)
	assert.False(t, p.Cart().Empty())
}

func TestSubmit_EventFailureDoesNotFailSubmission(t *testing.T) {
	store := &orderStoreMock{}
	events := &publisherMock{err: errors.New("broker down")}
	p := readyPipeline(t)

	_, err := newSubmitter(store, events, nil).Submit(context.Background(), p)

	require.NoError(t, err)
	assert.Len(t, store.orders, 1)
	assert.True(t, p.Cart().Empty())
}

func TestSubmit_DisabledPaymentSendsBackToPayment(t *testing.T) {
	r := testRestaurant()
	p, _ := newPipeline(t, domain.Draft{}, &providerMock{restaurant: r})
	toPayment(t, p)
	require.NoError(t, p.SelectPayment(context.Background(), domain.PaymentPix))
	_, err := p.Next(context.Background())
	require.NoError(t, err)

	r.PaymentMethods = []domain.PaymentMethod{domain.PaymentCash}

	_, err = newSubmitter(&orderStoreMock{}, nil, nil).Submit(context.Background(), p)

	assert.True(t, IsValidation(err))
	assert.Equal(t, domain.StagePayment, p.Stage())
	assert.Equal(t, domain.PaymentCash, p.Draft().PaymentMethod)
}

func TestSubmit_OpenBreakerRejectsWrites(t *testing.T) {
	settings := circuitbreaker.DefaultSettings("orders")
	settings.ConsecutiveFails = 1
	settings.Ignore = []error{repository.ErrDuplicateOrder}
	breaker := circuitbreaker.New(settings, zap.NewNop())

	store := &orderStoreMock{errs: []error{errors.New("db down")}}
	p := readyPipeline(t)
	s := newSubmitter(store, nil, breaker)

	_, err := s.Submit(context.Background(), p)
	require.ErrorIs(t, err, ErrSubmissionFailed)

	_, err = s.Submit(context.Background(), p)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 1, store.attempt)
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber(submitTime)

	assert.Regexp(t, `^20240101-\d{4}$`, n)
}

// gatedStore holds every CreateOrder until release is closed.
type gatedStore struct {
	orderStoreMock
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.orderStoreMock.CreateOrder(ctx, order)
}

func TestSubmit_ConcurrentSubmitPersistsOneOrder(t *testing.T) {
	store := newGatedStore()
	p := readyPipeline(t)
	s := newSubmitter(store, nil, nil)

	first := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), p)
		first <- err
	}()
	<-store.entered

	_, err := s.Submit(context.Background(), p)
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(store.release)
	require.NoError(t, <-first)

	assert.Len(t, store.orders, 1)
	assert.Equal(t, 1, store.attempt)
	assert.True(t, p.Cart().Empty())
}

func TestSubmit_LinesAddedDuringWriteSurvive(t *testing.T) {
	store := newGatedStore()
	p := readyPipeline(t)
	s := newSubmitter(store, nil, nil)

	done := make(chan *Submission, 1)
	go func() {
		sub, err := s.Submit(context.Background(), p)
		assert.NoError(t, err)
		done <- sub
	}()
	<-store.entered

	fries := domain.LineItem{ProductID: "fries", Name: "Fries", Price: decimal.RequireFromString("9.00"), Quantity: 1}
	_, err := p.Cart().Add(fries)
	require.NoError(t, err)
	_, err = p.Cart().Add(burgerWithBacon(1))
	require.NoError(t, err)

	close(store.release)
	sub := <-done
	require.NotNil(t, sub)

	require.Len(t, sub.Order.Items, 1)
	assert.Equal(t, 3, sub.Order.Items[0].Quantity)

	items := p.Cart().Items()
	require.Len(t, items, 2)
	assert.Equal(t, "burger", items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "fries", items[1].ProductID)

	d := p.Draft()
	assert.Equal(t, domain.StageCart, d.Stage)
	assert.Empty(t, d.OrderNumber)
	assert.False(t, d.Submitting)
}

func TestSubmit_FailureReleasesClaim(t *testing.T) {
	store := &orderStoreMock{errs: []error{errors.New("connection refused"), nil}}
	p := readyPipeline(t)
	s := newSubmitter(store, nil, nil)

	_, err := s.Submit(context.Background(), p)
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.False(t, p.Draft().Submitting)

	_, err = s.Submit(context.Background(), p)
	assert.NoError(t, err)
}
