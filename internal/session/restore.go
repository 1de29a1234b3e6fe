package session

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/menu-order/internal/cache"
	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RestoreResult is decided once when a session starts. Restored is false
// when nothing usable was stored and Draft is the empty draft.
type RestoreResult struct {
	Draft    domain.Draft
	Restored bool
}

func Empty(restaurantID string) RestoreResult {
	return RestoreResult{Draft: domain.Draft{RestaurantID: restaurantID}}
}

// Restore loads the stored draft of key. Missing, corrupt or foreign
// snapshots fall back to the empty draft and are never reported as errors.
func Restore(ctx context.Context, store cache.DraftCache, key, restaurantID string, log *zap.Logger) RestoreResult {
	stored, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return Empty(restaurantID)
	case err != nil:
		log.Warn("discarding stored draft", zap.String("session", key), zap.Error(err))
		return Empty(restaurantID)
	case stored.RestaurantID != "" && stored.RestaurantID != restaurantID:
		log.Warn("stored draft belongs to another restaurant",
			zap.String("session", key),
			zap.String("stored", stored.RestaurantID))
		return Empty(restaurantID)
	}

	return RestoreResult{Draft: sanitize(*stored, restaurantID), Restored: true}
}

func sanitize(d domain.Draft, restaurantID string) domain.Draft {
	d.RestaurantID = restaurantID
	d.Items = domain.Normalize(d.Items)
	for i := range d.Items {
		if d.Items[i].ID == "" {
			d.Items[i].ID = domain.NewLineID()
		}
	}

	if d.Stage < domain.StageCart || d.Stage > domain.StageSummary || len(d.Items) == 0 {
		d.Stage = domain.StageCart
	}
	if d.PaymentMethod != "" && !d.PaymentMethod.Valid() {
		d.PaymentMethod = ""
	}

	switch d.Fulfillment {
	case domain.FulfillmentPickup:
		d.Address = nil
	case domain.FulfillmentDelivery:
	default:
		d.Fulfillment = domain.FulfillmentUnset
		d.Address = nil
	}
	if d.Address == nil || d.DeliveryTax.IsNegative() {
		d.DeliveryTax = decimal.Zero
	}
	return d
}
