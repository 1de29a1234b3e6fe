package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fjod/go_cart/menu-order/internal/domain"
)

type seedFile struct {
	Restaurants []seedRestaurant `json:"restaurants"`
}

// seedRestaurant keeps prices loosely typed so seed files may use numbers
// or numeric strings.
type seedRestaurant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Delivery struct {
		Enabled bool `json:"enabled"`
		Takeout bool `json:"takeout"`
		Tax     any  `json:"tax"`
	} `json:"delivery"`
	PaymentMethods []string `json:"payment_methods"`
	Products       []struct {
		ID                 string `json:"id"`
		Name               string `json:"name"`
		Price              any    `json:"price"`
		CategoryID         string `json:"category_id"`
		ObservationEnabled bool   `json:"observation_enabled"`
		Featured           bool   `json:"featured"`
		Options            []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Price any    `json:"price"`
		} `json:"options"`
	} `json:"products"`
}

// Seed publishes every restaurant found in the JSON file at path.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read menu seed: %w", err)
	}

	restaurants, err := parseSeed(raw)
	if err != nil {
		return 0, err
	}

	for _, r := range restaurants {
		if err := s.Publish(ctx, r); err != nil {
			return 0, fmt.Errorf("publish restaurant %s: %w", r.ID, err)
		}
	}
	return len(restaurants), nil
}

func parseSeed(raw []byte) ([]*domain.Restaurant, error) {
	var file seedFile
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode menu seed: %w", err)
	}

	out := make([]*domain.Restaurant, 0, len(file.Restaurants))
	for _, sr := range file.Restaurants {
		if sr.ID == "" {
			return nil, fmt.Errorf("menu seed: restaurant without id")
		}
		tax, err := domain.ParseMoney(sr.Delivery.Tax)
		if err != nil {
			return nil, fmt.Errorf("restaurant %s delivery tax: %w", sr.ID, err)
		}
		r := &domain.Restaurant{
			ID:    sr.ID,
			Name:  sr.Name,
			Phone: sr.Phone,
			Delivery: domain.DeliveryConfig{
				Enabled: sr.Delivery.Enabled,
				Takeout: sr.Delivery.Takeout,
				Tax:     tax,
			},
		}
		for _, m := range sr.PaymentMethods {
			if pm := domain.PaymentMethod(m); pm.Valid() {
				r.PaymentMethods = append(r.PaymentMethods, pm)
			}
		}
		for _, sp := range sr.Products {
			price, errPrice := domain.ParseMoney(sp.Price)
			if errPrice != nil {
				return nil, fmt.Errorf("product %s price: %w", sp.ID, errPrice)
			}
			p := domain.Product{
				ID:                 sp.ID,
				Name:               sp.Name,
				Price:              price,
				CategoryID:         sp.CategoryID,
				ObservationEnabled: sp.ObservationEnabled,
				Featured:           sp.Featured,
			}
			for _, so := range sp.Options {
				optPrice, errOpt := domain.ParseMoney(so.Price)
				if errOpt != nil {
					return nil, fmt.Errorf("option %s price: %w", so.ID, errOpt)
				}
				p.Options = append(p.Options, domain.Option{ID: so.ID, Name: so.Name, Price: optPrice})
			}
			r.Products = append(r.Products, p)
		}
		out = append(out, r)
	}
	return out, nil
}
