package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// restaurantDocument mirrors what the admin panel writes. Prices may be
// stored as numbers, numeric strings or Decimal128 and are normalised when
// converted to the domain.
type restaurantDocument struct {
	RestaurantID   string            `bson:"restaurant_id"`
	Name           string            `bson:"name"`
	Phone          string            `bson:"phone"`
	Delivery       deliveryDocument  `bson:"delivery"`
	PaymentMethods []string          `bson:"payment_methods"`
	Products       []productDocument `bson:"products"`
}

type deliveryDocument struct {
	Enabled bool `bson:"enabled"`
	Takeout bool `bson:"takeout"`
	Tax     any  `bson:"tax"`
}

type productDocument struct {
	ID                 string           `bson:"id"`
	Name               string           `bson:"name"`
	Price              any              `bson:"price"`
	CategoryID         string           `bson:"category_id"`
	Options            []optionDocument `bson:"options,omitempty"`
	ObservationEnabled bool             `bson:"observation_enabled"`
	Featured           bool             `bson:"featured"`
}

type optionDocument struct {
	ID    string `bson:"id"`
	Name  string `bson:"name"`
	Price any    `bson:"price"`
}

type mongoCatalogRepository struct {
	collection *mongo.Collection
}

func NewMongoCatalogRepository(db *mongo.Database) *mongoCatalogRepository {
	return &mongoCatalogRepository{
		collection: db.Collection("restaurants"),
	}
}

func (m *mongoCatalogRepository) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	var doc restaurantDocument

	filter := bson.M{"restaurant_id": restaurantID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	return doc.toDomain()
}

func (m *mongoCatalogRepository) UpsertRestaurant(ctx context.Context, restaurant *domain.Restaurant) error {
	doc, err := fromDomain(restaurant)
	if err != nil {
		return err
	}

	filter := bson.M{"restaurant_id": restaurant.ID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert restaurant: %w", err)
	}
	return nil
}

func (m *mongoCatalogRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (doc restaurantDocument) toDomain() (*domain.Restaurant, error) {
	tax, err := money(doc.Delivery.Tax)
	if err != nil {
		return nil, fmt.Errorf("restaurant %s delivery tax: %w", doc.RestaurantID, err)
	}

	r := &domain.Restaurant{
		ID:    doc.RestaurantID,
		Name:  doc.Name,
		Phone: doc.Phone,
		Delivery: domain.DeliveryConfig{
			Enabled: doc.Delivery.Enabled,
			Takeout: doc.Delivery.Takeout,
			Tax:     tax,
		},
		Products: make([]domain.Product, 0, len(doc.Products)),
	}

	for _, raw := range doc.PaymentMethods {
		if m := domain.PaymentMethod(raw); m.Valid() {
			r.PaymentMethods = append(r.PaymentMethods, m)
		}
	}

	for _, p := range doc.Products {
		price, errPrice := money(p.Price)
		if errPrice != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, errPrice)
		}
		product := domain.Product{
			ID:                 p.ID,
			Name:               p.Name,
			Price:              price,
			CategoryID:         p.CategoryID,
			ObservationEnabled: p.ObservationEnabled,
			Featured:           p.Featured,
		}
		for _, o := range p.Options {
			optPrice, errOpt := money(o.Price)
			if errOpt != nil {
				return nil, fmt.Errorf("option %s of product %s price: %w", o.ID, p.ID, errOpt)
			}
			product.Options = append(product.Options, domain.Option{ID: o.ID, Name: o.Name, Price: optPrice})
		}
		r.Products = append(r.Products, product)
	}
	return r, nil
}

func fromDomain(r *domain.Restaurant) (restaurantDocument, error) {
	tax, err := decimal128(r.Delivery.Tax)
	if err != nil {
		return restaurantDocument{}, err
	}
	doc := restaurantDocument{
		RestaurantID: r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		Delivery: deliveryDocument{
			Enabled: r.Delivery.Enabled,
			Takeout: r.Delivery.Takeout,
			Tax:     tax,
		},
		Products: make([]productDocument, 0, len(r.Products)),
	}
	for _, m := range r.PaymentMethods {
		doc.PaymentMethods = append(doc.PaymentMethods, string(m))
	}
	for _, p := range r.Products {
		price, errPrice := decimal128(p.Price)
		if errPrice != nil {
			return restaurantDocument{}, errPrice
		}
		pd := productDocument{
			ID:                 p.ID,
			Name:               p.Name,
			Price:              price,
			CategoryID:         p.CategoryID,
			ObservationEnabled: p.ObservationEnabled,
			Featured:           p.Featured,
		}
		for _, o := range p.Options {
			optPrice, errOpt := decimal128(o.Price)
			if errOpt != nil {
				return restaurantDocument{}, errOpt
			}
			pd.Options = append(pd.Options, optionDocument{ID: o.ID, Name: o.Name, Price: optPrice})
		}
		doc.Products = append(doc.Products, pd)
	}
	return doc, nil
}

func money(v any) (decimal.Decimal, error) {
	if d, ok := v.(primitive.Decimal128); ok {
		v = d.String()
	}
	return domain.ParseMoney(v)
}

func decimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode %s as decimal128: %w", d, err)
	}
	return out, nil
}
