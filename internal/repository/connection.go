package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettings describes the catalog database. Zero values fall back to
// the defaults below.
type MongoSettings struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

const (
	defaultMongoMaxPool          = 100
	defaultMongoConnectTimeout   = 10 * time.Second
	defaultMongoSelectionTimeout = 5 * time.Second
	mongoDisconnectTimeout       = 5 * time.Second
)

func (s MongoSettings) clientOptions() *options.ClientOptions {
	if s.MaxPoolSize == 0 {
		s.MaxPoolSize = defaultMongoMaxPool
	}
	if s.MinPoolSize > s.MaxPoolSize {
		s.MinPoolSize = s.MaxPoolSize
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = defaultMongoConnectTimeout
	}
	if s.ServerSelectionTimeout <= 0 {
		s.ServerSelectionTimeout = defaultMongoSelectionTimeout
	}
	return options.Client().
		ApplyURI(s.URI).
		SetAppName("menu-order").
		SetConnectTimeout(s.ConnectTimeout).
		SetServerSelectionTimeout(s.ServerSelectionTimeout).
		SetMaxPoolSize(s.MaxPoolSize).
		SetMinPoolSize(s.MinPoolSize)
}

// ConnectMongoDB opens the catalog database and checks it answers. The
// client is released again when the check fails.
func ConnectMongoDB(ctx context.Context, settings MongoSettings) (*mongo.Database, error) {
	if settings.Database == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, settings.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if errPing := client.Ping(ctx, nil); errPing != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", errPing)
	}

	return client.Database(settings.Database), nil
}
