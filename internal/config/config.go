package config

import (
	"time"

	"github.com/fjod/go_cart/menu-order/internal/repository"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	AppEnv          string        `envconfig:"APP_ENV" default:"prod"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	SessionIdle   time.Duration `envconfig:"SESSION_IDLE" default:"30m"`

	MongoURI              string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName           string        `envconfig:"MONGO_DB_NAME" default:"menu"`
	MongoMaxPool          uint64        `envconfig:"MONGO_MAX_POOL" default:"100"`
	MongoMinPool          uint64        `envconfig:"MONGO_MIN_POOL" default:"10"`
	MongoConnectTimeout   time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
	MongoSelectionTimeout time.Duration `envconfig:"MONGO_SELECTION_TIMEOUT" default:"5s"`
	MenuSeed              string        `envconfig:"MENU_SEED_PATH" default:""`

	OrderDBDriver string `envconfig:"ORDER_DB_DRIVER" default:"postgres"`
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName        string `envconfig:"DB_NAME" default:"orders"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"orders.db"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:""`
	WhatsAppHost string   `envconfig:"WHATSAPP_HOST" default:"wa.me"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Mongo() repository.MongoSettings {
	return repository.MongoSettings{
		URI:                    c.MongoURI,
		Database:               c.MongoDBName,
		MaxPoolSize:            c.MongoMaxPool,
		MinPoolSize:            c.MongoMinPool,
		ConnectTimeout:         c.MongoConnectTimeout,
		ServerSelectionTimeout: c.MongoSelectionTimeout,
	}
}

func (c *Config) OrderDB() *repository.Credentials {
	return &repository.Credentials{
		Driver:     c.OrderDBDriver,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SQLitePath: c.SQLitePath,
	}
}
