package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/menu-order/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrations embed.FS

// SQLRepository keeps orders in Postgres, or in SQLite for local runs. Both
// accept the same $n placeholders.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

func NewSQLRepository(cred *Credentials) (*SQLRepository, error) {
	var (
		dsn    string
		driver = cred.Driver
	)
	switch driver {
	case DriverPostgres, "":
		driver = DriverPostgres
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cred.Host,
			cred.Port,
			cred.User,
			cred.Password,
			cred.DBName)
	case DriverSQLite:
		dsn = cred.SQLitePath
	default:
		return nil, fmt.Errorf("unsupported order database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(10)
	}
	return &SQLRepository{db: db, driver: driver}, nil
}

func (r *SQLRepository) RunMigrations() error {
	var (
		target database.Driver
		err    error
	)
	switch r.driver {
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(r.db, &migratesqlite.Config{
			MigrationsTable: "orders_schema_migrations",
		})
	default:
		target, err = postgres.WithInstance(r.db, &postgres.Config{
			MigrationsTable: "orders_schema_migrations",
		})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrations, "migrations/"+r.driver)
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, r.driver, target)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *SQLRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	var addressJSON any
	if order.Address != nil {
		raw, errAddr := json.Marshal(order.Address)
		if errAddr != nil {
			return fmt.Errorf("failed to marshal order address: %w", errAddr)
		}
		addressJSON = string(raw)
	}

	query := `INSERT INTO orders (id, restaurant_id, order_number, items, delivery_tax, total, status, address, payment_method, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID.String(),
		order.RestaurantID,
		order.OrderNumber,
		string(itemsJSON),
		order.DeliveryTax.StringFixed(2),
		order.Total.StringFixed(2),
		string(order.Status),
		addressJSON,
		string(order.PaymentMethod),
		order.CreatedAt)

	if insertErr != nil {
		if isUniqueViolation(insertErr) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

const selectOrder = `SELECT id, restaurant_id, order_number, items, delivery_tax, total, status, address, payment_method, created_at
	          FROM orders`

func (r *SQLRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrder+` WHERE id = $1`, id.String())

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *SQLRepository) ListOrdersByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		selectOrder+` WHERE restaurant_id = $1 ORDER BY created_at DESC LIMIT $2`,
		restaurantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders by restaurant: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, errScan := scanOrder(rows)
		if errScan != nil {
			return nil, fmt.Errorf("scan order row: %w", errScan)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		order       domain.Order
		itemsJSON   []byte
		addressJSON []byte
		status      string
		payment     string
	)
	err := row.Scan(
		&order.ID,
		&order.RestaurantID,
		&order.OrderNumber,
		&itemsJSON,
		&order.DeliveryTax,
		&order.Total,
		&status,
		&addressJSON,
		&payment,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	order.PaymentMethod = domain.PaymentMethod(payment)

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if len(addressJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addressJSON, &addr); err != nil {
			return nil, fmt.Errorf("unmarshal order address: %w", err)
		}
		order.Address = &addr
	}
	return &order, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}
