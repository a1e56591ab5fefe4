package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
	"github.com/quayside/storefront/internal/domain/repository"
)

// DBPool is the subset of pgxpool.Pool the storage layer uses; pgxmock
// satisfies it in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL. Money is stored
// as integer cents and converted to decimals at the boundary.
type Storage struct {
	pool   DBPool
	logger *slog.Logger
}

type catalogRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS variants (
            product_id TEXT NOT NULL REFERENCES products(id),
            sku TEXT NOT NULL,
            price_cents BIGINT NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 0,
            weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
            length_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
            width_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
            height_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
            PRIMARY KEY (product_id, sku)
        )`,
		`CREATE TABLE IF NOT EXISTS finalized_orders (
            id UUID PRIMARY KEY,
            gateway_order_id TEXT NOT NULL,
            completed BOOLEAN NOT NULL DEFAULT FALSE,
            subtotal_cents BIGINT NOT NULL,
            shipping_cents BIGINT NOT NULL,
            tax_cents BIGINT NOT NULL,
            total_cents BIGINT NOT NULL,
            full_name TEXT NOT NULL,
            address_line1 TEXT NOT NULL,
            address_line2 TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL,
            region TEXT NOT NULL,
            postal_code TEXT NOT NULL,
            country TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            payment_source TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS finalized_order_items (
            order_id UUID NOT NULL REFERENCES finalized_orders(id),
            product_id TEXT NOT NULL,
            sku TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            unit_price_cents BIGINT NOT NULL,
            quantity INTEGER NOT NULL
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_finalized_orders_gateway ON finalized_orders(gateway_order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_finalized_orders_pending ON finalized_orders(created_at) WHERE NOT completed`,
		`CREATE INDEX IF NOT EXISTS idx_finalized_order_items_order ON finalized_order_items(order_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

func cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func centsPtr(d *decimal.Decimal) *int64 {
	if d == nil {
		return nil
	}
	v := cents(*d)
	return &v
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// --- CatalogRepository implementation ---

func (r *catalogRepository) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	const productQuery = `SELECT id, name, description FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, productQuery, productID).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	const variantQuery = `SELECT sku, price_cents, quantity, weight_kg, length_cm, width_cm, height_cm
                          FROM variants WHERE product_id=$1 ORDER BY sku`
	rows, err := r.storage.pool.Query(ctx, variantQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v model.Variant
		var priceCents int64
		if err := rows.Scan(&v.SKU, &priceCents, &v.Quantity, &v.WeightKG, &v.Dimensions.Length, &v.Dimensions.Width, &v.Dimensions.Height); err != nil {
			return nil, err
		}
		v.Price = fromCents(priceCents)
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) DecrementVariantStock(ctx context.Context, productID, variantSKU string, by int) error {
	const query = `UPDATE variants SET quantity = quantity - $3
                   WHERE product_id=$1 AND sku=$2 AND quantity >= $3`
	tag, err := r.storage.pool.Exec(ctx, query, productID, variantSKU, by)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s by %d", domainErrors.ErrInsufficientStock, productID, variantSKU, by)
	}
	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.FinalizedOrder) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO finalized_orders
            (id, gateway_order_id, completed, subtotal_cents, shipping_cents, tax_cents, total_cents,
             full_name, address_line1, address_line2, city, region, postal_code, country,
             payment_method, payment_source, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
		_, err := tx.Exec(ctx, insertOrder,
			order.ID,
			order.GatewayOrderID,
			order.Completed,
			cents(order.Price.Subtotal),
			centsPtr(order.Price.Shipping),
			centsPtr(order.Price.Tax),
			cents(order.Price.Total),
			order.Customer.FullName,
			order.Customer.Address.Line1,
			order.Customer.Address.Line2,
			order.Customer.Address.City,
			order.Customer.Address.Region,
			order.Customer.Address.PostalCode,
			order.Customer.Address.Country,
			string(order.Customer.PaymentMethod),
			order.Customer.PaymentSource,
			order.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainErrors.ErrDuplicateOrder
			}
			return err
		}

		const insertItem = `INSERT INTO finalized_order_items
            (order_id, product_id, sku, name, description, unit_price_cents, quantity)
            VALUES ($1,$2,$3,$4,$5,$6,$7)`
		for _, item := range order.Items {
			if _, err := tx.Exec(ctx, insertItem,
				order.ID, item.ProductID, item.VariantSKU, item.Name, item.Description,
				cents(item.UnitPrice), item.Quantity,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) CountByGatewayOrderID(ctx context.Context, gatewayOrderID string) (int, error) {
	const query = `SELECT COUNT(*) FROM finalized_orders WHERE gateway_order_id=$1`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, gatewayOrderID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.FinalizedOrder, error) {
	const orderQuery = `SELECT id, gateway_order_id, completed, subtotal_cents, shipping_cents, tax_cents, total_cents,
               full_name, address_line1, address_line2, city, region, postal_code, country,
               payment_method, payment_source, created_at
        FROM finalized_orders WHERE gateway_order_id=$1`

	var (
		order                     model.FinalizedOrder
		subtotalCents, totalCents int64
		shippingCents, taxCents   *int64
		paymentMethod             string
	)
	err := r.storage.pool.QueryRow(ctx, orderQuery, gatewayOrderID).Scan(
		&order.ID,
		&order.GatewayOrderID,
		&order.Completed,
		&subtotalCents,
		&shippingCents,
		&taxCents,
		&totalCents,
		&order.Customer.FullName,
		&order.Customer.Address.Line1,
		&order.Customer.Address.Line2,
		&order.Customer.Address.City,
		&order.Customer.Address.Region,
		&order.Customer.Address.PostalCode,
		&order.Customer.Address.Country,
		&paymentMethod,
		&order.Customer.PaymentSource,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	order.Customer.PaymentMethod = model.PaymentMethod(paymentMethod)
	order.Price.Subtotal = fromCents(subtotalCents)
	order.Price.Total = fromCents(totalCents)
	if shippingCents != nil {
		shipping := fromCents(*shippingCents)
		order.Price.Shipping = &shipping
	}
	if taxCents != nil {
		tax := fromCents(*taxCents)
		order.Price.Tax = &tax
	}

	const itemsQuery = `SELECT product_id, sku, name, description, unit_price_cents, quantity
                        FROM finalized_order_items WHERE order_id=$1`
	rows, err := r.storage.pool.Query(ctx, itemsQuery, order.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item model.FinalizedItem
		var unitCents int64
		if err := rows.Scan(&item.ProductID, &item.VariantSKU, &item.Name, &item.Description, &unitCents, &item.Quantity); err != nil {
			return nil, err
		}
		item.UnitPrice = fromCents(unitCents)
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE finalized_orders SET completed=TRUE WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// ListIncomplete returns finalized orders whose gateway capture has not
// completed yet, oldest first. Line items are not loaded.
func (r *orderRepository) ListIncomplete(ctx context.Context, limit int) ([]model.FinalizedOrder, error) {
	const query = `SELECT id, gateway_order_id, created_at
                   FROM finalized_orders WHERE NOT completed
                   ORDER BY created_at LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.FinalizedOrder
	for rows.Next() {
		var order model.FinalizedOrder
		if err := rows.Scan(&order.ID, &order.GatewayOrderID, &order.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes a function inside a transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
