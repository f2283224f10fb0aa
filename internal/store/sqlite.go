package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"webstore/go-backend/internal/domain"
	"webstore/go-backend/internal/shared"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		is_seller INTEGER NOT NULL DEFAULT 0,
		seller_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		product_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		image TEXT NOT NULL,
		price REAL NOT NULL,
		category TEXT NOT NULL,
		brand TEXT NOT NULL,
		count_in_stock INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		num_reviews INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		seller_id TEXT NOT NULL DEFAULT '',
		items_json TEXT NOT NULL,
		shipping_json TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		payment_json TEXT,
		items_price REAL NOT NULL,
		shipping_price REAL NOT NULL,
		tax_price REAL NOT NULL,
		total_price REAL NOT NULL,
		is_paid INTEGER NOT NULL DEFAULT 0,
		paid_at INTEGER,
		is_delivered INTEGER NOT NULL DEFAULT 0,
		delivered_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
	CREATE INDEX IF NOT EXISTS idx_orders_seller ON orders(seller_id);
	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// execRetry runs a write statement, retrying briefly on SQLite lock
// contention. WAL plus busy_timeout covers most of it; this covers the rest.
func (s *SQLiteStore) execRetry(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	var result sql.Result
	var err error
	delay := 50 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		result, err = s.db.ExecContext(ctx, query, args...)
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return result, err
		}
		slog.Debug("SQLite write conflict, retrying", "attempt", attempt+1, "delay", delay)
		time.Sleep(delay)
		delay *= 2
	}
	return result, err
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const userColumns = `user_id, name, email, password_hash, is_admin, is_seller, seller_json, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var user domain.User
	var isAdmin, isSeller int
	var sellerJSON sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&user.UserID, &user.Name, &user.Email, &user.PasswordHash,
		&isAdmin, &isSeller, &sellerJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.IsAdmin = isAdmin != 0
	user.IsSeller = isSeller != 0
	if sellerJSON.Valid && sellerJSON.String != "" {
		if err := json.Unmarshal([]byte(sellerJSON.String), &user.Seller); err != nil {
			return nil, fmt.Errorf("decode seller profile: %w", err)
		}
	}
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, userID))
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	sellerJSON, err := json.Marshal(user.Seller)
	if err != nil {
		return fmt.Errorf("encode seller profile: %w", err)
	}

	query := `
	INSERT INTO users (user_id, name, email, password_hash, is_admin, is_seller, seller_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.execRetry(ctx, query,
		user.UserID, user.Name, user.Email, user.PasswordHash,
		boolToInt(user.IsAdmin), boolToInt(user.IsSeller), string(sellerJSON),
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser updates name, email, password hash, role flags, and the seller
// profile.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *domain.User) error {
	sellerJSON, err := json.Marshal(user.Seller)
	if err != nil {
		return fmt.Errorf("encode seller profile: %w", err)
	}

	query := `
	UPDATE users SET name = ?, email = ?, password_hash = ?, is_admin = ?, is_seller = ?, seller_json = ?, updated_at = ?
	WHERE user_id = ?`

	result, err := s.execRetry(ctx, query,
		user.Name, user.Email, user.PasswordHash, boolToInt(user.IsAdmin),
		boolToInt(user.IsSeller), string(sellerJSON),
		time.Now().Unix(), user.UserID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// DeleteUser removes a user account.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.execRetry(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer closeRows(rows, "users")

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// ListUsers retrieves all users, oldest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	return s.queryUsers(ctx, query)
}

// TopSellers retrieves the best-rated seller accounts, at most three.
func (s *SQLiteStore) TopSellers(ctx context.Context) ([]*domain.User, error) {
	query := `
	SELECT ` + userColumns + ` FROM users
	WHERE is_seller = 1
	ORDER BY CAST(json_extract(seller_json, '$.rating') AS REAL) DESC
	LIMIT 3`
	return s.queryUsers(ctx, query)
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

const productColumns = `product_id, name, image, price, category, brand,
       count_in_stock, rating, num_reviews, description, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	var p domain.Product
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.ProductID, &p.Name, &p.Image, &p.Price, &p.Category, &p.Brand,
		&p.CountInStock, &p.Rating, &p.NumReviews, &p.Description,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product row: %w", err)
	}

	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

// ListProducts retrieves the full catalog, oldest first.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeRows(rows, "products")

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by its ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = ?`
	return scanProduct(s.db.QueryRowContext(ctx, query, productID))
}

// CreateProduct inserts a new product record.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
	INSERT INTO products (product_id, name, image, price, category, brand,
		count_in_stock, rating, num_reviews, description, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.execRetry(ctx, query,
		product.ProductID, product.Name, product.Image, product.Price,
		product.Category, product.Brand, product.CountInStock,
		product.Rating, product.NumReviews, product.Description,
		product.CreatedAt.Unix(), product.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// UpdateProduct updates an existing product record.
func (s *SQLiteStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `
	UPDATE products SET name = ?, image = ?, price = ?, category = ?, brand = ?,
		count_in_stock = ?, rating = ?, num_reviews = ?, description = ?, updated_at = ?
	WHERE product_id = ?`

	result, err := s.execRetry(ctx, query,
		product.Name, product.Image, product.Price, product.Category,
		product.Brand, product.CountInStock, product.Rating,
		product.NumReviews, product.Description, time.Now().Unix(),
		product.ProductID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// DeleteProduct removes a product from the catalog.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, productID string) error {
	_, err := s.execRetry(ctx, `DELETE FROM products WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// CategoryCounts returns product counts grouped by category.
func (s *SQLiteStore) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	query := `SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer closeRows(rows, "category counts")

	var counts []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category count rows: %w", err)
	}
	return counts, nil
}

const orderColumns = `order_id, user_id, seller_id, items_json, shipping_json, payment_method,
       payment_json, items_price, shipping_price, tax_price, total_price,
       is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var o domain.Order
	var itemsJSON, shippingJSON string
	var paymentJSON sql.NullString
	var isPaid, isDelivered int
	var paidAt, deliveredAt sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&o.OrderID, &o.UserID, &o.SellerID, &itemsJSON, &shippingJSON, &o.PaymentMethod,
		&paymentJSON, &o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&isPaid, &paidAt, &isDelivered, &deliveredAt, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal([]byte(shippingJSON), &o.Shipping); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if paymentJSON.Valid && paymentJSON.String != "" {
		if err := json.Unmarshal([]byte(paymentJSON.String), &o.Payment); err != nil {
			return nil, fmt.Errorf("decode payment result: %w", err)
		}
	}

	o.IsPaid = isPaid != 0
	o.IsDelivered = isDelivered != 0
	if paidAt.Valid {
		o.PaidAt = time.Unix(paidAt.Int64, 0)
	}
	if deliveredAt.Valid {
		o.DeliveredAt = time.Unix(deliveredAt.Int64, 0)
	}
	o.CreatedAt = time.Unix(createdAt, 0)
	o.UpdatedAt = time.Unix(updatedAt, 0)
	return &o, nil
}

// CreateOrder inserts a new order record.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	query := `
	INSERT INTO orders (order_id, user_id, seller_id, items_json, shipping_json, payment_method,
		items_price, shipping_price, tax_price, total_price, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.execRetry(ctx, query,
		order.OrderID, order.UserID, order.SellerID, string(itemsJSON), string(shippingJSON),
		order.PaymentMethod, order.ItemsPrice, order.ShippingPrice,
		order.TaxPrice, order.TotalPrice,
		order.CreatedAt.Unix(), order.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by its ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`
	return scanOrder(s.db.QueryRowContext(ctx, query, orderID))
}

func (s *SQLiteStore) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer closeRows(rows, "orders")

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// ListOrders retrieves all orders, newest first.
func (s *SQLiteStore) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return s.queryOrders(ctx, query)
}

// ListOrdersByUser retrieves one user's orders, newest first.
func (s *SQLiteStore) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	return s.queryOrders(ctx, query, userID)
}

// ListOrdersBySeller retrieves one seller's orders, newest first.
func (s *SQLiteStore) ListOrdersBySeller(ctx context.Context, sellerID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE seller_id = ? ORDER BY created_at DESC`
	return s.queryOrders(ctx, query, sellerID)
}

// MarkOrderPaid records a successful payment against an order.
func (s *SQLiteStore) MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time, result domain.PaymentResult) error {
	paymentJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode payment result: %w", err)
	}

	query := `UPDATE orders SET is_paid = 1, paid_at = ?, payment_json = ?, updated_at = ? WHERE order_id = ?`
	res, err := s.execRetry(ctx, query, paidAt.Unix(), string(paymentJSON), time.Now().Unix(), orderID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("order not found")
	}
	return nil
}

// MarkOrderDelivered records delivery of an order.
func (s *SQLiteStore) MarkOrderDelivered(ctx context.Context, orderID string, deliveredAt time.Time) error {
	query := `UPDATE orders SET is_delivered = 1, delivered_at = ?, updated_at = ? WHERE order_id = ?`
	res, err := s.execRetry(ctx, query, deliveredAt.Unix(), time.Now().Unix(), orderID)
	if err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("order not found")
	}
	return nil
}

// DeleteOrder removes an order.
func (s *SQLiteStore) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := s.execRetry(ctx, `DELETE FROM orders WHERE order_id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// SalesTotals returns the order count and summed total sales.
func (s *SQLiteStore) SalesTotals(ctx context.Context) (int, float64, error) {
	var numOrders int
	var totalSales sql.NullFloat64
	query := `SELECT COUNT(*), SUM(total_price) FROM orders`
	if err := s.db.QueryRowContext(ctx, query).Scan(&numOrders, &totalSales); err != nil {
		return 0, 0, fmt.Errorf("query sales totals: %w", err)
	}
	return numOrders, totalSales.Float64, nil
}

// DailySales returns per-day order counts and sales, oldest day first.
func (s *SQLiteStore) DailySales(ctx context.Context) ([]domain.DailySales, error) {
	query := `
	SELECT strftime('%Y-%m-%d', created_at, 'unixepoch') AS day,
	       COUNT(*), SUM(total_price)
	FROM orders GROUP BY day ORDER BY day`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer closeRows(rows, "daily sales")

	var days []domain.DailySales
	for rows.Next() {
		var d domain.DailySales
		if err := rows.Scan(&d.Date, &d.Orders, &d.Sales); err != nil {
			return nil, fmt.Errorf("scan daily sales row: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily sales rows: %w", err)
	}
	return days, nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "what", what, "error", err)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
