// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"webstore/go-backend/internal/domain"
)

// Repository defines the interface for persisting shop data.
type Repository interface {
	// GetUser retrieves a user by their user ID.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser inserts a new user record. Fails if the email is taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// UpdateUser updates name, email, password hash, role flags, and the
	// seller profile.
	UpdateUser(ctx context.Context, user *domain.User) error

	// DeleteUser removes a user account.
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers retrieves all users, oldest first.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// TopSellers retrieves the best-rated seller accounts, at most three.
	TopSellers(ctx context.Context) ([]*domain.User, error)

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (int, error)

	// ListProducts retrieves the full catalog, oldest first.
	ListProducts(ctx context.Context) ([]*domain.Product, error)

	// GetProduct retrieves a product by its ID.
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)

	// CreateProduct inserts a new product record.
	CreateProduct(ctx context.Context, product *domain.Product) error

	// UpdateProduct updates an existing product record.
	UpdateProduct(ctx context.Context, product *domain.Product) error

	// DeleteProduct removes a product from the catalog.
	DeleteProduct(ctx context.Context, productID string) error

	// CategoryCounts returns product counts grouped by category.
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)

	// CreateOrder inserts a new order record.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders retrieves all orders, newest first.
	ListOrders(ctx context.Context) ([]*domain.Order, error)

	// ListOrdersByUser retrieves one user's orders, newest first.
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)

	// ListOrdersBySeller retrieves one seller's orders, newest first.
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]*domain.Order, error)

	// MarkOrderPaid records a successful payment against an order.
	MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time, result domain.PaymentResult) error

	// MarkOrderDelivered records delivery of an order.
	MarkOrderDelivered(ctx context.Context, orderID string, deliveredAt time.Time) error

	// DeleteOrder removes an order.
	DeleteOrder(ctx context.Context, orderID string) error

	// SalesTotals returns the order count and summed total sales.
	SalesTotals(ctx context.Context) (numOrders int, totalSales float64, err error)

	// DailySales returns per-day order counts and sales, oldest day first.
	DailySales(ctx context.Context) ([]domain.DailySales, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
