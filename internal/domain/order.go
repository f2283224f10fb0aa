package domain

import (
	"time"
)

// OrderItem is one line of an order, denormalized from the product at
// purchase time so later catalog edits do not rewrite history.
type OrderItem struct {
	ProductID string  `json:"product"`
	SellerID  string  `json:"seller,omitzero"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"qty"`
}

// ShippingAddress is the delivery destination captured at checkout.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResult records the provider-side outcome of a payment.
type PaymentResult struct {
	ProviderID string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	EmailAddr  string `json:"email_address"`
}

// Order represents one placed order.
type Order struct {
	OrderID       string          `json:"_id"`
	UserID        string          `json:"user"`
	SellerID      string          `json:"seller,omitzero"`
	Items         []OrderItem     `json:"orderItems"`
	Shipping      ShippingAddress `json:"shippingAddress"`
	PaymentMethod string          `json:"paymentMethod"`
	ItemsPrice    float64         `json:"itemsPrice"`
	ShippingPrice float64         `json:"shippingPrice"`
	TaxPrice      float64         `json:"taxPrice"`
	TotalPrice    float64         `json:"totalPrice"`
	IsPaid        bool            `json:"isPaid"`
	PaidAt        time.Time       `json:"paidAt,omitzero"`
	Payment       PaymentResult   `json:"paymentResult,omitzero"`
	IsDelivered   bool            `json:"isDelivered"`
	DeliveredAt   time.Time       `json:"deliveredAt,omitzero"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DailySales is one bucket of the admin sales summary.
type DailySales struct {
	Date   string  `json:"_id"`
	Orders int     `json:"orders"`
	Sales  float64 `json:"sales"`
}

// CategoryCount is the number of products in one category.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int    `json:"count"`
}

// OrderSummary aggregates shop-wide totals for the admin dashboard.
type OrderSummary struct {
	NumOrders         int             `json:"numOrders"`
	TotalSales        float64         `json:"totalSales"`
	NumUsers          int             `json:"numUsers"`
	DailyOrders       []DailySales    `json:"dailyOrders"`
	ProductCategories []CategoryCount `json:"productCategories"`
}
