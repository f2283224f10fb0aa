package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"webstore/go-backend/internal/auth"
	"webstore/go-backend/internal/domain"
)

// OrderHandler serves order routes.
type OrderHandler struct {
	*Handler
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *Handler) *OrderHandler {
	return &OrderHandler{Handler: base}
}

// RegisterRoutes mounts the order routes on the router. All order routes
// require authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(auth.Authenticate(h.cfg.JWTSecret))

		r.Post("/", h.Create)
		r.Get("/history", h.History)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/pay", h.Pay)

		r.With(auth.RequireSellerOrAdmin).Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/summary", h.Summary)
			r.Put("/{id}/deliver", h.Deliver)
			r.Delete("/{id}", h.Delete)
		})
	})
}

type createOrderRequest struct {
	Items         []domain.OrderItem     `json:"orderItems"`
	Shipping      domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod string                 `json:"paymentMethod"`
	ItemsPrice    float64                `json:"itemsPrice"`
	ShippingPrice float64                `json:"shippingPrice"`
	TaxPrice      float64                `json:"taxPrice"`
	TotalPrice    float64                `json:"totalPrice"`
}

// Create places a new order for the caller.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		Error(w, http.StatusBadRequest, "Cart is empty.")
		return
	}

	now := time.Now()
	order := &domain.Order{
		OrderID:       uuid.NewString(),
		UserID:        id.UserID,
		SellerID:      req.Items[0].SellerID,
		Items:         req.Items,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		ItemsPrice:    req.ItemsPrice,
		ShippingPrice: req.ShippingPrice,
		TaxPrice:      req.TaxPrice,
		TotalPrice:    req.TotalPrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.repo.CreateOrder(r.Context(), order); err != nil {
		slog.Error("Failed to create order", "error", err, "user_id", id.UserID)
		Error(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	slog.Info("Order placed", "order_id", order.OrderID, "user_id", id.UserID, "total", order.TotalPrice)
	JSON(w, http.StatusCreated, map[string]interface{}{"message": "New Order Created.", "order": order})
}

// getOwnedOrder loads an order and enforces that the caller owns it or is an
// admin. Writes the error response itself and returns nil on failure.
func (h *OrderHandler) getOwnedOrder(w http.ResponseWriter, r *http.Request) *domain.Order {
	id := auth.FromContext(r.Context())

	order, err := h.repo.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get order", "error", err)
		Error(w, http.StatusInternalServerError, "failed to get order")
		return nil
	}
	if order == nil {
		Error(w, http.StatusBadRequest, "Order specified does not exist.")
		return nil
	}
	if order.UserID != id.UserID && !id.IsAdmin {
		Error(w, http.StatusUnauthorized, "You're unauthorized to access this content.")
		return nil
	}
	return order
}

// Get returns one order, visible to its owner and to admins.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if order := h.getOwnedOrder(w, r); order != nil {
		JSON(w, http.StatusOK, order)
	}
}

// History returns the caller's own orders.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	orders, err := h.repo.ListOrdersByUser(r.Context(), id.UserID)
	if err != nil {
		slog.Error("Failed to list orders", "error", err, "user_id", id.UserID)
		Error(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	JSON(w, http.StatusOK, orders)
}

// Pay records a successful provider payment against the caller's order.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	order := h.getOwnedOrder(w, r)
	if order == nil {
		return
	}

	var result domain.PaymentResult
	if err := decode(r, &result); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	paidAt := time.Now()
	if err := h.repo.MarkOrderPaid(r.Context(), order.OrderID, paidAt, result); err != nil {
		slog.Error("Failed to mark order paid", "error", err, "order_id", order.OrderID)
		Error(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	order.IsPaid = true
	order.PaidAt = paidAt
	order.Payment = result
	JSON(w, http.StatusOK, map[string]interface{}{"message": "Order Paid.", "order": order})
}

// List returns orders for sellers and admins. A seller query parameter
// narrows the result to that seller's orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var orders []*domain.Order
	var err error
	if sellerID := r.URL.Query().Get("seller"); sellerID != "" {
		orders, err = h.repo.ListOrdersBySeller(r.Context(), sellerID)
	} else {
		orders, err = h.repo.ListOrders(r.Context())
	}
	if err != nil {
		slog.Error("Failed to list orders", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	JSON(w, http.StatusOK, orders)
}

// Summary returns shop-wide sales aggregates. Admin only.
func (h *OrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	numOrders, totalSales, err := h.repo.SalesTotals(r.Context())
	if err != nil {
		slog.Error("Failed to query sales totals", "error", err)
		Error(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	numUsers, err := h.repo.CountUsers(r.Context())
	if err != nil {
		slog.Error("Failed to count users", "error", err)
		Error(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	daily, err := h.repo.DailySales(r.Context())
	if err != nil {
		slog.Error("Failed to query daily sales", "error", err)
		Error(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	categories, err := h.repo.CategoryCounts(r.Context())
	if err != nil {
		slog.Error("Failed to query category counts", "error", err)
		Error(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	JSON(w, http.StatusOK, domain.OrderSummary{
		NumOrders:         numOrders,
		TotalSales:        totalSales,
		NumUsers:          numUsers,
		DailyOrders:       daily,
		ProductCategories: categories,
	})
}

// Deliver marks an order delivered. Admin only.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	deliveredAt := time.Now()
	if err := h.repo.MarkOrderDelivered(r.Context(), orderID, deliveredAt); err != nil {
		slog.Error("Failed to mark order delivered", "error", err, "order_id", orderID)
		Error(w, http.StatusBadRequest, "Order specified does not exist.")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Order Delivered."})
}

// Delete removes an order. Admin only.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.repo.GetOrder(r.Context(), orderID)
	if err != nil {
		slog.Error("Failed to get order", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete order")
		return
	}
	if order == nil {
		Error(w, http.StatusBadRequest, "Order specified does not exist.")
		return
	}

	if err := h.repo.DeleteOrder(r.Context(), orderID); err != nil {
		slog.Error("Failed to delete order", "error", err, "order_id", orderID)
		Error(w, http.StatusInternalServerError, "failed to delete order")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"message": "Order Deleted.", "order": order})
}
