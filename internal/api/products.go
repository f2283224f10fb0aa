package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"webstore/go-backend/internal/auth"
	"webstore/go-backend/internal/domain"
)

// ProductHandler serves catalog routes.
type ProductHandler struct {
	*Handler
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *Handler) *ProductHandler {
	return &ProductHandler{Handler: base}
}

// RegisterRoutes mounts the product routes on the router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/seed", h.Seed)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(h.cfg.JWTSecret), auth.RequireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns the full catalog.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		slog.Error("Failed to list products", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	JSON(w, http.StatusOK, products)
}

// Get returns one product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get product", "error", err)
		Error(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if product == nil {
		Error(w, http.StatusBadRequest, "Product specified does not exist.")
		return
	}
	JSON(w, http.StatusOK, product)
}

// Create inserts a placeholder product for the admin to edit. Admin only.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	product := &domain.Product{
		ProductID:   uuid.NewString(),
		Name:        fmt.Sprintf("sample name %d", now.UnixMilli()),
		Image:       "/images/p1.jpg",
		Category:    "sample category",
		Brand:       "sample brand",
		Description: "sample description",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		slog.Error("Failed to create product", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"message": "Product Added.", "product": product})
}

// Update replaces a product's editable fields. Admin only.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get product", "error", err)
		Error(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	if product == nil {
		Error(w, http.StatusBadRequest, "Product specified does not exist.")
		return
	}

	var req domain.Product
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product.Name = req.Name
	product.Image = req.Image
	product.Price = req.Price
	product.Category = req.Category
	product.Brand = req.Brand
	product.CountInStock = req.CountInStock
	product.Description = req.Description

	if err := h.repo.UpdateProduct(r.Context(), product); err != nil {
		slog.Error("Failed to update product", "error", err, "product_id", product.ProductID)
		Error(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"message": "Product Updated.", "product": product})
}

// Delete removes a product from the catalog. Admin only.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get product", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	if product == nil {
		Error(w, http.StatusBadRequest, "Product specified does not exist.")
		return
	}

	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		slog.Error("Failed to delete product", "error", err, "product_id", id)
		Error(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"message": "Product Deleted.", "product": product})
}

// Seed inserts the sample catalog.
func (h *ProductHandler) Seed(w http.ResponseWriter, r *http.Request) {
	created := make([]*domain.Product, 0, len(sampleProducts))
	now := time.Now()
	for _, sample := range sampleProducts {
		product := &domain.Product{
			ProductID:    uuid.NewString(),
			Name:         sample.Name,
			Image:        sample.Image,
			Price:        sample.Price,
			Category:     sample.Category,
			Brand:        sample.Brand,
			CountInStock: sample.CountInStock,
			Rating:       sample.Rating,
			NumReviews:   sample.NumReviews,
			Description:  sample.Description,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := h.repo.CreateProduct(r.Context(), product); err != nil {
			slog.Error("Failed to create sample product", "error", err)
			Error(w, http.StatusInternalServerError, "failed to seed products")
			return
		}
		created = append(created, product)
	}
	JSON(w, http.StatusOK, created)
}
