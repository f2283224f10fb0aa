//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"webstore/go-backend/internal/config"
	"webstore/go-backend/internal/store"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := repo.Close(); closeErr != nil {
			t.Errorf("Close failed: %v", closeErr)
		}
	})

	cfg := &config.Config{
		Port:      "8080",
		DBPath:    "ignored",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		UploadDir: t.TempDir(),
	}

	base := NewHandler(repo, cfg)
	r := chi.NewRouter()
	base.RegisterRoutes(r)
	NewUserHandler(base).RegisterRoutes(r)
	NewProductHandler(base).RegisterRoutes(r)
	NewOrderHandler(base).RegisterRoutes(r)
	NewUploadHandler(base).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, r chi.Router, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, path, token, body)
}

func seedUsers(t *testing.T, r chi.Router) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/seed", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("User seed failed with status %d: %s", w.Code, w.Body.String())
	}
}

func signIn(t *testing.T, r chi.Router, email, password string) (userID, token string) {
	t.Helper()
	w := postJSON(t, r, "/api/users/sign-in", "", map[string]string{
		"email": email, "password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Sign-in failed with status %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode sign-in response: %v", err)
	}
	id, _ := resp["_id"].(string)
	tok, _ := resp["token"].(string)
	if id == "" || tok == "" {
		t.Fatalf("Expected _id and token, got %v", resp)
	}
	return id, tok
}

func signUp(t *testing.T, r chi.Router, name, email string) (userID, token string) {
	t.Helper()
	w := postJSON(t, r, "/api/users/sign-up", "", map[string]string{
		"name": name, "email": email, "password": "1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Sign-up failed with status %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode sign-up response: %v", err)
	}
	id, _ := resp["_id"].(string)
	tok, _ := resp["token"].(string)
	if id == "" || tok == "" {
		t.Fatalf("Expected _id and token, got %v", resp)
	}
	return id, tok
}

func TestSignUpAndSignIn(t *testing.T) {
	r := newTestRouter(t)
	signUp(t, r, "John", "user@example.com")

	w := postJSON(t, r, "/api/users/sign-in", "", map[string]string{
		"email": "user@example.com", "password": "1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Sign-in failed with status %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode sign-in response: %v", err)
	}
	if resp["name"] != "John" || resp["isAdmin"] != false {
		t.Errorf("Unexpected sign-in response: %v", resp)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	r := newTestRouter(t)
	signUp(t, r, "John", "user@example.com")

	w := postJSON(t, r, "/api/users/sign-in", "", map[string]string{
		"email": "user@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	signUp(t, r, "John", "user@example.com")

	w := postJSON(t, r, "/api/users/sign-up", "", map[string]string{
		"name": "Jane", "email": "user@example.com", "password": "1234",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate email, got %d", w.Code)
	}
}

func TestProductSeedAndList(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/seed", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Seed failed with status %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("List failed with status %d", w.Code)
	}

	var products []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("Failed to decode products: %v", err)
	}
	if len(products) != 4 {
		t.Errorf("Expected 4 seeded products, got %d", len(products))
	}
}

func TestProductCreate_RequiresAdmin(t *testing.T) {
	r := newTestRouter(t)
	_, token := signUp(t, r, "John", "user@example.com")

	// Unauthenticated.
	w := postJSON(t, r, "/api/products", "", map[string]string{})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	// Authenticated but not admin.
	w = postJSON(t, r, "/api/products", token, map[string]string{})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for non-admin, got %d", w.Code)
	}
}

func TestOrderCreateAndHistory(t *testing.T) {
	r := newTestRouter(t)
	_, token := signUp(t, r, "John", "user@example.com")

	order := map[string]interface{}{
		"orderItems": []map[string]interface{}{
			{"product": "p1", "name": "Slim Shirt", "image": "/images/p1.jpg", "price": 60, "qty": 1},
		},
		"shippingAddress": map[string]string{
			"fullName": "John", "address": "1 Main St", "city": "Springfield",
			"postalCode": "12345", "country": "US",
		},
		"paymentMethod": "PayPal",
		"itemsPrice":    60,
		"totalPrice":    60,
	}
	w := postJSON(t, r, "/api/orders", token, order)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create order failed with status %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("History failed with status %d", w.Code)
	}

	var orders []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
		t.Fatalf("Failed to decode orders: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("Expected 1 order in history, got %d", len(orders))
	}
}

func TestOrderCreate_EmptyCart(t *testing.T) {
	r := newTestRouter(t)
	_, token := signUp(t, r, "John", "user@example.com")

	w := postJSON(t, r, "/api/orders", token, map[string]interface{}{
		"orderItems": []map[string]interface{}{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty cart, got %d", w.Code)
	}
}

func TestUserGetByID(t *testing.T) {
	r := newTestRouter(t)
	userID, _ := signUp(t, r, "John", "user@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/users/"+userID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Get user failed with status %d: %s", w.Code, w.Body.String())
	}
	var user map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("Failed to decode user: %v", err)
	}
	if user["name"] != "John" {
		t.Errorf("Unexpected user: %v", user)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/nonexistent", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown user, got %d", w.Code)
	}
}

func TestTopSellers(t *testing.T) {
	r := newTestRouter(t)
	seedUsers(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/users/top-sellers", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Top sellers failed with status %d: %s", w.Code, w.Body.String())
	}
	var sellers []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&sellers); err != nil {
		t.Fatalf("Failed to decode sellers: %v", err)
	}
	if len(sellers) != 1 {
		t.Fatalf("Expected 1 seeded seller, got %d", len(sellers))
	}
	if sellers[0]["isSeller"] != true || sellers[0]["name"] != "Sarah" {
		t.Errorf("Unexpected seller: %v", sellers[0])
	}
}

func TestAdminUserUpdateAndDelete(t *testing.T) {
	r := newTestRouter(t)
	seedUsers(t, r)
	adminID, adminToken := signIn(t, r, "admin@example.com", "1234")
	userID, _ := signUp(t, r, "Jane", "jane@example.com")

	// Promote the user to seller.
	w := doJSON(t, r, http.MethodPut, "/api/users/"+userID, adminToken,
		map[string]interface{}{"isSeller": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Admin update failed with status %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/users/"+userID, "", nil)
	var user map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("Failed to decode user: %v", err)
	}
	if user["isSeller"] != true {
		t.Errorf("Expected user promoted to seller, got %v", user)
	}

	// Admin accounts may not be deleted.
	w = doJSON(t, r, http.MethodDelete, "/api/users/"+adminID, adminToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 deleting an admin, got %d", w.Code)
	}

	// Regular accounts may.
	w = doJSON(t, r, http.MethodDelete, "/api/users/"+userID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Delete user failed with status %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/users/"+userID, "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for deleted user, got %d", w.Code)
	}
}

func TestUserUpdateAndDelete_RequireAdmin(t *testing.T) {
	r := newTestRouter(t)
	userID, token := signUp(t, r, "John", "user@example.com")

	w := doJSON(t, r, http.MethodPut, "/api/users/"+userID, token,
		map[string]interface{}{"isAdmin": true})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for non-admin update, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/users/"+userID, token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for non-admin delete, got %d", w.Code)
	}
}

func TestSellerProfileUpdate(t *testing.T) {
	r := newTestRouter(t)
	seedUsers(t, r)
	sellerID, sellerToken := signIn(t, r, "seller@example.com", "1234")

	w := doJSON(t, r, http.MethodPut, "/api/users/profile", sellerToken,
		map[string]string{"sellerDescription": "new and improved"})
	if w.Code != http.StatusOK {
		t.Fatalf("Profile update failed with status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/"+sellerID, "", nil)
	var user struct {
		Seller struct {
			Description string `json:"description"`
			Name        string `json:"name"`
		} `json:"seller"`
	}
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("Failed to decode user: %v", err)
	}
	if user.Seller.Description != "new and improved" {
		t.Errorf("Expected storefront description updated, got %+v", user.Seller)
	}
	if user.Seller.Name != "Sarah's Shop" {
		t.Errorf("Expected untouched storefront fields preserved, got %+v", user.Seller)
	}
}

func TestOrderList_SellerAccess(t *testing.T) {
	r := newTestRouter(t)
	seedUsers(t, r)
	sellerID, sellerToken := signIn(t, r, "seller@example.com", "1234")
	_, customerToken := signIn(t, r, "user@example.com", "1234")

	order := map[string]interface{}{
		"orderItems": []map[string]interface{}{
			{"product": "p1", "seller": sellerID, "name": "Slim Shirt", "image": "/images/p1.jpg", "price": 60, "qty": 1},
		},
		"shippingAddress": map[string]string{
			"fullName": "John", "address": "1 Main St", "city": "Springfield",
			"postalCode": "12345", "country": "US",
		},
		"paymentMethod": "PayPal",
		"itemsPrice":    60,
		"totalPrice":    60,
	}
	if w := postJSON(t, r, "/api/orders", customerToken, order); w.Code != http.StatusCreated {
		t.Fatalf("Create order failed with status %d: %s", w.Code, w.Body.String())
	}

	// Plain customers are not allowed to list orders.
	w := doJSON(t, r, http.MethodGet, "/api/orders", customerToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for customer order list, got %d", w.Code)
	}

	// The seller sees their orders through the seller filter.
	w = doJSON(t, r, http.MethodGet, "/api/orders?seller="+sellerID, sellerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Seller order list failed with status %d: %s", w.Code, w.Body.String())
	}
	var orders []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
		t.Fatalf("Failed to decode orders: %v", err)
	}
	if len(orders) != 1 || orders[0]["seller"] != sellerID {
		t.Fatalf("Expected 1 order for seller, got %v", orders)
	}

	// A filter on someone else's seller id matches nothing.
	w = doJSON(t, r, http.MethodGet, "/api/orders?seller=other", sellerToken, nil)
	var other []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&other); err != nil {
		t.Fatalf("Failed to decode orders: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no orders for unknown seller, got %v", other)
	}
}

func TestUpload_ReturnsBareURL(t *testing.T) {
	r := newTestRouter(t)
	_, token := signUp(t, r, "John", "user@example.com")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("not really a png")); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("Failed to close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Upload failed with status %d: %s", w.Code, w.Body.String())
	}

	url := w.Body.String()
	if !strings.HasPrefix(url, "http://example.com/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("Expected bare upload URL in body, got %q", url)
	}

	// The returned path serves the stored file.
	path := strings.TrimPrefix(url, "http://example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK || w.Body.String() != "not really a png" {
		t.Errorf("Expected uploaded content at %s, got %d %q", path, w.Code, w.Body.String())
	}
}

func TestPayPalConfig(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config/paypal", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}
