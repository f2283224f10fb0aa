package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"webstore/go-backend/internal/auth"
	"webstore/go-backend/internal/domain"
)

// UserHandler serves account sign-up, sign-in, profile, and admin user
// management routes.
type UserHandler struct {
	*Handler
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *Handler) *UserHandler {
	return &UserHandler{Handler: base}
}

// RegisterRoutes mounts the user routes on the router.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-in", h.SignIn)
		r.Get("/seed", h.Seed)
		r.Get("/top-sellers", h.TopSellers)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(h.cfg.JWTSecret))
			r.Put("/profile", h.UpdateProfile)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/", h.List)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		})
	})
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileRequest extends the credentials with the storefront fields a seller
// may edit on their own profile.
type profileRequest struct {
	credentialsRequest
	SellerName        string `json:"sellerName"`
	SellerLogo        string `json:"sellerLogo"`
	SellerDescription string `json:"sellerDescription"`
}

// tokenResponse is the signed-in account view, token included.
func (h *UserHandler) tokenResponse(w http.ResponseWriter, user *domain.User) {
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user, h.cfg.TokenTTL)
	if err != nil {
		slog.Error("Failed to generate token", "error", err, "user_id", user.UserID)
		Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"_id":      user.UserID,
		"name":     user.Name,
		"email":    user.Email,
		"isAdmin":  user.IsAdmin,
		"isSeller": user.IsSeller,
		"token":    token,
	})
}

// SignUp registers a new account and signs it in.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}

	if existing, err := h.repo.GetUserByEmail(r.Context(), req.Email); err != nil {
		slog.Error("Failed to look up user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create user")
		return
	} else if existing != nil {
		Error(w, http.StatusBadRequest, "email is already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	now := time.Now()
	user := &domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		slog.Error("Failed to create user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	slog.Info("User registered", "user_id", user.UserID, "email", user.Email)
	h.tokenResponse(w, user)
}

// SignIn authenticates an account by email and password.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.tokenResponse(w, user)
}

// Get returns one account's public view.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.repo.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		Error(w, http.StatusBadRequest, "The user specified does not exist.")
		return
	}
	JSON(w, http.StatusOK, user)
}

// TopSellers returns the best-rated seller accounts for the storefront
// shelf.
func (h *UserHandler) TopSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.repo.TopSellers(r.Context())
	if err != nil {
		slog.Error("Failed to list top sellers", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list top sellers")
		return
	}
	if sellers == nil {
		sellers = []*domain.User{}
	}
	JSON(w, http.StatusOK, sellers)
}

// UpdateProfile updates the caller's name, email, or password, plus the
// storefront fields when the caller is a seller, and re-issues their token.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	var req profileRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetUser(r.Context(), id.UserID)
	if err != nil || user == nil {
		Error(w, http.StatusBadRequest, "The user specified does not exist.")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if user.IsSeller {
		if req.SellerName != "" {
			user.Seller.Name = req.SellerName
		}
		if req.SellerLogo != "" {
			user.Seller.Logo = req.SellerLogo
		}
		if req.SellerDescription != "" {
			user.Seller.Description = req.SellerDescription
		}
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("Failed to hash password", "error", err)
			Error(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.repo.UpdateUser(r.Context(), user); err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.UserID)
		Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.tokenResponse(w, user)
}

type adminUserUpdateRequest struct {
	Name     string `json:"name"`
	IsAdmin  *bool  `json:"isAdmin"`
	IsSeller *bool  `json:"isSeller"`
}

// Update changes another account's name and role flags. Admin only.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req adminUserUpdateRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	if user == nil {
		Error(w, http.StatusBadRequest, "The user specified does not exist.")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsSeller != nil {
		user.IsSeller = *req.IsSeller
	}

	if err := h.repo.UpdateUser(r.Context(), user); err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.UserID)
		Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	slog.Info("User updated by admin", "user_id", user.UserID, "admin", user.IsAdmin, "seller", user.IsSeller)
	JSON(w, http.StatusOK, map[string]interface{}{"message": "User updated successfully.", "user": user})
}

// Delete removes a non-admin account. Admin only.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.repo.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if user == nil {
		Error(w, http.StatusBadRequest, "The user specified does not exist.")
		return
	}
	if user.IsAdmin {
		Error(w, http.StatusUnauthorized, "You're not allowed to delete users in the admin role.")
		return
	}

	if err := h.repo.DeleteUser(r.Context(), user.UserID); err != nil {
		slog.Error("Failed to delete user", "error", err, "user_id", user.UserID)
		Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	slog.Info("User deleted", "user_id", user.UserID)
	JSON(w, http.StatusOK, map[string]interface{}{"message": "User successfully deleted.", "user": user})
}

// List returns every registered account. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	JSON(w, http.StatusOK, users)
}

// Seed inserts the sample accounts, skipping emails that already exist.
func (h *UserHandler) Seed(w http.ResponseWriter, r *http.Request) {
	created := make([]*domain.User, 0, len(sampleUsers))
	for _, sample := range sampleUsers {
		existing, err := h.repo.GetUserByEmail(r.Context(), sample.Email)
		if err != nil {
			slog.Error("Failed to look up sample user", "error", err)
			Error(w, http.StatusInternalServerError, "failed to seed users")
			return
		}
		if existing != nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(sample.Password), bcrypt.DefaultCost)
		if err != nil {
			Error(w, http.StatusInternalServerError, "failed to seed users")
			return
		}

		now := time.Now()
		user := &domain.User{
			UserID:       uuid.NewString(),
			Name:         sample.Name,
			Email:        sample.Email,
			PasswordHash: string(hash),
			IsAdmin:      sample.IsAdmin,
			IsSeller:     sample.IsSeller,
			Seller:       sample.Seller,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := h.repo.CreateUser(r.Context(), user); err != nil {
			slog.Error("Failed to create sample user", "error", err)
			Error(w, http.StatusInternalServerError, "failed to seed users")
			return
		}
		created = append(created, user)
	}
	JSON(w, http.StatusOK, map[string]interface{}{"createdUsers": created})
}
