// Package domain contains core domain types for the webstore backend.
package domain

import (
	"time"
)

// SellerProfile is the storefront a seller account presents: shown on the
// top-sellers shelf and editable by the seller in their profile.
type SellerProfile struct {
	Name        string  `json:"name"`
	Logo        string  `json:"logo"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	NumReviews  int     `json:"numReviews"`
}

// User represents a registered shop account.
type User struct {
	UserID       string        `json:"_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	IsAdmin      bool          `json:"isAdmin"`
	IsSeller     bool          `json:"isSeller"`
	Seller       SellerProfile `json:"seller,omitzero"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
